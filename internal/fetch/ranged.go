package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// fetchRanged downloads the file with one worker per byte range, all
// writing into a single pre-sized shared file. A coordinator loop polls
// the shared byte counter and emits percentage progress until every
// worker has finished; only then is the final 100% announced, so
// completion is never reported ahead of the last write.
func (f *Fetcher) fetchRanged(ctx context.Context, job Job) error {
	file, err := OpenSharedFile(job.DestPath, job.Size)
	if err != nil {
		return err
	}
	defer file.Close()

	ranges := BuildRanges(job.Size, f.workers)

	var downloaded atomic.Int64
	errs := make([]error, len(ranges))

	var wg sync.WaitGroup
	for i, r := range ranges {
		wg.Add(1)
		go func(i int, r Range) {
			defer wg.Done()
			// A panicking worker must not take the job down with it;
			// it is reported as a failed range instead.
			defer func() {
				if p := recover(); p != nil {
					errs[i] = fmt.Errorf("range worker %d panicked: %v", i, p)
				}
			}()
			errs[i] = f.fetchRange(ctx, job, r, file, &downloaded)
		}(i, r)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	ticker := time.NewTicker(f.pollInterval)
	defer ticker.Stop()

	for running := true; running; {
		select {
		case <-done:
			running = false
		case <-ticker.C:
			percent := float64(downloaded.Load()) / float64(job.Size) * 100
			f.sink.Notify(job.ID, fmt.Sprintf("%.2f%%", percent))
		}
	}

	// Surface the first failed range. Workers are never retried or
	// restarted; a single failure fails the whole job.
	for _, werr := range errs {
		if werr != nil {
			return werr
		}
	}

	f.sink.Notify(job.ID, "100.00%")
	return nil
}

// fetchRange downloads one byte range and writes each chunk at its
// absolute offset in the shared file.
func (f *Fetcher) fetchRange(ctx context.Context, job Job, r Range, file *SharedFile, downloaded *atomic.Int64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, job.URL, nil)
	if err != nil {
		return fmt.Errorf("range request failed: %w", err)
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", r.Start, r.End))

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("range request failed: %w", err)
	}
	defer resp.Body.Close()

	// 206 is the expected answer; some servers reply 200 with the range
	// honored anyway. A 200 with the range *ignored* is not detected and
	// would corrupt the output.
	if resp.StatusCode != http.StatusPartialContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("range %d-%d HTTP error: %s", r.Start, r.End, resp.Status)
	}

	offset := r.Start
	buf := make([]byte, rangedChunkSize)

	for {
		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			if werr := file.WriteAt(buf[:n], offset); werr != nil {
				return werr
			}
			offset += int64(n)
			downloaded.Add(int64(n))
		}
		if rerr == io.EOF {
			return nil
		}
		if rerr != nil {
			return fmt.Errorf("read error: %w", rerr)
		}
	}
}
