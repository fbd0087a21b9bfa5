package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
)

// fetchSingle streams the whole file sequentially. Used when the size is
// unknown or the server does not support partial content.
func (f *Fetcher) fetchSingle(ctx context.Context, job Job) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, job.URL, nil)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("HTTP error: %s", resp.Status)
	}

	// The probe may have found no size; the GET response is the last
	// chance to learn one.
	total := resp.ContentLength
	if total < 0 {
		total = 0
	}

	out, err := os.Create(job.DestPath)
	if err != nil {
		return fmt.Errorf("file create error: %w", err)
	}
	defer out.Close()

	// Without a content length there is no percentage to compute, so the
	// caller gets a single indeterminate notification instead.
	if total == 0 {
		f.sink.Notify(job.ID, "Downloading…")
	}

	var downloaded int64
	buf := make([]byte, singleChunkSize)

	for {
		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				return fmt.Errorf("write error: %w", werr)
			}

			downloaded += int64(n)

			if total > 0 {
				percent := float64(downloaded) / float64(total) * 100
				f.sink.Notify(job.ID, fmt.Sprintf("%.2f%%", percent))
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return fmt.Errorf("read error: %w", rerr)
		}
	}

	// Guarantee the job ends at 100% when a size was known.
	if total > 0 {
		f.sink.Notify(job.ID, "100.00%")
	}

	return nil
}
