package fetch

import (
	"context"
	"net/http"
	"time"

	"github.com/LordZeuss/goroms/internal/logger"
)

const (
	// singleChunkSize is the read buffer for the sequential path.
	singleChunkSize = 8 * 1024
	// rangedChunkSize is the read buffer for each range worker.
	rangedChunkSize = 32 * 1024

	defaultWorkers      = 4
	defaultPollInterval = 150 * time.Millisecond
)

// Sink receives progress for one job. How the events reach a user
// (event bus, SSE, log) is the caller's concern.
type Sink interface {
	Notify(jobID string, progress string)
	NotifyComplete(jobID string)
}

// Capability is the result of probing a source URL.
type Capability struct {
	TotalSize      int64
	SupportsRanges bool
}

// Job is one fetch invocation. Created once per call and owned by the
// fetcher for its lifetime.
type Job struct {
	ID       string
	URL      string
	DestPath string
	Size     int64
	Ranged   bool
}

type Options struct {
	// Workers is the fixed range-worker count. Default 4.
	Workers int
	// PollInterval is how often the coordinator reads the shared
	// progress counter. Default 150ms.
	PollInterval time.Duration
}

// Fetcher downloads remote files, reporting progress through a Sink.
type Fetcher struct {
	client       *http.Client
	sink         Sink
	log          *logger.Logger
	workers      int
	pollInterval time.Duration
}

func New(client *http.Client, sink Sink, log *logger.Logger, opts Options) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}

	return &Fetcher{
		client:       client,
		sink:         sink,
		log:          log,
		workers:      opts.Workers,
		pollInterval: opts.PollInterval,
	}
}

// Fetch downloads url into destPath. It probes the server first: a known
// size plus byte-range support selects the parallel ranged path, anything
// else falls back to the sequential stream.
func (f *Fetcher) Fetch(ctx context.Context, jobID, url, destPath string) error {
	cap, err := f.Probe(ctx, url)
	if err != nil {
		return err
	}

	job := Job{
		ID:       jobID,
		URL:      url,
		DestPath: destPath,
		Size:     cap.TotalSize,
		Ranged:   cap.SupportsRanges,
	}

	if !job.Ranged || job.Size == 0 {
		f.log.Debug("job %s: ranges unsupported or size unknown, using single stream", jobID)
		return f.fetchSingle(ctx, job)
	}

	f.log.Debug("job %s: %d bytes across %d range workers", jobID, job.Size, f.workers)
	return f.fetchRanged(ctx, job)
}
