package job

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/LordZeuss/goroms/internal/archive"
	"github.com/LordZeuss/goroms/internal/fetch"
	"github.com/LordZeuss/goroms/internal/logger"
)

const downloadDirKey = "download_dir"

// Fetcher downloads a URL into a destination file, reporting progress
// under the given job id.
type Fetcher interface {
	Fetch(ctx context.Context, jobID, url, destPath string) error
}

// SettingsProvider exposes persisted user settings. The orchestrator
// never decides the destination itself beyond the configured fallback.
type SettingsProvider interface {
	GetSetting(ctx context.Context, key string) (string, error)
}

// Recorder receives the post-completion side effect: the job's external
// record flips to downloaded. Called only after extraction fully
// succeeds.
type Recorder interface {
	MarkDownloaded(ctx context.Context, jobID string) error
}

// Request describes one fetch-and-extract job.
type Request struct {
	JobID    string
	URL      string
	FileName string
	// DestDir, when non-empty, overrides the persisted destination
	// setting.
	DestDir string
}

// Orchestrator sequences probe → download → extract → mark-complete →
// notify for one job at a time, off the caller's goroutine when started
// asynchronously.
type Orchestrator struct {
	fetcher    Fetcher
	extractor  archive.Extractor
	settings   SettingsProvider
	recorder   Recorder
	sink       fetch.Sink
	log        *logger.Logger
	defaultDir string
}

func NewOrchestrator(fetcher Fetcher, extractor archive.Extractor, settings SettingsProvider,
	recorder Recorder, sink fetch.Sink, log *logger.Logger, defaultDir string) *Orchestrator {

	return &Orchestrator{
		fetcher:    fetcher,
		extractor:  extractor,
		settings:   settings,
		recorder:   recorder,
		sink:       sink,
		log:        log,
		defaultDir: defaultDir,
	}
}

// Start runs the job on its own goroutine so the caller stays
// responsive. Failures are logged; progress reaches the caller through
// the sink.
func (o *Orchestrator) Start(ctx context.Context, req Request) {
	go func() {
		if err := o.Run(ctx, req); err != nil {
			o.log.Error("job %s failed: %v", req.JobID, err)
		}
	}()
}

// Run executes the whole job synchronously.
func (o *Orchestrator) Run(ctx context.Context, req Request) error {
	dir, err := o.resolveDownloadDir(ctx, req.DestDir)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create download folder: %w", err)
	}

	// Coerce the archive extension.
	fileName := req.FileName
	if !strings.HasSuffix(strings.ToLower(fileName), ".zip") {
		fileName += ".zip"
	}

	zipPath := filepath.Join(dir, fileName)

	o.log.Info("job %s: downloading %s to %s", req.JobID, req.URL, zipPath)

	if err := o.fetcher.Fetch(ctx, req.JobID, req.URL, zipPath); err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	// Extract into <dir>/<zip stem>/.
	stem := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	if stem == "" {
		stem = "extracted"
	}
	extractDir := filepath.Join(dir, stem)

	if ok, err := o.extractor.CanExtract(zipPath); err != nil || !ok {
		if err != nil {
			return fmt.Errorf("archive check failed: %w", err)
		}
		return fmt.Errorf("downloaded file is not a %s archive", o.extractor.Name())
	}

	o.sink.Notify(req.JobID, "Extracting…")
	if _, err := o.extractor.Extract(ctx, zipPath, extractDir); err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}
	o.sink.Notify(req.JobID, "Extracted")

	// Marking happens strictly after a fully successful extraction.
	if err := o.recorder.MarkDownloaded(ctx, req.JobID); err != nil {
		return fmt.Errorf("failed to record completion: %w", err)
	}

	o.sink.NotifyComplete(req.JobID)
	o.log.Info("job %s: complete, extracted to %s", req.JobID, extractDir)

	return nil
}

// resolveDownloadDir picks the destination: explicit override, then the
// persisted setting, then the configured default.
func (o *Orchestrator) resolveDownloadDir(ctx context.Context, override string) (string, error) {
	if strings.TrimSpace(override) != "" {
		return override, nil
	}

	saved, err := o.settings.GetSetting(ctx, downloadDirKey)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(saved) != "" {
		return saved, nil
	}

	return o.defaultDir, nil
}
