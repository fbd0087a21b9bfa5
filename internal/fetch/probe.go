package fetch

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Probe issues a metadata-only HEAD request against url and reports the
// total content length (0 when absent or unparseable) and whether the
// server advertises byte-range retrieval. Errors are not retried here;
// the caller decides whether to retry the whole job.
func (f *Fetcher) Probe(ctx context.Context, url string) (Capability, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return Capability{}, fmt.Errorf("probe request failed: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return Capability{}, fmt.Errorf("probe failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Capability{}, fmt.Errorf("probe HTTP error: %s", resp.Status)
	}

	total := resp.ContentLength
	if total < 0 {
		total = 0
	}

	acceptRanges := strings.ToLower(resp.Header.Get("Accept-Ranges"))

	return Capability{
		TotalSize:      total,
		SupportsRanges: strings.Contains(acceptRanges, "bytes"),
	}, nil
}
