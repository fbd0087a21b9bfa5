package catalog

import (
	"fmt"
	"net/http"
	"time"
)

// CheckNetwork reports whether the catalog host answers at all. HEAD
// first; some mirrors reject it, so a GET is the fallback.
func CheckNetwork(baseURL string) (bool, error) {
	client := &http.Client{Timeout: 5 * time.Second}

	if resp, err := client.Head(baseURL); err == nil {
		resp.Body.Close()
		return resp.StatusCode >= 200 && resp.StatusCode <= 299, nil
	}

	resp, err := client.Get(baseURL)
	if err != nil {
		return false, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode <= 299, nil
}
