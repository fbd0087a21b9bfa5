package fetch

import (
	"bytes"
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LordZeuss/goroms/internal/logger"
)

// captureSink records every notification in arrival order.
type captureSink struct {
	mu        sync.Mutex
	progress  []string
	completes []string
}

func (s *captureSink) Notify(jobID string, progress string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = append(s.progress, progress)
}

func (s *captureSink) NotifyComplete(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completes = append(s.completes, jobID)
}

func (s *captureSink) snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.progress...)
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(filepath.Join(t.TempDir(), "test.log"), logger.LevelDebug, false)
	require.NoError(t, err)
	return log
}

func testPayload(size int) []byte {
	data := make([]byte, size)
	rand.New(rand.NewSource(42)).Read(data)
	return data
}

// requireMonotonic parses every "NN.NN%" notification and asserts the
// sequence never decreases.
func requireMonotonic(t *testing.T, events []string) {
	t.Helper()
	last := -1.0
	for _, e := range events {
		if !strings.HasSuffix(e, "%") {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSuffix(e, "%"), 64)
		require.NoError(t, err, "bad progress string %q", e)
		require.GreaterOrEqual(t, v, last, "progress went backwards")
		last = v
	}
}

func TestProbe(t *testing.T) {
	payload := testPayload(4096)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.ServeContent(w, r, "f.zip", time.Time{}, bytes.NewReader(payload))
	}))
	defer srv.Close()

	f := New(srv.Client(), &captureSink{}, testLogger(t), Options{})

	cap, err := f.Probe(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), cap.TotalSize)
	assert.True(t, cap.SupportsRanges)
}

func TestProbeHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := New(srv.Client(), &captureSink{}, testLogger(t), Options{})

	_, err := f.Probe(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestFetchRangedParallel(t *testing.T) {
	// Range-supporting server: the parallel path downloads 4 ranges into
	// one pre-sized file. ServeContent advertises Accept-Ranges and
	// honors the Range header.
	payload := testPayload(2 * 1024 * 1024)

	var mu sync.Mutex
	rangesSeen := map[string]bool{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rh := r.Header.Get("Range"); rh != "" {
			mu.Lock()
			rangesSeen[rh] = true
			mu.Unlock()
		}
		http.ServeContent(w, r, "f.zip", time.Time{}, bytes.NewReader(payload))
	}))
	defer srv.Close()

	sink := &captureSink{}
	f := New(srv.Client(), sink, testLogger(t), Options{PollInterval: 5 * time.Millisecond})

	dest := filepath.Join(t.TempDir(), "out.zip")
	require.NoError(t, f.Fetch(context.Background(), "job-a", srv.URL, dest))

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.True(t, bytes.Equal(payload, got), "downloaded bytes differ from source")

	mu.Lock()
	assert.Len(t, rangesSeen, 4, "expected one request per range worker")
	mu.Unlock()

	events := sink.snapshot()
	require.NotEmpty(t, events)
	requireMonotonic(t, events)
	assert.Equal(t, "100.00%", events[len(events)-1])
}

func TestFetchUnknownSizeFallsBackToSingleStream(t *testing.T) {
	// No content length anywhere: single-stream path, one indeterminate
	// notification, no percentages, no final 100%.
	payload := testPayload(64 * 1024)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusOK)
			return
		}
		// Chunked transfer keeps ContentLength unknown.
		for off := 0; off < len(payload); off += 8192 {
			end := off + 8192
			if end > len(payload) {
				end = len(payload)
			}
			w.Write(payload[off:end])
			w.(http.Flusher).Flush()
		}
	}))
	defer srv.Close()

	sink := &captureSink{}
	f := New(srv.Client(), sink, testLogger(t), Options{})

	dest := filepath.Join(t.TempDir(), "out.zip")
	require.NoError(t, f.Fetch(context.Background(), "job-b", srv.URL, dest))

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.True(t, bytes.Equal(payload, got))

	events := sink.snapshot()
	require.Equal(t, []string{"Downloading…"}, events)
}

func TestFetchNoRangeSupportUsesSingleStream(t *testing.T) {
	payload := testPayload(32 * 1024)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Known size but no Accept-Ranges.
		w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
		if r.Method == http.MethodHead {
			return
		}
		w.Write(payload)
	}))
	defer srv.Close()

	sink := &captureSink{}
	f := New(srv.Client(), sink, testLogger(t), Options{})

	dest := filepath.Join(t.TempDir(), "out.zip")
	require.NoError(t, f.Fetch(context.Background(), "job-c", srv.URL, dest))

	events := sink.snapshot()
	require.NotEmpty(t, events)
	requireMonotonic(t, events)
	assert.Equal(t, "100.00%", events[len(events)-1])
}

func TestFetchRangedWorkerFailureFailsJob(t *testing.T) {
	// The server errors on every range except the first. The first
	// failing worker's error surfaces after all workers finish; nothing
	// is retried.
	payload := testPayload(1024 * 1024)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rh := r.Header.Get("Range")
		if rh != "" && !strings.HasPrefix(rh, "bytes=0-") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		http.ServeContent(w, r, "f.zip", time.Time{}, bytes.NewReader(payload))
	}))
	defer srv.Close()

	sink := &captureSink{}
	f := New(srv.Client(), sink, testLogger(t), Options{PollInterval: 5 * time.Millisecond})

	dest := filepath.Join(t.TempDir(), "out.zip")
	err := f.Fetch(context.Background(), "job-d", srv.URL, dest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")

	// A failed job never announces 100%.
	for _, e := range sink.snapshot() {
		assert.NotEqual(t, "100.00%", e)
	}
}

func TestSharedFileSerializedWrites(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "shared.bin")

	const n = 64
	const chunk = 1024

	sf, err := OpenSharedFile(dest, n*chunk)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			block := bytes.Repeat([]byte{byte(i)}, chunk)
			assert.NoError(t, sf.WriteAt(block, int64(i*chunk)))
		}(i)
	}
	wg.Wait()
	require.NoError(t, sf.Close())

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.Len(t, got, n*chunk)

	for i := 0; i < n; i++ {
		for j := 0; j < chunk; j++ {
			if got[i*chunk+j] != byte(i) {
				t.Fatalf("byte %d: got %d, want %d", i*chunk+j, got[i*chunk+j], byte(i))
			}
		}
	}
}

func TestSharedFilePreSized(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "presized.bin")

	sf, err := OpenSharedFile(dest, 4096)
	require.NoError(t, err)
	defer sf.Close()

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Equal(t, int64(4096), info.Size(), "file must be pre-sized before workers write")
}

func ExampleBuildRanges() {
	for _, r := range BuildRanges(10, 4) {
		fmt.Printf("%d-%d ", r.Start, r.End)
	}
	// Output: 0-2 3-5 6-8 9-9
}
