package docsource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Alonso-droid/mpedge-app/internal/core/domain"
)

type extractorFake struct {
	text string
	err  error
}

func (f *extractorFake) Extract(data []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.text != "" {
		return f.text, nil
	}
	return string(data), nil
}

func TestTextFetchesOnceAndCaches(t *testing.T) {
	var fetches atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fetches.Add(1)
		_, _ = w.Write([]byte("raw pdf bytes"))
	}))
	defer server.Close()

	cache := New(&extractorFake{text: "chapter text"}, nil, time.Second, 0)

	first, err := cache.Text(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("first Text() error = %v", err)
	}
	second, err := cache.Text(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("second Text() error = %v", err)
	}
	if first != "chapter text" || second != first {
		t.Fatalf("expected identical cached text, got %q / %q", first, second)
	}
	if fetches.Load() != 1 {
		t.Fatalf("expected exactly one network fetch, got %d", fetches.Load())
	}
}

func TestTextFetchErrorOnStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	cache := New(&extractorFake{}, nil, time.Second, 0)

	_, err := cache.Text(context.Background(), server.URL)
	if !domain.IsKind(err, domain.ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}
}

func TestTextParseError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not a pdf"))
	}))
	defer server.Close()

	cache := New(&extractorFake{err: errors.New("bad pdf")}, nil, time.Second, 0)

	_, err := cache.Text(context.Background(), server.URL)
	if !domain.IsKind(err, domain.ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
}

func TestTextTruncatesToConfiguredBudget(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ignored"))
	}))
	defer server.Close()

	cache := New(&extractorFake{text: strings.Repeat("x", 500)}, nil, time.Second, 100)

	text, err := cache.Text(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Text() error = %v", err)
	}
	if len(text) != 100 {
		t.Fatalf("expected text truncated to 100 chars, got %d", len(text))
	}
}

func TestTextCoalescesConcurrentMisses(t *testing.T) {
	var fetches atomic.Int64
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fetches.Add(1)
		<-release
		_, _ = w.Write([]byte("pdf"))
	}))
	defer server.Close()

	cache := New(&extractorFake{text: "chapter text"}, nil, time.Second, 0)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Text(context.Background(), server.URL); err != nil {
				t.Errorf("Text() error = %v", err)
			}
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if fetches.Load() != 1 {
		t.Fatalf("expected concurrent misses coalesced into one fetch, got %d", fetches.Load())
	}
}

type diskFake struct {
	mu    sync.Mutex
	data  map[string]string
	loads int
}

func (f *diskFake) Load(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	text, ok := f.data[key]
	return text, ok
}

func (f *diskFake) Store(key, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.data == nil {
		f.data = map[string]string{}
	}
	f.data[key] = text
	return nil
}

func TestTextPrefersDiskLevelOverNetwork(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("network must not be hit when the disk level has the text")
	}))
	defer server.Close()

	disk := &diskFake{data: map[string]string{cacheKey(server.URL): "from disk"}}
	cache := New(&extractorFake{}, nil, time.Second, 0, WithDiskStore(disk))

	text, err := cache.Text(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Text() error = %v", err)
	}
	if text != "from disk" {
		t.Fatalf("expected disk-cached text, got %q", text)
	}
}
