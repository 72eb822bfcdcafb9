package docsource

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Alonso-droid/mpedge-app/internal/core/domain"
	"github.com/Alonso-droid/mpedge-app/internal/core/ports"
	"github.com/Alonso-droid/mpedge-app/internal/infrastructure/resilience"
)

// CacheMetrics is the subset of pipeline metrics the cache reports to.
type CacheMetrics interface {
	RecordDocumentCache(hit bool)
}

type Option func(*Cache)

// WithDiskStore adds an on-disk level consulted before the network and
// written after extraction.
func WithDiskStore(store ports.TextCacheStore) Option {
	return func(c *Cache) { c.disk = store }
}

func WithMetrics(metrics CacheMetrics) Option {
	return func(c *Cache) { c.metrics = metrics }
}

func WithHTTPClient(client *http.Client) Option {
	return func(c *Cache) { c.httpClient = client }
}

// Cache resolves chapter URLs to extracted text. Entries are write-once for
// the process lifetime; the remote documents are assumed immutable.
type Cache struct {
	httpClient *http.Client
	extractor  ports.TextExtractor
	executor   *resilience.Executor
	maxChars   int
	disk       ports.TextCacheStore
	metrics    CacheMetrics

	mu    sync.RWMutex
	texts map[string]string

	group singleflight.Group
}

func New(extractor ports.TextExtractor, executor *resilience.Executor, timeout time.Duration, maxChars int, opts ...Option) *Cache {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &Cache{
		httpClient: &http.Client{Timeout: timeout},
		extractor:  extractor,
		executor:   executor,
		maxChars:   maxChars,
		texts:      make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) Text(ctx context.Context, url string) (string, error) {
	c.mu.RLock()
	text, ok := c.texts[url]
	c.mu.RUnlock()
	if ok {
		if c.metrics != nil {
			c.metrics.RecordDocumentCache(true)
		}
		return text, nil
	}
	if c.metrics != nil {
		c.metrics.RecordDocumentCache(false)
	}

	// Concurrent misses for the same chapter collapse into one fetch.
	v, err, _ := c.group.Do(url, func() (any, error) {
		c.mu.RLock()
		text, ok := c.texts[url]
		c.mu.RUnlock()
		if ok {
			return text, nil
		}

		text, err := c.load(ctx, url)
		if err != nil {
			return "", err
		}

		c.mu.Lock()
		c.texts[url] = text
		c.mu.Unlock()
		return text, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Cache) load(ctx context.Context, url string) (string, error) {
	if c.disk != nil {
		if text, ok := c.disk.Load(cacheKey(url)); ok {
			return text, nil
		}
	}

	data, err := c.fetch(ctx, url)
	if err != nil {
		return "", domain.WrapError(domain.ErrFetch, "download chapter pdf", err)
	}

	text, err := c.extractor.Extract(data)
	if err != nil {
		return "", domain.WrapError(domain.ErrParse, "extract chapter text", err)
	}

	if c.maxChars > 0 && len(text) > c.maxChars {
		// Explicit configured cutoff to bound downstream prompt size.
		text = text[:c.maxChars]
		slog.Warn("chapter text truncated", "url", url, "max_chars", c.maxChars)
	}

	if c.disk != nil {
		if err := c.disk.Store(cacheKey(url), text); err != nil {
			slog.Warn("disk text cache write failed", "url", url, "error", err)
		}
	}
	return text, nil
}

func (c *Cache) fetch(ctx context.Context, url string) ([]byte, error) {
	var data []byte

	call := func(callCtx context.Context) error {
		req, err := http.NewRequestWithContext(callCtx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("get %s: %w", url, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			return &fetchStatusError{
				StatusCode: resp.StatusCode,
				Status:     resp.Status,
				Body:       strings.TrimSpace(string(body)),
			}
		}

		data, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}
		return nil
	}

	if c.executor == nil {
		if err := call(ctx); err != nil {
			return nil, err
		}
		return data, nil
	}
	if err := c.executor.Execute(ctx, "docsource.fetch", call, classifyFetchError); err != nil {
		return nil, err
	}
	return data, nil
}

func cacheKey(url string) string {
	return fmt.Sprintf("%x.txt", sha256.Sum256([]byte(url)))
}
