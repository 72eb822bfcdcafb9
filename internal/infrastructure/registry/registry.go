package registry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Alonso-droid/mpedge-app/internal/core/domain"
)

// Entry is one chapter of the corpus: a display label and the USPTO PDF URL
// behind it.
type Entry struct {
	Label string
	URL   string
}

// Registry is the read-only label→URL table the pipeline resolves chapters
// against. Labels() preserves load order; duplicate labels keep their first
// position but the last-loaded URL wins.
type Registry struct {
	labels []string
	urls   map[string]string
}

func New(entries []Entry) (*Registry, error) {
	if len(entries) == 0 {
		return nil, errors.New("registry: no chapter entries")
	}

	r := &Registry{
		labels: make([]string, 0, len(entries)),
		urls:   make(map[string]string, len(entries)),
	}
	for _, e := range entries {
		label := strings.TrimSpace(e.Label)
		url := strings.TrimSpace(e.URL)
		if label == "" || url == "" {
			continue
		}
		if _, seen := r.urls[label]; !seen {
			r.labels = append(r.labels, label)
		}
		r.urls[label] = url
	}
	if len(r.labels) == 0 {
		return nil, errors.New("registry: no usable chapter entries")
	}
	return r, nil
}

func (r *Registry) Resolve(label string) (string, error) {
	url, ok := r.urls[strings.TrimSpace(label)]
	if !ok {
		return "", domain.WrapError(domain.ErrUnknownChapter, "resolve chapter", fmt.Errorf("%q", label))
	}
	return url, nil
}

func (r *Registry) Labels() []string {
	out := make([]string, len(r.labels))
	copy(out, r.labels)
	return out
}
