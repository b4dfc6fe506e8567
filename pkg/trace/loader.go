package trace

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/samber/go-singleflightx"
)

// Loader reads trace files once and shares the parsed traces between
// experiments. Concurrent loads of the same path are deduplicated.
//
// Traces returned by a Loader are shared and must not be modified.
type Loader struct {
	group  singleflightx.Group[string, *Trace]
	traces *lru.Cache[string, *Trace]
	read   func(path string) (*Trace, error)
}

// NewLoader creates a Loader keeping up to size parsed traces in memory.
func NewLoader(size int) (*Loader, error) {
	return newLoader(size, ReadFile)
}

func newLoader(size int, read func(path string) (*Trace, error)) (*Loader, error) {
	traces, err := lru.New[string, *Trace](size)
	if err != nil {
		return nil, err
	}

	return &Loader{
		group:  singleflightx.Group[string, *Trace]{},
		traces: traces,
		read:   read,
	}, nil
}

// Load returns the trace stored at path.
func (l *Loader) Load(path string) (*Trace, error) {
	if t, ok := l.traces.Get(path); ok {
		return t, nil
	}

	results := l.group.DoX([]string{path}, func(missing []string) (map[string]*Trace, error) {
		output := make(map[string]*Trace, len(missing))
		for _, p := range missing {
			t, err := l.read(p)
			if err != nil {
				return nil, err
			}
			l.traces.Add(p, t)
			output[p] = t
		}
		return output, nil
	})

	v, ok := results[path]
	if !ok {
		// Not expected, since go-singleflightx returns all keys
		return nil, fmt.Errorf("trace %s: no result", path)
	}
	if v.Err != nil {
		return nil, v.Err
	}
	if !v.Value.Valid {
		return nil, fmt.Errorf("trace %s: not loaded", path)
	}
	return v.Value.Value, nil
}

// Len returns the number of traces kept in memory.
func (l *Loader) Len() int {
	return l.traces.Len()
}
