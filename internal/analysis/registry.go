package analysis

import (
	"fmt"
	"sort"
	"sync"
)

// Built-in analyzer names.
const (
	AnalyzerRussian   = "russian"
	AnalyzerLowercase = "lowercase"
	AnalyzerSnowball  = "snowball"
)

// Options adjust the built-in analyzers.
type Options struct {
	// StopWords drops Russian and English stop words after folding.
	StopWords bool
	// Normalize applies NFC normalization before tokenizing.
	Normalize bool
	// OnStem receives the rules fired by the russian analyzer's stemmer.
	OnStem func(Steps)
}

// Registry manages analyzer instances by name.
type Registry struct {
	analyzers map[string]Analyzer
	mu        sync.RWMutex
}

// NewRegistry creates a Registry with the built-in analyzers registered.
func NewRegistry(opts Options) *Registry {
	r := &Registry{
		analyzers: make(map[string]Analyzer),
	}
	r.analyzers[AnalyzerRussian] = builtin(AnalyzerRussian, opts, StemFilter{Observe: opts.OnStem})
	r.analyzers[AnalyzerLowercase] = builtin(AnalyzerLowercase, opts)
	r.analyzers[AnalyzerSnowball] = builtin(AnalyzerSnowball, opts, SnowballFilter{})
	return r
}

func builtin(name string, opts Options, tail ...Filter) *Chain {
	filters := []Filter{FoldFilter{}}
	if opts.StopWords {
		filters = append(filters, StopFilter{})
	}
	c := NewChain(name, append(filters, tail...)...)
	if opts.Normalize {
		c = c.WithNormalization()
	}
	return c
}

// IsBuiltin reports whether name is one of the built-in analyzers.
func IsBuiltin(name string) bool {
	switch name {
	case AnalyzerRussian, AnalyzerLowercase, AnalyzerSnowball:
		return true
	}
	return false
}

// Get returns the analyzer registered under the given name.
func (r *Registry) Get(name string) (Analyzer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.analyzers[name]
	if !ok {
		return nil, fmt.Errorf("unknown analyzer: %q", name)
	}
	return a, nil
}

// Register adds a custom analyzer to the registry.
func (r *Registry) Register(name string, a Analyzer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.analyzers[name]; exists {
		return fmt.Errorf("analyzer already registered: %q", name)
	}
	r.analyzers[name] = a
	return nil
}

// Names returns the registered analyzer names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.analyzers))
	for name := range r.analyzers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
