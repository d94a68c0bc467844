// Package output renders verification results in the formats the CLI
// offers (plain, pretty, json, yaml, template).
//
// Formatters are looked up by name from a registry:
//
//	formatter, err := output.Get("plain")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, result); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(buf.String())
package output

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jamesainslie/assetverify/pkg/assetverify/types"
)

// Result is everything a formatter needs to render one run.
type Result struct {
	// Directories holds one result per base directory, in run order.
	Directories []types.DirectoryResult

	// ShowWarnings controls whether warnings are rendered.
	ShowWarnings bool

	// DeleteUnexpected records whether unexpected files were removed.
	DeleteUnexpected bool

	// Duration is how long the run took.
	Duration time.Duration
}

// TotalErrors returns the number of errors across all directories.
func (r *Result) TotalErrors() int {
	errs, _ := types.Totals(r.Directories)
	return errs
}

// TotalWarnings returns the number of warnings across all directories.
func (r *Result) TotalWarnings() int {
	_, warnings := types.Totals(r.Directories)
	return warnings
}

// Failed reports whether any directory has an error.
func (r *Result) Failed() bool {
	return types.AnyErrors(r.Directories)
}

// RemovedFiles returns the number of files removed across all directories.
func (r *Result) RemovedFiles() int {
	n := 0
	for _, d := range r.Directories {
		n += len(d.Report.Removed)
	}
	return n
}

// RemovedBytes returns the total size of removed files.
func (r *Result) RemovedBytes() int64 {
	var total int64
	for _, d := range r.Directories {
		total += d.Report.RemovedBytes()
	}
	return total
}

// Formatter is the interface that all output formatters must implement.
type Formatter interface {
	// Format writes the formatted output to the buffer.
	Format(w *bytes.Buffer, r *Result) error
}

// FormatterFactory is a function that creates a new Formatter instance.
type FormatterFactory func() Formatter

// Registry manages formatter registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates a new formatter registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]FormatterFactory),
	}
}

// Register adds a formatter factory to the registry, replacing any existing
// formatter with the same name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter instance by name.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown formatter: %s", name)
	}
	return factory(), nil
}

// Available returns a sorted list of all registered formatter names.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a new formatter instance from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available returns all formatter names from the default registry.
func Available() []string {
	return DefaultRegistry.Available()
}
