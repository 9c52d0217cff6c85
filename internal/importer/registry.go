// Package importer reads bank exports and commits their rows to the ledger.
package importer

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/cleared-dev/finanza/internal/model"
)

// Parser turns one bank export layout into rows awaiting commit.
type Parser interface {
	Format() string
	// Sniff reports whether a header row belongs to this layout.
	Sniff(header []string) bool
	Parse(r io.Reader) ([]model.ParsedTransaction, error)
}

// Registry maps format names to parsers.
type Registry struct {
	byFormat map[string]Parser
}

func NewRegistry() *Registry {
	return &Registry{byFormat: map[string]Parser{}}
}

// Register adds p under its lower-cased format name. Registering the same
// format twice panics.
func (r *Registry) Register(p Parser) {
	name := strings.ToLower(p.Format())
	if _, dup := r.byFormat[name]; dup {
		panic("importer: format registered twice: " + name)
	}
	r.byFormat[name] = p
}

// Get returns the parser for format, or nil when none is registered.
func (r *Registry) Get(format string) Parser {
	return r.byFormat[strings.ToLower(strings.TrimSpace(format))]
}

// Lookup is Get with an error naming the known formats.
func (r *Registry) Lookup(format string) (Parser, error) {
	if p := r.Get(format); p != nil {
		return p, nil
	}
	return nil, fmt.Errorf("%w: unknown import format %q (known: %s)",
		model.ErrValidation, format, strings.Join(r.Formats(), ", "))
}

// Formats returns the registered format names, sorted.
func (r *Registry) Formats() []string {
	names := make([]string, 0, len(r.byFormat))
	for name := range r.byFormat {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Detect picks the parser whose layout matches header. Formats are tried
// in name order.
func (r *Registry) Detect(header []string) (Parser, bool) {
	for _, name := range r.Formats() {
		if p := r.byFormat[name]; p.Sniff(header) {
			return p, true
		}
	}
	return nil, false
}

// DefaultRegistry knows every built-in layout.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&ChaseParser{})
	r.Register(&GenericParser{})
	return r
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
}
