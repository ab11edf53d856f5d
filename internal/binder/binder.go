// Package binder keeps a suggestion list in step with a text input: every
// input event clears the list and, for a non-empty query, fetches fresh
// suggestions from a Source.
//
// List mutation happens only in Input and Apply. A UI calls both from its
// event loop; Run does the same for a channel of input events. Fetches
// themselves run anywhere and may complete out of order.
package binder

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/moviesearch/internal/searchclient"
)

const (
	// InputID and ListID name the two UI components the binder connects.
	InputID = "movie-search"
	ListID  = "suggestions-list"
)

// Source returns the suggestions for a query.
type Source interface {
	Suggest(ctx context.Context, query string) ([]string, error)
}

// Result is the outcome of one fetch.
type Result struct {
	Seq    uint64
	Query  string
	Titles []string
	Err    error
}

// Fetch is a request issued by Input but not yet performed.
type Fetch struct {
	ctx    context.Context
	source Source
	query  string
	seq    uint64
}

// Run performs the request. It may be called from any goroutine.
func (f *Fetch) Run() Result {
	titles, err := f.source.Suggest(f.ctx, f.query)
	return Result{Seq: f.seq, Query: f.query, Titles: titles, Err: err}
}

// Binder connects an input to a List through a Source.
type Binder struct {
	list         List
	source       Source
	log          logr.Logger
	discardStale bool

	// seq counts input events; Fetch.Run may read it off the event loop.
	seq atomic.Uint64
}

// Option configures a Binder.
type Option func(*Binder)

// WithLogger sets where fetch errors are reported.
func WithLogger(log logr.Logger) Option {
	return func(b *Binder) {
		b.log = log
	}
}

// WithStaleGuard drops results belonging to an input event older than
// the latest one. Without it results are applied in arrival order, so a
// slow response for an earlier query can replace newer suggestions.
func WithStaleGuard(enabled bool) Option {
	return func(b *Binder) {
		b.discardStale = enabled
	}
}

// New attaches a binder to list and source.
func New(list List, source Source, opts ...Option) *Binder {
	b := &Binder{
		list:   list,
		source: source,
		log:    logr.Discard(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// List returns the bound suggestion list.
func (b *Binder) List() List {
	return b.list
}

// Input handles one input event: the list is cleared, and for a
// non-empty query a Fetch is returned for the caller to run. An empty
// query issues nothing and returns nil.
func (b *Binder) Input(ctx context.Context, query string) *Fetch {
	seq := b.seq.Add(1)
	b.list.Clear()
	if query == "" {
		return nil
	}
	b.log.V(1).Info("fetching suggestions", "query", query, "seq", seq)
	return &Fetch{ctx: ctx, source: b.source, query: query, seq: seq}
}

// Apply lands a completed fetch. A successful result replaces the list
// with its titles in order; a failed one is logged and leaves the list
// untouched. It reports whether the list changed.
func (b *Binder) Apply(r Result) bool {
	if b.discardStale && r.Seq != b.seq.Load() {
		b.log.V(1).Info("discarding stale suggestions", "query", r.Query, "seq", r.Seq, "latest", b.seq.Load())
		return false
	}
	if r.Err != nil {
		b.log.Error(r.Err, "error fetching suggestions",
			"query", r.Query,
			"kind", string(searchclient.KindOf(r.Err)),
			"component", ListID)
		return false
	}
	b.list.Clear()
	for _, title := range r.Titles {
		b.list.Append(title)
	}
	return true
}

// Run drives the binder from inputs until the channel is closed and every
// issued fetch has been applied, or until ctx is done. Fetches run on
// their own goroutines; Input and Apply run on the caller's. onChange,
// when set, is called after each Apply with the result and whether the
// list changed.
func (b *Binder) Run(ctx context.Context, inputs <-chan string, onChange func(Result, bool)) error {
	results := make(chan Result)
	var wg sync.WaitGroup
	defer wg.Wait()

	pending := 0
	for inputs != nil || pending > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case query, ok := <-inputs:
			if !ok {
				inputs = nil
				continue
			}
			fetch := b.Input(ctx, query)
			if fetch == nil {
				continue
			}
			pending++
			wg.Add(1)
			go func() {
				defer wg.Done()
				r := fetch.Run()
				select {
				case results <- r:
				case <-ctx.Done():
				}
			}()
		case r := <-results:
			pending--
			changed := b.Apply(r)
			if onChange != nil {
				onChange(r, changed)
			}
		}
	}
	return nil
}
