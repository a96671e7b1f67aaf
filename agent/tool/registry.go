package tool

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/transfer-orchestrator/agent/contract"
)

// Args are the named arguments of a tool call.
type Args map[string]any

// Tool is a named unit of work invoked with keyword arguments.
type Tool func(ctx context.Context, args Args) (any, error)

// Middleware decorates a tool at the registry's invocation boundary.
type Middleware func(name string, next Tool) Tool

type Status string

const (
	StatusOK    Status = "OK"
	StatusError Status = "ERROR"
)

// LogEntry records one invocation. Only argument names are kept, never values.
type LogEntry struct {
	Tool      string        `json:"tool"`
	Status    Status        `json:"status"`
	Elapsed   time.Duration `json:"elapsed_ns"`
	InputKeys []string      `json:"input_keys"`
	Error     string        `json:"error,omitempty"`
}

type Registry struct {
	mu         sync.Mutex
	tools      map[string]Tool
	middleware []Middleware
	log        []LogEntry
	now        func() time.Time
}

func NewRegistry(mw ...Middleware) *Registry {
	return &Registry{
		tools:      make(map[string]Tool, 4),
		middleware: mw,
		now:        time.Now,
	}
}

// Register binds name to t. Re-registering a name overwrites it.
func (r *Registry) Register(name string, t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t == nil {
		delete(r.tools, name)
		return
	}
	r.tools[name] = t
}

// Use appends middleware applied to every subsequent Execute.
func (r *Registry) Use(mw ...Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middleware = append(r.middleware, mw...)
}

func (r *Registry) ListTools() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Sorted(maps.Keys(r.tools))
}

// Execute runs the named tool. Errors from the tool are logged and returned
// unchanged.
func (r *Registry) Execute(ctx context.Context, name string, args Args) (any, error) {
	r.mu.Lock()
	t, ok := r.tools[name]
	chain := slices.Clone(r.middleware)
	r.mu.Unlock()

	if !ok {
		t = func(context.Context, Args) (any, error) {
			return nil, fmt.Errorf("%w: %s", contractx.ErrToolNotRegistered, name)
		}
	}

	h := t
	for i := len(chain) - 1; i >= 0; i-- {
		h = chain[i](name, h)
	}
	h = r.record(name, h)

	return h(ctx, args)
}

func (r *Registry) record(name string, next Tool) Tool {
	return func(ctx context.Context, args Args) (any, error) {
		keys := slices.Sorted(maps.Keys(args))
		start := r.now()
		out, err := next(ctx, args)
		elapsed := r.now().Sub(start)

		entry := LogEntry{
			Tool:      name,
			Status:    StatusOK,
			Elapsed:   elapsed,
			InputKeys: keys,
		}
		if err != nil {
			entry.Status = StatusError
			entry.Error = err.Error()
			log.Warn().Str("tool", name).Strs("input_keys", keys).Dur("elapsed", elapsed).Err(err).Msg("tool failed")
		} else {
			log.Debug().Str("tool", name).Strs("input_keys", keys).Dur("elapsed", elapsed).Msg("tool executed")
		}

		r.mu.Lock()
		r.log = append(r.log, entry)
		r.mu.Unlock()

		return out, err
	}
}

// Log returns a copy of the invocation log.
func (r *Registry) Log() []LogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]LogEntry, len(r.log))
	for i, e := range r.log {
		e.InputKeys = slices.Clone(e.InputKeys)
		out[i] = e
	}
	return out
}

// ClearLog drops all entries. Called at the start of each run.
func (r *Registry) ClearLog() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log = nil
}

// ArgAs extracts a typed argument.
func ArgAs[T any](args Args, key string) (T, error) {
	var zero T
	raw, ok := args[key]
	if !ok {
		return zero, fmt.Errorf("%w: missing %q", contractx.ErrInvalidToolArgs, key)
	}
	v, ok := raw.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %q has type %T, want %T", contractx.ErrInvalidToolArgs, key, raw, zero)
	}
	return v, nil
}
