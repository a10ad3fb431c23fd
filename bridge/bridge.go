package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/dot5enko/rethinking-bridge/frame"
)

const DefaultVariable = "d"

// Bridge owns a foreign environment and is passed explicitly to every caller
// that needs it. All calls into the environment are serialised.
type Bridge struct {
	lock sync.Mutex

	env     Environment
	mem     memory.Allocator
	timeout time.Duration
}

type Option func(*Bridge)

// WithTimeout bounds every call into the foreign environment. Zero disables the bound.
func WithTimeout(timeout time.Duration) Option {
	return func(b *Bridge) {
		b.timeout = timeout
	}
}

func WithAllocator(mem memory.Allocator) Option {
	return func(b *Bridge) {
		b.mem = mem
	}
}

func New(env Environment, opts ...Option) *Bridge {
	b := &Bridge{
		env: env,
		mem: memory.DefaultAllocator,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

func (b *Bridge) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.timeout > 0 {
		return context.WithTimeout(ctx, b.timeout)
	}
	return context.WithCancel(ctx)
}

func (b *Bridge) exec(ctx context.Context, snippet string) error {
	callCtx, cancel := b.callContext(ctx)
	defer cancel()

	before := time.Now()
	err := b.env.Exec(callCtx, snippet)

	slog.Debug("foreign exec", "took_ms", time.Since(before).Milliseconds(), "failed", err != nil)

	return err
}

func (b *Bridge) fetch(ctx context.Context, variable string) (*frame.Frame, error) {
	callCtx, cancel := b.callContext(ctx)
	defer cancel()

	stream, err := b.env.Export(callCtx, variable)
	if err != nil {
		return nil, err
	}

	return DecodeStream(variable, stream, b.mem)
}

// Exec runs snippet in the foreign environment without retrieving anything.
func (b *Bridge) Exec(ctx context.Context, snippet string) error {
	b.lock.Lock()
	defer b.lock.Unlock()

	return b.exec(ctx, snippet)
}

// Fetch converts an existing foreign binding into a host frame.
func (b *Bridge) Fetch(ctx context.Context, variable string) (*frame.Frame, error) {
	if variable == "" {
		variable = DefaultVariable
	}

	b.lock.Lock()
	defer b.lock.Unlock()

	return b.fetch(ctx, variable)
}

// Eval executes snippet, then returns the binding named variable (DefaultVariable
// when empty) as a host frame. The snippet and the lookup run under one lock
// so no other caller can rebind the variable in between.
func (b *Bridge) Eval(ctx context.Context, snippet string, variable string) (*frame.Frame, error) {
	if variable == "" {
		variable = DefaultVariable
	}

	b.lock.Lock()
	defer b.lock.Unlock()

	if err := b.exec(ctx, snippet); err != nil {
		return nil, err
	}

	result, err := b.fetch(ctx, variable)
	if err != nil {
		return nil, err
	}

	slog.Info("bridged foreign table", "variable", variable, "rows", result.NRows(), "columns", result.NCols())

	return result, nil
}

// Put binds variable in the foreign environment to a copy of f.
func (b *Bridge) Put(ctx context.Context, variable string, f *frame.Frame) error {
	if variable == "" {
		return fmt.Errorf("variable name is required")
	}

	stream, err := EncodeStream(f, b.mem)
	if err != nil {
		return fmt.Errorf("unable to encode frame '%s': %w", variable, err)
	}

	b.lock.Lock()
	defer b.lock.Unlock()

	callCtx, cancel := b.callContext(ctx)
	defer cancel()

	return b.env.Import(callCtx, variable, stream)
}

func (b *Bridge) Close() error {
	b.lock.Lock()
	defer b.lock.Unlock()

	return b.env.Close()
}
