package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/lk16/chessreview/internal/analysis"
	"github.com/lk16/chessreview/internal/config"
	"github.com/lk16/chessreview/internal/models"
	"github.com/lk16/chessreview/internal/uci"
)

var ErrPoolClosed = errors.New("engine pool is closed")

// EngineFactory starts a ready to use engine.
type EngineFactory func(ctx context.Context) (analysis.Engine, error)

// UCIEngineFactory starts engine processes as configured by cfg, sharing cache.
func UCIEngineFactory(cfg *config.EngineConfig, cache *models.Cache) EngineFactory {
	return func(ctx context.Context) (analysis.Engine, error) {
		session, err := uci.Start(ctx, cfg, uci.WithCache(cache))
		if err != nil {
			return nil, err
		}
		return session, nil
	}
}

// EnginePool hands out engines to one user at a time and keeps idle ones running.
// At most size engines exist at any moment.
type EnginePool struct {
	factory EngineFactory

	// slots holds a value for every engine that is handed out
	slots chan struct{}

	mutex  sync.Mutex
	idle   []analysis.Engine
	closed bool
}

func NewEnginePool(factory EngineFactory, size int) *EnginePool {
	if size <= 0 {
		size = config.DefaultEngineSessions
	}

	return &EnginePool{
		factory: factory,
		slots:   make(chan struct{}, size),
	}
}

// Acquire waits for a free slot and returns an idle engine or starts a new one.
// Every engine obtained must be given back with Release.
func (p *EnginePool) Acquire(ctx context.Context) (analysis.Engine, error) {
	select {
	case p.slots <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	p.mutex.Lock()
	if p.closed {
		p.mutex.Unlock()
		<-p.slots
		return nil, ErrPoolClosed
	}

	if n := len(p.idle); n > 0 {
		engine := p.idle[n-1]
		p.idle = p.idle[:n-1]
		p.mutex.Unlock()
		return engine, nil
	}
	p.mutex.Unlock()

	engine, err := p.factory(ctx)
	if err != nil {
		<-p.slots
		return nil, fmt.Errorf("failed to start engine: %w", err)
	}

	return engine, nil
}

// Release hands engine back. cause is the last error the user got from it:
// engines that were lost or closed are terminated instead of reused.
func (p *EnginePool) Release(engine analysis.Engine, cause error) {
	defer func() { <-p.slots }()

	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.closed || errors.Is(cause, uci.ErrEngineProcessLost) || errors.Is(cause, uci.ErrSessionClosed) {
		terminate(engine)
		return
	}

	p.idle = append(p.idle, engine)
}

// Close terminates idle engines. Engines in use are terminated when released.
func (p *EnginePool) Close() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.closed = true
	for _, engine := range p.idle {
		terminate(engine)
	}
	p.idle = nil
}

// Idle returns the number of running engines that are not in use.
func (p *EnginePool) Idle() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	return len(p.idle)
}

func terminate(engine analysis.Engine) {
	if err := engine.Terminate(); err != nil {
		slog.Warn("Failed to terminate engine", "error", err)
	}
}
