package uci

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"github.com/lk16/chessreview/internal/config"
)

// killGrace is how long an engine gets to exit after its stdin is closed.
const killGrace = 2 * time.Second

type process struct {
	cmd *exec.Cmd
}

// Start launches the engine binary from cfg and initializes a session on it.
// Options passed here override the ones derived from cfg.
func Start(ctx context.Context, cfg *config.EngineConfig, opts ...Option) (*Session, error) {
	cmd := exec.Command(cfg.EnginePath)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to get stdin pipe: %w", err)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to get stdout pipe: %w", err)
	}

	if err = cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start engine process: %w", err)
	}

	slog.Debug("Started engine", "path", cfg.EnginePath, "pid", cmd.Process.Pid)

	p := &process{cmd: cmd}

	defaults := []Option{
		WithEvalTimeout(cfg.EvalTimeout),
		WithStartupTimeout(cfg.StartupTimeout),
		withCloser(p.stop),
	}
	if cfg.Threads > 0 {
		defaults = append(defaults, WithEngineOption("Threads", cfg.Threads))
	}
	if cfg.HashMB > 0 {
		defaults = append(defaults, WithEngineOption("Hash", cfg.HashMB))
	}

	session := NewSession(stdin, stdout, append(defaults, opts...)...)

	if err := session.Initialize(ctx); err != nil {
		return nil, err
	}

	return session, nil
}

// stop waits for the process to exit and kills it if it takes too long.
func (p *process) stop() error {
	done := make(chan error, 1)
	go func() {
		done <- p.cmd.Wait()
	}()

	select {
	case <-done:
		return nil
	case <-time.After(killGrace):
	}

	if err := p.cmd.Process.Kill(); err != nil {
		return fmt.Errorf("failed to kill engine process: %w", err)
	}
	<-done

	return nil
}
