package uci

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lk16/chessreview/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	positionA models.Position = "4k3/8/8/8/8/8/P7/4K3 w - - 0 1"
	positionB models.Position = "4k3/8/8/8/8/8/7P/4K3 w - - 0 1"
)

func TestInitialize(t *testing.T) {
	session, engine := startFakeSession(t, standardEngine, WithEngineOption("Threads", 2))
	assert.Equal(t, StateUninitialized, session.State())

	require.NoError(t, session.Initialize(context.Background()))

	assert.Equal(t, StateReady, session.State())
	assert.Equal(t, []string{"uci", "setoption name Threads value 2", "isready"}, engine.Commands())

	err := session.Initialize(context.Background())
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestInitializeTimeout(t *testing.T) {
	mute := func(*fakeEngine, string) {}
	session, _ := startFakeSession(t, mute, WithStartupTimeout(50*time.Millisecond))

	err := session.Initialize(context.Background())

	assert.ErrorIs(t, err, ErrProtocolTimeout)
	assert.Equal(t, StateTerminated, session.State())
}

func TestRequestBeforeInitialize(t *testing.T) {
	session, _ := startFakeSession(t, standardEngine)

	_, err := session.Evaluate(context.Background(), models.StartPosition, 10)
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestEvaluate(t *testing.T) {
	session, engine := readySession(t, standardEngine)

	result, err := session.Evaluate(context.Background(), models.StartPosition, 10)
	require.NoError(t, err)

	assert.Equal(t, "e2e4", result.BestMove)
	assert.Equal(t, "e7e5", result.Ponder)
	assert.False(t, result.TimedOut)
	assert.Equal(t, models.NewScoreEvaluation(10, 25, "e2e4", "e7e5"), result.Evaluation)
	assert.True(t, result.HasMove())

	commands := engine.Commands()
	assert.Equal(t, []string{"position startpos", "go depth 10"}, commands[len(commands)-2:])
	assert.Equal(t, StateReady, session.State())
}

func TestEvaluateRejectsZeroDepth(t *testing.T) {
	session, _ := readySession(t, standardEngine)

	_, err := session.Evaluate(context.Background(), models.StartPosition, 0)
	assert.ErrorIs(t, err, ErrInvalidSearchLimit)
}

func TestNoLegalMoves(t *testing.T) {
	mated := func(e *fakeEngine, command string) {
		if handshake(e, command) {
			return
		}
		if strings.HasPrefix(command, "go") {
			e.respond(0, "info depth 0 score mate 0", "bestmove (none)")
		}
	}
	session, _ := readySession(t, mated)

	result, err := session.Evaluate(context.Background(), "7k/6Q1/6K1/8/8/8/8/8 b - - 0 1", 10)
	require.NoError(t, err)

	assert.False(t, result.HasMove())
	assert.Equal(t, NoMove, result.BestMove)
	assert.Equal(t, -models.MateScore, result.Evaluation.Centipawns())
}

func TestRequestsAreSerialized(t *testing.T) {
	var repliedA atomic.Bool
	var positionBSentEarly atomic.Bool
	var lastPosition string

	engineFunc := func(e *fakeEngine, command string) {
		if handshake(e, command) {
			return
		}

		switch {
		case strings.HasPrefix(command, "position"):
			lastPosition = command
			if strings.Contains(command, string(positionB)) && !repliedA.Load() {
				positionBSentEarly.Store(true)
			}
		case strings.HasPrefix(command, "go"):
			if strings.Contains(lastPosition, string(positionA)) {
				go func() {
					time.Sleep(100 * time.Millisecond)
					repliedA.Store(true)
					e.respond(0, "info depth 8 score cp 11 pv a2a3", "bestmove a2a3")
				}()
				return
			}
			e.respond(0, "info depth 8 score cp 22 pv h2h3", "bestmove h2h3")
		}
	}

	session, engine := readySession(t, engineFunc)

	type outcome struct {
		result SearchResult
		err    error
	}
	first := make(chan outcome, 1)

	go func() {
		result, err := session.Evaluate(context.Background(), positionA, 8)
		first <- outcome{result, err}
	}()
	engine.waitForGo(t)

	second, err := session.Evaluate(context.Background(), positionB, 8)
	require.NoError(t, err)

	a := <-first
	require.NoError(t, a.err)

	assert.Equal(t, "a2a3", a.result.BestMove)
	assert.Equal(t, 11, a.result.Evaluation.Centipawns())
	assert.Equal(t, "h2h3", second.BestMove)
	assert.Equal(t, 22, second.Evaluation.Centipawns())
	assert.False(t, positionBSentEarly.Load())
}

func TestTimeoutReturnsZeroEvaluation(t *testing.T) {
	timeout := 100 * time.Millisecond
	session, engine := readySession(t, silentSearchEngine, WithEvalTimeout(timeout))

	start := time.Now()
	result, err := session.Evaluate(context.Background(), models.StartPosition, 20)
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.True(t, result.TimedOut)
	assert.Equal(t, NoMove, result.BestMove)
	assert.Equal(t, models.ZeroEvaluation(), result.Evaluation)

	assert.GreaterOrEqual(t, elapsed, timeout)
	assert.Less(t, elapsed, timeout+150*time.Millisecond)

	assert.Eventually(t, func() bool {
		return engine.count("stop") == 1
	}, time.Second, 10*time.Millisecond)
}

func TestStaleReplyIsDiscarded(t *testing.T) {
	tests := []struct {
		name  string
		drain time.Duration
	}{
		{"SkipOnArrival", 0},
		{"DrainBeforeNextRequest", time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			searches := 0

			// the first search ignores stop and answers late, the second one answers right away
			engineFunc := func(e *fakeEngine, command string) {
				if handshake(e, command) {
					return
				}
				if !strings.HasPrefix(command, "go") {
					return
				}

				searches++
				if searches == 1 {
					e.respond(300*time.Millisecond, "info depth 30 score cp 99 pv a2a3", "bestmove a2a3")
					return
				}
				e.respond(0, "info depth 12 score cp 22 pv h2h3", "bestmove h2h3")
			}

			session, _ := readySession(t, engineFunc,
				WithEvalTimeout(200*time.Millisecond),
				WithDrainTimeout(tt.drain),
			)

			late, err := session.Evaluate(context.Background(), positionA, 30)
			require.NoError(t, err)
			assert.True(t, late.TimedOut)

			result, err := session.Evaluate(context.Background(), positionB, 12)
			require.NoError(t, err)

			assert.False(t, result.TimedOut)
			assert.Equal(t, "h2h3", result.BestMove)
			assert.Equal(t, models.NewScoreEvaluation(12, 22, "h2h3"), result.Evaluation)
		})
	}
}

func TestProcessLost(t *testing.T) {
	crashing := func(e *fakeEngine, command string) {
		if handshake(e, command) {
			return
		}
		if strings.HasPrefix(command, "go") {
			_ = e.out.Close()
		}
	}
	session, _ := readySession(t, crashing)

	_, err := session.Evaluate(context.Background(), models.StartPosition, 10)
	assert.ErrorIs(t, err, ErrEngineProcessLost)

	assert.Eventually(t, func() bool {
		return session.State() == StateTerminated
	}, time.Second, 10*time.Millisecond)

	_, err = session.Evaluate(context.Background(), models.StartPosition, 10)
	assert.ErrorIs(t, err, ErrEngineProcessLost)
}

func TestRejectWhenBusy(t *testing.T) {
	slow := func(e *fakeEngine, command string) {
		if handshake(e, command) {
			return
		}
		if strings.HasPrefix(command, "go") {
			e.respond(200*time.Millisecond, "info depth 5 score cp 1 pv e2e4", "bestmove e2e4")
		}
	}
	session, engine := readySession(t, slow, WithRejectWhenBusy())

	done := make(chan error, 1)
	go func() {
		_, err := session.Evaluate(context.Background(), models.StartPosition, 5)
		done <- err
	}()
	engine.waitForGo(t)

	_, err := session.Evaluate(context.Background(), positionB, 5)
	assert.ErrorIs(t, err, ErrBusy)

	assert.NoError(t, <-done)
}

func TestRejectWhenBusyAllowsSequentialRequests(t *testing.T) {
	session, _ := readySession(t, standardEngine, WithRejectWhenBusy())

	for i := range 500 {
		_, err := session.Evaluate(context.Background(), models.StartPosition, 10)
		require.NoError(t, err, "request %d", i)
	}
}

func TestTerminate(t *testing.T) {
	session, _ := readySession(t, standardEngine)

	assert.NoError(t, session.Terminate())
	assert.NoError(t, session.Terminate())
	assert.Equal(t, StateTerminated, session.State())

	_, err := session.Evaluate(context.Background(), models.StartPosition, 10)
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestTerminateFailsRunningAndPendingRequests(t *testing.T) {
	session, engine := readySession(t, silentSearchEngine, WithEvalTimeout(5*time.Second))

	errs := make(chan error, 2)
	go func() {
		_, err := session.Evaluate(context.Background(), positionA, 10)
		errs <- err
	}()
	engine.waitForGo(t)

	go func() {
		_, err := session.Evaluate(context.Background(), positionB, 10)
		errs <- err
	}()

	assert.Eventually(t, func() bool {
		session.mutex.Lock()
		defer session.mutex.Unlock()
		return len(session.queue) == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, session.Terminate())

	for range 2 {
		select {
		case err := <-errs:
			assert.ErrorIs(t, err, ErrSessionClosed)
		case <-time.After(time.Second):
			t.Fatal("request did not fail after terminate")
		}
	}
}

func TestContextCanceled(t *testing.T) {
	session, _ := readySession(t, silentSearchEngine)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := session.Evaluate(ctx, models.StartPosition, 10)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSetStrength(t *testing.T) {
	session, engine := readySession(t, standardEngine)

	require.NoError(t, session.SetStrength(context.Background(), 5))

	commands := engine.Commands()
	assert.Equal(t, []string{
		"setoption name Skill Level value 5",
		"setoption name UCI_LimitStrength value true",
		"setoption name UCI_Elo value 1785",
		"isready",
	}, commands[len(commands)-4:])
}

func TestSetPositionAndSearch(t *testing.T) {
	session, engine := readySession(t, standardEngine)

	require.NoError(t, session.NewGame(context.Background()))
	require.NoError(t, session.SetPosition(context.Background(), "", []string{"e2e4", "e7e5"}))

	result, err := session.Search(context.Background(), Depth(6))
	require.NoError(t, err)
	assert.Equal(t, "e2e4", result.BestMove)

	assert.Contains(t, engine.Commands(), "ucinewgame")
	assert.Contains(t, engine.Commands(), "position startpos moves e2e4 e7e5")
	assert.Contains(t, engine.Commands(), "go depth 6")
}

func TestBestMove(t *testing.T) {
	session, engine := readySession(t, standardEngine)

	move, err := session.BestMove(context.Background(), positionA, 100*time.Millisecond)
	require.NoError(t, err)

	assert.Equal(t, "e2e4", move)
	assert.Contains(t, engine.Commands(), "go movetime 100")
}

func TestEvaluateUsesCache(t *testing.T) {
	session, engine := readySession(t, standardEngine, WithCache(models.NewCache()))

	first, err := session.Evaluate(context.Background(), models.StartPosition, 10)
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := session.Evaluate(context.Background(), models.StartPosition, 10)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Evaluation, second.Evaluation)
	assert.Equal(t, "e2e4", second.BestMove)

	// a deeper request is not satisfied by the cache
	_, err = session.Evaluate(context.Background(), models.StartPosition, 15)
	require.NoError(t, err)

	assert.Equal(t, 2, engine.count("go"))
}
