package uci

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeEngine speaks just enough UCI to drive a Session over in-memory pipes.
// Replies are written by a single worker in the order the commands that caused them came in,
// like a real engine would.
type fakeEngine struct {
	out *io.PipeWriter

	mutex    sync.Mutex
	commands []string

	// goSeen receives a value for every go command
	goSeen chan struct{}

	jobs chan reply

	handle func(e *fakeEngine, command string)
}

type reply struct {
	delay time.Duration
	lines []string
}

func newFakeEngine(handle func(e *fakeEngine, command string)) *fakeEngine {
	return &fakeEngine{
		goSeen: make(chan struct{}, 64),
		jobs:   make(chan reply, 64),
		handle: handle,
	}
}

// respond queues output that is written after delay, once earlier replies are out.
func (e *fakeEngine) respond(delay time.Duration, lines ...string) {
	e.jobs <- reply{delay: delay, lines: lines}
}

func (e *fakeEngine) work() {
	for job := range e.jobs {
		time.Sleep(job.delay)
		if _, err := io.WriteString(e.out, strings.Join(job.lines, "\n")+"\n"); err != nil {
			return
		}
	}
}

func (e *fakeEngine) Commands() []string {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	return append([]string{}, e.commands...)
}

func (e *fakeEngine) count(prefix string) int {
	count := 0
	for _, command := range e.Commands() {
		if strings.HasPrefix(command, prefix) {
			count++
		}
	}
	return count
}

func (e *fakeEngine) waitForGo(t *testing.T) {
	t.Helper()

	select {
	case <-e.goSeen:
	case <-time.After(2 * time.Second):
		t.Fatal("engine never received go")
	}
}

func (e *fakeEngine) serve(in io.Reader) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		command := scanner.Text()

		e.mutex.Lock()
		e.commands = append(e.commands, command)
		e.mutex.Unlock()

		if strings.HasPrefix(command, "go") {
			e.goSeen <- struct{}{}
		}

		e.handle(e, command)
	}
}

// handshake answers uci and isready and nothing else.
func handshake(e *fakeEngine, command string) bool {
	switch command {
	case "uci":
		e.respond(0, "id name Fake 1.0", "id author Nobody", "uciok")
		return true
	case "isready":
		e.respond(0, "readyok")
		return true
	}
	return false
}

// standardEngine answers every search instantly.
func standardEngine(e *fakeEngine, command string) {
	if handshake(e, command) {
		return
	}

	if strings.HasPrefix(command, "go") {
		e.respond(0,
			"info depth 1 score cp 10 pv d2d4",
			"info depth 10 seldepth 14 score cp 25 nodes 1000 pv e2e4 e7e5",
			"bestmove e2e4 ponder e7e5",
		)
	}
}

// silentSearchEngine never finishes a search.
func silentSearchEngine(e *fakeEngine, command string) {
	handshake(e, command)
}

func startFakeSession(t *testing.T, handle func(e *fakeEngine, command string), opts ...Option) (*Session, *fakeEngine) {
	t.Helper()

	commandsIn, commandsOut := io.Pipe()
	outputIn, outputOut := io.Pipe()

	engine := newFakeEngine(handle)
	engine.out = outputOut

	go engine.serve(commandsIn)
	go engine.work()

	session := NewSession(commandsOut, outputIn, opts...)

	t.Cleanup(func() {
		_ = session.Terminate()
		_ = outputOut.Close()
		_ = commandsIn.Close()
	})

	return session, engine
}

func readySession(t *testing.T, handle func(e *fakeEngine, command string), opts ...Option) (*Session, *fakeEngine) {
	t.Helper()

	session, engine := startFakeSession(t, handle, opts...)
	require.NoError(t, session.Initialize(context.Background()))

	return session, engine
}
