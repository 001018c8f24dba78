package uci

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/lk16/chessreview/internal/config"
	"github.com/lk16/chessreview/internal/models"
)

const defaultDrainTimeout = 500 * time.Millisecond

var (
	errCanceled = errors.New("request was abandoned")
	errDeadline = errors.New("request deadline passed")
)

type Option func(*Session)

// WithEvalTimeout bounds every search. Searches limited by move time get this on top of the move time.
func WithEvalTimeout(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.evalTimeout = d
		}
	}
}

// WithStartupTimeout bounds the uci/isready handshake.
func WithStartupTimeout(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.startupTimeout = d
		}
	}
}

// WithDrainTimeout sets how long to wait for replies of abandoned searches before sending
// the next request. Zero disables waiting; stale replies are then skipped as they arrive.
func WithDrainTimeout(d time.Duration) Option {
	return func(s *Session) {
		s.drainTimeout = d
	}
}

// WithRejectWhenBusy makes requests fail with ErrBusy instead of queueing behind a running one.
func WithRejectWhenBusy() Option {
	return func(s *Session) {
		s.rejectWhenBusy = true
	}
}

// WithCache makes Evaluate answer from and store into cache.
func WithCache(cache *models.Cache) Option {
	return func(s *Session) {
		s.cache = cache
	}
}

// WithEngineOption sends a setoption command during initialization.
func WithEngineOption(name string, value any) Option {
	return func(s *Session) {
		s.engineOptions = append(s.engineOptions, setOptionCommand(name, value))
	}
}

func withCloser(closer func() error) Option {
	return func(s *Session) {
		s.closer = closer
	}
}

type request struct {
	// commands are sent before anything else
	commands []string

	// search is set if the request ends with a search bounded by limit
	search bool
	limit  Limit

	// sync is set if the request waits for readyok after its commands
	sync bool

	resp       chan Result
	cancel     chan struct{}
	cancelOnce sync.Once
}

func (r *request) abandon() {
	r.cancelOnce.Do(func() {
		close(r.cancel)
	})
}

func (r *request) abandoned() bool {
	select {
	case <-r.cancel:
		return true
	default:
		return false
	}
}

// Session drives a single UCI engine. It is safe for concurrent use: requests are
// queued and sent to the engine one at a time, in the order they were made.
type Session struct {
	stdin io.WriteCloser

	// lines receives engine output, lost is closed when the output ends
	lines chan string
	lost  chan struct{}

	// writeMutex serializes writes to stdin
	writeMutex sync.Mutex

	// mutex protects state, err and queue
	mutex sync.Mutex
	state State
	err   error
	queue []*request
	wake  chan struct{}

	closed    chan struct{}
	closeOnce sync.Once
	closer    func() error

	evalTimeout    time.Duration
	startupTimeout time.Duration
	drainTimeout   time.Duration
	rejectWhenBusy bool
	cache          *models.Cache
	engineOptions  []string

	// stale counts abandoned searches whose best move has not been read yet.
	// Only the dispatcher touches it once the session is ready.
	stale int
}

// NewSession wraps the pipes of an engine process. Call Initialize before anything else.
func NewSession(stdin io.WriteCloser, stdout io.Reader, opts ...Option) *Session {
	s := &Session{
		stdin:          stdin,
		lines:          make(chan string, 1024),
		lost:           make(chan struct{}),
		wake:           make(chan struct{}, 1),
		closed:         make(chan struct{}),
		evalTimeout:    config.DefaultEvalTimeout,
		startupTimeout: config.DefaultStartupTimeout,
		drainTimeout:   defaultDrainTimeout,
	}

	for _, opt := range opts {
		opt(s)
	}

	go s.readLines(stdout)

	return s
}

// State returns the current lifecycle stage.
func (s *Session) State() State {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.state
}

func (s *Session) readLines(stdout io.Reader) {
	defer close(s.lost)

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := scanner.Text()
		slog.Debug("Engine stdout", "line", line)

		select {
		case s.lines <- line:
		case <-s.closed:
			return
		}
	}

	if err := scanner.Err(); err != nil {
		slog.Warn("Failed to read engine output", "error", err)
	}
}

// nextLine returns the next line of engine output. Nil channels never fire.
func (s *Session) nextLine(deadline <-chan time.Time, cancel <-chan struct{}) (string, error) {
	select {
	case line := <-s.lines:
		return line, nil
	case <-s.lost:
		// output ended, but lines read before that still count
		select {
		case line := <-s.lines:
			return line, nil
		default:
			return "", ErrEngineProcessLost
		}
	case <-s.closed:
		return "", ErrSessionClosed
	case <-deadline:
		return "", errDeadline
	case <-cancel:
		return "", errCanceled
	}
}

func (s *Session) send(command string) error {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()

	slog.Debug("Engine stdin", "command", command)

	if _, err := io.WriteString(s.stdin, command+"\n"); err != nil {
		select {
		case <-s.closed:
			return ErrSessionClosed
		default:
		}
		return fmt.Errorf("%w: failed to write command: %w", ErrEngineProcessLost, err)
	}

	return nil
}

// Initialize performs the uci and isready handshake and sends the configured engine options.
// On failure the session is terminated.
func (s *Session) Initialize(ctx context.Context) error {
	s.mutex.Lock()
	if s.state != StateUninitialized {
		state := s.state
		s.mutex.Unlock()
		return fmt.Errorf("%w: session is %s", ErrNotReady, state)
	}
	s.state = StateInitializing
	s.mutex.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.startupTimeout)
	defer cancel()

	if err := s.handshake(ctx); err != nil {
		_ = s.shutdown(err)
		return fmt.Errorf("failed to initialize engine: %w", err)
	}

	s.mutex.Lock()
	if s.state == StateTerminated {
		err := s.err
		s.mutex.Unlock()
		return err
	}
	s.state = StateReady
	s.mutex.Unlock()

	go s.dispatch()

	return nil
}

func (s *Session) handshake(ctx context.Context) error {
	if err := s.send("uci"); err != nil {
		return err
	}

	if err := s.await(ctx, msgUCIOK); err != nil {
		return err
	}

	for _, command := range s.engineOptions {
		if err := s.send(command); err != nil {
			return err
		}
	}

	if err := s.send("isready"); err != nil {
		return err
	}

	return s.await(ctx, msgReadyOK)
}

// await reads output until a line of kind want arrives.
func (s *Session) await(ctx context.Context, want messageKind) error {
	for {
		line, err := s.nextLine(nil, ctx.Done())
		if errors.Is(err, errCanceled) {
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return ErrProtocolTimeout
			}
			return ctx.Err()
		}
		if err != nil {
			return err
		}

		msg, err := parseLine(line)
		if err != nil {
			continue
		}

		if msg.kind == want {
			return nil
		}
	}
}

// Terminate stops the engine. Pending and future requests fail with ErrSessionClosed.
// Calling Terminate more than once is a no-op.
func (s *Session) Terminate() error {
	if err := s.shutdown(ErrSessionClosed); err != nil {
		return fmt.Errorf("failed to terminate engine: %w", err)
	}
	return nil
}

func (s *Session) shutdown(cause error) error {
	var err error

	s.closeOnce.Do(func() {
		s.mutex.Lock()
		s.state = StateTerminated
		s.err = cause
		pending := s.queue
		s.queue = nil
		s.mutex.Unlock()

		queueDepth.Sub(float64(len(pending)))
		close(s.closed)

		for _, req := range pending {
			req.resp <- Result{Err: cause}
		}

		if errors.Is(cause, ErrEngineProcessLost) {
			slog.Error("Engine process lost")
		}

		err = s.stdin.Close()
		if s.closer != nil {
			err = errors.Join(err, s.closer())
		}
	})

	return err
}

func (s *Session) enqueue(req *request) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	switch s.state {
	case StateTerminated:
		return s.err
	case StateUninitialized, StateInitializing:
		return fmt.Errorf("%w: session is %s", ErrNotReady, s.state)
	}

	if s.rejectWhenBusy && (s.state == StateBusy || len(s.queue) > 0) {
		return ErrBusy
	}

	s.queue = append(s.queue, req)
	queueDepth.Inc()

	select {
	case s.wake <- struct{}{}:
	default:
	}

	return nil
}

// next blocks until a request is queued. It returns false once the session is done.
func (s *Session) next() (*request, bool) {
	for {
		s.mutex.Lock()
		if s.state == StateTerminated {
			s.mutex.Unlock()
			return nil, false
		}

		if len(s.queue) > 0 {
			req := s.queue[0]
			s.queue = s.queue[1:]
			queueDepth.Dec()

			if req.abandoned() {
				s.mutex.Unlock()
				continue
			}

			s.state = StateBusy
			s.mutex.Unlock()
			return req, true
		}
		s.mutex.Unlock()

		select {
		case <-s.wake:
		case <-s.closed:
			return nil, false
		case <-s.lost:
			_ = s.shutdown(ErrEngineProcessLost)
			return nil, false
		}
	}
}

// dispatch runs requests one by one until the session terminates.
func (s *Session) dispatch() {
	for {
		req, ok := s.next()
		if !ok {
			return
		}

		result := s.handle(req)

		if errors.Is(result.Err, ErrEngineProcessLost) {
			req.resp <- result
			_ = s.shutdown(ErrEngineProcessLost)
			return
		}

		// Ready before the caller hears back, so its next request is not seen as overlapping
		s.mutex.Lock()
		if s.state == StateBusy {
			s.state = StateReady
		}
		s.mutex.Unlock()

		req.resp <- result
	}
}

func (s *Session) handle(req *request) Result {
	if s.stale > 0 {
		s.drain()
	}

	for _, command := range req.commands {
		if err := s.send(command); err != nil {
			return Result{Err: err}
		}
	}

	switch {
	case req.search:
		return s.search(req)
	case req.sync:
		return s.sync(req)
	}

	return Result{}
}

// drain gives abandoned searches a moment to deliver their best move.
func (s *Session) drain() {
	if s.drainTimeout <= 0 {
		return
	}

	timer := time.NewTimer(s.drainTimeout)
	defer timer.Stop()

	for s.stale > 0 {
		line, err := s.nextLine(timer.C, nil)
		if err != nil {
			return
		}

		if msg, err := parseLine(line); err == nil && msg.kind == msgBestMove {
			s.discardStale(msg)
		}
	}
}

func (s *Session) discardStale(msg *message) {
	s.stale--
	staleReplies.Inc()
	slog.Debug("Discarding best move of abandoned search", "move", msg.bestMove, "remaining", s.stale)
}

func (s *Session) search(req *request) Result {
	if err := s.send(req.limit.command()); err != nil {
		return Result{Err: err}
	}

	start := time.Now()
	var eval models.Evaluation

	for {
		line, err := s.nextLine(nil, req.cancel)
		if errors.Is(err, errCanceled) {
			// the caller gave up: stop the engine and skip its best move once it shows up
			if err := s.send("stop"); err != nil {
				return Result{Err: err}
			}
			s.stale++
			return Result{Result: timedOutResult()}
		}
		if err != nil {
			return Result{Err: err}
		}

		msg, err := parseLine(line)
		if err != nil {
			if !isExpectedError(err) {
				slog.Warn("Failed to parse engine output", "line", line, "error", err)
			}
			continue
		}

		switch msg.kind {
		case msgInfo:
			// info lines before a stale best move belong to the abandoned search
			if s.stale == 0 {
				eval = msg.evaluation()
			}
		case msgBestMove:
			if s.stale > 0 {
				s.discardStale(msg)
				continue
			}

			searchDuration.Observe(time.Since(start).Seconds())
			return Result{Result: SearchResult{
				BestMove:   msg.bestMove,
				Ponder:     msg.ponder,
				Evaluation: eval,
			}}
		}
	}
}

// sync sends isready and waits for readyok.
func (s *Session) sync(req *request) Result {
	if err := s.send("isready"); err != nil {
		return Result{Err: err}
	}

	for {
		line, err := s.nextLine(nil, req.cancel)
		if errors.Is(err, errCanceled) {
			return Result{Err: ErrProtocolTimeout}
		}
		if err != nil {
			return Result{Err: err}
		}

		msg, err := parseLine(line)
		if err != nil {
			continue
		}

		switch {
		case msg.kind == msgReadyOK:
			return Result{}
		case msg.kind == msgBestMove && s.stale > 0:
			s.discardStale(msg)
		}
	}
}

// submit queues req and waits for its result, at most timeout long.
func (s *Session) submit(ctx context.Context, req *request, timeout time.Duration) (SearchResult, error) {
	req.resp = make(chan Result, 1)
	req.cancel = make(chan struct{})

	// the deadline covers time spent waiting in the queue
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	if err := s.enqueue(req); err != nil {
		return SearchResult{}, err
	}

	select {
	case result := <-req.resp:
		return result.Result, result.Err
	case <-timer.C:
		req.abandon()
		return SearchResult{}, errDeadline
	case <-ctx.Done():
		req.abandon()
		return SearchResult{}, ctx.Err()
	}
}

func (s *Session) runSearch(ctx context.Context, commands []string, limit Limit) (SearchResult, error) {
	if err := limit.validate(); err != nil {
		return SearchResult{}, err
	}

	timeout := s.evalTimeout + limit.MoveTime

	result, err := s.submit(ctx, &request{commands: commands, search: true, limit: limit}, timeout)
	switch {
	case errors.Is(err, errDeadline):
		searchesTotal.WithLabelValues("timeout").Inc()
		slog.Warn("Engine search timed out", "command", limit.command(), "timeout", timeout)
		return timedOutResult(), nil
	case err != nil:
		searchesTotal.WithLabelValues("error").Inc()
		return SearchResult{}, err
	}

	searchesTotal.WithLabelValues("ok").Inc()
	return result, nil
}

func (s *Session) configure(ctx context.Context, commands ...string) error {
	_, err := s.submit(ctx, &request{commands: commands, sync: true}, s.evalTimeout)
	if errors.Is(err, errDeadline) {
		return ErrProtocolTimeout
	}
	return err
}

// SetStrength limits the engine to a skill level between 0 and 20. Out of range levels are clamped.
func (s *Session) SetStrength(ctx context.Context, level int) error {
	return s.configure(ctx, strengthCommands(level)...)
}

// SetOption sets an arbitrary engine option.
func (s *Session) SetOption(ctx context.Context, name string, value any) error {
	return s.configure(ctx, setOptionCommand(name, value))
}

// NewGame tells the engine that following positions belong to a different game.
func (s *Session) NewGame(ctx context.Context) error {
	return s.configure(ctx, "ucinewgame")
}

// SetPosition declares the position that Search works on.
func (s *Session) SetPosition(ctx context.Context, pos models.Position, moves []string) error {
	return s.configure(ctx, positionCommand(pos, moves))
}

// Search searches the most recently declared position. When the engine does not answer
// within the evaluation timeout, a zero evaluation with TimedOut set is returned without error.
func (s *Session) Search(ctx context.Context, limit Limit) (SearchResult, error) {
	return s.runSearch(ctx, nil, limit)
}

// Evaluate declares pos and searches it to depth. Results are cached when a cache is configured.
func (s *Session) Evaluate(ctx context.Context, pos models.Position, depth int) (SearchResult, error) {
	if s.cache != nil {
		if eval, ok := s.cache.Lookup(pos, depth); ok {
			searchesTotal.WithLabelValues("cached").Inc()
			bestMove := eval.BestMove()
			if bestMove == "" {
				bestMove = NoMove
			}
			return SearchResult{BestMove: bestMove, Evaluation: eval, Cached: true}, nil
		}
	}

	result, err := s.runSearch(ctx, []string{positionCommand(pos, nil)}, Depth(depth))
	if err != nil {
		return SearchResult{}, err
	}

	if s.cache != nil && !result.TimedOut && result.Evaluation.HasResult() {
		s.cache.Upsert(pos, result.Evaluation)
	}

	return result, nil
}

// BestMove searches pos for moveTime and returns the engine's choice in UCI notation,
// or NoMove if there is none or the engine did not answer in time.
func (s *Session) BestMove(ctx context.Context, pos models.Position, moveTime time.Duration) (string, error) {
	result, err := s.runSearch(ctx, []string{positionCommand(pos, nil)}, MoveTime(moveTime))
	if err != nil {
		return "", err
	}
	return result.BestMove, nil
}
