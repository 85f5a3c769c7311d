package session

import (
	"context"
	"sync"
	"time"

	"mystique/internal/logging"
	"mystique/internal/ports"
)

// Defaults mirror the limits the service has always run with.
const (
	DefaultMaxHistory    = 10
	DefaultMaxInactive   = 30 * time.Minute
	DefaultSweepInterval = 5 * time.Minute
)

// Entry is a single conversation message. Immutable once appended.
type Entry struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// State holds the conversation history for one session. Messages[0] is the
// system prompt whenever the state was built through GetOrCreate.
type State struct {
	SessionID    string    `json:"session_id"`
	Messages     []Entry   `json:"messages"`
	LastActiveAt time.Time `json:"last_active_at"`
	ActiveModeID string    `json:"active_mode_id"`
}

// Options configures a Store.
type Options struct {
	MaxHistory    int           // retained non-system entries, default 10
	MaxInactive   time.Duration // idle TTL before eviction, default 30m
	SweepInterval time.Duration // background sweep period, default 5m
	Logger        logging.Logger
	Clock         func() time.Time  // test hook, defaults to time.Now
	OnEvict       func(evicted int) // called after each sweep that removed sessions
}

// Store owns the session-id -> conversation state map. It bounds history
// length per session and evicts idle sessions on a background sweep.
type Store struct {
	mu     sync.Mutex
	states map[string]*State
	turns  map[string]*sync.Mutex

	maxHistory    int
	maxInactive   time.Duration
	sweepInterval time.Duration
	logger        logging.Logger
	now           func() time.Time
	onEvict       func(evicted int)

	sweepCancel context.CancelFunc
	sweepDone   chan struct{}
}

// NewStore constructs a session store. Start must be called to launch the
// background sweeper; the store works without it for tests.
func NewStore(opts Options) *Store {
	if opts.MaxHistory <= 0 {
		opts.MaxHistory = DefaultMaxHistory
	}
	if opts.MaxInactive <= 0 {
		opts.MaxInactive = DefaultMaxInactive
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = DefaultSweepInterval
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Store{
		states:        make(map[string]*State),
		turns:         make(map[string]*sync.Mutex),
		maxHistory:    opts.MaxHistory,
		maxInactive:   opts.MaxInactive,
		sweepInterval: opts.SweepInterval,
		logger:        logging.OrNop(opts.Logger),
		now:           opts.Clock,
		onEvict:       opts.OnEvict,
	}
}

// GetOrCreate returns the conversation state for sessionID. A fresh state is
// created when none exists or when the stored mode differs from modeID; a
// mode change deliberately discards prior history. The returned state is a
// snapshot copy; mutations go through Append.
func (s *Store) GetOrCreate(sessionID, modeID string, buildSystemPrompt func() string) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	state, ok := s.states[sessionID]
	if !ok || state.ActiveModeID != modeID {
		state = &State{
			SessionID: sessionID,
			Messages: []Entry{{
				Role:      ports.RoleSystem,
				Content:   buildSystemPrompt(),
				CreatedAt: now,
			}},
			LastActiveAt: now,
			ActiveModeID: modeID,
		}
		s.states[sessionID] = state
		s.logger.Debug("session %s initialized for mode %s", sessionID, modeID)
	} else {
		state.LastActiveAt = now
	}

	return snapshot(state)
}

// Append adds an entry to the session's history and applies the truncation
// policy: the leading system entry is never evicted, only the oldest
// user/assistant entries beyond MaxHistory are dropped. Appending to a
// missing session is a programming error; it reports false and is otherwise
// a no-op.
func (s *Store) Append(sessionID, role, content string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.states[sessionID]
	if !ok {
		s.logger.Error("append to missing session %s", sessionID)
		return false
	}

	now := s.now()
	state.Messages = append(state.Messages, Entry{
		Role:      role,
		Content:   content,
		CreatedAt: now,
	})
	state.LastActiveAt = now

	// Keep history size manageable: the +1 accounts for the system entry.
	if len(state.Messages) > s.maxHistory+1 {
		kept := make([]Entry, 0, s.maxHistory+1)
		kept = append(kept, state.Messages[0])
		kept = append(kept, state.Messages[len(state.Messages)-s.maxHistory:]...)
		state.Messages = kept
	}

	return true
}

// Messages returns a copy of the session's current history, in order.
func (s *Store) Messages(sessionID string) ([]ports.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.states[sessionID]
	if !ok {
		return nil, false
	}
	msgs := make([]ports.Message, len(state.Messages))
	for i, entry := range state.Messages {
		msgs[i] = ports.Message{Role: entry.Role, Content: entry.Content}
	}
	return msgs, true
}

// Get returns a snapshot of the session state.
func (s *Store) Get(sessionID string) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.states[sessionID]
	if !ok {
		return State{}, false
	}
	return snapshot(state), true
}

// Delete removes a session outright.
func (s *Store) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, sessionID)
	s.releaseTurn(sessionID)
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.states)
}

// LockTurn serializes a full request turn for one session so concurrent
// requests cannot interleave their user/assistant appends. The returned
// function releases the turn.
func (s *Store) LockTurn(sessionID string) func() {
	s.mu.Lock()
	turn, ok := s.turns[sessionID]
	if !ok {
		turn = &sync.Mutex{}
		s.turns[sessionID] = turn
	}
	s.mu.Unlock()

	turn.Lock()
	return turn.Unlock
}

// releaseTurn drops the per-session turn mutex unless a turn currently holds
// it; a held mutex must survive so the in-flight turn's unlock still
// serializes the next LockTurn. Caller holds s.mu.
func (s *Store) releaseTurn(sessionID string) {
	turn, ok := s.turns[sessionID]
	if !ok {
		return
	}
	if turn.TryLock() {
		turn.Unlock()
		delete(s.turns, sessionID)
	}
}

// Sweep removes every session idle longer than the configured TTL and
// reports how many were evicted.
func (s *Store) Sweep(now time.Time) int {
	s.mu.Lock()
	evicted := 0
	for sessionID, state := range s.states {
		if now.Sub(state.LastActiveAt) > s.maxInactive {
			delete(s.states, sessionID)
			s.releaseTurn(sessionID)
			evicted++
		}
	}
	remaining := len(s.states)
	s.mu.Unlock()

	if evicted > 0 {
		s.logger.Info("swept %d idle sessions, %d remain", evicted, remaining)
		if s.onEvict != nil {
			s.onEvict(evicted)
		}
	}
	return evicted
}

// Start launches the background sweeper. It stops when ctx is cancelled or
// Stop is called.
func (s *Store) Start(ctx context.Context) {
	sweepCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	s.mu.Lock()
	s.sweepCancel = cancel
	s.sweepDone = done
	s.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(s.sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				s.Sweep(s.now())
			}
		}
	}()
}

// Stop cancels the background sweeper and waits for it to exit.
func (s *Store) Stop() {
	s.mu.Lock()
	cancel := s.sweepCancel
	done := s.sweepDone
	s.sweepCancel = nil
	s.sweepDone = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func snapshot(state *State) State {
	copied := *state
	copied.Messages = append([]Entry(nil), state.Messages...)
	return copied
}
