package editor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/resume/builder"
)

const (
	defaultIdleTTL     = 30 * time.Minute
	defaultInboxSize   = 64
	defaultMaxSessions = 10000
	minSweepInterval   = time.Second
	maxSweepInterval   = time.Minute
)

// Options configures a Service. Zero values pick defaults.
type Options struct {
	IdleTTL      time.Duration
	InboxSize    int
	MaxSessions  int
	IDs          builder.IDGenerator
	Placeholders *builder.Placeholders
	Now          func() time.Time
}

// Service keeps one builder session per owner, each driven by its own loop.
type Service struct {
	opts Options

	mu     sync.Mutex
	loops  map[string]*loop
	closed bool

	stopJanitor chan struct{}
	janitorDone chan struct{}
}

// NewService constructs a Service and starts its idle-session janitor.
func NewService(opts Options) *Service {
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = defaultIdleTTL
	}
	if opts.InboxSize <= 0 {
		opts.InboxSize = defaultInboxSize
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = defaultMaxSessions
	}
	if opts.IDs == nil {
		opts.IDs = builder.UUIDGenerator{}
	}
	if opts.Placeholders == nil {
		p := builder.DefaultPlaceholders
		opts.Placeholders = &p
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Service{
		opts:        opts,
		loops:       make(map[string]*loop),
		stopJanitor: make(chan struct{}),
		janitorDone: make(chan struct{}),
	}
	go s.janitor()
	return s
}

// View returns the current snapshot of owner's session, creating the
// session on first use.
func (s *Service) View(ctx context.Context, ownerID string) (Snapshot, error) {
	r, err := s.do(ctx, ownerID, event{kind: evView})
	return r.snap, err
}

// Dispatch runs cmd on owner's session and returns the snapshot right
// after it. Deferred work queued by cmd runs on a later loop turn.
func (s *Service) Dispatch(ctx context.Context, ownerID string, cmd builder.Command) (Snapshot, error) {
	if cmd == nil {
		return Snapshot{}, fmt.Errorf("%w: nil command", ErrInvalidCommand)
	}
	r, err := s.do(ctx, ownerID, event{kind: evCommand, cmd: cmd})
	return r.snap, err
}

// Settle runs any deferred work pending on owner's session and returns the
// resulting snapshot.
func (s *Service) Settle(ctx context.Context, ownerID string) (Snapshot, error) {
	r, err := s.do(ctx, ownerID, event{kind: evSettle})
	return r.snap, err
}

// Subscribe streams snapshots of owner's session. The current snapshot is
// delivered first. The channel closes when cancel is called or the session
// ends.
func (s *Service) Subscribe(ctx context.Context, ownerID string) (<-chan Snapshot, func(), error) {
	l, err := s.loopFor(ownerID)
	if err != nil {
		return nil, nil, err
	}
	r, err := subscribe(ctx, l)
	if errors.Is(err, ErrSessionClosed) && ctx.Err() == nil {
		if l, err = s.loopFor(ownerID); err != nil {
			return nil, nil, err
		}
		r, err = subscribe(ctx, l)
	}
	if err != nil {
		return nil, nil, err
	}
	var once sync.Once
	cancel := func() {
		once.Do(func() { l.unsubscribe(r.subID) })
	}
	return r.sub, cancel, nil
}

// subscribe registers a subscriber on l. One the caller gave up on is
// removed again once the loop gets to it.
func subscribe(ctx context.Context, l *loop) (reply, error) {
	return l.requestOr(ctx, event{kind: evSubscribe}, func(r reply) {
		l.unsubscribe(r.subID)
	})
}

// Has reports whether owner has a live session.
func (s *Service) Has(ownerID string) bool {
	ownerID = strings.TrimSpace(ownerID)
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.loops[ownerID]
	if !ok {
		return false
	}
	select {
	case <-l.quit:
		return false
	default:
		return true
	}
}

// Sessions reports how many sessions are live.
func (s *Service) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.loops)
}

// Sweep stops sessions idle for longer than the TTL that have no
// subscribers. It returns how many were stopped.
func (s *Service) Sweep() int {
	now := s.opts.Now()
	var expired []*loop

	s.mu.Lock()
	for owner, l := range s.loops {
		if l.subCount.Load() > 0 || l.idleSince(now) < s.opts.IdleTTL {
			continue
		}
		expired = append(expired, l)
		delete(s.loops, owner)
	}
	s.mu.Unlock()

	for _, l := range expired {
		l.stop()
		metrics.IncSessionExpired()
		telemetry.Info("session.expired", map[string]any{
			"owner_id": l.owner,
			"idle_ms":  l.idleSince(now).Milliseconds(),
		})
	}
	return len(expired)
}

// Close stops every session and the janitor.
func (s *Service) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	loops := s.loops
	s.loops = make(map[string]*loop)
	s.mu.Unlock()

	close(s.stopJanitor)
	<-s.janitorDone
	for _, l := range loops {
		l.stop()
		<-l.done
	}
	telemetry.Info("editor.closed", map[string]any{"sessions": len(loops)})
}

// do sends ev to owner's loop. A loop stopped by the janitor between lookup
// and send is replaced once by a fresh session.
func (s *Service) do(ctx context.Context, ownerID string, ev event) (reply, error) {
	l, err := s.loopFor(ownerID)
	if err != nil {
		return reply{}, err
	}
	r, err := l.request(ctx, ev)
	if errors.Is(err, ErrSessionClosed) && ctx.Err() == nil {
		if l, err = s.loopFor(ownerID); err != nil {
			return reply{}, err
		}
		r, err = l.request(ctx, ev)
	}
	return r, err
}

func (s *Service) loopFor(ownerID string) (*loop, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner is required", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}
	l, ok := s.loops[ownerID]
	if ok {
		select {
		case <-l.quit:
		default:
			return l, nil
		}
	}
	// A stopped loop is replaced in place and does not count against the cap.
	if !ok && len(s.loops) >= s.opts.MaxSessions {
		return nil, ErrSessionLimit
	}

	session := builder.NewSession(s.opts.IDs, *s.opts.Placeholders)
	l = newLoop(ownerID, session, s.opts.InboxSize, s.opts.Now())
	s.loops[ownerID] = l
	go l.run(s.opts.Now)
	metrics.IncSessionCreated()
	telemetry.Info("session.created", map[string]any{"owner_id": ownerID})
	return l, nil
}

func (s *Service) janitor() {
	defer close(s.janitorDone)

	interval := s.opts.IdleTTL / 2
	if interval < minSweepInterval {
		interval = minSweepInterval
	}
	if interval > maxSweepInterval {
		interval = maxSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopJanitor:
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
