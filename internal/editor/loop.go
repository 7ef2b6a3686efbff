package editor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"resume-builder/internal/shared/metrics"
	"resume-builder/resume/builder"
)

// subscriberBuffer bounds the snapshots queued per subscriber. A full
// buffer keeps only the newest snapshot.
const subscriberBuffer = 8

// maxSettleTicks bounds how many deferred rounds a settle request runs.
const maxSettleTicks = 8

type eventKind int

const (
	evCommand eventKind = iota
	evTick
	evSettle
	evView
	evSubscribe
	evUnsubscribe
)

type event struct {
	kind  eventKind
	cmd   builder.Command
	subID int
	reply chan reply
}

type reply struct {
	snap  Snapshot
	subID int
	sub   <-chan Snapshot
}

// loop owns one builder session and processes its events one at a time on
// a single goroutine.
type loop struct {
	owner   string
	session *builder.Session
	inbox   chan event
	quit    chan struct{}
	done    chan struct{}
	once    sync.Once

	lastSeen atomic.Int64
	subCount atomic.Int32

	// owned by the loop goroutine
	version uint64
	subs    map[int]chan Snapshot
	nextSub int
}

func newLoop(owner string, session *builder.Session, inboxSize int, now time.Time) *loop {
	l := &loop{
		owner:   owner,
		session: session,
		inbox:   make(chan event, inboxSize),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
		subs:    make(map[int]chan Snapshot),
	}
	l.lastSeen.Store(now.UnixNano())
	return l
}

func (l *loop) run(now func() time.Time) {
	defer close(l.done)
	defer func() {
		for id, ch := range l.subs {
			close(ch)
			delete(l.subs, id)
		}
		l.subCount.Store(0)
	}()

	for {
		select {
		case <-l.quit:
			return
		case ev := <-l.inbox:
			l.lastSeen.Store(now().UnixNano())
			l.handle(ev)
		}
	}
}

func (l *loop) stop() {
	l.once.Do(func() { close(l.quit) })
}

func (l *loop) handle(ev event) {
	switch ev.kind {
	case evCommand:
		start := time.Now()
		res := l.session.Dispatch(ev.cmd)
		metrics.ObserveCommandDurationMs(float64(time.Since(start).Microseconds()) / 1000)
		metrics.IncCommand(res.Changed)
		if res.Changed {
			l.version++
		}
		snap := l.snapshot(&res)
		if res.Changed {
			l.publish(snap)
		}
		if res.Pending {
			l.scheduleTick()
		}
		ev.reply <- reply{snap: snap}
	case evTick:
		l.runDeferred(1)
	case evSettle:
		l.runDeferred(maxSettleTicks)
		ev.reply <- reply{snap: l.snapshot(nil)}
	case evView:
		ev.reply <- reply{snap: l.snapshot(nil)}
	case evSubscribe:
		l.nextSub++
		ch := make(chan Snapshot, subscriberBuffer)
		ch <- l.snapshot(nil)
		l.subs[l.nextSub] = ch
		l.subCount.Store(int32(len(l.subs)))
		ev.reply <- reply{subID: l.nextSub, sub: ch}
	case evUnsubscribe:
		if ch, ok := l.subs[ev.subID]; ok {
			close(ch)
			delete(l.subs, ev.subID)
			l.subCount.Store(int32(len(l.subs)))
		}
	}
}

// runDeferred runs up to rounds ticks, publishing after each productive one.
func (l *loop) runDeferred(rounds int) {
	for i := 0; i < rounds && l.session.Pending(); i++ {
		if l.session.Tick() > 0 {
			metrics.IncDeferredTick()
			l.version++
			l.publish(l.snapshot(nil))
		}
	}
}

// scheduleTick queues a tick behind the events already waiting, so deferred
// work runs on the next turn of the loop.
func (l *loop) scheduleTick() {
	go func() {
		select {
		case l.inbox <- event{kind: evTick}:
		case <-l.done:
		}
	}()
}

func (l *loop) snapshot(res *builder.Result) Snapshot {
	return Snapshot{Version: l.version, View: l.session.View(), Result: res}
}

func (l *loop) publish(snap Snapshot) {
	for _, ch := range l.subs {
		select {
		case ch <- snap:
			continue
		default:
		}
		// Drop the oldest frame; the newest view supersedes it.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}

// request sends ev and waits for the loop to answer it.
func (l *loop) request(ctx context.Context, ev event) (reply, error) {
	return l.requestOr(ctx, ev, nil)
}

// requestOr is request with a hook for an answer that arrives after ctx
// ended. The loop still handles an event it has accepted, so side effects
// such as a registered subscriber need undoing there.
func (l *loop) requestOr(ctx context.Context, ev event, abandoned func(reply)) (reply, error) {
	ev.reply = make(chan reply, 1)
	select {
	case l.inbox <- ev:
	case <-l.done:
		return reply{}, ErrSessionClosed
	case <-ctx.Done():
		return reply{}, ctx.Err()
	}
	select {
	case r := <-ev.reply:
		return r, nil
	case <-l.done:
		return reply{}, ErrSessionClosed
	case <-ctx.Done():
		if abandoned != nil {
			go func() {
				select {
				case r := <-ev.reply:
					abandoned(r)
				case <-l.done:
				}
			}()
		}
		return reply{}, ctx.Err()
	}
}

func (l *loop) unsubscribe(id int) {
	select {
	case l.inbox <- event{kind: evUnsubscribe, subID: id}:
	case <-l.done:
	}
}

func (l *loop) idleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, l.lastSeen.Load()))
}
