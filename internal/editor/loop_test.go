package editor

import (
	"context"
	"errors"
	"testing"
	"time"

	"resume-builder/resume/builder"
)

func TestAbandonedSubscribeIsReleased(t *testing.T) {
	l := newLoop("guest:late", builder.NewSession(nil, builder.DefaultPlaceholders), 4, time.Now())

	// The loop is not running yet, so the event is queued but unanswered
	// when the caller gives up.
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := subscribe(ctx, l)
		errCh <- err
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	go l.run(time.Now)
	defer func() {
		l.stop()
		<-l.done
	}()

	deadline := time.Now().Add(2 * time.Second)
	for {
		// The view is queued behind the subscribe, so the subscriber has
		// been registered by the time it answers.
		if _, err := l.request(testContext(t), event{kind: evView}); err != nil {
			t.Fatalf("view: %v", err)
		}
		if l.subCount.Load() == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("abandoned subscriber was never removed")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRequestAfterStopReportsClosed(t *testing.T) {
	l := newLoop("guest:gone", builder.NewSession(nil, builder.DefaultPlaceholders), 1, time.Now())
	go l.run(time.Now)
	l.stop()
	<-l.done

	if _, err := l.request(testContext(t), event{kind: evView}); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("expected ErrSessionClosed, got %v", err)
	}
}
