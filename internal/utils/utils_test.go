package utils

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/labstack/gommon/log"
)

func TestRetrySucceedsAfterFailures(t *testing.T) {
	var calls int32
	r := Retry{MaxAttempts: 3, BaseDelay: time.Millisecond, Logger: Discard()}
	err := r.Do(context.Background(), "flaky", func(context.Context) error {
		if atomic.AddInt32(&calls, 1) < 3 {
			return errors.New("boom")
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Fatalf("err=%v calls=%d", err, calls)
	}
}

func TestRetryGivesUp(t *testing.T) {
	boom := errors.New("boom")
	r := Retry{MaxAttempts: 2, BaseDelay: time.Millisecond}
	err := r.Do(context.Background(), "always", func(context.Context) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("got %v", err)
	}
}

func TestRetrySkipsPermanentErrors(t *testing.T) {
	permanent := errors.New("not found")
	var calls int
	r := Retry{MaxAttempts: 5, BaseDelay: time.Millisecond,
		Retryable: func(err error) bool { return !errors.Is(err, permanent) }}
	err := r.Do(context.Background(), "detail", func(context.Context) error {
		calls++
		return permanent
	})
	if !errors.Is(err, permanent) || calls != 1 {
		t.Fatalf("err=%v calls=%d", err, calls)
	}
}

func TestRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := Retry{MaxAttempts: 10, BaseDelay: time.Hour}
	done := make(chan error, 1)
	go func() {
		done <- r.Do(ctx, "slow", func(context.Context) error { return errors.New("boom") })
	}()
	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("retry did not observe cancellation")
	}
}

func TestLatestSupersedes(t *testing.T) {
	l := NewLatest()
	ctx1, t1 := l.Begin(context.Background(), "session-a")
	ctx2, t2 := l.Begin(context.Background(), "session-a")
	_, t3 := l.Begin(context.Background(), "session-b")

	if ctx1.Err() == nil {
		t.Error("first request should be cancelled")
	}
	if t1.Current() {
		t.Error("first ticket should be stale")
	}
	if !t2.Current() || ctx2.Err() != nil {
		t.Error("second ticket should be current")
	}
	if !t3.Current() {
		t.Error("other keys are independent")
	}

	t2.Done()
	t1.Done()
	if ctx2.Err() == nil {
		t.Error("Done should cancel the context")
	}
	_, t4 := l.Begin(context.Background(), "session-a")
	if t1.Current() || !t4.Current() {
		t.Error("stale ticket must stay stale after the key is reused")
	}
	t3.Done()
	t4.Done()
	if l.Pending() != 0 {
		t.Errorf("pending: %d", l.Pending())
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken("s3cret", 42, "STUDENT", 5)
	if err != nil {
		t.Fatal(err)
	}
	c, err := ParseAccessToken("s3cret", tok.Token)
	if err != nil {
		t.Fatal(err)
	}
	if c.UserID != 42 || c.Role != "STUDENT" {
		t.Errorf("got %+v", c)
	}
	if _, err := ParseAccessToken("other", tok.Token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("wrong secret: %v", err)
	}
	expired, _ := NewAccessToken("s3cret", 42, "STUDENT", -1)
	if _, err := ParseAccessToken("s3cret", expired.Token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired: %v", err)
	}
}

func TestRefreshHash(t *testing.T) {
	rt, err := NewRefreshToken(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(rt.Raw) != 96 || len(HashRefreshRaw(rt.Raw)) != 64 {
		t.Errorf("raw %d hash %d", len(rt.Raw), len(HashRefreshRaw(rt.Raw)))
	}
}

func TestPassword(t *testing.T) {
	h, err := HashPassword("hunter22", 4)
	if err != nil {
		t.Fatal(err)
	}
	if !VerifyPassword(h, "hunter22") || VerifyPassword(h, "nope") {
		t.Error("bcrypt round trip failed")
	}
	if _, err := HashPassword(strings.Repeat("x", 73), 4); !errors.Is(err, ErrPasswordTooLong) {
		t.Errorf("long password: %v", err)
	}
	// Below bcrypt.MinCost is clamped rather than rejected.
	if _, err := HashPassword("hunter22", 1); err != nil {
		t.Errorf("low cost: %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("DEBUG") != log.DEBUG || ParseLevel("bogus") != log.INFO || ParseLevel("off") != log.OFF {
		t.Error("level mapping")
	}
}
