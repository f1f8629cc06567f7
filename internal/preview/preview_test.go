package preview

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func echoFetcher(calls *atomic.Int32) Fetcher {
	return func(ctx context.Context, statement string) (Result, error) {
		calls.Add(1)
		return Result{Columns: []string{"stmt"}, Rows: [][]string{{statement}}}, nil
	}
}

func TestWatchEmptyValueIsIdleWithoutRequest(t *testing.T) {
	var calls atomic.Int32
	c := NewChannel(echoFetcher(&calls), time.Millisecond)

	if cmd := c.Watch("0", "   "); cmd != nil {
		t.Fatal("empty value should not schedule a request")
	}
	if got := c.Result("0").Status; got != StatusIdle {
		t.Errorf("status = %v, want idle", got)
	}
	if calls.Load() != 0 {
		t.Errorf("fetch called %d times", calls.Load())
	}
}

func TestDebounceCancelledSendsNoRequest(t *testing.T) {
	var calls atomic.Int32
	c := NewChannel(echoFetcher(&calls), 20*time.Millisecond)

	first := c.Watch("0", "R")
	second := c.Watch("0", "R \\join S")

	if msg := first(); msg != nil {
		t.Fatalf("superseded debounce produced %#v", msg)
	}
	fire, ok := second().(FireMsg)
	if !ok {
		t.Fatal("current debounce should fire")
	}
	res := c.Fire(fire)()
	if !c.Apply(res.(ResultMsg)) {
		t.Fatal("current result rejected")
	}
	if calls.Load() != 1 {
		t.Errorf("fetch called %d times, want 1", calls.Load())
	}
	got := c.Result("0")
	if got.Status != StatusReady || got.Rows[0][0] != "R \\join S" {
		t.Errorf("result = %+v", got)
	}
}

func TestStaleFireIgnored(t *testing.T) {
	var calls atomic.Int32
	c := NewChannel(echoFetcher(&calls), time.Millisecond)
	old := c.Watch("0", "a")().(FireMsg)
	c.Watch("0", "b")
	if cmd := c.Fire(old); cmd != nil {
		t.Error("stale FireMsg should not start a request")
	}
}

func TestStaleResultNeverOverwritesNewer(t *testing.T) {
	c := NewChannel(func(ctx context.Context, s string) (Result, error) {
		return Result{Columns: []string{s}}, nil
	}, time.Millisecond)

	fire1 := c.Watch("0", "one")().(FireMsg)
	res1 := c.Fire(fire1)

	fire2 := c.Watch("0", "two")().(FireMsg)
	res2 := c.Fire(fire2)

	// Request #2 resolves first, then #1 arrives late.
	if !c.Apply(res2().(ResultMsg)) {
		t.Fatal("request #2 rejected")
	}
	if c.Apply(res1().(ResultMsg)) {
		t.Fatal("request #1 applied after #2")
	}
	if got := c.Result("0").Columns[0]; got != "two" {
		t.Errorf("displayed %q, want two", got)
	}
}

func TestInFlightCancelledOnNewEdit(t *testing.T) {
	started := make(chan struct{})
	c := NewChannel(func(ctx context.Context, s string) (Result, error) {
		close(started)
		<-ctx.Done()
		return Result{}, ctx.Err()
	}, time.Millisecond)

	fire := c.Watch("0", "slow")().(FireMsg)
	cmd := c.Fire(fire)
	if c.Result("0").Status != StatusLoading {
		t.Errorf("status = %v, want loading", c.Result("0").Status)
	}
	done := make(chan ResultMsg, 1)
	go func() { done <- cmd().(ResultMsg) }()
	<-started

	c.Watch("0", "")
	select {
	case msg := <-done:
		if c.Apply(msg) {
			t.Error("cancelled request applied")
		}
	case <-time.After(time.Second):
		t.Fatal("in-flight request not cancelled")
	}
	if c.Result("0").Status != StatusIdle {
		t.Errorf("status = %v, want idle", c.Result("0").Status)
	}
}

func TestErrors(t *testing.T) {
	c := NewChannel(func(ctx context.Context, s string) (Result, error) {
		if s == "net" {
			return Result{}, errors.New("connection refused")
		}
		return Result{Error: "unknown relation X"}, nil
	}, time.Millisecond)

	for _, tt := range []struct{ value, want string }{
		{"net", "connection refused"},
		{"X", "unknown relation X"},
	} {
		fire := c.Watch("0", tt.value)().(FireMsg)
		c.Apply(c.Fire(fire)().(ResultMsg))
		got := c.Result("0")
		if got.Status != StatusError || got.Error != tt.want {
			t.Errorf("%s: result = %+v", tt.value, got)
		}
	}
}

func TestKeysAreIndependent(t *testing.T) {
	c := NewChannel(func(ctx context.Context, s string) (Result, error) {
		return Result{Columns: []string{s}}, nil
	}, time.Millisecond)

	a := c.Watch("a", "1")().(FireMsg)
	b := c.Watch("b", "2")().(FireMsg)
	if !c.Apply(c.Fire(a)().(ResultMsg)) || !c.Apply(c.Fire(b)().(ResultMsg)) {
		t.Fatal("results rejected")
	}
	if c.Result("a").Columns[0] != "1" || c.Result("b").Columns[0] != "2" {
		t.Error("keys interfere")
	}
	if c.Pending("a") {
		t.Error("resolved key still pending")
	}
}
