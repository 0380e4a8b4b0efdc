package db

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"gorm.io/gorm"
)

func TestDialectorFor(t *testing.T) {
	for _, tc := range []struct {
		dsn  string
		name string
	}{
		{"postgres://u:p@localhost:5432/db", "postgres"},
		{"postgresql://localhost/db", "postgres"},
		{"sqlite::memory:", "sqlite"},
		{"file:test.db?cache=shared", "sqlite"},
		{":memory:", "sqlite"},
	} {
		d, err := dialectorFor(tc.dsn)
		if err != nil {
			t.Fatalf("%s: %v", tc.dsn, err)
		}
		if d.Name() != tc.name {
			t.Fatalf("%s: dialector=%s", tc.dsn, d.Name())
		}
	}
	if _, err := dialectorFor("mysql://u:secret@h/db"); err == nil {
		t.Fatalf("expected unsupported scheme")
	}
}

func TestRedactDSN(t *testing.T) {
	if got := redactDSN("postgres://user:secret@db:5432/x"); got != "postgres://***@db:5432/x" {
		t.Fatalf("got %q", got)
	}
	if got := redactDSN("file:x.db"); got != "file:x.db" {
		t.Fatalf("got %q", got)
	}
}

func TestLazyOpensOnceAndRetriesAfterFailure(t *testing.T) {
	var calls atomic.Int32
	fail := true
	l := NewLazy("sqlite::memory:", Options{}, nil)
	l.open = func(dsn string, opts Options) (*gorm.DB, error) {
		calls.Add(1)
		if fail {
			return nil, errors.New("connection refused")
		}
		return Open(dsn, opts)
	}

	if _, err := l.Get(context.Background()); err == nil {
		t.Fatalf("expected open failure")
	}
	fail = false

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.Get(context.Background()); err != nil {
				t.Errorf("Get: %v", err)
			}
		}()
	}
	wg.Wait()
	if got := calls.Load(); got != 2 {
		t.Fatalf("open called %d times", got)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestLazyUnconfigured(t *testing.T) {
	l := NewLazy("  ", Options{}, nil)
	if l.Configured() {
		t.Fatalf("blank dsn should be unconfigured")
	}
	if _, err := l.Get(context.Background()); !errors.Is(err, ErrNoDSN) {
		t.Fatalf("err=%v", err)
	}
}
