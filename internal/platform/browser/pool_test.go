package browser

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
)

type fakeSession struct {
	closed int32
}

func (f *fakeSession) Page() playwright.Page { return nil }
func (f *fakeSession) Close() error {
	atomic.AddInt32(&f.closed, 1)
	return nil
}

func fakeFactory(t *testing.T) Factory {
	t.Helper()
	return func(ctx context.Context) (Session, error) {
		return &fakeSession{}, nil
	}
}

func TestAcquireReleasesExactlyOnce(t *testing.T) {
	p := NewPool(2, fakeFactory(t))

	s, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if got := p.InUse(); got != 1 {
		t.Fatalf("InUse = %d, want 1", got)
	}

	// Closing multiple times must release the lease only once.
	for i := 0; i < 3; i++ {
		if err := s.Close(); err != nil {
			t.Fatalf("Close #%d: %v", i+1, err)
		}
	}
	if got := p.InUse(); got != 0 {
		t.Fatalf("InUse after close = %d, want 0", got)
	}
	if got := p.Available(); got != 2 {
		t.Fatalf("Available = %d, want 2", got)
	}
}

func TestAcquireBlocksAtCapacity(t *testing.T) {
	p := NewPool(1, fakeFactory(t))

	s1, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := p.Acquire(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("second Acquire err = %v, want deadline exceeded", err)
	}

	_ = s1.Close()
	s2, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire after release: %v", err)
	}
	_ = s2.Close()
}

func TestLaunchFailureReleasesLease(t *testing.T) {
	boom := errors.New("chromium exploded")
	p := NewPool(1, func(ctx context.Context) (Session, error) { return nil, boom })

	if _, err := p.Acquire(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped launch error", err)
	}
	if got := p.InUse(); got != 0 {
		t.Fatalf("InUse after failed launch = %d, want 0", got)
	}
}

func TestConcurrentAcquireNeverExceedsCapacity(t *testing.T) {
	const capSize = 4
	var inFlight, peak int32
	p := NewPool(capSize, func(ctx context.Context) (Session, error) {
		return &fakeSession{}, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := p.Acquire(context.Background())
			if err != nil {
				t.Errorf("Acquire: %v", err)
				return
			}
			n := atomic.AddInt32(&inFlight, 1)
			for {
				old := atomic.LoadInt32(&peak)
				if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inFlight, -1)
			_ = s.Close()
		}()
	}
	wg.Wait()

	if peak > capSize {
		t.Fatalf("peak concurrent sessions = %d, want <= %d", peak, capSize)
	}
	if got := p.InUse(); got != 0 {
		t.Fatalf("InUse after drain = %d, want 0", got)
	}
}
