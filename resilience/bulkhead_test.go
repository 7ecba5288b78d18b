package resilience

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestBulkhead_AllowsRequestsWithinLimit(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{
		Name:          "test",
		MaxConcurrent: 3,
	})

	var callCount int32
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := b.Execute(context.Background(), func() error {
				atomic.AddInt32(&callCount, 1)
				time.Sleep(10 * time.Millisecond)
				return nil
			})
			if err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		}()
	}
	wg.Wait()

	if atomic.LoadInt32(&callCount) != 3 {
		t.Errorf("expected 3 calls, got %d", callCount)
	}
}

// occupy holds the single slot of b until the returned release func is called.
func occupy(t *testing.T, b *Bulkhead) (release func()) {
	t.Helper()
	started := make(chan struct{})
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = b.Execute(context.Background(), func() error {
			close(started)
			<-stop
			return nil
		})
	}()
	<-started
	return func() {
		close(stop)
		<-done
	}
}

func TestBulkhead_RejectsWhenFull(t *testing.T) {
	var rejected int32
	b := NewBulkhead(BulkheadConfig{
		Name:          "workers",
		MaxConcurrent: 1,
		OnReject:      func(string) { atomic.AddInt32(&rejected, 1) },
	})
	release := occupy(t, b)
	defer release()

	err := b.Execute(context.Background(), func() error { return nil })
	if !errors.Is(err, ErrBulkheadFull) {
		t.Fatalf("expected ErrBulkheadFull, got %v", err)
	}
	if !IsRejection(err) {
		t.Error("expected IsRejection true")
	}
	if atomic.LoadInt32(&rejected) != 1 {
		t.Errorf("expected OnReject once, got %d", rejected)
	}
}

func TestBulkhead_WaitsForSlot(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{
		Name:          "test",
		MaxConcurrent: 1,
		MaxWait:       time.Second,
	})
	release := occupy(t, b)
	go func() {
		time.Sleep(20 * time.Millisecond)
		release()
	}()

	if err := b.Execute(context.Background(), func() error { return nil }); err != nil {
		t.Fatalf("expected slot after wait, got %v", err)
	}
}

func TestBulkhead_TimesOutWaiting(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{
		Name:          "test",
		MaxConcurrent: 1,
		MaxWait:       20 * time.Millisecond,
	})
	release := occupy(t, b)
	defer release()

	err := b.Execute(context.Background(), func() error { return nil })
	if !errors.Is(err, ErrBulkheadTimeout) {
		t.Fatalf("expected ErrBulkheadTimeout, got %v", err)
	}
}

func TestBulkhead_RespectsContext(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{
		Name:          "test",
		MaxConcurrent: 1,
		MaxWait:       time.Second,
	})
	release := occupy(t, b)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := b.Execute(ctx, func() error { return nil })
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context deadline, got %v", err)
	}
	if IsRejection(err) {
		t.Error("context errors are not bulkhead rejections")
	}
}

func TestBulkhead_PropagatesFnError(t *testing.T) {
	b := NewBulkhead(DefaultBulkheadConfig("test"))
	want := errors.New("boom")
	if err := b.Execute(context.Background(), func() error { return want }); err != want {
		t.Fatalf("expected fn error, got %v", err)
	}
	if b.InUse() != 0 {
		t.Errorf("slot must be released after fn returns, in use %d", b.InUse())
	}
}

func TestBulkhead_AvailableAndInUse(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{Name: "pool", MaxConcurrent: 1})
	if b.Name() != "pool" {
		t.Errorf("expected name pool, got %q", b.Name())
	}
	if b.Available() != 1 || b.InUse() != 0 {
		t.Fatalf("expected 1 available, got %d/%d", b.Available(), b.InUse())
	}
	release := occupy(t, b)
	if b.Available() != 0 || b.InUse() != 1 {
		t.Errorf("expected slot in use, got %d/%d", b.Available(), b.InUse())
	}
	release()
	if b.Available() != 1 {
		t.Errorf("expected slot released, got %d", b.Available())
	}
}

func TestNewBulkhead_DefaultsMaxConcurrent(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{Name: "x"})
	if b.MaxConcurrent() != 4 {
		t.Errorf("expected default 4, got %d", b.MaxConcurrent())
	}
}
