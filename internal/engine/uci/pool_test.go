package uci

import (
	"context"
	"testing"
	"time"
)

func TestPool_ReusesSessionAfterCallerDeadline(t *testing.T) {
	bin := writeFakeEngine(t, `echo "info depth 1 score cp 10 pv e2e4"; echo "bestmove e2e4"`)
	p, err := NewPool(PoolConfig{BinaryPath: bin, Capacity: 1})
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	t.Cleanup(func() { _ = p.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	first, err := p.Acquire(ctx)
	if err != nil {
		t.Fatalf("first Acquire: %v", err)
	}
	p.Release(first, nil)

	// the session must survive expiry of the deadline it was acquired under
	cancel()
	time.Sleep(50 * time.Millisecond)

	second, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("second Acquire: %v", err)
	}
	defer p.Release(second, nil)
	if first != second {
		t.Fatalf("released session was not reused")
	}
}

func TestPool_DiscardsSessionOnError(t *testing.T) {
	bin := writeFakeEngine(t, `echo "info depth 1 score cp 10 pv e2e4"; echo "bestmove e2e4"`)
	p, err := NewPool(PoolConfig{BinaryPath: bin, Capacity: 1})
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	t.Cleanup(func() { _ = p.Close() })

	session, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	p.Release(session, context.DeadlineExceeded)

	p.mu.Lock()
	total := p.total
	p.mu.Unlock()
	if total != 0 {
		t.Fatalf("errored session kept alive, total=%d", total)
	}
}
