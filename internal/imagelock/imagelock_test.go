package imagelock

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLock_SerializesSameID(t *testing.T) {
	l := New()
	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock(7)
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			unlock()
		}()
	}
	wg.Wait()
	if maxInside != 1 {
		t.Fatalf("expected exclusive access, saw %d holders", maxInside)
	}
	if l.Len() != 0 {
		t.Fatalf("expected entries to be released, %d left", l.Len())
	}
}

func TestLock_DifferentIDsIndependent(t *testing.T) {
	l := New()
	unlockA := l.Lock(1)
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := l.Lock(2)
		unlock()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("lock on a different id should not block")
	}
}

func TestTryLock(t *testing.T) {
	l := New()
	unlock := l.Lock(3)
	if _, ok := l.TryLock(3); ok {
		t.Fatalf("TryLock should fail while held")
	}
	unlock()

	unlock2, ok := l.TryLock(3)
	if !ok {
		t.Fatalf("TryLock should succeed once released")
	}
	unlock2()
	if l.Len() != 0 {
		t.Fatalf("expected no tracked ids")
	}
}
