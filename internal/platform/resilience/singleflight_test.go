package resilience

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSingleFlight_Do(t *testing.T) {
	var g SingleFlight[[]string]
	var counter int32

	const workers = 20
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			val, err, _ := g.Do("events_Soccer_all_2026-03-14", func() ([]string, error) {
				atomic.AddInt32(&counter, 1)
				time.Sleep(50 * time.Millisecond)
				return []string{"1000", "1001"}, nil
			})
			if err != nil {
				t.Errorf("singleflight call failed: %v", err)
			}
			if len(val) != 2 {
				t.Errorf("unexpected value: %v", val)
			}
		}()
	}

	close(start)
	wg.Wait()

	if got := atomic.LoadInt32(&counter); got != 1 {
		t.Fatalf("expected function to run once, got %d", got)
	}
}

func TestSingleFlight_ForgetsKeyAfterCompletion(t *testing.T) {
	var g SingleFlight[int]
	boom := errors.New("boom")

	if _, err, _ := g.Do("k", func() (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	val, err, shared := g.Do("k", func() (int, error) { return 7, nil })
	if err != nil || val != 7 || shared {
		t.Fatalf("expected fresh call, got val=%d err=%v shared=%v", val, err, shared)
	}
}
