package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestPool_RunsSubmittedTasks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := NewPool(2)
	p.Start(ctx)
	defer p.Stop()

	var ran int32
	done := make(chan struct{})
	err := p.Submit(func(context.Context) error {
		atomic.AddInt32(&ran, 1)
		close(done)
		return nil
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("task never ran")
	}
	if atomic.LoadInt32(&ran) != 1 {
		t.Fatalf("task ran %d times", ran)
	}
}

func TestPool_RejectsNilTask(t *testing.T) {
	p := NewPool(1)
	if err := p.Submit(nil); err == nil {
		t.Fatalf("nil task accepted")
	}
}

func TestPool_DropsWhenSaturated(t *testing.T) {
	// Not started: nothing drains the queue, so it fills to capacity.
	p := NewPool(1)
	task := func(context.Context) error { return nil }

	var rejected bool
	for i := 0; i < 16; i++ {
		if err := p.Submit(task); err != nil {
			rejected = true
			break
		}
	}
	if !rejected {
		t.Fatalf("saturated pool kept accepting tasks")
	}
}
