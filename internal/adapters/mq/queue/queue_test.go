package queue

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/okian/podium/internal/domain/partition"
)

func job(game, category string) Job {
	return partition.Partition{GameID: game, CategoryID: category}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	// Test empty queue
	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	// Test enqueue
	if err := q.Enqueue(ctx, job("game1", "cat1")); err != nil {
		t.Errorf("expected enqueue to succeed, got %v", err)
	}

	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	// Test dequeue
	jobChan := q.Dequeue(ctx)
	j := <-jobChan
	if j.GameID != "game1" || j.CategoryID != "cat1" {
		t.Errorf("expected game1/cat1, got %s", j.Key())
	}

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_EnqueueBlocksWhenFull(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if err := q.Enqueue(ctx, job("game1", "cat1")); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := q.Enqueue(ctx, job("game1", "cat2")); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	// A full queue holds the producer until the context gives up
	shortCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	err := q.Enqueue(shortCtx, job("game1", "cat3"))
	if err == nil {
		t.Fatal("expected enqueue to fail on a full queue")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline error, got %v", err)
	}

	if l := q.Len(ctx); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}

	// Once a consumer makes room the blocked producer gets through
	result := make(chan error, 1)
	go func() {
		result <- q.Enqueue(ctx, job("game1", "cat3"))
	}()

	jobChan := q.Dequeue(ctx)
	<-jobChan

	select {
	case err := <-result:
		if err != nil {
			t.Errorf("expected blocked enqueue to succeed, got %v", err)
		}
	case <-time.After(time.Second):
		t.Error("blocked enqueue never completed")
	}
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(100))
	ctx := context.Background()
	numGoroutines := 10
	numJobs := 100

	// Start producer goroutines
	done := make(chan bool, numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			for j := 0; j < numJobs; j++ {
				p := partition.Partition{
					GameID:     fmt.Sprintf("game%d", id),
					CategoryID: fmt.Sprintf("cat%d", j),
				}
				if err := q.Enqueue(ctx, p); err != nil {
					t.Errorf("enqueue: %v", err)
					break
				}
			}
			done <- true
		}(i)
	}

	// Start consumer goroutines
	consumed := make(chan string, numGoroutines*numJobs)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			jobChan := q.Dequeue(ctx)
			for j := range jobChan {
				consumed <- j.Key()
			}
		}()
	}

	// Wait for producers to finish
	for i := 0; i < numGoroutines; i++ {
		<-done
	}

	// Every enqueued job should come out exactly once
	seen := make(map[string]bool)
	for i := 0; i < numGoroutines*numJobs; i++ {
		select {
		case key := <-consumed:
			if seen[key] {
				t.Errorf("job %s consumed twice", key)
			}
			seen[key] = true
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for jobs, got %d", i)
		}
	}

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected final length 0, got %d", l)
	}
}

func TestInMemoryQueue_GracefulShutdown(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx := context.Background()

	// Enqueue some jobs
	if err := q.Enqueue(ctx, job("game1", "cat1")); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := q.Enqueue(ctx, job("game1", "cat2")); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	// Check initial state
	if q.IsClosed() {
		t.Error("expected queue to be open initially")
	}

	// Close the queue
	if err := q.Close(); err != nil {
		t.Errorf("expected close to succeed, got error: %v", err)
	}

	if !q.IsClosed() {
		t.Error("expected queue to be closed after Close()")
	}

	// Enqueue after closing reports ErrClosed
	if err := q.Enqueue(ctx, job("game1", "cat3")); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}

	// The buffered jobs still drain, then the channel closes
	jobChan := q.Dequeue(ctx)
	var drained []string
	timeout := time.After(time.Second)
	for {
		select {
		case j, ok := <-jobChan:
			if !ok {
				goto channelClosed
			}
			drained = append(drained, j.CategoryID)
		case <-timeout:
			t.Fatal("expected dequeue channel to close within timeout")
		}
	}
channelClosed:
	if len(drained) != 2 {
		t.Errorf("expected 2 drained jobs, got %d", len(drained))
	}

	// Close again should not error
	if err := q.Close(); err != nil {
		t.Errorf("expected second close to succeed, got error: %v", err)
	}
}
