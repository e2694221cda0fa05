package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/kalpha/internal/domain/model"
)

func pending(id string) model.Job {
	return model.Job{ID: id, Status: model.JobPending, Submitted: time.Unix(1_700_000_000, 0)}
}

func TestMemoryStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if count := store.Count(ctx); count != 0 {
		t.Errorf("expected count 0, got %d", count)
	}

	if err := store.Create(ctx, pending("job-1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := store.Get(ctx, "job-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != model.JobPending {
		t.Errorf("expected pending, got %s", got.Status)
	}

	started := time.Unix(1_700_000_010, 0)
	if err := store.MarkRunning(ctx, "job-1", started); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	finished := started.Add(time.Second)
	result := &model.Result{}
	result.Alpha = 0.75
	if err := store.Finish(ctx, "job-1", result, nil, finished); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err = store.Get(ctx, "job-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != model.JobDone {
		t.Errorf("expected done, got %s", got.Status)
	}
	if got.Result == nil || got.Result.Alpha != 0.75 {
		t.Errorf("expected alpha 0.75, got %+v", got.Result)
	}
	if !got.Started.Equal(started) || !got.Finished.Equal(finished) {
		t.Errorf("unexpected timestamps: started %v finished %v", got.Started, got.Finished)
	}
}

func TestMemoryStore_Failure(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.Create(ctx, pending("job-1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.MarkRunning(ctx, "job-1", time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Finish(ctx, "job-1", nil, errors.New("boom"), time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := store.Get(ctx, "job-1")
	if got.Status != model.JobFailed {
		t.Errorf("expected failed, got %s", got.Status)
	}
	if got.Err != "boom" {
		t.Errorf("expected error text boom, got %q", got.Err)
	}
	if got.Result != nil {
		t.Errorf("expected nil result, got %+v", got.Result)
	}
}

func TestMemoryStore_Errors(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := store.Create(ctx, model.Job{}); !errors.Is(err, ErrInvalidID) {
		t.Errorf("expected ErrInvalidID, got %v", err)
	}

	if err := store.Create(ctx, pending("job-1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Create(ctx, pending("job-1")); !errors.Is(err, ErrJobExists) {
		t.Errorf("expected ErrJobExists, got %v", err)
	}

	if err := store.MarkRunning(ctx, "missing", time.Now()); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := store.Finish(ctx, "job-1", nil, nil, time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.MarkRunning(ctx, "job-1", time.Now()); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
	if err := store.Finish(ctx, "job-1", nil, nil, time.Now()); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestMemoryStore_FinishFromPendingSetsStarted(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	at := time.Unix(1_700_000_100, 0)
	_ = store.Create(ctx, pending("job-1"))
	if err := store.Finish(ctx, "job-1", nil, errors.New("cancelled"), at); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := store.Get(ctx, "job-1")
	if !got.Started.Equal(at) {
		t.Errorf("expected started %v, got %v", at, got.Started)
	}
}

func TestMemoryStore_Retention(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(WithRetention(2))

	for i := range 4 {
		id := fmt.Sprintf("job-%d", i)
		if err := store.Create(ctx, pending(id)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	// job-3 stays pending and must survive eviction.
	for i := range 3 {
		if err := store.Finish(ctx, fmt.Sprintf("job-%d", i), &model.Result{}, nil, time.Now()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if _, err := store.Get(ctx, "job-0"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected job-0 evicted, got %v", err)
	}
	for _, id := range []string{"job-1", "job-2", "job-3"} {
		if _, err := store.Get(ctx, id); err != nil {
			t.Errorf("expected %s kept, got %v", id, err)
		}
	}
	if count := store.Count(ctx); count != 3 {
		t.Errorf("expected count 3, got %d", count)
	}

	byStatus := store.CountByStatus(ctx)
	if byStatus[model.JobDone] != 2 || byStatus[model.JobPending] != 1 {
		t.Errorf("unexpected status counts: %v", byStatus)
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(WithRetention(1))

	_ = store.Create(ctx, pending("job-1"))
	_ = store.Finish(ctx, "job-1", nil, nil, time.Now())
	if err := store.Delete(ctx, "job-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Delete(ctx, "job-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	// The deleted job no longer occupies the retention slot.
	_ = store.Create(ctx, pending("job-2"))
	_ = store.Finish(ctx, "job-2", nil, nil, time.Now())
	if _, err := store.Get(ctx, "job-2"); err != nil {
		t.Errorf("expected job-2 kept, got %v", err)
	}
}

func TestMemoryStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(WithRetention(0))

	const n = 200
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("job-%d", i)
			if err := store.Create(ctx, pending(id)); err != nil {
				t.Errorf("create %s: %v", id, err)
				return
			}
			if err := store.MarkRunning(ctx, id, time.Now()); err != nil {
				t.Errorf("run %s: %v", id, err)
				return
			}
			if err := store.Finish(ctx, id, &model.Result{}, nil, time.Now()); err != nil {
				t.Errorf("finish %s: %v", id, err)
			}
		}(i)
	}
	wg.Wait()

	if count := store.Count(ctx); count != n {
		t.Errorf("expected count %d, got %d", n, count)
	}
	if done := store.CountByStatus(ctx)[model.JobDone]; done != n {
		t.Errorf("expected %d done, got %d", n, done)
	}
}
