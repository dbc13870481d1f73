// Package memory provides process-local repositories. They back the
// "memory" storage driver and the test suites.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tasknest/todo-api/internal/core/domain"
	"github.com/tasknest/todo-api/internal/core/ports"
)

// TaskRepository keeps tasks in a map guarded by a mutex. Ids are assigned
// from a monotonic counter.
type TaskRepository struct {
	mu     sync.RWMutex
	nextID int64
	tasks  map[int64]domain.Task
}

var _ ports.TaskRepository = (*TaskRepository)(nil)

func NewTaskRepository() *TaskRepository {
	return &TaskRepository{tasks: make(map[int64]domain.Task)}
}

func (r *TaskRepository) Create(_ context.Context, t *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	t.ID = r.nextID
	r.tasks[t.ID] = *t
	return nil
}

func (r *TaskRepository) ListByOwner(_ context.Context, ownerID string) ([]*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Task, 0)
	for _, t := range r.tasks {
		if t.OwnerID != ownerID {
			continue
		}
		clone := t
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *TaskRepository) FindByID(_ context.Context, ownerID string, id int64) (*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.owned(ownerID, id)
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return &t, nil
}

func (r *TaskRepository) Update(_ context.Context, ownerID string, id int64, patch domain.TaskPatch, now time.Time) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.owned(ownerID, id)
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	patch.Apply(&t, now)
	r.tasks[id] = t
	return &t, nil
}

func (r *TaskRepository) Delete(_ context.Context, ownerID string, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.owned(ownerID, id); !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

// owned must be called with the lock held.
func (r *TaskRepository) owned(ownerID string, id int64) (domain.Task, bool) {
	t, ok := r.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return domain.Task{}, false
	}
	return t, true
}
