package ports

import (
	"context"
	"time"

	"github.com/tasknest/todo-api/internal/core/domain"
)

// TaskRepository defines persistence operations for tasks. Every lookup and
// write is filtered by owner and id together; a task owned by someone else
// is reported as domain.ErrTaskNotFound.
type TaskRepository interface {
	// Create inserts t and assigns t.ID.
	Create(ctx context.Context, t *domain.Task) error
	// ListByOwner returns the owner's tasks in ascending id order.
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Task, error)
	FindByID(ctx context.Context, ownerID string, id int64) (*domain.Task, error)
	// Update applies patch in a single write and returns the stored task.
	// updated_at becomes now, or one millisecond past its previous value.
	Update(ctx context.Context, ownerID string, id int64, patch domain.TaskPatch, now time.Time) (*domain.Task, error)
	Delete(ctx context.Context, ownerID string, id int64) error
}

// IdempotencyStore remembers which task a client retry key produced.
type IdempotencyStore interface {
	Lookup(ctx context.Context, ownerID, key string) (taskID int64, found bool, err error)
	Remember(ctx context.Context, ownerID, key string, taskID int64) error
}
