package ports

import (
	"context"

	"github.com/tasknest/todo-api/internal/core/domain"
)

// Scope identifies who is asking and whose tasks are addressed.
type Scope struct {
	SubjectID string
	OwnerID   string
}

// SelfScope is the scope of a subject working on its own tasks.
func SelfScope(subjectID string) Scope {
	return Scope{SubjectID: subjectID, OwnerID: subjectID}
}

// CreateTaskInput carries the data needed to create a task.
type CreateTaskInput struct {
	Scope          Scope
	Title          string
	Description    string
	IdempotencyKey string
}

// CreateTaskResult is returned after creating a task.
type CreateTaskResult struct {
	Task *domain.Task
	// AlreadyExisted is true when the Idempotency-Key matched an earlier task.
	AlreadyExisted bool
}

// TaskService defines the owner-scoped task use cases.
type TaskService interface {
	Create(ctx context.Context, input CreateTaskInput) (*CreateTaskResult, error)
	List(ctx context.Context, scope Scope) ([]*domain.Task, error)
	Get(ctx context.Context, scope Scope, id int64) (*domain.Task, error)
	Update(ctx context.Context, scope Scope, id int64, patch domain.TaskPatch) (*domain.Task, error)
	Complete(ctx context.Context, scope Scope, id int64, completed bool) (*domain.Task, error)
	Delete(ctx context.Context, scope Scope, id int64) error
}
