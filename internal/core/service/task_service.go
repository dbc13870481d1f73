package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tasknest/todo-api/internal/core/domain"
	"github.com/tasknest/todo-api/internal/core/ports"
	"github.com/tasknest/todo-api/internal/pkg/metrics"
)

// TaskService implements the owner-scoped task use cases. Every operation
// runs the authorizer before it touches the repository, and every
// repository call is filtered by owner.
type TaskService struct {
	repo   ports.TaskRepository
	guard  ports.Authorizer
	idem   ports.IdempotencyStore
	logger zerolog.Logger
	now    func() time.Time
}

var _ ports.TaskService = (*TaskService)(nil)

// NewTaskService returns a TaskService. idem may be nil, in which case
// Idempotency-Key headers are ignored.
func NewTaskService(repo ports.TaskRepository, guard ports.Authorizer, idem ports.IdempotencyStore, logger zerolog.Logger) *TaskService {
	if idem == nil {
		idem = noopIdempotency{}
	}
	return &TaskService{repo: repo, guard: guard, idem: idem, logger: logger, now: time.Now}
}

// Create validates the title and stores a new incomplete task. If an
// idempotency key is provided and already seen for this owner, the earlier
// task is returned without side effects.
func (s *TaskService) Create(ctx context.Context, input ports.CreateTaskInput) (*ports.CreateTaskResult, error) {
	const op = "create"
	if err := s.authorize(op, input.Scope); err != nil {
		return nil, err
	}
	owner := input.Scope.OwnerID

	title, err := domain.NormalizeTitle(input.Title)
	if err != nil {
		s.record(op, err)
		return nil, err
	}

	if input.IdempotencyKey != "" {
		if existing := s.replay(ctx, owner, input.IdempotencyKey); existing != nil {
			s.record(op, nil)
			return &ports.CreateTaskResult{Task: existing, AlreadyExisted: true}, nil
		}
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	task := &domain.Task{
		OwnerID:     owner,
		Title:       title,
		Description: input.Description,
		Completed:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, task); err != nil {
		s.record(op, err)
		s.logger.Error().Err(err).Str("owner_id", owner).Msg("failed to create task")
		return nil, fmt.Errorf("create task: %w", err)
	}

	if input.IdempotencyKey != "" {
		if err := s.idem.Remember(ctx, owner, input.IdempotencyKey, task.ID); err != nil {
			s.logger.Warn().Err(err).Str("owner_id", owner).Msg("failed to store idempotency key")
		}
	}

	s.record(op, nil)
	s.logger.Info().Int64("task_id", task.ID).Str("owner_id", owner).Msg("task created")
	return &ports.CreateTaskResult{Task: task}, nil
}

// List returns the owner's tasks in ascending id order.
func (s *TaskService) List(ctx context.Context, scope ports.Scope) ([]*domain.Task, error) {
	const op = "list"
	if err := s.authorize(op, scope); err != nil {
		return nil, err
	}
	tasks, err := s.repo.ListByOwner(ctx, scope.OwnerID)
	s.record(op, err)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// Get returns a single owned task or domain.ErrTaskNotFound.
func (s *TaskService) Get(ctx context.Context, scope ports.Scope, id int64) (*domain.Task, error) {
	const op = "get"
	if err := s.authorize(op, scope); err != nil {
		return nil, err
	}
	task, err := s.repo.FindByID(ctx, scope.OwnerID, id)
	s.record(op, err)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return task, nil
}

// Update applies a partial update. The patch is validated before any write,
// so a rejected update changes nothing.
func (s *TaskService) Update(ctx context.Context, scope ports.Scope, id int64, patch domain.TaskPatch) (*domain.Task, error) {
	return s.update(ctx, "update", scope, id, patch)
}

// Complete sets only the completed flag.
func (s *TaskService) Complete(ctx context.Context, scope ports.Scope, id int64, completed bool) (*domain.Task, error) {
	return s.update(ctx, "complete", scope, id, domain.TaskPatch{Completed: &completed})
}

// Delete removes an owned task or returns domain.ErrTaskNotFound.
func (s *TaskService) Delete(ctx context.Context, scope ports.Scope, id int64) error {
	const op = "delete"
	if err := s.authorize(op, scope); err != nil {
		return err
	}
	err := s.repo.Delete(ctx, scope.OwnerID, id)
	s.record(op, err)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	s.logger.Info().Int64("task_id", id).Str("owner_id", scope.OwnerID).Msg("task deleted")
	return nil
}

func (s *TaskService) update(ctx context.Context, op string, scope ports.Scope, id int64, patch domain.TaskPatch) (*domain.Task, error) {
	if err := s.authorize(op, scope); err != nil {
		return nil, err
	}
	patch, err := patch.Normalize()
	if err != nil {
		s.record(op, err)
		return nil, err
	}
	task, err := s.repo.Update(ctx, scope.OwnerID, id, patch, s.now())
	s.record(op, err)
	if err != nil {
		return nil, fmt.Errorf("%s task: %w", op, err)
	}
	return task, nil
}

// replay returns the task an idempotency key produced earlier, or nil. Store
// failures are logged and treated as a miss.
func (s *TaskService) replay(ctx context.Context, owner, key string) *domain.Task {
	id, found, err := s.idem.Lookup(ctx, owner, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("owner_id", owner).Msg("idempotency lookup failed, creating anyway")
		return nil
	}
	if !found {
		return nil
	}
	task, err := s.repo.FindByID(ctx, owner, id)
	if err != nil {
		if !errors.Is(err, domain.ErrTaskNotFound) {
			s.logger.Warn().Err(err).Int64("task_id", id).Msg("idempotent replay lookup failed")
		}
		return nil
	}
	metrics.IdempotentReplaysTotal.Inc()
	s.logger.Info().Str("owner_id", owner).Int64("task_id", id).Msg("idempotent replay")
	return task
}

func (s *TaskService) authorize(op string, scope ports.Scope) error {
	if err := s.guard.Authorize(scope.SubjectID, scope.OwnerID); err != nil {
		s.record(op, err)
		s.logger.Warn().
			Str("operation", op).
			Str("subject_id", scope.SubjectID).
			Str("owner_id", scope.OwnerID).
			Msg("task access denied")
		return err
	}
	return nil
}

func (s *TaskService) record(op string, err error) {
	metrics.TaskOperationsTotal.WithLabelValues(op, resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrTaskNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrUnauthorized):
		return "forbidden"
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	default:
		return "error"
	}
}

type noopIdempotency struct{}

func (noopIdempotency) Lookup(context.Context, string, string) (int64, bool, error) {
	return 0, false, nil
}

func (noopIdempotency) Remember(context.Context, string, string, int64) error { return nil }
