package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/tasknest/todo-api/internal/core/domain"
	"github.com/tasknest/todo-api/internal/core/ports"
)

// HeaderIdempotencyKey deduplicates create retries.
const HeaderIdempotencyKey = "Idempotency-Key"

// TaskHandler serves the authenticated user's tasks. Handlers only
// translate HTTP; ownership is enforced by the service.
type TaskHandler struct {
	service ports.TaskService
}

func NewTaskHandler(service ports.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// List handles GET /api/v1/tasks.
//
// @Summary      List tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   taskResponse
// @Failure      401  {object}  errorResponse
// @Router       /api/v1/tasks [get]
func (h *TaskHandler) List(c echo.Context) error {
	scope, err := ctxScope(c)
	if err != nil {
		return err
	}
	tasks, err := h.service.List(c.Request().Context(), scope)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTaskResponses(tasks))
}

// Create handles POST /api/v1/tasks. A replayed Idempotency-Key answers 200
// with the task created the first time.
//
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string             false  "Idempotency key to prevent duplicate submissions"
// @Param        body             body      createTaskRequest  true   "Task"
// @Success      201              {object}  taskResponse
// @Success      200              {object}  taskResponse
// @Failure      400              {object}  errorResponse
// @Failure      401              {object}  errorResponse
// @Failure      422              {object}  errorResponse
// @Router       /api/v1/tasks [post]
func (h *TaskHandler) Create(c echo.Context) error {
	scope, err := ctxScope(c)
	if err != nil {
		return err
	}
	var req createTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	result, err := h.service.Create(c.Request().Context(), ports.CreateTaskInput{
		Scope:          scope,
		Title:          req.Title,
		Description:    req.Description,
		IdempotencyKey: c.Request().Header.Get(HeaderIdempotencyKey),
	})
	if err != nil {
		return err
	}

	status := http.StatusCreated
	if result.AlreadyExisted {
		status = http.StatusOK
	}
	return c.JSON(status, toTaskResponse(result.Task))
}

// Get handles GET /api/v1/tasks/:id.
//
// @Summary      Get a task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Task id"
// @Success      200  {object}  taskResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/v1/tasks/{id} [get]
func (h *TaskHandler) Get(c echo.Context) error {
	scope, id, err := scopeAndID(c)
	if err != nil {
		return err
	}
	task, err := h.service.Get(c.Request().Context(), scope, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTaskResponse(task))
}

// Update handles PUT /api/v1/tasks/:id. Only the fields present in the body
// change.
//
// @Summary      Update a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                true  "Task id"
// @Param        body  body      updateTaskRequest  true  "Fields to change"
// @Success      200   {object}  taskResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/v1/tasks/{id} [put]
func (h *TaskHandler) Update(c echo.Context) error {
	scope, id, err := scopeAndID(c)
	if err != nil {
		return err
	}
	var req updateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	task, err := h.service.Update(c.Request().Context(), scope, id, req.toPatch())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTaskResponse(task))
}

// Complete handles PATCH /api/v1/tasks/:id/complete?completed=true|false.
//
// @Summary      Mark a task completed or not
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id         path      int   true  "Task id"
// @Param        completed  query     bool  true  "New completed flag"
// @Success      200        {object}  taskResponse
// @Failure      404        {object}  errorResponse
// @Failure      422        {object}  errorResponse
// @Router       /api/v1/tasks/{id}/complete [patch]
func (h *TaskHandler) Complete(c echo.Context) error {
	scope, id, err := scopeAndID(c)
	if err != nil {
		return err
	}
	completed, err := strconv.ParseBool(c.QueryParam("completed"))
	if err != nil {
		return fmt.Errorf("%w: completed must be true or false", domain.ErrValidation)
	}

	task, err := h.service.Complete(c.Request().Context(), scope, id, completed)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTaskResponse(task))
}

// Delete handles DELETE /api/v1/tasks/:id.
//
// @Summary      Delete a task
// @Tags         tasks
// @Security     BearerAuth
// @Param        id   path  int  true  "Task id"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /api/v1/tasks/{id} [delete]
func (h *TaskHandler) Delete(c echo.Context) error {
	scope, id, err := scopeAndID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), scope, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func scopeAndID(c echo.Context) (ports.Scope, int64, error) {
	scope, err := ctxScope(c)
	if err != nil {
		return ports.Scope{}, 0, err
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return ports.Scope{}, 0, fmt.Errorf("%w: task id must be a positive integer", domain.ErrValidation)
	}
	return scope, id, nil
}
