package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxTitleLength is the maximum number of characters in a trimmed title.
const MaxTitleLength = 255

// Task is a todo item owned by exactly one user. OwnerID is set once at
// creation and never changes.
type Task struct {
	ID          int64     `json:"id"`
	OwnerID     string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TaskPatch is a partial update. Nil fields are left untouched.
type TaskPatch struct {
	Title       *string
	Description *string
	Completed   *bool
}

// NormalizeTitle trims title and checks it is 1..MaxTitleLength characters.
func NormalizeTitle(title string) (string, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return "", fmt.Errorf("%w: title is required", ErrValidation)
	}
	if utf8.RuneCountInString(trimmed) > MaxTitleLength {
		return "", fmt.Errorf("%w: title must be at most %d characters", ErrValidation, MaxTitleLength)
	}
	return trimmed, nil
}

// Normalize validates the patch and returns a copy with the title trimmed.
func (p TaskPatch) Normalize() (TaskPatch, error) {
	if p.Title == nil {
		return p, nil
	}
	title, err := NormalizeTitle(*p.Title)
	if err != nil {
		return TaskPatch{}, err
	}
	p.Title = &title
	return p, nil
}

// Apply copies the fields present in p onto t and sets UpdatedAt.
func (p TaskPatch) Apply(t *Task, now time.Time) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	t.UpdatedAt = NextUpdatedAt(t.UpdatedAt, now)
}

// NextUpdatedAt returns now, or prev plus one millisecond when the clock has
// not moved past prev. Timestamps are kept at millisecond precision.
func NextUpdatedAt(prev, now time.Time) time.Time {
	now = now.UTC().Truncate(time.Millisecond)
	if !now.After(prev) {
		return prev.Add(time.Millisecond)
	}
	return now
}
