package service

import (
	"strings"

	"github.com/tasknest/todo-api/internal/core/domain"
	"github.com/tasknest/todo-api/internal/core/ports"
)

// OwnershipGuard allows a subject to act only on resources it owns. There is
// no admin override and no role hierarchy.
type OwnershipGuard struct{}

var _ ports.Authorizer = OwnershipGuard{}

// NewOwnershipGuard returns the ownership guard.
func NewOwnershipGuard() OwnershipGuard { return OwnershipGuard{} }

// Authorize returns domain.ErrUnauthorized for an anonymous subject and
// domain.ErrForbidden when subjectID is not ownerID.
func (OwnershipGuard) Authorize(subjectID, ownerID string) error {
	if strings.TrimSpace(subjectID) == "" {
		return domain.ErrUnauthorized
	}
	if subjectID != ownerID {
		return domain.ErrForbidden
	}
	return nil
}
