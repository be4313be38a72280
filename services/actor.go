package services

import (
	"github.com/anjiri1684/study_space/models"
	"github.com/google/uuid"
)

// Actor is the authenticated caller. Services authorize against it at the
// data boundary instead of trusting route middleware alone.
type Actor struct {
	UserID uuid.UUID
	Role   string
}

func (a Actor) IsAdmin() bool  { return a.Role == models.RoleAdmin }
func (a Actor) IsVendor() bool { return a.Role == models.RoleVendor }
