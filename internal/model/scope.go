package model

import "github.com/google/uuid"

type ScopeType string

const (
	ScopeAll     ScopeType = "ALL"
	ScopeOfficer ScopeType = "OFFICER"
)

// Scope limits which violations a principal can read.
type Scope struct {
	Type      ScopeType
	OfficerID *uuid.UUID
}

func (s Scope) AllowsViolation(officerID uuid.UUID) bool {
	if s.Type == ScopeAll {
		return true
	}
	return s.Type == ScopeOfficer && s.OfficerID != nil && *s.OfficerID == officerID
}
