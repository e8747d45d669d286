package models

import (
	"time"
)

// ProficiencyLevel is the self-declared mastery of a listed skill
type ProficiencyLevel string

const (
	ProficiencyBeginner     ProficiencyLevel = "Beginner"
	ProficiencyIntermediate ProficiencyLevel = "Intermediate"
	ProficiencyAdvanced     ProficiencyLevel = "Advanced"
	ProficiencyExpert       ProficiencyLevel = "Expert"
)

// Valid reports whether the level is one of the enumerated values.
func (p ProficiencyLevel) Valid() bool {
	switch p {
	case ProficiencyBeginner, ProficiencyIntermediate, ProficiencyAdvanced, ProficiencyExpert:
		return true
	default:
		return false
	}
}

// Skill represents a listing owned by a user
type Skill struct {
	ID               int64            `json:"id" db:"id"`
	UserID           int64            `json:"user_id" db:"user_id"`
	Name             string           `json:"skill_name" db:"skill_name"`
	Description      *string          `json:"description" db:"description"`
	ProficiencyLevel ProficiencyLevel `json:"proficiency_level" db:"proficiency_level"`
	Category         *string          `json:"category" db:"category"`
	Available        bool             `json:"available" db:"available"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
}

// CatalogSkill is a publicly browsable listing joined with its owner
type CatalogSkill struct {
	Skill
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Location string `json:"location"`
}

// SkillFilter narrows the public catalog. Empty fields do not filter.
type SkillFilter struct {
	Category string
	Search   string
}

// CreateSkillRequest represents a new listing submitted by its owner
type CreateSkillRequest struct {
	Name             string           `json:"skill_name" validate:"required,max=255"`
	Description      *string          `json:"description" validate:"omitempty,max=2000"`
	ProficiencyLevel ProficiencyLevel `json:"proficiency_level" validate:"required,oneof=Beginner Intermediate Advanced Expert"`
	Category         *string          `json:"category" validate:"omitempty,max=100"`
}

// SkillUpdate carries a partial listing update. Nil fields are left unchanged.
type SkillUpdate struct {
	Name             *string           `json:"skill_name" validate:"omitempty,min=1,max=255"`
	Description      *string           `json:"description" validate:"omitempty,max=2000"`
	ProficiencyLevel *ProficiencyLevel `json:"proficiency_level" validate:"omitempty,oneof=Beginner Intermediate Advanced Expert"`
	Category         *string           `json:"category" validate:"omitempty,max=100"`
	Available        *bool             `json:"available"`
}

// CreateSkillParams contains write parameters for creating skills
type CreateSkillParams struct {
	UserID           int64
	Name             string
	Description      *string
	ProficiencyLevel ProficiencyLevel
	Category         *string
}
