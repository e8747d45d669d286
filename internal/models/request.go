package models

import (
	"time"
)

// RequestStatus is the lifecycle state of a skill request
type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusAccepted  RequestStatus = "accepted"
	StatusRejected  RequestStatus = "rejected"
	StatusCompleted RequestStatus = "completed"
)

// requestTransitions lists, for every target status, the states it may be entered from.
var requestTransitions = map[RequestStatus][]RequestStatus{
	StatusAccepted:  {StatusPending},
	StatusRejected:  {StatusPending},
	StatusCompleted: {StatusAccepted},
}

// Valid reports whether the status is one of the enumerated values.
func (s RequestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected, StatusCompleted:
		return true
	default:
		return false
	}
}

// AllowedFrom returns the states from which s may be entered. Pending is the
// initial state and cannot be re-entered.
func (s RequestStatus) AllowedFrom() []RequestStatus {
	return requestTransitions[s]
}

// SkillRequest is a negotiation between a requester and a skill owner.
// RequestedSkill is a snapshot of the skill name at creation time; SkillID
// becomes nil once the owner deletes the listing.
type SkillRequest struct {
	ID             int64         `json:"id" db:"id"`
	RequesterID    int64         `json:"requester_id" db:"requester_id"`
	SkillOwnerID   int64         `json:"skill_owner_id" db:"skill_owner_id"`
	SkillID        *int64        `json:"skill_id" db:"skill_id"`
	RequestedSkill string        `json:"requested_skill" db:"requested_skill"`
	OfferedSkill   string        `json:"offered_skill" db:"offered_skill"`
	Message        *string       `json:"message" db:"message"`
	Status         RequestStatus `json:"status" db:"status"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at" db:"updated_at"`

	// Counterparty fields, populated by the received/sent listings
	RequesterUsername string `json:"requester_username,omitempty"`
	RequesterName     string `json:"requester_name,omitempty"`
	OwnerUsername     string `json:"owner_username,omitempty"`
	OwnerName         string `json:"owner_name,omitempty"`
}

// CreateRequestInput represents a request submitted against a listing
type CreateRequestInput struct {
	SkillID      int64   `json:"skill_id" validate:"required,gt=0"`
	OfferedSkill string  `json:"offered_skill" validate:"required,max=255"`
	Message      *string `json:"message" validate:"omitempty,max=2000"`
}

// CreateRequestParams contains write parameters for creating requests
type CreateRequestParams struct {
	RequesterID    int64
	SkillOwnerID   int64
	SkillID        int64
	RequestedSkill string
	OfferedSkill   string
	Message        *string
}

// StatusUpdate is the body of a status change
type StatusUpdate struct {
	Status RequestStatus `json:"status" validate:"required"`
}

// StatusTransition describes a guarded status change. The store applies it
// only when the row belongs to OwnerID and its current status is in AllowedFrom.
type StatusTransition struct {
	RequestID   int64
	OwnerID     int64
	To          RequestStatus
	AllowedFrom []RequestStatus
}

// StatusChange is one entry of a request's status history
type StatusChange struct {
	ID         int64          `json:"id" db:"id"`
	RequestID  int64          `json:"request_id" db:"request_id"`
	FromStatus *RequestStatus `json:"from_status" db:"from_status"`
	ToStatus   RequestStatus  `json:"to_status" db:"to_status"`
	ChangedBy  int64          `json:"changed_by" db:"changed_by"`
	ChangedAt  time.Time      `json:"changed_at" db:"changed_at"`
}
