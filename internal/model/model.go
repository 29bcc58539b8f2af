package model

import "time"

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSupervisor Role = "supervisor"
	RoleStudent    Role = "student"
)

func ParseRole(value string) (Role, bool) {
	switch Role(value) {
	case RoleAdmin, RoleSupervisor, RoleStudent:
		return Role(value), true
	default:
		return "", false
	}
}

type Admin struct {
	ID           string
	Email        string
	PasswordHash string
	RefreshToken *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Supervisor struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Department   string
	RefreshToken *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Student struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	RollNumber   string
	AddedBy      string
	RefreshToken *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type ItemStatus string

const (
	StatusPending  ItemStatus = "pending"
	StatusApproved ItemStatus = "approved"
	StatusRejected ItemStatus = "rejected"
)

type Proposal struct {
	ID           string
	Title        string
	Description  string
	SubmittedBy  string
	SupervisorID string
	Status       ItemStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Project struct {
	ID           string
	Title        string
	SubmittedBy  string
	SupervisorID string
	FileURL      string
	FileID       string
	Status       ItemStatus
	ProposalID   *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PersonSummary is the public projection embedded in project and proposal
// listings. Password hashes and refresh tokens never leave the repository.
type PersonSummary struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	RollNumber string `json:"rollNumber,omitempty"`
}

type ProjectCounts struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}
