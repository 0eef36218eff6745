package models

import (
	"time"

	"gorm.io/gorm"
)

// Grievance statuses (citizen-visible progress state)
const (
	StatusPending    = "PENDING"
	StatusInProgress = "IN_PROGRESS"
	StatusResolved   = "RESOLVED"
	StatusClosed     = "CLOSED"
	StatusRejected   = "REJECTED"
)

// Verification statuses (administrative quality gate, independent of Status)
const (
	VerificationPending  = "PENDING"
	VerificationApproved = "APPROVED"
	VerificationRejected = "REJECTED"
)

// User roles
const (
	RoleCitizen = "CITIZEN"
	RoleOfficer = "OFFICER"
	RoleAdmin   = "ADMIN"
)

// ValidStatus reports whether s is a recognized grievance status literal.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusResolved, StatusClosed, StatusRejected:
		return true
	}
	return false
}

// TerminalStatus reports whether s admits no further status updates.
// Reopening is the only way out of a terminal status.
func TerminalStatus(s string) bool {
	return s == StatusClosed || s == StatusRejected
}

// User represents a citizen, officer or admin account
type User struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	FullName   string         `gorm:"size:200;not null" json:"full_name"`
	Email      string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password   string         `gorm:"size:255" json:"-"` // bcrypt hash
	Role       string         `gorm:"size:50;default:CITIZEN" json:"role"`
	Department string         `gorm:"size:100" json:"department"` // meaningful for officers
	IsActive   bool           `gorm:"default:true" json:"is_active"`
	LastLogin  *time.Time     `json:"last_login"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsOfficer reports whether the user can be assigned grievances.
func (u *User) IsOfficer() bool {
	return u.Role == RoleOfficer
}

// Grievance represents a citizen-submitted complaint tracked through
// verification, assignment and resolution.
type Grievance struct {
	ID          uint     `gorm:"primaryKey" json:"id"`
	Title       string   `gorm:"size:200;not null" json:"title"`
	Category    string   `gorm:"size:100;not null;index" json:"category"`
	Location    string   `gorm:"size:500;not null;index" json:"location"`
	Description string   `gorm:"type:text" json:"description"`
	ImagePath   string   `gorm:"size:255" json:"image_path"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`

	Status             string `gorm:"size:50;not null;default:PENDING;index" json:"status"`
	VerificationStatus string `gorm:"size:50;not null;default:PENDING" json:"verification_status"`
	VerificationReason string `gorm:"type:text" json:"verification_reason"`
	RejectionReason    string `gorm:"type:text" json:"rejection_reason"`
	ReopenReason       string `gorm:"type:text" json:"reopen_reason"`

	CitizenID         uint   `gorm:"index;not null" json:"citizen_id"`
	Citizen           *User  `gorm:"foreignKey:CitizenID" json:"citizen,omitempty"`
	AssignedOfficerID *uint  `gorm:"index" json:"assigned_officer_id"`
	AssignedOfficer   *User  `gorm:"foreignKey:AssignedOfficerID" json:"assigned_officer,omitempty"`
	Department        string `gorm:"size:100" json:"department"`
	OfficerRemarks    string `gorm:"type:text" json:"officer_remarks"`

	FeedbackSubmitted bool           `gorm:"default:false" json:"feedback_submitted"`
	CreatedAt         time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	ResolvedAt        *time.Time     `json:"resolved_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsResolved reports whether the grievance is in the RESOLVED status.
func (g *Grievance) IsResolved() bool {
	return g.Status == StatusResolved
}

// IsVerified reports whether the grievance passed the verification gate.
func (g *Grievance) IsVerified() bool {
	return g.VerificationStatus == VerificationApproved
}

// ResolutionDays returns the whole days between creation and resolution,
// or -1 when the grievance has not been resolved.
func (g *Grievance) ResolutionDays() int {
	if g.ResolvedAt == nil {
		return -1
	}
	return int(g.ResolvedAt.Sub(g.CreatedAt).Hours() / 24)
}

// Feedback represents a citizen's post-resolution satisfaction rating.
// At most one feedback exists per grievance.
type Feedback struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	GrievanceID uint       `gorm:"uniqueIndex;not null" json:"grievance_id"`
	Grievance   *Grievance `gorm:"foreignKey:GrievanceID" json:"grievance,omitempty"`
	UserID      uint       `gorm:"index;not null" json:"user_id"`
	User        *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Rating      int        `gorm:"not null" json:"rating"` // 1 to 5
	Comment     string     `gorm:"type:text" json:"comment"`
	IsReopened  bool       `gorm:"default:false" json:"is_reopened"`
	CreatedAt   time.Time  `json:"created_at"`
}

// AuditLog records lifecycle transitions and admin write operations
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Level     string    `gorm:"size:20;index" json:"level"` // info, warning, error
	Module    string    `gorm:"size:100;index" json:"module"`
	Action    string    `gorm:"size:200;index" json:"action"`
	Message   string    `gorm:"type:text" json:"message"`
	UserID    *uint     `json:"user_id"`
	IP        string    `gorm:"size:50" json:"ip"`
	UserAgent string    `gorm:"size:500" json:"user_agent"`
	Extra     string    `gorm:"type:text" json:"extra"` // JSON extra data
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName overrides
func (User) TableName() string      { return "users" }
func (Grievance) TableName() string { return "grievances" }
func (Feedback) TableName() string  { return "feedbacks" }
func (AuditLog) TableName() string  { return "audit_logs" }
