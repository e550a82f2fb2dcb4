package models

import (
	"time"
)

type UserPlan string

const (
	PlanFree    UserPlan = "free"
	PlanPremium UserPlan = "premium"
	PlanPro     UserPlan = "pro"
)

// User is an account holder. GenerationsUsed counts AI generations since
// UsageResetAt and backs plan-level usage reporting.
type User struct {
	ID              int64     `json:"id" db:"id"`
	Username        string    `json:"username" db:"username"`
	Email           string    `json:"email" db:"email"`
	PasswordHash    string    `json:"-" db:"password_hash"`
	Plan            UserPlan  `json:"plan" db:"plan"`
	GenerationsUsed int64     `json:"generations_used" db:"generations_used"`
	UsageResetAt    time.Time `json:"usage_reset_at" db:"usage_reset_at"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}
