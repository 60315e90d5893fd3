package entity

import "time"

// Officer is a human reviewer. Role is immutable after onboarding; only
// active officers are eligible for assignment. Workload is derived by query,
// never stored on the record.
type Officer struct {
	ID        int64       `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      OfficerRole `json:"role"`
	Active    bool        `json:"active"`
	Priority  int         `json:"priority"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}
