package chat

import "time"

// Session bounds one employer visit against a twin. Created once, never
// mutated afterward.
type Session struct {
	ID           string    `json:"id"`
	TwinID       string    `json:"twinId"`
	EmployerName string    `json:"employerName"`
	CreatedAt    time.Time `json:"createdAt"`
}
