// Package session holds the read-only identity of the logged-in user.
package session

import (
	"encoding/json"
	"fmt"
)

// Context carries the logged-in user's identity. It is injected into
// controllers at construction and never mutated by them.
type Context struct {
	Email string `json:"email"`
	Type  string `json:"type"`
}

// FromJSON decodes the stored user blob into a session context
func FromJSON(data []byte) (Context, error) {
	var ctx Context
	if err := json.Unmarshal(data, &ctx); err != nil {
		return Context{}, fmt.Errorf("failed to decode stored user: %w", err)
	}
	return ctx, nil
}

// IsEmployee returns true if the stored role is the employee role
func (c Context) IsEmployee() bool {
	return c.Type == "Employee"
}
