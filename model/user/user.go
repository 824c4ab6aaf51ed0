// Package user holds the identity entity used for assignment and audit.
package user

// User identifies an actor performing claim operations. Username is the
// identity handed to the engine for task routing.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName,omitempty"`
	Email    string `json:"email,omitempty"`
}
