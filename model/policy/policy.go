// Package policy holds the insurance policy entity referenced by claims.
package policy

import "time"

// Policy is a read-only input to claim decisioning; coverage amount and
// policy type feed the engine's decision table.
type Policy struct {
	ID             string    `json:"id"`
	PolicyNumber   string    `json:"policyNumber"`
	PolicyType     string    `json:"policyType"`
	HolderName     string    `json:"holderName,omitempty"`
	CoverageAmount float64   `json:"coverageAmount"`
	StartDate      time.Time `json:"startDate,omitempty"`
	EndDate        time.Time `json:"endDate,omitempty"`
}
