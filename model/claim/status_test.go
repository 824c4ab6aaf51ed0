package claim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_CanTransitionTo(t *testing.T) {
	allowed := map[Status][]Status{
		StatusDraft:             {StatusSubmitted, StatusCancelled},
		StatusSubmitted:         {StatusUnderReview, StatusCancelled},
		StatusUnderReview:       {StatusInvestigating, StatusApproved, StatusRejected, StatusCancelled},
		StatusInvestigating:     {StatusApproved, StatusRejected, StatusCancelled},
		StatusApproved:          {StatusPaymentProcessing, StatusCancelled},
		StatusPaymentProcessing: {StatusPaid, StatusCancelled},
		StatusPaid:              {StatusClosed},
		StatusRejected:          {},
		StatusClosed:            {},
		StatusCancelled:         {},
	}
	all := []Status{
		StatusDraft, StatusSubmitted, StatusUnderReview, StatusInvestigating,
		StatusApproved, StatusRejected, StatusPaymentProcessing, StatusPaid,
		StatusClosed, StatusCancelled,
	}
	for source, targets := range allowed {
		legal := map[Status]bool{}
		for _, target := range targets {
			legal[target] = true
		}
		for _, target := range all {
			assert.Equal(t, legal[target], source.CanTransitionTo(target),
				"%v -> %v", source, target)
		}
	}
}

func TestStatus_IsTerminal(t *testing.T) {
	testCases := []struct {
		status Status
		expect bool
	}{
		{StatusRejected, true},
		{StatusClosed, true},
		{StatusCancelled, true},
		{StatusDraft, false},
		{StatusPaid, false},
		{StatusPaymentProcessing, false},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expect, tc.status.IsTerminal(), "%v", tc.status)
	}
}

func TestParseStatus(t *testing.T) {
	testCases := []struct {
		name        string
		input       string
		expect      Status
		expectError bool
	}{
		{name: "valid", input: "UNDER_REVIEW", expect: StatusUnderReview},
		{name: "terminal", input: "CLOSED", expect: StatusClosed},
		{name: "unknown", input: "SHIPPED", expectError: true},
		{name: "lower case", input: "draft", expectError: true},
		{name: "empty", input: "", expectError: true},
	}
	for _, tc := range testCases {
		actual, err := ParseStatus(tc.input)
		if tc.expectError {
			assert.ErrorIs(t, err, ErrInvalidStatus, tc.name)
			continue
		}
		if !assert.Nil(t, err, tc.name) {
			continue
		}
		assert.Equal(t, tc.expect, actual, tc.name)
	}
}
