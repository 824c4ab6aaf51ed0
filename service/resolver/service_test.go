package resolver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/claimflow/model/claim"
	"github.com/viant/claimflow/model/lifecycle"
	"github.com/viant/claimflow/service/dao/claim/memory"
)

const claimID = "5e6f7a8b-9c0d-4e1f-a2b3-c4d5e6f7a8b9"

func TestService_Resolve(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name          string
		correlated    bool
		runID         string
		variables     map[string]interface{}
		expectError   error
		expectClaimID string
	}{
		{
			name:          "by case instance id",
			correlated:    true,
			runID:         "run-1",
			expectClaimID: claimID,
		},
		{
			name:          "fallback to claimCaseId variable",
			runID:         "run-1",
			variables:     map[string]interface{}{lifecycle.VarClaimCaseID: claimID},
			expectClaimID: claimID,
		},
		{
			name:        "no correlation",
			runID:       "run-1",
			expectError: ErrUnresolved,
		},
		{
			name:        "malformed claimCaseId variable",
			runID:       "run-1",
			variables:   map[string]interface{}{lifecycle.VarClaimCaseID: "not-an-id"},
			expectError: ErrUnresolved,
		},
		{
			name:        "claimCaseId points nowhere",
			runID:       "run-1",
			variables:   map[string]interface{}{lifecycle.VarClaimCaseID: "00000000-0000-4000-a000-000000000000"},
			expectError: ErrUnresolved,
		},
	}

	for _, tc := range testCases {
		claims := memory.New()
		aClaim := claim.New(claimID, "CLM202601010001", "p-1")
		if tc.correlated {
			assert.Nil(t, aClaim.CorrelateCase(tc.runID), tc.name)
		}
		assert.Nil(t, claims.Save(ctx, aClaim), tc.name)

		service := New(claims)
		resolved, err := service.Resolve(ctx, tc.runID, tc.variables)
		if tc.expectError != nil {
			assert.ErrorIs(t, err, tc.expectError, tc.name)
			continue
		}
		if !assert.Nil(t, err, tc.name) {
			continue
		}
		assert.Equal(t, tc.expectClaimID, resolved.ID, tc.name)
	}
}

func TestService_ResolveByCaseInstanceID(t *testing.T) {
	ctx := context.Background()
	claims := memory.New()
	aClaim := claim.New(claimID, "CLM202601010001", "p-1")
	assert.Nil(t, aClaim.CorrelateCase("run-1"))
	assert.Nil(t, claims.Save(ctx, aClaim))

	service := New(claims)

	resolved, err := service.ResolveByCaseInstanceID(ctx, "run-1")
	assert.Nil(t, err)
	assert.Equal(t, claimID, resolved.ID)

	_, err = service.ResolveByCaseInstanceID(ctx, "run-2")
	assert.ErrorIs(t, err, ErrUnresolved)

	_, err = service.ResolveByCaseInstanceID(ctx, "")
	assert.ErrorIs(t, err, ErrUnresolved)
}
