package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/claimflow/model/claim"
	"github.com/viant/claimflow/service/dao"
)

func TestService_SaveLoad(t *testing.T) {
	ctx := context.Background()
	service := New()

	aClaim := claim.New("c-1", "CLM202601010001", "p-1")
	assert.Nil(t, service.Save(ctx, aClaim))

	loaded, err := service.Load(ctx, "c-1")
	assert.Nil(t, err)
	assert.Equal(t, aClaim.ClaimNumber, loaded.ClaimNumber)

	// Stored record is isolated from caller mutations.
	loaded.ClaimNumber = "mutated"
	reloaded, err := service.Load(ctx, "c-1")
	assert.Nil(t, err)
	assert.Equal(t, aClaim.ClaimNumber, reloaded.ClaimNumber)

	_, err = service.Load(ctx, "missing")
	assert.ErrorIs(t, err, dao.ErrNotFound)
}

func TestService_Save_VersionConflict(t *testing.T) {
	ctx := context.Background()
	service := New()

	aClaim := claim.New("c-1", "CLM202601010001", "p-1")
	assert.Nil(t, service.Save(ctx, aClaim))

	// Two writers read the same version; the first commit wins.
	first, _ := service.Load(ctx, "c-1")
	second, _ := service.Load(ctx, "c-1")

	assert.Nil(t, first.Transition(claim.StatusSubmitted, "submitted", "alice"))
	assert.Nil(t, service.Save(ctx, first))

	assert.Nil(t, second.Transition(claim.StatusCancelled, "cancelled", "bob"))
	err := service.Save(ctx, second)
	assert.ErrorIs(t, err, dao.ErrVersionConflict)

	current, err := service.Load(ctx, "c-1")
	assert.Nil(t, err)
	assert.Equal(t, claim.StatusSubmitted, current.Status)
}

func TestService_FindByCaseInstanceID(t *testing.T) {
	ctx := context.Background()
	service := New()

	aClaim := claim.New("c-1", "CLM202601010001", "p-1")
	assert.Nil(t, aClaim.CorrelateCase("run-1"))
	assert.Nil(t, service.Save(ctx, aClaim))

	found, err := service.FindByCaseInstanceID(ctx, "run-1")
	assert.Nil(t, err)
	assert.Equal(t, "c-1", found.ID)

	_, err = service.FindByCaseInstanceID(ctx, "run-2")
	assert.ErrorIs(t, err, dao.ErrNotFound)
}

func TestService_Counts(t *testing.T) {
	ctx := context.Background()
	service := New()

	first := claim.New("c-1", "CLM202601010001", "p-1")
	second := claim.New("c-2", "CLM202601010002", "p-1")
	assert.Nil(t, second.Transition(claim.StatusSubmitted, "submitted", "alice"))
	assert.Nil(t, service.Save(ctx, first))
	assert.Nil(t, service.Save(ctx, second))

	count, err := service.CountByStatus(ctx, claim.StatusDraft)
	assert.Nil(t, err)
	assert.Equal(t, 1, count)

	count, err = service.CountCreatedAfter(ctx, time.Now().Add(-time.Hour))
	assert.Nil(t, err)
	assert.Equal(t, 2, count)

	count, err = service.CountCreatedAfter(ctx, time.Now().Add(time.Hour))
	assert.Nil(t, err)
	assert.Equal(t, 0, count)
}
