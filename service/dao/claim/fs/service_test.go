package fs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/claimflow/model/claim"
	"github.com/viant/claimflow/service/dao"
)

func TestService_SaveLoadDelete(t *testing.T) {
	ctx := context.Background()
	service, err := New(t.TempDir())
	assert.Nil(t, err)

	aClaim := claim.New("c-1", "CLM202601010001", "p-1")
	assert.Nil(t, aClaim.CorrelateCase("run-1"))
	assert.Nil(t, service.Save(ctx, aClaim))

	loaded, err := service.Load(ctx, "c-1")
	assert.Nil(t, err)
	assert.Equal(t, aClaim.ClaimNumber, loaded.ClaimNumber)
	assert.Equal(t, aClaim.Status, loaded.Status)

	found, err := service.FindByCaseInstanceID(ctx, "run-1")
	assert.Nil(t, err)
	assert.Equal(t, "c-1", found.ID)

	found, err = service.FindByClaimNumber(ctx, "CLM202601010001")
	assert.Nil(t, err)
	assert.Equal(t, "c-1", found.ID)

	count, err := service.CountByStatus(ctx, claim.StatusDraft)
	assert.Nil(t, err)
	assert.Equal(t, 1, count)

	assert.Nil(t, service.Delete(ctx, "c-1"))
	_, err = service.Load(ctx, "c-1")
	assert.ErrorIs(t, err, dao.ErrNotFound)
	assert.ErrorIs(t, service.Delete(ctx, "c-1"), dao.ErrNotFound)
}

func TestService_ListFiltersByStatus(t *testing.T) {
	ctx := context.Background()
	service, err := New(t.TempDir())
	assert.Nil(t, err)

	first := claim.New("c-1", "CLM202601010001", "p-1")
	second := claim.New("c-2", "CLM202601010002", "p-1")
	assert.Nil(t, second.Transition(claim.StatusSubmitted, "submitted", "alice"))
	assert.Nil(t, service.Save(ctx, first))
	assert.Nil(t, service.Save(ctx, second))

	all, err := service.List(ctx)
	assert.Nil(t, err)
	assert.Len(t, all, 2)

	drafts, err := service.List(ctx, dao.NewParameter("Status", string(claim.StatusDraft)))
	assert.Nil(t, err)
	if assert.Len(t, drafts, 1) {
		assert.Equal(t, "c-1", drafts[0].ID)
	}
}
