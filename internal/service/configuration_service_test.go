package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aerium/internal/domain"
	"aerium/internal/repository"
)

type configFixture struct {
	svc     *ConfigurationService
	catalog *CatalogService
	bones   []domain.Bone
}

// product with two editable bones and one render-only bone
func setupConfig(t *testing.T) *configFixture {
	t.Helper()
	store := repository.NewMemoryStore()
	catalog := NewCatalogService(store, repository.NewMemoryAromas(store))
	svc := NewConfigurationService(store, repository.NewMemoryGroups(store), repository.NewMemoryTx(store))

	ctx := context.Background()
	p, err := catalog.CreateProduct(ctx, domain.Product{Name: "Inhaler One", Price: 100, Type: domain.ProductTypeMain})
	require.NoError(t, err)
	bones := make([]domain.Bone, 0, 3)
	for _, spec := range []domain.Bone{
		{ProductID: p.ID, Name: "Body", DefaultDetail: "#CCCCCC", IsConfiguration: true},
		{ProductID: p.ID, Name: "Cap", DefaultDetail: "#333333", IsConfiguration: true},
		{ProductID: p.ID, Name: "Nozzle", DefaultDetail: "#000000", IsConfiguration: false},
	} {
		b, err := catalog.AddBone(ctx, spec)
		require.NoError(t, err)
		bones = append(bones, *b)
	}
	return &configFixture{svc: svc, catalog: catalog, bones: bones}
}

func ptr[T any](v T) *T { return &v }

func TestCreateGroup_KeepsValidSubset(t *testing.T) {
	ctx := context.Background()
	f := setupConfig(t)
	owner := domain.Requester{ID: 1, Role: domain.RoleUser}

	g, err := f.svc.CreateGroup(ctx, owner, false, []OverrideInput{
		{BoneID: ptr(f.bones[0].ID), ModDetail: ptr("#FF0000")},
		{BoneID: nil, ModDetail: ptr("#00FF00")},          // missing boneId: dropped
		{BoneID: ptr(f.bones[1].ID), ModDetail: nil},      // missing detail: dropped
		{BoneID: ptr(f.bones[2].ID), ModDetail: ptr("x")}, // render-only bone: dropped
		{BoneID: ptr(f.bones[1].ID), ModDetail: ptr("#0000FF")},
	})
	require.NoError(t, err)
	require.Len(t, g.Bones, 2)
	assert.Equal(t, f.bones[0].ID, g.Bones[0].BoneID)
	assert.Equal(t, "#FF0000", g.Bones[0].ModDetail)
	assert.Equal(t, f.bones[1].ID, g.Bones[1].BoneID)
	assert.Equal(t, "#0000FF", g.Bones[1].ModDetail)
	assert.Equal(t, owner.ID, g.UserID)
}

func TestCreateGroup_EmptyListFails(t *testing.T) {
	ctx := context.Background()
	f := setupConfig(t)
	_, err := f.svc.CreateGroup(ctx, domain.Requester{ID: 1, Role: domain.RoleUser}, false, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetGroup_Visibility(t *testing.T) {
	ctx := context.Background()
	f := setupConfig(t)
	owner := domain.Requester{ID: 1, Role: domain.RoleUser}
	stranger := domain.Requester{ID: 2, Role: domain.RoleUser}
	operator := domain.Requester{ID: 3, Role: domain.RoleAdmin}

	private, err := f.svc.CreateGroup(ctx, owner, false, []OverrideInput{
		{BoneID: ptr(f.bones[0].ID), ModDetail: ptr("#111111")},
	})
	require.NoError(t, err)
	shared, err := f.svc.CreateGroup(ctx, owner, true, []OverrideInput{
		{BoneID: ptr(f.bones[0].ID), ModDetail: ptr("#222222")},
	})
	require.NoError(t, err)

	_, err = f.svc.GetGroup(ctx, private.ID, stranger)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.svc.GetGroup(ctx, private.ID, owner)
	assert.NoError(t, err)
	_, err = f.svc.GetGroup(ctx, private.ID, operator)
	assert.NoError(t, err)
	_, err = f.svc.GetGroup(ctx, shared.ID, stranger)
	assert.NoError(t, err)

	_, err = f.svc.GetGroup(ctx, 999, owner)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListGroups_OwnerOrElevated(t *testing.T) {
	ctx := context.Background()
	f := setupConfig(t)
	owner := domain.Requester{ID: 1, Role: domain.RoleUser}

	first, err := f.svc.CreateGroup(ctx, owner, false, []OverrideInput{
		{BoneID: ptr(f.bones[0].ID), ModDetail: ptr("#111111")},
	})
	require.NoError(t, err)
	second, err := f.svc.CreateGroup(ctx, owner, false, []OverrideInput{
		{BoneID: ptr(f.bones[1].ID), ModDetail: ptr("#222222")},
	})
	require.NoError(t, err)

	list, err := f.svc.ListGroups(ctx, owner.ID, owner)
	require.NoError(t, err)
	require.Len(t, list, 2)
	// newest first
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	_, err = f.svc.ListGroups(ctx, owner.ID, domain.Requester{ID: 2, Role: domain.RoleUser})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.svc.ListGroups(ctx, owner.ID, domain.Requester{ID: 2, Role: domain.RoleOwner})
	assert.NoError(t, err)
}

func TestUpdateGroup_ReplacesOverridesWholesale(t *testing.T) {
	ctx := context.Background()
	f := setupConfig(t)
	owner := domain.Requester{ID: 1, Role: domain.RoleUser}

	g, err := f.svc.CreateGroup(ctx, owner, false, []OverrideInput{
		{BoneID: ptr(f.bones[0].ID), ModDetail: ptr("#111111")},
		{BoneID: ptr(f.bones[1].ID), ModDetail: ptr("#222222")},
	})
	require.NoError(t, err)

	updated, err := f.svc.UpdateGroup(ctx, g.ID, owner, GroupUpdate{
		Overrides: []OverrideInput{{BoneID: ptr(f.bones[1].ID), ModDetail: ptr("#333333")}},
	})
	require.NoError(t, err)
	require.Len(t, updated.Bones, 1)
	assert.Equal(t, f.bones[1].ID, updated.Bones[0].BoneID)
	assert.Equal(t, "#333333", updated.Bones[0].ModDetail)
}

func TestUpdateGroup_ShareStatusIndependent(t *testing.T) {
	ctx := context.Background()
	f := setupConfig(t)
	owner := domain.Requester{ID: 1, Role: domain.RoleUser}

	g, err := f.svc.CreateGroup(ctx, owner, false, []OverrideInput{
		{BoneID: ptr(f.bones[0].ID), ModDetail: ptr("#111111")},
	})
	require.NoError(t, err)

	updated, err := f.svc.UpdateGroup(ctx, g.ID, owner, GroupUpdate{ShareStatus: ptr(true)})
	require.NoError(t, err)
	assert.True(t, updated.ShareStatus)
	// overrides untouched
	require.Len(t, updated.Bones, 1)
	assert.Equal(t, "#111111", updated.Bones[0].ModDetail)
}

func TestUpdateGroup_Authorization(t *testing.T) {
	ctx := context.Background()
	f := setupConfig(t)
	owner := domain.Requester{ID: 1, Role: domain.RoleUser}

	g, err := f.svc.CreateGroup(ctx, owner, false, []OverrideInput{
		{BoneID: ptr(f.bones[0].ID), ModDetail: ptr("#111111")},
	})
	require.NoError(t, err)

	_, err = f.svc.UpdateGroup(ctx, g.ID, domain.Requester{ID: 2, Role: domain.RoleUser}, GroupUpdate{ShareStatus: ptr(true)})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.svc.UpdateGroup(ctx, g.ID, domain.Requester{ID: 2, Role: domain.RoleAdmin}, GroupUpdate{ShareStatus: ptr(true)})
	assert.NoError(t, err)
}
