package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aerium/internal/domain"
	"aerium/internal/repository"
)

type cartFixture struct {
	svc       *CartService
	catalog   *CatalogService
	inhaler   *domain.Product
	accessory *domain.Product
	white     *domain.ProductColor
	aroma     *domain.Aroma
}

func setupCart(t *testing.T) *cartFixture {
	t.Helper()
	store := repository.NewMemoryStore()
	aromas := repository.NewMemoryAromas(store)
	catalog := NewCatalogService(store, aromas)
	svc := NewCartService(store, aromas, repository.NewMemoryGroups(store), repository.NewMemoryCart(store))

	ctx := context.Background()
	inhaler, err := catalog.CreateProduct(ctx, domain.Product{Name: "Inhaler One", Price: 100, Type: domain.ProductTypeMain})
	require.NoError(t, err)
	accessory, err := catalog.CreateProduct(ctx, domain.Product{Name: "Carry Case", Price: 15, Type: domain.ProductTypeAccessory})
	require.NoError(t, err)
	white, err := catalog.AddColor(ctx, domain.ProductColor{ProductID: accessory.ID, ColorCode: "#FFFFFF", ColorName: "White"})
	require.NoError(t, err)
	aroma, err := catalog.CreateAroma(ctx, domain.Aroma{Name: "Mint", Price: 10})
	require.NoError(t, err)
	return &cartFixture{svc: svc, catalog: catalog, inhaler: inhaler, accessory: accessory, white: white, aroma: aroma}
}

var buyer = domain.Requester{ID: 1, Role: domain.RoleUser}

func TestAddItem_PriceFromFormula(t *testing.T) {
	ctx := context.Background()
	f := setupCart(t)

	line, err := f.svc.AddItem(ctx, buyer, AddItemInput{
		ProductID: f.inhaler.ID,
		AromaID:   &f.aroma.ID,
		Quantity:  2,
	})
	require.NoError(t, err)
	assert.InDelta(t, 220, line.Price, 1e-9)
	assert.True(t, line.IsUsed)
	assert.Nil(t, line.OrderID)
	require.NotNil(t, line.Product)
	assert.Equal(t, f.inhaler.ID, line.Product.ID)
	require.NotNil(t, line.Aroma)
	assert.Equal(t, "Mint", line.Aroma.Name)
}

func TestAddItem_UnknownProduct(t *testing.T) {
	ctx := context.Background()
	f := setupCart(t)
	_, err := f.svc.AddItem(ctx, buyer, AddItemInput{ProductID: 999})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAddItem_SelectedColorByCode(t *testing.T) {
	ctx := context.Background()
	f := setupCart(t)

	line, err := f.svc.AddItem(ctx, buyer, AddItemInput{
		ProductID:     f.accessory.ID,
		SelectedColor: "#FFFFFF",
	})
	require.NoError(t, err)
	require.NotNil(t, line.ProductColorID)
	assert.Equal(t, f.white.ID, *line.ProductColorID)
	require.NotNil(t, line.Color)
	assert.Equal(t, "White", line.Color.ColorName)
}

func TestAddItem_SelectedColorMissIsNotAnError(t *testing.T) {
	ctx := context.Background()
	f := setupCart(t)

	line, err := f.svc.AddItem(ctx, buyer, AddItemInput{
		ProductID:     f.accessory.ID,
		SelectedColor: "#ffffff", // case-sensitive match, so this misses
	})
	require.NoError(t, err)
	assert.Nil(t, line.ProductColorID)
}

func TestAddItem_SelectedColorNumericID(t *testing.T) {
	ctx := context.Background()
	f := setupCart(t)

	line, err := f.svc.AddItem(ctx, buyer, AddItemInput{
		ProductID:     f.accessory.ID,
		SelectedColor: "1",
	})
	require.NoError(t, err)
	require.NotNil(t, line.ProductColorID)
	assert.Equal(t, int64(1), *line.ProductColorID)
}

func TestAddItem_SelectedColorIgnoredForMainProduct(t *testing.T) {
	ctx := context.Background()
	f := setupCart(t)

	line, err := f.svc.AddItem(ctx, buyer, AddItemInput{
		ProductID:     f.inhaler.ID,
		SelectedColor: "#FFFFFF",
	})
	require.NoError(t, err)
	assert.Nil(t, line.ProductColorID)
}

func TestAddItem_ExplicitColorIDWins(t *testing.T) {
	ctx := context.Background()
	f := setupCart(t)

	explicit := int64(42)
	line, err := f.svc.AddItem(ctx, buyer, AddItemInput{
		ProductID:      f.accessory.ID,
		ProductColorID: &explicit,
		SelectedColor:  "#FFFFFF",
	})
	require.NoError(t, err)
	require.NotNil(t, line.ProductColorID)
	assert.Equal(t, explicit, *line.ProductColorID)
}

func TestGetCart_TotalIsSumOfPrices(t *testing.T) {
	ctx := context.Background()
	f := setupCart(t)

	_, err := f.svc.AddItem(ctx, buyer, AddItemInput{ProductID: f.inhaler.ID, Quantity: 2})
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, buyer, AddItemInput{ProductID: f.accessory.ID})
	require.NoError(t, err)
	// someone else's line must not leak in
	_, err = f.svc.AddItem(ctx, domain.Requester{ID: 2, Role: domain.RoleUser}, AddItemInput{ProductID: f.inhaler.ID})
	require.NoError(t, err)

	view, err := f.svc.GetCart(ctx, buyer)
	require.NoError(t, err)
	require.Len(t, view.Lines, 2)
	assert.InDelta(t, 215, view.Total, 1e-9)
}

func TestUpdateItem_RecomputesFromFormula(t *testing.T) {
	ctx := context.Background()
	f := setupCart(t)

	line, err := f.svc.AddItem(ctx, buyer, AddItemInput{
		ProductID: f.inhaler.ID,
		AromaID:   &f.aroma.ID,
		Quantity:  2,
	})
	require.NoError(t, err)
	require.InDelta(t, 220, line.Price, 1e-9)

	updated, err := f.svc.UpdateItem(ctx, line.ID, buyer, 3, false, nil)
	require.NoError(t, err)
	// (100 + 10) * 3, not a rescale of the stored 220
	assert.InDelta(t, 330, updated.Price, 1e-9)
	assert.Equal(t, int64(3), updated.Quantity)
}

func TestUpdateItem_ColorKeyPresenceSemantics(t *testing.T) {
	ctx := context.Background()
	f := setupCart(t)

	line, err := f.svc.AddItem(ctx, buyer, AddItemInput{
		ProductID:     f.accessory.ID,
		SelectedColor: "#FFFFFF",
	})
	require.NoError(t, err)
	require.NotNil(t, line.ProductColorID)

	// key absent: stored color preserved
	updated, err := f.svc.UpdateItem(ctx, line.ID, buyer, 2, false, nil)
	require.NoError(t, err)
	require.NotNil(t, updated.ProductColorID)

	// key present with null: stored color cleared
	updated, err = f.svc.UpdateItem(ctx, line.ID, buyer, 2, true, nil)
	require.NoError(t, err)
	assert.Nil(t, updated.ProductColorID)
}

func TestUpdateItem_Validation(t *testing.T) {
	ctx := context.Background()
	f := setupCart(t)

	line, err := f.svc.AddItem(ctx, buyer, AddItemInput{ProductID: f.inhaler.ID})
	require.NoError(t, err)

	_, err = f.svc.UpdateItem(ctx, line.ID, buyer, 0, false, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = f.svc.UpdateItem(ctx, line.ID, domain.Requester{ID: 2, Role: domain.RoleUser}, 2, false, nil)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.svc.UpdateItem(ctx, 999, buyer, 2, false, nil)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRemoveItem_SoftDelete(t *testing.T) {
	ctx := context.Background()
	f := setupCart(t)

	line, err := f.svc.AddItem(ctx, buyer, AddItemInput{ProductID: f.inhaler.ID})
	require.NoError(t, err)

	err = f.svc.RemoveItem(ctx, line.ID, domain.Requester{ID: 2, Role: domain.RoleUser})
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, f.svc.RemoveItem(ctx, line.ID, buyer))

	view, err := f.svc.GetCart(ctx, buyer)
	require.NoError(t, err)
	assert.Len(t, view.Lines, 0)

	// soft-deleted line reads as not found
	_, err = f.svc.UpdateItem(ctx, line.ID, buyer, 2, false, nil)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
