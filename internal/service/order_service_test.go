package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aerium/internal/domain"
	"aerium/internal/repository"
)

type orderFixture struct {
	cart    *CartService
	orders  *OrderService
	inhaler *domain.Product
	aroma   *domain.Aroma
}

func setupOrders(t *testing.T) *orderFixture {
	t.Helper()
	store := repository.NewMemoryStore()
	aromas := repository.NewMemoryAromas(store)
	catalog := NewCatalogService(store, aromas)
	cartRepo := repository.NewMemoryCart(store)
	cart := NewCartService(store, aromas, repository.NewMemoryGroups(store), cartRepo)
	orders := NewOrderService(cartRepo, repository.NewMemoryOrders(store), cart, repository.NewMemoryTx(store))

	ctx := context.Background()
	inhaler, err := catalog.CreateProduct(ctx, domain.Product{Name: "Inhaler One", Price: 100, Type: domain.ProductTypeMain})
	require.NoError(t, err)
	aroma, err := catalog.CreateAroma(ctx, domain.Aroma{Name: "Mint", Price: 10})
	require.NoError(t, err)
	return &orderFixture{cart: cart, orders: orders, inhaler: inhaler, aroma: aroma}
}

func (f *orderFixture) fillCart(t *testing.T, requester domain.Requester) {
	t.Helper()
	ctx := context.Background()
	_, err := f.cart.AddItem(ctx, requester, AddItemInput{ProductID: f.inhaler.ID, AromaID: &f.aroma.ID, Quantity: 2})
	require.NoError(t, err)
	_, err = f.cart.AddItem(ctx, requester, AddItemInput{ProductID: f.inhaler.ID})
	require.NoError(t, err)
}

func TestCreateOrder_ConsumesActiveLines(t *testing.T) {
	ctx := context.Background()
	f := setupOrders(t)
	f.fillCart(t, buyer)

	d, err := f.orders.CreateOrder(ctx, buyer)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusWaiting, d.Order.Status)
	assert.Equal(t, buyer.ID, d.Order.UserID)
	require.Len(t, d.Lines, 2)
	for _, l := range d.Lines {
		require.NotNil(t, l.OrderID)
		assert.Equal(t, d.Order.ID, *l.OrderID)
		assert.False(t, l.IsUsed)
	}

	// the cart is now empty, lines belong to the order
	view, err := f.cart.GetCart(ctx, buyer)
	require.NoError(t, err)
	assert.Len(t, view.Lines, 0)

	_, err = f.orders.CreateOrder(ctx, buyer)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCreateOrder_TotalIsPriceTimesQuantity(t *testing.T) {
	ctx := context.Background()
	f := setupOrders(t)
	f.fillCart(t, buyer)

	d, err := f.orders.CreateOrder(ctx, buyer)
	require.NoError(t, err)
	// line prices 220 and 100 already carry the quantity, the order
	// total multiplies by quantity again: 220*2 + 100*1
	assert.InDelta(t, 540, d.Total, 1e-9)
}

func TestConfirmPayment_StrictWaitingToPending(t *testing.T) {
	ctx := context.Background()
	f := setupOrders(t)
	f.fillCart(t, buyer)

	d, err := f.orders.CreateOrder(ctx, buyer)
	require.NoError(t, err)

	_, err = f.orders.ConfirmPayment(ctx, d.Order.ID, domain.Requester{ID: 2, Role: domain.RoleAdmin})
	assert.ErrorIs(t, err, ErrForbidden)

	confirmed, err := f.orders.ConfirmPayment(ctx, d.Order.ID, buyer)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, confirmed.Order.Status)

	// second confirmation fails, the order left WAITING
	_, err = f.orders.ConfirmPayment(ctx, d.Order.ID, buyer)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestSetStatus_NoTransitionTable(t *testing.T) {
	ctx := context.Background()
	f := setupOrders(t)
	f.fillCart(t, buyer)

	d, err := f.orders.CreateOrder(ctx, buyer)
	require.NoError(t, err)

	updated, err := f.orders.SetStatus(ctx, d.Order.ID, domain.OrderStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCompleted, updated.Order.Status)

	// even out of a terminal status
	updated, err = f.orders.SetStatus(ctx, d.Order.ID, domain.OrderStatusWaiting)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusWaiting, updated.Order.Status)

	_, err = f.orders.SetStatus(ctx, d.Order.ID, domain.OrderStatus("SHIPPED"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetOrder_OwnerOrElevated(t *testing.T) {
	ctx := context.Background()
	f := setupOrders(t)
	f.fillCart(t, buyer)

	d, err := f.orders.CreateOrder(ctx, buyer)
	require.NoError(t, err)

	_, err = f.orders.GetOrder(ctx, d.Order.ID, domain.Requester{ID: 2, Role: domain.RoleUser})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.orders.GetOrder(ctx, d.Order.ID, buyer)
	assert.NoError(t, err)
	_, err = f.orders.GetOrder(ctx, d.Order.ID, domain.Requester{ID: 2, Role: domain.RoleAdmin})
	assert.NoError(t, err)
	_, err = f.orders.GetOrder(ctx, 999, buyer)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListOrders_FilterAndPaging(t *testing.T) {
	ctx := context.Background()
	f := setupOrders(t)
	other := domain.Requester{ID: 2, Role: domain.RoleUser}

	f.fillCart(t, buyer)
	first, err := f.orders.CreateOrder(ctx, buyer)
	require.NoError(t, err)
	f.fillCart(t, other)
	_, err = f.orders.CreateOrder(ctx, other)
	require.NoError(t, err)

	all, total, err := f.orders.ListOrders(ctx, repository.OrderFilter{}, repository.Page{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, all, 2)

	mine, total, err := f.orders.ListOrders(ctx, repository.OrderFilter{UserID: &buyer.ID}, repository.Page{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, mine, 1)
	assert.Equal(t, first.Order.ID, mine[0].Order.ID)

	paged, total, err := f.orders.ListOrders(ctx, repository.OrderFilter{}, repository.Page{Offset: 1, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, paged, 1)
}

func TestDeleteOrder_LinesSurvive(t *testing.T) {
	ctx := context.Background()
	f := setupOrders(t)
	f.fillCart(t, buyer)

	d, err := f.orders.CreateOrder(ctx, buyer)
	require.NoError(t, err)
	lineID := d.Lines[0].ID

	require.NoError(t, f.orders.DeleteOrder(ctx, d.Order.ID))
	_, err = f.orders.GetOrder(ctx, d.Order.ID, buyer)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	// no cascade: the consumed line keeps its orderId and stays inactive
	view, err := f.cart.GetCart(ctx, buyer)
	require.NoError(t, err)
	assert.Len(t, view.Lines, 0)
	_, err = f.cart.UpdateItem(ctx, lineID, buyer, 5, false, nil)
	assert.ErrorIs(t, err, ErrInvalidState)
}
