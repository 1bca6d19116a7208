package service

import (
	"context"
	"errors"

	"aerium/internal/domain"
	"aerium/internal/repository"
)

// ErrEmptyCart заказ не из чего собирать
var ErrEmptyCart = errors.New("cart is empty")

// OrderService реализует жизненный цикл заказа:
// сборка из корзины, подтверждение оплаты, операторские статусы
type OrderService struct {
	cart   repository.CartRepository
	orders repository.OrderRepository
	lines  *CartService
	tx     repository.TxManager
}

func NewOrderService(cart repository.CartRepository, orders repository.OrderRepository, lines *CartService, tx repository.TxManager) *OrderService {
	return &OrderService{cart: cart, orders: orders, lines: lines, tx: tx}
}

// CreateOrder атомарно превращает все активные строки корзины пользователя в
// заказ WAITING: строки получают orderId и isUsed=false и становятся историей
func (s *OrderService) CreateOrder(ctx context.Context, requester domain.Requester) (*domain.OrderDetail, error) {
	var created domain.Order
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		items, err := s.cart.ListActiveByUser(ctx, requester.ID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrEmptyCart
		}
		created = domain.Order{UserID: requester.ID, Status: domain.OrderStatusWaiting}
		if err := s.orders.Create(ctx, &created); err != nil {
			return err
		}
		ids := make([]int64, 0, len(items))
		for _, it := range items {
			ids = append(ids, it.ID)
		}
		return s.cart.AttachToOrder(ctx, ids, created.ID)
	})
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, &created)
}

// ConfirmPayment покупатель подтверждает оплату: строго WAITING → PENDING.
// Повторный вызов падает, статус уже не WAITING.
func (s *OrderService) ConfirmPayment(ctx context.Context, orderID int64, requester domain.Requester) (*domain.OrderDetail, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != requester.ID {
		return nil, ErrForbidden
	}
	if o.Status != domain.OrderStatusWaiting {
		return nil, ErrInvalidState
	}
	o.Status = domain.OrderStatusPending
	if err := s.orders.Update(ctx, o); err != nil {
		return nil, err
	}
	return s.detail(ctx, o)
}

// SetStatus операторская смена статуса. Таблицы переходов нет: любой статус
// может смениться на любой, включая выход из терминальных. Роль проверяется
// на транспортном уровне.
func (s *OrderService) SetStatus(ctx context.Context, orderID int64, status domain.OrderStatus) (*domain.OrderDetail, error) {
	if !status.Valid() {
		return nil, ErrInvalidInput
	}
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	o.Status = status
	if err := s.orders.Update(ctx, o); err != nil {
		return nil, err
	}
	return s.detail(ctx, o)
}

// GetOrder доступен владельцу и операторам
func (s *OrderService) GetOrder(ctx context.Context, orderID int64, requester domain.Requester) (*domain.OrderDetail, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !requester.CanAccess(o.UserID) {
		return nil, ErrForbidden
	}
	return s.detail(ctx, o)
}

// ListOrders операторская выборка с фильтром и страницами
func (s *OrderService) ListOrders(ctx context.Context, f repository.OrderFilter, p repository.Page) ([]domain.OrderDetail, int64, error) {
	orders, total, err := s.orders.List(ctx, f, p)
	if err != nil {
		return nil, 0, err
	}
	out := make([]domain.OrderDetail, 0, len(orders))
	for i := range orders {
		d, err := s.detail(ctx, &orders[i])
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *d)
	}
	return out, total, nil
}

// DeleteOrder жёсткое удаление. Строки корзины не каскадируются: они
// сохраняют orderId и isUsed=false как ценовая история.
func (s *OrderService) DeleteOrder(ctx context.Context, orderID int64) error {
	return s.orders.Delete(ctx, orderID)
}

// detail собирает заказ со строками. Итог считается как Σ price × quantity —
// при том, что цена строки уже умножена на количество при создании; так вела
// себя исходная система, расхождение с итогом корзины сохранено намеренно.
func (s *OrderService) detail(ctx context.Context, o *domain.Order) (*domain.OrderDetail, error) {
	items, err := s.orders.ListItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	lines, err := s.lines.joinLines(ctx, items)
	if err != nil {
		return nil, err
	}
	d := domain.OrderDetail{Order: *o, Lines: lines}
	for _, l := range lines {
		d.Total += l.Price * float64(l.Quantity)
	}
	return &d, nil
}
