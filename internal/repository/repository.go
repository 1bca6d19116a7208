package repository

import (
	"context"
	"errors"
	"strings"

	"aerium/internal/domain"
)

// ErrNotFound возвращается, когда сущность не найдена или мягко удалена
var ErrNotFound = errors.New("not found")

// ProductFilter параметры фильтрации списка товаров
type ProductFilter struct {
	NameSubstring string
	Type          *domain.ProductType
}

// OrderFilter параметры фильтрации списка заказов
type OrderFilter struct {
	UserID *int64
	Status *domain.OrderStatus
}

// Page постраничная выборка
type Page struct {
	Offset int
	Limit  int
}

// UserRepository интерфейс репозитория пользователей
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// ProductRepository интерфейс репозитория товаров и их справочных данных.
// GetByID возвращает товар вместе с областями и цветами.
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, f ProductFilter) ([]domain.Product, error)
	AddBone(ctx context.Context, b *domain.Bone) error
	AddColor(ctx context.Context, c *domain.ProductColor) error
	GetBone(ctx context.Context, id int64) (*domain.Bone, error)
	ListBones(ctx context.Context, productID int64) ([]domain.Bone, error)
}

// AromaRepository интерфейс репозитория ароматов
type AromaRepository interface {
	Create(ctx context.Context, a *domain.Aroma) error
	GetByID(ctx context.Context, id int64) (*domain.Aroma, error)
	List(ctx context.Context) ([]domain.Aroma, error)
}

// GroupRepository интерфейс репозитория конфигураций (групп переопределений).
// ReplaceOverrides — единая операция delete+recreate: читатель никогда не
// видит группу с пустым или смешанным набором переопределений.
type GroupRepository interface {
	Create(ctx context.Context, g *domain.ModifiedBoneGroup, overrides []domain.ModifiedBone) error
	GetByID(ctx context.Context, id int64) (*domain.ModifiedBoneGroup, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.ModifiedBoneGroup, error)
	UpdateShareStatus(ctx context.Context, id int64, share bool) error
	ReplaceOverrides(ctx context.Context, groupID int64, overrides []domain.ModifiedBone) error
}

// CartRepository интерфейс репозитория строк корзины.
// AttachToOrder атомарно перепривязывает строки к заказу и гасит isUsed.
type CartRepository interface {
	Create(ctx context.Context, c *domain.CartItem) error
	GetByID(ctx context.Context, id int64) (*domain.CartItem, error)
	Update(ctx context.Context, c *domain.CartItem) error
	SoftDelete(ctx context.Context, id int64) error
	ListActiveByUser(ctx context.Context, userID int64) ([]domain.CartItem, error)
	AttachToOrder(ctx context.Context, lineIDs []int64, orderID int64) error
}

// OrderRepository интерфейс репозитория заказов
type OrderRepository interface {
	Create(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	Update(ctx context.Context, o *domain.Order) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f OrderFilter, p Page) ([]domain.Order, int64, error)
	ListItems(ctx context.Context, orderID int64) ([]domain.CartItem, error)
}

// TxManager абстракция транзакции. Для in-memory — глобальная блокировка записи.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// helper: case-insensitive contains
func containsIgnoreCase(s, substr string) bool {
	if substr == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
