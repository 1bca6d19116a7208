package domain

import "time"

// Role уровень доступа пользователя
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
	RoleOwner Role = "OWNER"
)

// Elevated admins and owners get cross-user access to protected resources
func (r Role) Elevated() bool {
	return r == RoleAdmin || r == RoleOwner
}

// Requester аутентифицированный вызывающий (id + роль из токена)
type Requester struct {
	ID   int64
	Role Role
}

// CanAccess single capability predicate shared by all services:
// the owner of a resource or an elevated role may touch it.
func (r Requester) CanAccess(ownerID int64) bool {
	return r.ID == ownerID || r.Role.Elevated()
}

// User учётная запись покупателя или оператора
type User struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	PasswordHash string `json:"-"`
	Role         Role   `json:"role"`
}

// ProductType тип товара
type ProductType string

const (
	ProductTypeMain      ProductType = "MAIN_PRODUCT"
	ProductTypeAccessory ProductType = "ACCESSORY"
)

// ProductStatus статус доступности товара
type ProductStatus string

const (
	ProductStatusAvailable   ProductStatus = "AVAILABLE"
	ProductStatusUnavailable ProductStatus = "UNAVAILABLE"
)

// Product товар каталога. Bones заполняются только для MAIN_PRODUCT,
// Colors — только для ACCESSORY.
type Product struct {
	ID        int64          `json:"id"`
	Name      string         `json:"name"`
	Price     float64        `json:"price"`
	Type      ProductType    `json:"type"`
	Status    ProductStatus  `json:"status"`
	DeletedAt *time.Time     `json:"deletedAt,omitempty"`
	Bones     []Bone         `json:"bones,omitempty"`
	Colors    []ProductColor `json:"colors,omitempty"`
}

// Bone именованная настраиваемая область меша товара.
// Name уникально в пределах товара и матчится фронтендом без учёта регистра.
// IsConfiguration=false — область существует только для рендера,
// пользовательские переопределения на неё запрещены.
type Bone struct {
	ID              int64  `json:"id"`
	ProductID       int64  `json:"productId"`
	Name            string `json:"name"`
	DefaultDetail   string `json:"defaultDetail"`
	DefaultStyle    string `json:"defaultStyle"`
	IsConfiguration bool   `json:"isConfiguration"`
}

// ProductColor выбираемый цвет аксессуара
type ProductColor struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"productId"`
	ColorCode string `json:"colorCode"`
	ColorName string `json:"colorName"`
}

// Aroma аромат-добавка с наценкой к цене
type Aroma struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Price     float64    `json:"price"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

// ModifiedBoneGroup сохранённая конфигурация: набор переопределений областей.
// ShareStatus=true делает её читаемой любым аутентифицированным пользователем.
type ModifiedBoneGroup struct {
	ID          int64          `json:"id"`
	UserID      int64          `json:"userId"`
	ShareStatus bool           `json:"shareStatus"`
	CreatedAt   time.Time      `json:"createdAt"`
	Bones       []ModifiedBone `json:"modifiedBones"`
}

// ModifiedBone одно переопределение области в составе группы
type ModifiedBone struct {
	ID        int64  `json:"id"`
	GroupID   int64  `json:"groupId"`
	BoneID    int64  `json:"boneId"`
	ModDetail string `json:"modDetail"`
}

// CartItem строка корзины. Активна, пока OrderID == nil, IsUsed и не удалена;
// после оформления заказа получает OrderID, IsUsed=false и становится историей.
type CartItem struct {
	ID                  int64      `json:"id"`
	UserID              int64      `json:"userId"`
	ProductID           int64      `json:"productId"`
	AromaID             *int64     `json:"aromaId,omitempty"`
	ProductColorID      *int64     `json:"productColorId,omitempty"`
	ModifiedBoneGroupID *int64     `json:"modifiedBoneGroupId,omitempty"`
	Quantity            int64      `json:"quantity"`
	Price               float64    `json:"price"`
	OrderID             *int64     `json:"orderId,omitempty"`
	IsUsed              bool       `json:"isUsed"`
	DeletedAt           *time.Time `json:"deletedAt,omitempty"`
}

// Active строка всё ещё лежит в корзине
func (c CartItem) Active() bool {
	return c.OrderID == nil && c.IsUsed && c.DeletedAt == nil
}

// OrderStatus статус заказа
type OrderStatus string

const (
	OrderStatusWaiting   OrderStatus = "WAITING"
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCanceled  OrderStatus = "CANCELED"
)

// Valid проверяет, что статус из известного набора
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusWaiting, OrderStatusPending, OrderStatusConfirmed,
		OrderStatusCompleted, OrderStatusCanceled:
		return true
	}
	return false
}

// Order заказ, группирующий строки корзины
type Order struct {
	ID        int64       `json:"id"`
	UserID    int64       `json:"userId"`
	Status    OrderStatus `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// CartLine строка корзины вместе со связанными сущностями
type CartLine struct {
	CartItem
	Product       *Product           `json:"product,omitempty"`
	Aroma         *Aroma             `json:"aroma,omitempty"`
	Color         *ProductColor      `json:"color,omitempty"`
	Configuration *ModifiedBoneGroup `json:"configuration,omitempty"`
}

// CartView корзина пользователя: строки и сумма их цен
type CartView struct {
	Lines []CartLine `json:"items"`
	Total float64    `json:"total"`
}

// OrderDetail заказ вместе со строками и итогом.
// В списках Total считается как Σ price × quantity.
type OrderDetail struct {
	Order
	Lines []CartLine `json:"items"`
	Total float64    `json:"total"`
}
