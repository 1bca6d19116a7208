package service

import (
	"context"
	"errors"
	"strconv"

	"aerium/internal/domain"
	"aerium/internal/repository"
)

// ErrInvalidState операция несовместима с текущим состоянием сущности
// (строка уже ушла в заказ, заказ не в ожидаемом статусе)
var ErrInvalidState = errors.New("invalid state")

// CartService управляет черновыми строками корзины
type CartService struct {
	products repository.ProductRepository
	aromas   repository.AromaRepository
	groups   repository.GroupRepository
	cart     repository.CartRepository
}

func NewCartService(products repository.ProductRepository, aromas repository.AromaRepository, groups repository.GroupRepository, cart repository.CartRepository) *CartService {
	return &CartService{products: products, aromas: aromas, groups: groups, cart: cart}
}

// AddItemInput параметры добавления строки. SelectedColor — легаси-селектор:
// либо код цвета (точное совпадение), либо числовой id цвета.
type AddItemInput struct {
	ProductID           int64
	AromaID             *int64
	ModifiedBoneGroupID *int64
	ProductColorID      *int64
	SelectedColor       string
	Quantity            int64
	ExplicitPrice       *float64
}

func (s *CartService) AddItem(ctx context.Context, requester domain.Requester, in AddItemInput) (*domain.CartLine, error) {
	if in.ProductID <= 0 {
		return nil, ErrInvalidInput
	}
	product, err := s.products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	var aroma *domain.Aroma
	if in.AromaID != nil {
		if aroma, err = s.aromas.GetByID(ctx, *in.AromaID); err != nil {
			return nil, err
		}
	}
	if in.ModifiedBoneGroupID != nil {
		if _, err := s.groups.GetByID(ctx, *in.ModifiedBoneGroupID); err != nil {
			return nil, err
		}
	}
	quantity := in.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	item := domain.CartItem{
		UserID:              requester.ID,
		ProductID:           product.ID,
		AromaID:             in.AromaID,
		ProductColorID:      s.resolveColor(product, in),
		ModifiedBoneGroupID: in.ModifiedBoneGroupID,
		Quantity:            quantity,
		Price:               ResolvePrice(product, quantity, aroma, in.ExplicitPrice),
		IsUsed:              true,
	}
	if err := s.cart.Create(ctx, &item); err != nil {
		return nil, err
	}
	return s.joinLine(ctx, item)
}

// resolveColor: явный productColorId важнее легаси-селектора; селектор
// работает только для аксессуаров; промах по коду — это nil, а не ошибка.
func (s *CartService) resolveColor(product *domain.Product, in AddItemInput) *int64 {
	if in.ProductColorID != nil {
		return in.ProductColorID
	}
	if in.SelectedColor == "" || product.Type != domain.ProductTypeAccessory {
		return nil
	}
	if id, err := strconv.ParseInt(in.SelectedColor, 10, 64); err == nil {
		return &id
	}
	for _, c := range product.Colors {
		if c.ColorCode == in.SelectedColor {
			id := c.ID
			return &id
		}
	}
	return nil
}

// GetCart активные строки пользователя; total — сумма их цен
func (s *CartService) GetCart(ctx context.Context, requester domain.Requester) (*domain.CartView, error) {
	items, err := s.cart.ListActiveByUser(ctx, requester.ID)
	if err != nil {
		return nil, err
	}
	lines, err := s.joinLines(ctx, items)
	if err != nil {
		return nil, err
	}
	view := domain.CartView{Lines: lines}
	for _, l := range lines {
		view.Total += l.Price
	}
	return &view, nil
}

// UpdateItem меняет количество (и опционально цвет) строки.
// Цена пересчитывается по формуле от товара и аромата, прежняя цена
// игнорируется. colorSet=true означает, что ключ productColorId пришёл в
// запросе — тогда хранимое значение перезаписывается, даже если пришёл null.
func (s *CartService) UpdateItem(ctx context.Context, lineID int64, requester domain.Requester, quantity int64, colorSet bool, colorID *int64) (*domain.CartLine, error) {
	line, err := s.cart.GetByID(ctx, lineID)
	if err != nil {
		return nil, err
	}
	if line.UserID != requester.ID {
		return nil, ErrForbidden
	}
	if !line.Active() {
		return nil, ErrInvalidState
	}
	if quantity < 1 {
		return nil, ErrInvalidInput
	}
	product, err := s.products.GetByID(ctx, line.ProductID)
	if err != nil {
		return nil, err
	}
	var aroma *domain.Aroma
	if line.AromaID != nil {
		if aroma, err = s.aromas.GetByID(ctx, *line.AromaID); err != nil {
			return nil, err
		}
	}
	line.Quantity = quantity
	line.Price = ResolvePrice(product, quantity, aroma, nil)
	if colorSet {
		line.ProductColorID = colorID
	}
	if err := s.cart.Update(ctx, line); err != nil {
		return nil, err
	}
	return s.joinLine(ctx, *line)
}

// RemoveItem мягкое удаление: строка остаётся для истории цен
func (s *CartService) RemoveItem(ctx context.Context, lineID int64, requester domain.Requester) error {
	line, err := s.cart.GetByID(ctx, lineID)
	if err != nil {
		return err
	}
	if line.UserID != requester.ID {
		return ErrForbidden
	}
	if !line.Active() {
		return ErrInvalidState
	}
	return s.cart.SoftDelete(ctx, lineID)
}

func (s *CartService) joinLine(ctx context.Context, item domain.CartItem) (*domain.CartLine, error) {
	lines, err := s.joinLines(ctx, []domain.CartItem{item})
	if err != nil {
		return nil, err
	}
	return &lines[0], nil
}

// joinLines подтягивает к строкам товар, аромат, цвет и конфигурацию
func (s *CartService) joinLines(ctx context.Context, items []domain.CartItem) ([]domain.CartLine, error) {
	out := make([]domain.CartLine, 0, len(items))
	for _, item := range items {
		line := domain.CartLine{CartItem: item}
		product, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		line.Product = product
		if item.AromaID != nil {
			aroma, err := s.aromas.GetByID(ctx, *item.AromaID)
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return nil, err
			}
			line.Aroma = aroma
		}
		if item.ProductColorID != nil && product != nil {
			for _, c := range product.Colors {
				if c.ID == *item.ProductColorID {
					cp := c
					line.Color = &cp
					break
				}
			}
		}
		if item.ModifiedBoneGroupID != nil {
			group, err := s.groups.GetByID(ctx, *item.ModifiedBoneGroupID)
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return nil, err
			}
			line.Configuration = group
		}
		out = append(out, line)
	}
	return out, nil
}
