package service

import (
	"context"
	"errors"

	"aerium/internal/domain"
	"aerium/internal/repository"
)

// CatalogService инкапсулирует работу со справочными данными:
// товары, их области (bones), цвета аксессуаров и ароматы.
type CatalogService struct {
	products repository.ProductRepository
	aromas   repository.AromaRepository
}

func NewCatalogService(products repository.ProductRepository, aromas repository.AromaRepository) *CatalogService {
	return &CatalogService{products: products, aromas: aromas}
}

var ErrInvalidInput = errors.New("invalid input")

func (s *CatalogService) CreateProduct(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if p.Name == "" || p.Price < 0 {
		return nil, ErrInvalidInput
	}
	if p.Type != domain.ProductTypeMain && p.Type != domain.ProductTypeAccessory {
		return nil, ErrInvalidInput
	}
	if p.Status == "" {
		p.Status = domain.ProductStatusAvailable
	}
	cp := p
	if err := s.products.Create(ctx, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	return s.products.GetByID(ctx, id)
}

func (s *CatalogService) ListProducts(ctx context.Context, f repository.ProductFilter) ([]domain.Product, error) {
	return s.products.List(ctx, f)
}

// ListBones возвращает области товара в стабильном порядке.
// Каталог областей read-only для покупательских сценариев.
func (s *CatalogService) ListBones(ctx context.Context, productID int64) ([]domain.Bone, error) {
	if productID <= 0 {
		return nil, ErrInvalidInput
	}
	return s.products.ListBones(ctx, productID)
}

// AddBone области имеют смысл только у MAIN_PRODUCT
func (s *CatalogService) AddBone(ctx context.Context, b domain.Bone) (*domain.Bone, error) {
	if b.ProductID <= 0 || b.Name == "" {
		return nil, ErrInvalidInput
	}
	p, err := s.products.GetByID(ctx, b.ProductID)
	if err != nil {
		return nil, err
	}
	if p.Type != domain.ProductTypeMain {
		return nil, ErrInvalidInput
	}
	cp := b
	if err := s.products.AddBone(ctx, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}

// AddColor цвета имеют смысл только у ACCESSORY
func (s *CatalogService) AddColor(ctx context.Context, c domain.ProductColor) (*domain.ProductColor, error) {
	if c.ProductID <= 0 || c.ColorCode == "" {
		return nil, ErrInvalidInput
	}
	p, err := s.products.GetByID(ctx, c.ProductID)
	if err != nil {
		return nil, err
	}
	if p.Type != domain.ProductTypeAccessory {
		return nil, ErrInvalidInput
	}
	cp := c
	if err := s.products.AddColor(ctx, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}

func (s *CatalogService) CreateAroma(ctx context.Context, a domain.Aroma) (*domain.Aroma, error) {
	if a.Name == "" || a.Price < 0 {
		return nil, ErrInvalidInput
	}
	cp := a
	if err := s.aromas.Create(ctx, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}

func (s *CatalogService) ListAromas(ctx context.Context) ([]domain.Aroma, error) {
	return s.aromas.List(ctx)
}
