package service

import (
	"context"
	"errors"

	"aerium/internal/domain"
	"aerium/internal/repository"
)

var (
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// ConfigurationService хранит группы переопределений областей (конфигурации)
type ConfigurationService struct {
	products repository.ProductRepository
	groups   repository.GroupRepository
	tx       repository.TxManager
}

func NewConfigurationService(products repository.ProductRepository, groups repository.GroupRepository, tx repository.TxManager) *ConfigurationService {
	return &ConfigurationService{products: products, groups: groups, tx: tx}
}

// OverrideInput сырой элемент переопределения с провода: оба поля опциональны
type OverrideInput struct {
	BoneID    *int64
	ModDetail *string
}

// vetOverrides чистый фильтр: пропускает только записи с заполненными boneId и
// modDetail, ссылающиеся на существующую редактируемую область. Невалидные
// записи молча отбрасываются — это осознанный пропуск валидации, не ошибка.
func (s *ConfigurationService) vetOverrides(ctx context.Context, overrides []OverrideInput) ([]domain.ModifiedBone, error) {
	out := make([]domain.ModifiedBone, 0, len(overrides))
	for _, o := range overrides {
		if o.BoneID == nil || o.ModDetail == nil || *o.ModDetail == "" {
			continue
		}
		b, err := s.products.GetBone(ctx, *o.BoneID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return nil, err
		}
		// non-configuration bones exist for rendering only
		if !b.IsConfiguration {
			continue
		}
		out = append(out, domain.ModifiedBone{BoneID: *o.BoneID, ModDetail: *o.ModDetail})
	}
	return out, nil
}

// CreateGroup создаёт группу вместе с переопределениями одной транзакцией
func (s *ConfigurationService) CreateGroup(ctx context.Context, requester domain.Requester, shareStatus bool, overrides []OverrideInput) (*domain.ModifiedBoneGroup, error) {
	if len(overrides) == 0 {
		return nil, ErrInvalidInput
	}
	g := domain.ModifiedBoneGroup{UserID: requester.ID, ShareStatus: shareStatus}
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		vetted, err := s.vetOverrides(ctx, overrides)
		if err != nil {
			return err
		}
		return s.groups.Create(ctx, &g, vetted)
	})
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// GetGroup доступ: группа расшарена, либо запрашивает владелец или оператор
func (s *ConfigurationService) GetGroup(ctx context.Context, id int64, requester domain.Requester) (*domain.ModifiedBoneGroup, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	g, err := s.groups.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !g.ShareStatus && !requester.CanAccess(g.UserID) {
		return nil, ErrForbidden
	}
	return g, nil
}

// ListGroups конфигурации пользователя, новые первыми
func (s *ConfigurationService) ListGroups(ctx context.Context, userID int64, requester domain.Requester) ([]domain.ModifiedBoneGroup, error) {
	if !requester.CanAccess(userID) {
		return nil, ErrForbidden
	}
	return s.groups.ListByUser(ctx, userID)
}

// GroupUpdate nil-поля не трогаются; непустой Overrides заменяет набор целиком
// (частичный merge переопределений не поддерживается)
type GroupUpdate struct {
	ShareStatus *bool
	Overrides   []OverrideInput
}

func (s *ConfigurationService) UpdateGroup(ctx context.Context, id int64, requester domain.Requester, upd GroupUpdate) (*domain.ModifiedBoneGroup, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	g, err := s.groups.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !requester.CanAccess(g.UserID) {
		return nil, ErrForbidden
	}
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if upd.ShareStatus != nil {
			if err := s.groups.UpdateShareStatus(ctx, id, *upd.ShareStatus); err != nil {
				return err
			}
		}
		if len(upd.Overrides) > 0 {
			vetted, err := s.vetOverrides(ctx, upd.Overrides)
			if err != nil {
				return err
			}
			if err := s.groups.ReplaceOverrides(ctx, id, vetted); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.groups.GetByID(ctx, id)
}
