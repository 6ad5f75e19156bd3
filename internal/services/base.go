package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// ErrNotFound is returned when the requested entity does not exist.
var ErrNotFound = errors.New("entity not found")

// BaseService interface defines common CRUD operations
type BaseService[T any] interface {
	Create(ctx context.Context, entity *T) error
	Get(ctx context.Context, id string) (*T, error)
	List(ctx context.Context, skip, take int, filters map[string]interface{}) ([]T, int64, error)
	Update(ctx context.Context, id string, entity *T) error
	Replace(ctx context.Context, id string, entity *T) error
	Delete(ctx context.Context, id string) error
}

// BaseServiceImpl implements BaseService
type BaseServiceImpl[T any] struct {
	db        *gorm.DB
	modelType T
}

// NewBaseService creates a new base service
func NewBaseService[T any](db *gorm.DB, modelType T) BaseService[T] {
	return &BaseServiceImpl[T]{
		db:        db,
		modelType: modelType,
	}
}

func (s *BaseServiceImpl[T]) Create(ctx context.Context, entity *T) error {
	return s.db.WithContext(ctx).Create(entity).Error
}

func (s *BaseServiceImpl[T]) Get(ctx context.Context, id string) (*T, error) {
	var entity T
	err := s.db.WithContext(ctx).First(&entity, "id = ? AND is_deleted = ?", id, false).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

// List returns entities with skip/take pagination. The first is the
// offset, the second the number of elements to be returned; take of
// zero means no limit.
func (s *BaseServiceImpl[T]) List(ctx context.Context, skip, take int, filters map[string]interface{}) ([]T, int64, error) {
	var entities []T
	var total int64

	query := s.db.WithContext(ctx).Model(s.modelType).Where("is_deleted = ?", false)

	for key, value := range filters {
		query = query.Where(key+" = ?", value)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if skip > 0 {
		query = query.Offset(skip)
	}
	if take > 0 {
		query = query.Limit(take)
	}

	if err := query.Find(&entities).Error; err != nil {
		return nil, 0, err
	}

	return entities, total, nil
}

func (s *BaseServiceImpl[T]) Update(ctx context.Context, id string, entity *T) error {
	res := s.db.WithContext(ctx).Model(entity).Where("id = ?", id).Updates(entity)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Replace overwrites every writable column with the entity's values,
// zero or not. Identity and soft-delete bookkeeping are kept.
func (s *BaseServiceImpl[T]) Replace(ctx context.Context, id string, entity *T) error {
	res := s.db.WithContext(ctx).Model(s.modelType).
		Where("id = ? AND is_deleted = ?", id, false).
		Select("*").Omit("id", "created_at", "deleted_at", "is_deleted").
		Updates(entity)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete soft-deletes; the purge job hard-deletes later.
func (s *BaseServiceImpl[T]) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Model(s.modelType).Where("id = ?", id).
		Updates(map[string]interface{}{"deleted_at": time.Now(), "is_deleted": true})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
