package persistent

import (
	"context"
	"errors"
	"fmt"

	"sangh-connect/pkg/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SanghRepository answers the directory questions asked when a post is attributed to a Sangh.
type SanghRepository interface {
	Exists(ctx context.Context, sanghID string) (bool, error)
	CanPostAs(ctx context.Context, sanghID, userID, role string) (bool, error)
}

type sanghRepository struct {
	db *gorm.DB
}

func NewSanghRepository(db *gorm.DB) SanghRepository {
	return &sanghRepository{db: db}
}

// Directory ids are UUID columns. Anything else cannot match a row.
func (r *sanghRepository) Exists(ctx context.Context, sanghID string) (bool, error) {
	if _, err := uuid.Parse(sanghID); err != nil {
		return false, nil
	}

	var sangh models.Sangh
	err := r.db.WithContext(ctx).
		Select("id").
		Where("id = ? AND is_active = ?", sanghID, true).
		First(&sangh).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up sangh %s: %w", sanghID, err)
	}
	return true, nil
}

func (r *sanghRepository) CanPostAs(ctx context.Context, sanghID, userID, role string) (bool, error) {
	if _, err := uuid.Parse(sanghID); err != nil {
		return false, nil
	}
	if _, err := uuid.Parse(userID); err != nil {
		return false, nil
	}

	var member models.SanghMember
	err := r.db.WithContext(ctx).
		Where("sangh_id = ? AND user_id = ?", sanghID, userID).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up membership of %s in %s: %w", userID, sanghID, err)
	}
	return member.MayPostAs(role), nil
}

