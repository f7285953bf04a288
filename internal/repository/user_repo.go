package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pulsechat/pulse/internal/entity"
)

// UserRepo persists the User entity.
type UserRepo struct {
	db *gorm.DB
}

// Upsert creates the user row on first identity sync, or updates
// email/displayName/imageUrl if the id already exists. Matches the
// POST /auth/sync contract: "upserts the user identified by email" — keyed
// here on the stable subject id since that is what the Auth Verifier
// resolves on every subsequent request.
func (r *UserRepo) Upsert(ctx context.Context, u *entity.User) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "display_name", "image_url"}),
	}).Create(u).Error
}

// GetById returns nil, nil when the user does not exist.
func (r *UserRepo) GetById(ctx context.Context, id string) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// GetByIds batches a profile lookup for message/conversation joins.
func (r *UserRepo) GetByIds(ctx context.Context, ids []string) ([]*entity.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []*entity.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// TouchLastSeen is called on clean disconnect (spec §4.4 Disconnect).
func (r *UserRepo) TouchLastSeen(ctx context.Context, id string, at int64) error {
	return r.db.WithContext(ctx).Model(&entity.User{}).Where("id = ?", id).Update("last_seen_at", at).Error
}
