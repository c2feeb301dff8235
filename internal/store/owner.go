package store

import (
	"context"

	"github.com/ServtechRD/SinkerProject26-sub000/internal/model"
	"gorm.io/gorm"
)

// OwnerStore persists the user to channel ownership relation.
type OwnerStore struct {
	db *gorm.DB
}

// NewOwnerStore creates a channel ownership store.
func NewOwnerStore(db *gorm.DB) *OwnerStore {
	return &OwnerStore{db: db}
}

// Channels lists the channels userID may write to.
func (s *OwnerStore) Channels(ctx context.Context, tx *gorm.DB, userID uint) ([]string, error) {
	defer track("owner_channels")()

	var channels []string
	if err := pick(s.db, tx).WithContext(ctx).
		Model(&model.ChannelOwner{}).
		Where("user_id = ?", userID).
		Order("channel ASC").
		Pluck("channel", &channels).Error; err != nil {
		return nil, translate(err, "list channels of user %d", userID)
	}
	return channels, nil
}

// Replace sets the channels owned by userID.
func (s *OwnerStore) Replace(ctx context.Context, userID uint, channels []string) error {
	defer track("owner_replace")()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&model.ChannelOwner{}).Error; err != nil {
			return translate(err, "clear channels of user %d", userID)
		}
		if len(channels) == 0 {
			return nil
		}
		rows := make([]model.ChannelOwner, len(channels))
		for i, ch := range channels {
			rows[i] = model.ChannelOwner{UserID: userID, Channel: ch}
		}
		if err := tx.Create(&rows).Error; err != nil {
			return translate(err, "assign channels to user %d", userID)
		}
		return nil
	})
}
