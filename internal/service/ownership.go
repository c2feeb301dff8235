package service

import (
	"context"

	"github.com/ServtechRD/SinkerProject26-sub000/internal/store"
	"github.com/ServtechRD/SinkerProject26-sub000/pkg/logger"
	"go.uber.org/zap"
)

// OwnershipService assigns channels to users.
type OwnershipService struct {
	owners *store.OwnerStore
	log    *zap.Logger
}

// NewOwnershipService wires the channel ownership service.
func NewOwnershipService(owners *store.OwnerStore, log *zap.Logger) *OwnershipService {
	if log == nil {
		log = zap.NewNop()
	}
	return &OwnershipService{owners: owners, log: log}
}

// Assign replaces the channels owned by userID. Every channel must be known;
// duplicates are collapsed.
func (s *OwnershipService) Assign(ctx context.Context, userID uint, channels []string) ([]string, error) {
	seen := make(map[string]bool, len(channels))
	out := make([]string, 0, len(channels))
	for _, ch := range channels {
		if err := validateChannel(ch); err != nil {
			return nil, err
		}
		if seen[ch] {
			continue
		}
		seen[ch] = true
		out = append(out, ch)
	}

	if err := s.owners.Replace(ctx, userID, out); err != nil {
		return nil, err
	}
	logger.For(ctx, s.log).Info("Channels assigned", zap.Uint("user_id", userID), zap.Strings("channels", out))
	return out, nil
}

// Channels lists the channels owned by userID.
func (s *OwnershipService) Channels(ctx context.Context, userID uint) ([]string, error) {
	return s.owners.Channels(ctx, nil, userID)
}
