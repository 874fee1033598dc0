package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/repomanager"
)

// SubscriptionService maintains the subscriber -> channel graph.
type SubscriptionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewSubscriptionService(db *sql.DB, m repomanager.RepositoryManager) *SubscriptionService {
	return &SubscriptionService{db: db, repomanager: m}
}

// Subscribe makes subscriberID follow the channel named channelUsername.
// Following the same channel twice is a conflict and leaves one edge.
func (s *SubscriptionService) Subscribe(ctx context.Context, subscriberID, channelUsername string) (*models.Subscription, error) {
	if blank(channelUsername) {
		return nil, common.Invalid("Channel username is required")
	}

	channel, err := s.repomanager.Users(s.db).GetByUsername(ctx, normalize(channelUsername))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NotFound("Channel does not exist")
		}
		return nil, common.Internal(err)
	}

	sub, err := s.repomanager.Subscriptions(s.db).Create(ctx, subscriberID, channel.ID)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.Conflict("Already subscribed to this channel")
		}
		return nil, common.Internal(err)
	}
	return sub, nil
}
