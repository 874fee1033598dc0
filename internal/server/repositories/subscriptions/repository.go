package subscriptions

import (
	"context"

	"github.com/dmitrijs2005/vidtube/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, subscriberID, channelID string) (*models.Subscription, error)
	Exists(ctx context.Context, subscriberID, channelID string) (bool, error)
	CountSubscribers(ctx context.Context, channelID string) (int64, error)
	CountSubscribedTo(ctx context.Context, subscriberID string) (int64, error)
}
