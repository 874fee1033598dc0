package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/dbx"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/repomanager"
)

// ProfileService builds the read-only channel and history views.
type ProfileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewProfileService(db *sql.DB, m repomanager.RepositoryManager) *ProfileService {
	return &ProfileService{db: db, repomanager: m}
}

// ChannelProfile resolves the channel by lowercase username and reads its
// counts and the viewer's subscription flag from a single snapshot.
func (s *ProfileService) ChannelProfile(ctx context.Context, viewerID, username string) (*models.ChannelProfile, error) {
	if blank(username) {
		return nil, common.Invalid("Username is missing")
	}

	var profile *models.ChannelProfile
	err := dbx.WithTx(ctx, s.db, dbx.ReadOnlySnapshot, func(ctx context.Context, tx dbx.DBTX) error {
		channel, err := s.repomanager.Users(tx).GetByUsername(ctx, normalize(username))
		if err != nil {
			return err
		}

		subs := s.repomanager.Subscriptions(tx)

		subscribers, err := subs.CountSubscribers(ctx, channel.ID)
		if err != nil {
			return err
		}
		subscribedTo, err := subs.CountSubscribedTo(ctx, channel.ID)
		if err != nil {
			return err
		}
		isSubscribed, err := subs.Exists(ctx, viewerID, channel.ID)
		if err != nil {
			return err
		}

		profile = &models.ChannelProfile{
			ID:                        channel.ID,
			Username:                  channel.Username,
			FullName:                  channel.FullName,
			Email:                     channel.Email,
			Avatar:                    channel.Avatar,
			CoverImage:                channel.CoverImage,
			SubscribersCount:          subscribers,
			ChannelsSubscribedToCount: subscribedTo,
			IsSubscribed:              isSubscribed,
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NotFound("Channel does not exist")
		}
		return nil, common.Internal(err)
	}
	return profile, nil
}

// WatchHistory returns the caller's watched videos in stored order.
func (s *ProfileService) WatchHistory(ctx context.Context, userID string) ([]*models.WatchedVideo, error) {
	videos, err := s.repomanager.Videos(s.db).WatchHistory(ctx, userID)
	if err != nil {
		return nil, common.Internal(err)
	}
	return videos, nil
}
