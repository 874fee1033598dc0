// Package subscriptions stores the directed subscriber -> channel edges
// between users. An edge exists at most once per ordered pair.
package subscriptions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/dbx"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts the edge subscriberID -> channelID. A second insert of the
// same pair returns common.ErrorAlreadyExists and leaves the table unchanged.
func (r *PostgresRepository) Create(ctx context.Context, subscriberID, channelID string) (*models.Subscription, error) {
	query := `
		INSERT INTO subscriptions (subscriber_id, channel_id)
		VALUES ($1, $2)
		ON CONFLICT (subscriber_id, channel_id) DO NOTHING
		RETURNING id, subscriber_id, channel_id, created_at, updated_at
	`
	s := &models.Subscription{}
	err := r.db.QueryRowContext(ctx, query, subscriberID, channelID).
		Scan(&s.ID, &s.SubscriberID, &s.ChannelID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorAlreadyExists
		}
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

// Exists reports whether subscriberID currently follows channelID.
func (r *PostgresRepository) Exists(ctx context.Context, subscriberID, channelID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2
		)
	`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, subscriberID, channelID).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) count(ctx context.Context, query, id string) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// CountSubscribers counts edges where channelID is the channel side.
func (r *PostgresRepository) CountSubscribers(ctx context.Context, channelID string) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM subscriptions WHERE channel_id = $1`, channelID)
}

// CountSubscribedTo counts edges where subscriberID is the subscriber side.
func (r *PostgresRepository) CountSubscribedTo(ctx context.Context, subscriberID string) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM subscriptions WHERE subscriber_id = $1`, subscriberID)
}
