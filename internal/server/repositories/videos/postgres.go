// Package videos reads video records for a user's watch history.
package videos

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/vidtube/internal/dbx"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// WatchHistory returns the videos userID watched, in stored order, each with
// its owner projected. Videos whose owner no longer exists have a nil Owner.
// An empty history yields an empty, non-nil slice.
func (r *PostgresRepository) WatchHistory(ctx context.Context, userID string) ([]*models.WatchedVideo, error) {
	query := `
		SELECT v.id, v.title, v.description, v.url, v.thumbnail, v.duration,
		       v.views, v.likes, v.dislikes, v.is_published, v.created_at, v.updated_at,
		       o.full_name, o.username, o.avatar, o.cover_image
		FROM watch_history h
		JOIN videos v ON v.id = h.video_id
		LEFT JOIN users o ON o.id = v.owner_id
		WHERE h.user_id = $1
		ORDER BY h.position
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	videos := make([]*models.WatchedVideo, 0)
	for rows.Next() {
		var (
			v                                             models.WatchedVideo
			ownerName, ownerUser, ownerAvatar, ownerCover sql.NullString
		)
		if err := rows.Scan(&v.ID, &v.Title, &v.Description, &v.URL, &v.Thumbnail, &v.Duration,
			&v.Views, &v.Likes, &v.Dislikes, &v.IsPublished, &v.CreatedAt, &v.UpdatedAt,
			&ownerName, &ownerUser, &ownerAvatar, &ownerCover); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if ownerUser.Valid {
			v.Owner = &models.VideoOwner{
				FullName:   ownerName.String,
				Username:   ownerUser.String,
				Avatar:     ownerAvatar.String,
				CoverImage: ownerCover.String,
			}
		}
		videos = append(videos, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return videos, nil
}
