package users

import (
	"context"

	"github.com/dmitrijs2005/vidtube/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	SetRefreshToken(ctx context.Context, id, token string) error
	ClearRefreshToken(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateAccountDetails(ctx context.Context, id, fullName, email string) (*models.User, error)
	UpdateAvatar(ctx context.Context, id, url string) (*models.User, error)
	UpdateCoverImage(ctx context.Context, id, url string) (*models.User, error)
}
