package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/cryptox"
	"github.com/dmitrijs2005/vidtube/internal/server/media"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/repomanager"
)

// RegisterInput is the payload of a registration request.
type RegisterInput struct {
	FullName   string
	Email      string
	Username   string
	Password   string
	Avatar     *media.Upload
	CoverImage *media.Upload
}

// LoginInput identifies the account by email or, when Email is empty, by
// username.
type LoginInput struct {
	Email    string
	Username string
	Password string
}

// LoginResult is the sanitized user together with a freshly issued pair.
type LoginResult struct {
	User   *models.User
	Tokens *TokenPair
}

// UserService implements account operations over the users repository.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tokens      *TokenService
	media       media.Resolver
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, tokens *TokenService, resolver media.Resolver) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		tokens:      tokens,
		media:       resolver,
	}
}

func normalize(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func blank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}

func hashPassword(plain string) (string, error) {
	hash, err := cryptox.HashPassword(plain)
	if err != nil {
		if errors.Is(err, cryptox.ErrPasswordTooLong) {
			return "", common.Invalid("Password is too long")
		}
		return "", common.Internal(err)
	}
	return hash, nil
}

// Register creates an account. The avatar is mandatory, the cover image is
// optional; both are stored before the user row is written.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if blank(in.FullName, in.Email, in.Username, in.Password) {
		return nil, common.Invalid("All fields are required")
	}

	email := normalize(in.Email)
	username := normalize(in.Username)

	repo := s.repomanager.Users(s.db)

	exists, err := repo.ExistsByEmailOrUsername(ctx, email, username)
	if err != nil {
		return nil, common.Internal(err)
	}
	if exists {
		return nil, common.Conflict("User with email or username already exists")
	}

	if in.Avatar == nil {
		return nil, common.Invalid("Avatar file is required")
	}
	in.Avatar.Kind = media.KindAvatar
	avatarURL, err := s.media.Resolve(ctx, in.Avatar)
	if err != nil {
		return nil, common.WrapError(common.ErrorValidation, "Avatar file is required", err)
	}

	var coverURL string
	if in.CoverImage != nil {
		in.CoverImage.Kind = media.KindCoverImage
		coverURL, err = s.media.Resolve(ctx, in.CoverImage)
		if err != nil {
			return nil, common.WrapError(common.ErrorValidation, "Error while uploading cover image", err)
		}
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	created, err := repo.Create(ctx, &models.User{
		Username:     username,
		Email:        email,
		FullName:     strings.TrimSpace(in.FullName),
		PasswordHash: hash,
		Avatar:       avatarURL,
		CoverImage:   coverURL,
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.Conflict("User with email or username already exists")
		}
		return nil, common.Internal(err)
	}

	return created.Sanitized(), nil
}

// Login checks the password and issues a new token pair.
func (s *UserService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	if blank(in.Email) && blank(in.Username) {
		return nil, common.Invalid("Username or email is required")
	}
	if blank(in.Password) {
		return nil, common.Invalid("Password is required")
	}

	repo := s.repomanager.Users(s.db)

	var (
		user *models.User
		err  error
	)
	if !blank(in.Email) {
		user, err = repo.GetByEmail(ctx, normalize(in.Email))
	} else {
		user, err = repo.GetByUsername(ctx, normalize(in.Username))
	}
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NotFound("User does not exist")
		}
		return nil, common.Internal(err)
	}

	if !cryptox.CheckPassword(user.PasswordHash, in.Password) {
		return nil, common.Unauthorized("Invalid user credentials")
	}

	pair, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &LoginResult{User: user.Sanitized(), Tokens: pair}, nil
}

// Logout clears the stored refresh token. Calling it twice is not an error.
func (s *UserService) Logout(ctx context.Context, userID string) error {
	if err := s.repomanager.Users(s.db).ClearRefreshToken(ctx, userID); err != nil {
		return common.Internal(err)
	}
	return nil
}

// Refresh exchanges a valid refresh token for a new pair and returns it with
// the token owner. Every failure is reported as unauthorized.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	user, err := s.tokens.VerifyRefresh(ctx, refreshToken)
	if err != nil {
		return nil, asUnauthorized(err, "Invalid refresh token")
	}
	pair, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return nil, asUnauthorized(err, "Invalid refresh token")
	}
	return &LoginResult{User: user.Sanitized(), Tokens: pair}, nil
}

func asUnauthorized(err error, fallback string) error {
	if errors.Is(err, common.ErrorUnauthorized) {
		return err
	}
	return common.WrapError(common.ErrorUnauthorized, fallback, err)
}

// ChangePassword replaces the password hash. The stored refresh token is
// left as is.
func (s *UserService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if blank(newPassword) {
		return common.Invalid("New password is required")
	}

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.Unauthorized("Invalid access token")
		}
		return common.Internal(err)
	}

	if !cryptox.CheckPassword(user.PasswordHash, oldPassword) {
		return common.Invalid("Invalid password")
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := repo.UpdatePassword(ctx, userID, hash); err != nil {
		return common.Internal(err)
	}
	return nil
}

// CurrentUser returns the caller's sanitized record.
func (s *UserService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.Unauthorized("Invalid access token")
		}
		return nil, common.Internal(err)
	}
	return user.Sanitized(), nil
}

// UpdateAccountDetails sets full name and email.
func (s *UserService) UpdateAccountDetails(ctx context.Context, userID, fullName, email string) (*models.User, error) {
	if blank(fullName, email) {
		return nil, common.Invalid("All fields are required")
	}

	user, err := s.repomanager.Users(s.db).UpdateAccountDetails(ctx, userID, strings.TrimSpace(fullName), normalize(email))
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorAlreadyExists):
			return nil, common.Conflict("Email is already in use")
		case errors.Is(err, common.ErrorNotFound):
			return nil, common.Unauthorized("Invalid access token")
		default:
			return nil, common.Internal(err)
		}
	}
	return user.Sanitized(), nil
}

// UpdateAvatar stores upload and points the user's avatar at it. The
// previous object is not removed from storage.
func (s *UserService) UpdateAvatar(ctx context.Context, userID string, upload *media.Upload) (*models.User, error) {
	return s.updateMedia(ctx, userID, upload, media.KindAvatar)
}

// UpdateCoverImage is UpdateAvatar for the cover image.
func (s *UserService) UpdateCoverImage(ctx context.Context, userID string, upload *media.Upload) (*models.User, error) {
	return s.updateMedia(ctx, userID, upload, media.KindCoverImage)
}

func (s *UserService) updateMedia(ctx context.Context, userID string, upload *media.Upload, kind media.Kind) (*models.User, error) {
	label := "Avatar"
	if kind == media.KindCoverImage {
		label = "Cover image"
	}

	if upload == nil {
		return nil, common.Invalid(label + " file is missing")
	}
	upload.Kind = kind

	url, err := s.media.Resolve(ctx, upload)
	if err != nil {
		return nil, common.WrapError(common.ErrorValidation, "Error while uploading "+strings.ToLower(label), err)
	}

	repo := s.repomanager.Users(s.db)

	var user *models.User
	if kind == media.KindAvatar {
		user, err = repo.UpdateAvatar(ctx, userID, url)
	} else {
		user, err = repo.UpdateCoverImage(ctx, userID, url)
	}
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.Unauthorized("Invalid access token")
		}
		return nil, common.Internal(err)
	}
	return user.Sanitized(), nil
}
