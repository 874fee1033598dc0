package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/server/media"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
	"github.com/dmitrijs2005/vidtube/internal/server/services"
	"github.com/labstack/echo/v4"
)

type registerRequest struct {
	FullName string `json:"fullName" form:"fullName"`
	Email    string `json:"email" form:"email"`
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" form:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" form:"oldPassword"`
	NewPassword string `json:"newPassword" form:"newPassword"`
}

type accountDetailsRequest struct {
	FullName string `json:"fullName" form:"fullName"`
	Email    string `json:"email" form:"email"`
}

type subscribeRequest struct {
	Username string `json:"username" form:"username"`
}

type loginResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

func (s *Server) handleRegister(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	avatar, err := formUpload(c, "avatar", media.KindAvatar)
	if err != nil {
		return err
	}
	defer closeUpload(avatar)

	cover, err := formUpload(c, "coverImage", media.KindCoverImage)
	if err != nil {
		return err
	}
	defer closeUpload(cover)

	user, err := s.users.Register(c.Request().Context(), services.RegisterInput{
		FullName:   req.FullName,
		Email:      req.Email,
		Username:   req.Username,
		Password:   req.Password,
		Avatar:     avatar,
		CoverImage: cover,
	})
	if err != nil {
		return err
	}

	s.logger.Info(c.Request().Context(), "user registered", "user_id", user.ID, "username", user.Username)
	return respond(c, http.StatusCreated, user, "User registered successfully")
}

func (s *Server) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	res, err := s.users.Login(c.Request().Context(), services.LoginInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	s.setTokenCookies(c, res.Tokens)
	return respond(c, http.StatusOK, loginResponse{
		User:         res.User,
		AccessToken:  res.Tokens.AccessToken,
		RefreshToken: res.Tokens.RefreshToken,
	}, "User logged in")
}

func (s *Server) handleLogout(c echo.Context) error {
	if err := s.users.Logout(c.Request().Context(), currentUserID(c)); err != nil {
		return err
	}
	s.clearTokenCookies(c)
	return respond(c, http.StatusOK, struct{}{}, "User logged out")
}

func (s *Server) handleRefresh(c echo.Context) error {
	var req refreshRequest
	if ck, err := c.Cookie(common.RefreshTokenCookieName); err == nil && ck.Value != "" {
		req.RefreshToken = ck.Value
	} else if err := c.Bind(&req); err != nil {
		return err
	}

	res, err := s.users.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return err
	}

	s.setTokenCookies(c, res.Tokens)
	return respond(c, http.StatusOK, loginResponse{
		User:         res.User,
		AccessToken:  res.Tokens.AccessToken,
		RefreshToken: res.Tokens.RefreshToken,
	}, "Access token refreshed")
}

func (s *Server) handleChangePassword(c echo.Context) error {
	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := s.users.ChangePassword(c.Request().Context(), currentUserID(c), req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	return respond(c, http.StatusOK, struct{}{}, "Password changed successfully")
}

func (s *Server) handleCurrentUser(c echo.Context) error {
	user, err := s.users.CurrentUser(c.Request().Context(), currentUserID(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, user, "Current user fetched")
}

func (s *Server) handleUpdateAccountDetails(c echo.Context) error {
	var req accountDetailsRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	user, err := s.users.UpdateAccountDetails(c.Request().Context(), currentUserID(c), req.FullName, req.Email)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, user, "Account details updated")
}

func (s *Server) handleUpdateAvatar(c echo.Context) error {
	upload, err := formUpload(c, "avatar", media.KindAvatar)
	if err != nil {
		return err
	}
	defer closeUpload(upload)

	user, err := s.users.UpdateAvatar(c.Request().Context(), currentUserID(c), upload)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, user, "Avatar updated successfully")
}

func (s *Server) handleUpdateCoverImage(c echo.Context) error {
	upload, err := formUpload(c, "coverImage", media.KindCoverImage)
	if err != nil {
		return err
	}
	defer closeUpload(upload)

	user, err := s.users.UpdateCoverImage(c.Request().Context(), currentUserID(c), upload)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, user, "Cover image updated successfully")
}

func (s *Server) handleChannelProfile(c echo.Context) error {
	profile, err := s.profiles.ChannelProfile(c.Request().Context(), currentUserID(c), c.Param("username"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, profile, "Channel found")
}

func (s *Server) handleWatchHistory(c echo.Context) error {
	history, err := s.profiles.WatchHistory(c.Request().Context(), currentUserID(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, history, "Watch history fetched successfully")
}

func (s *Server) handleSubscribe(c echo.Context) error {
	var req subscribeRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	sub, err := s.subs.Subscribe(c.Request().Context(), currentUserID(c), req.Username)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, sub, "Subscribed successfully")
}
