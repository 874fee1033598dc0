package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/vidtube/internal/logging"
	"github.com/dmitrijs2005/vidtube/internal/server/auth"
	"github.com/dmitrijs2005/vidtube/internal/server/config"
	"github.com/dmitrijs2005/vidtube/internal/server/media"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
	"github.com/dmitrijs2005/vidtube/internal/server/services"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

var errNotImplemented = errors.New("not implemented")

// --- Mock implementations ---

type mockUserService struct {
	registerFn       func(ctx context.Context, in services.RegisterInput) (*models.User, error)
	loginFn          func(ctx context.Context, in services.LoginInput) (*services.LoginResult, error)
	logoutFn         func(ctx context.Context, userID string) error
	refreshFn        func(ctx context.Context, refreshToken string) (*services.LoginResult, error)
	changePasswordFn func(ctx context.Context, userID, oldPassword, newPassword string) error
	currentUserFn    func(ctx context.Context, userID string) (*models.User, error)
	updateDetailsFn  func(ctx context.Context, userID, fullName, email string) (*models.User, error)
	updateAvatarFn   func(ctx context.Context, userID string, upload *media.Upload) (*models.User, error)
	updateCoverFn    func(ctx context.Context, userID string, upload *media.Upload) (*models.User, error)
}

func (m *mockUserService) Register(ctx context.Context, in services.RegisterInput) (*models.User, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, in)
	}
	return nil, errNotImplemented
}

func (m *mockUserService) Login(ctx context.Context, in services.LoginInput) (*services.LoginResult, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, in)
	}
	return nil, errNotImplemented
}

func (m *mockUserService) Logout(ctx context.Context, userID string) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, userID)
	}
	return nil
}

func (m *mockUserService) Refresh(ctx context.Context, refreshToken string) (*services.LoginResult, error) {
	if m.refreshFn != nil {
		return m.refreshFn(ctx, refreshToken)
	}
	return nil, errNotImplemented
}

func (m *mockUserService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if m.changePasswordFn != nil {
		return m.changePasswordFn(ctx, userID, oldPassword, newPassword)
	}
	return errNotImplemented
}

func (m *mockUserService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	if m.currentUserFn != nil {
		return m.currentUserFn(ctx, userID)
	}
	return nil, errNotImplemented
}

func (m *mockUserService) UpdateAccountDetails(ctx context.Context, userID, fullName, email string) (*models.User, error) {
	if m.updateDetailsFn != nil {
		return m.updateDetailsFn(ctx, userID, fullName, email)
	}
	return nil, errNotImplemented
}

func (m *mockUserService) UpdateAvatar(ctx context.Context, userID string, upload *media.Upload) (*models.User, error) {
	if m.updateAvatarFn != nil {
		return m.updateAvatarFn(ctx, userID, upload)
	}
	return nil, errNotImplemented
}

func (m *mockUserService) UpdateCoverImage(ctx context.Context, userID string, upload *media.Upload) (*models.User, error) {
	if m.updateCoverFn != nil {
		return m.updateCoverFn(ctx, userID, upload)
	}
	return nil, errNotImplemented
}

type mockSubscriptionService struct {
	subscribeFn func(ctx context.Context, subscriberID, channelUsername string) (*models.Subscription, error)
}

func (m *mockSubscriptionService) Subscribe(ctx context.Context, subscriberID, channelUsername string) (*models.Subscription, error) {
	if m.subscribeFn != nil {
		return m.subscribeFn(ctx, subscriberID, channelUsername)
	}
	return nil, errNotImplemented
}

type mockProfileService struct {
	channelProfileFn func(ctx context.Context, viewerID, username string) (*models.ChannelProfile, error)
	watchHistoryFn   func(ctx context.Context, userID string) ([]*models.WatchedVideo, error)
}

func (m *mockProfileService) ChannelProfile(ctx context.Context, viewerID, username string) (*models.ChannelProfile, error) {
	if m.channelProfileFn != nil {
		return m.channelProfileFn(ctx, viewerID, username)
	}
	return nil, errNotImplemented
}

func (m *mockProfileService) WatchHistory(ctx context.Context, userID string) ([]*models.WatchedVideo, error) {
	if m.watchHistoryFn != nil {
		return m.watchHistoryFn(ctx, userID)
	}
	return nil, errNotImplemented
}

type mockPinger struct{ err error }

func (m mockPinger) PingContext(context.Context) error { return m.err }

// --- Helpers ---

var t0 = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.StaticDir = ""
	return cfg
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type testEnv struct {
	srv   *Server
	cfg   *config.Config
	clock *clockwork.FakeClock
}

func newTestEnv(t *testing.T, d Deps, opts ...func(*config.Config)) *testEnv {
	t.Helper()
	cfg := testConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	clock := clockwork.NewFakeClockAt(t0)
	if d.Users == nil {
		d.Users = &mockUserService{}
	}
	if d.Subscriptions == nil {
		d.Subscriptions = &mockSubscriptionService{}
	}
	if d.Profiles == nil {
		d.Profiles = &mockProfileService{}
	}
	if d.Tokens == nil {
		d.Tokens = services.NewTokenService(nil, nil, cfg, clock)
	}
	return &testEnv{srv: NewServer(cfg, testLogger(), d), cfg: cfg, clock: clock}
}

// accessToken signs an access token for userID valid at the env's clock.
func (e *testEnv) accessToken(t *testing.T, userID string) string {
	t.Helper()
	tok, err := auth.GenerateToken(auth.Claims{TokenType: auth.TokenTypeAccess, UserID: userID}, []byte(e.cfg.AccessTokenSecret), e.clock.Now(), e.cfg.AccessTokenValidityDuration)
	require.NoError(t, err)
	return tok
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "application/json")
	return req
}

type formFile struct {
	field, name, contentType string
	content                  []byte
}

func multipartRequest(t *testing.T, target string, fields map[string]string, files ...formFile) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		h := make(map[string][]string)
		h["Content-Disposition"] = []string{`form-data; name="` + f.field + `"; filename="` + f.name + `"`}
		h["Content-Type"] = []string{f.contentType}
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
	Errors     []string        `json:"errors"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func cookieByName(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
