package identity

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/whoseturn/internal/app/store/storeerr"
	"github.com/dalemusser/whoseturn/internal/domain/models"
	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	defaultUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	defaultStateTTL    = 10 * time.Minute
)

// StateStore keeps one-time OAuth state tokens.
type StateStore interface {
	Save(ctx context.Context, state, returnURL string, expiresAt time.Time) error
	Validate(ctx context.Context, state string) (returnURL string, valid bool, err error)
}

// GoogleConfig configures the hosted provider. Endpoint and UserInfoURL
// default to Google's.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string // e.g., "https://whoseturn.example/auth/google/callback"
	Endpoint     oauth2.Endpoint
	UserInfoURL  string
	StateTTL     time.Duration
}

// Google signs users in through Google OAuth2. Accounts are matched by
// Google subject id first, then by email; unknown users get a new account.
type Google struct {
	oauth       *oauth2.Config
	userInfoURL string
	stateTTL    time.Duration
	users       UserRepo
	states      StateStore
	log         *zap.Logger
	newID       func() string
	now         func() time.Time
}

// NewGoogle returns the hosted provider.
func NewGoogle(cfg GoogleConfig, users UserRepo, states StateStore, logger *zap.Logger) *Google {
	endpoint := cfg.Endpoint
	if endpoint.AuthURL == "" {
		endpoint = google.Endpoint
	}
	userInfo := cfg.UserInfoURL
	if userInfo == "" {
		userInfo = defaultUserInfoURL
	}
	ttl := cfg.StateTTL
	if ttl <= 0 {
		ttl = defaultStateTTL
	}
	return &Google{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes: []string{
				"openid",
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: endpoint,
		},
		userInfoURL: userInfo,
		stateTTL:    ttl,
		users:       users,
		states:      states,
		log:         logger,
		newID:       uuid.NewString,
		now:         time.Now,
	}
}

func (g *Google) Method() string { return MethodGoogle }

// Configured reports whether client credentials were supplied.
func (g *Google) Configured() bool {
	return g.oauth.ClientID != "" && g.oauth.ClientSecret != ""
}

func (g *Google) Identity(ctx context.Context, userID string) (models.UserIdentity, error) {
	u, err := g.users.GetByID(ctx, userID)
	if err != nil {
		return models.UserIdentity{}, err
	}
	return u.Identity(), nil
}

// Begin stores a fresh state token and returns the consent-screen URL.
func (g *Google) Begin(ctx context.Context, returnURL string) (string, error) {
	if !g.Configured() {
		return "", ErrNotConfigured
	}
	state, err := generateState()
	if err != nil {
		return "", err
	}
	if err := g.states.Save(ctx, state, returnURL, g.now().UTC().Add(g.stateTTL)); err != nil {
		return "", fmt.Errorf("save oauth state: %w", err)
	}
	return g.oauth.AuthCodeURL(state), nil
}

// Complete finishes the flow: it consumes state, exchanges code and maps the
// Google account to a local one. It returns the identity and the return URL
// saved by Begin.
func (g *Google) Complete(ctx context.Context, state, code string) (models.UserIdentity, string, error) {
	if !g.Configured() {
		return models.UserIdentity{}, "", ErrNotConfigured
	}
	if state == "" || code == "" {
		return models.UserIdentity{}, "", ErrInvalidState
	}
	returnURL, valid, err := g.states.Validate(ctx, state)
	if err != nil {
		return models.UserIdentity{}, "", fmt.Errorf("validate oauth state: %w", err)
	}
	if !valid {
		return models.UserIdentity{}, "", ErrInvalidState
	}

	token, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return models.UserIdentity{}, "", fmt.Errorf("exchange code: %w", err)
	}
	info, err := g.fetchUserInfo(ctx, token)
	if err != nil {
		return models.UserIdentity{}, "", err
	}
	g.log.Debug("google user info fetched",
		zap.String("google_id", info.ID),
		zap.String("email", info.Email))

	u, err := g.findOrCreate(ctx, info)
	if err != nil {
		return models.UserIdentity{}, "", err
	}
	return u.Identity(), returnURL, nil
}

type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"verified_email"`
	Name          string `json:"name"`
}

func (g *Google) fetchUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := g.oauth.Client(ctx, token)
	resp, err := client.Get(g.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch user info: unexpected status code %d", resp.StatusCode)
	}
	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode user info: %w", err)
	}
	if info.ID == "" || strings.TrimSpace(info.Email) == "" {
		return nil, fmt.Errorf("user info missing id or email")
	}
	return &info, nil
}

func (g *Google) findOrCreate(ctx context.Context, info *googleUserInfo) (models.User, error) {
	u, err := g.users.GetByAuthReturnID(ctx, MethodGoogle, info.ID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, storeerr.ErrNotFound) {
		return models.User{}, fmt.Errorf("lookup by google id: %w", err)
	}

	u, err = g.users.GetByEmail(ctx, info.Email)
	switch {
	case err == nil:
		if u.AuthMethod != MethodGoogle {
			return models.User{}, ErrInvalidCredentials
		}
		if u.AuthReturnID == nil || *u.AuthReturnID == "" {
			if err := g.users.SetAuthReturnID(ctx, u.ID, info.ID); err != nil {
				g.log.Warn("failed to update auth_return_id",
					zap.Error(err), zap.String("user_id", u.ID))
			}
		}
		return u, nil
	case !errors.Is(err, storeerr.ErrNotFound):
		return models.User{}, fmt.Errorf("lookup by email: %w", err)
	}

	returnID := info.ID
	created, err := g.users.Create(ctx, models.User{
		ID:           g.newID(),
		Email:        strings.TrimSpace(info.Email),
		Name:         displayName(info.Name, info.Email),
		AuthMethod:   MethodGoogle,
		AuthReturnID: &returnID,
	})
	if err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	g.log.Info("google account created", zap.String("user_id", created.ID))
	return created, nil
}

// generateState returns a URL-safe random token.
func generateState() (string, error) {
	b := securecookie.GenerateRandomKey(32)
	if b == nil {
		return "", errors.New("generate oauth state: no randomness available")
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
