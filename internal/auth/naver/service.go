package naver

import (
	"context"
	"errors"
	"log"

	"gorm.io/gorm"

	"github.com/Mad-three/server/internal/apperr"
	"github.com/Mad-three/server/internal/auth/session"
	"github.com/Mad-three/server/internal/db/models"
)

// Service runs the login-time code exchange and the later refresh
// grant, keeping the user's vaulted credentials current.
type Service struct {
	db       *gorm.DB
	client   *Client
	vault    *Vault
	sessions *session.Manager
}

// NewService wires the provider client, the credential vault and the
// session issuer together.
func NewService(database *gorm.DB, client *Client, vault *Vault, sessions *session.Manager) *Service {
	return &Service{db: database, client: client, vault: vault, sessions: sessions}
}

// LoginResult is returned to the HTTP boundary after a successful
// provider login.
type LoginResult struct {
	Token   string
	User    models.User
	Created bool
}

// Login exchanges the authorization code, fetches the remote profile,
// upserts the user keyed by email, and issues a session token.
//
// The token and profile calls run strictly in sequence; the profile
// lookup needs the freshly issued access token.
func (s *Service) Login(ctx context.Context, code, state string) (*LoginResult, error) {
	if code == "" || state == "" {
		return nil, apperr.New(apperr.KindInvalidRequest, "authorization code and state are required")
	}

	tok, err := s.client.ExchangeCode(ctx, code, state)
	if err != nil {
		return nil, err
	}

	profile, err := s.client.FetchProfile(ctx, tok.AccessToken)
	if err != nil {
		return nil, err
	}

	var user models.User
	created := false
	err = s.db.First(&user, "email = ?", profile.Email).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{
			Email:   profile.Email,
			Name:    profile.Name,
			NaverID: profile.ID,
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, err
		}
		created = true
	case err != nil:
		return nil, err
	}

	// Access token always rotates; the refresh token only if the
	// provider sent one this time.
	if err := s.vault.StoreExchange(&user, tok.AccessToken, tok.RefreshToken); err != nil {
		return nil, err
	}

	sessionToken, err := s.sessions.Issue(user.UserID)
	if err != nil {
		return nil, err
	}

	log.Printf("provider login for %s (created=%v)", user.Email, created)
	return &LoginResult{Token: sessionToken, User: user, Created: created}, nil
}

// RefreshAccessToken runs one refresh grant for the user and persists
// the new encrypted access token, returning the plaintext for the
// caller's retried request. The stored refresh token is unchanged since
// the refresh endpoint does not return one.
//
// The whole decrypt-refresh-persist step holds the user's vault lock;
// a concurrent invocation that lost the race re-reads the winner's
// token instead of refreshing again.
func (s *Service) RefreshAccessToken(ctx context.Context, user *models.User) (string, error) {
	unlock := s.vault.LockUser(user.UserID)
	defer unlock()

	priorAccess := user.NaverAccessToken
	if err := s.vault.Reload(user); err != nil {
		return "", err
	}
	if user.NaverAccessToken != priorAccess {
		// Another request already refreshed while we waited.
		return s.vault.AccessToken(user)
	}

	refreshToken, err := s.vault.RefreshToken(user)
	if err != nil {
		return "", err
	}

	newAccess, err := s.client.Refresh(ctx, refreshToken)
	if err != nil {
		return "", err
	}

	if err := s.vault.StoreRefreshedAccess(user, newAccess); err != nil {
		return "", err
	}

	log.Printf("refreshed provider access token for %s", user.Email)
	return newAccess, nil
}
