package naver

import (
	"sync"

	"gorm.io/gorm"

	"github.com/Mad-three/server/internal/apperr"
	"github.com/Mad-three/server/internal/auth/secret"
	"github.com/Mad-three/server/internal/db/models"
)

// Vault reads and writes a user's encrypted provider credentials. It
// owns two rules: tokens are ciphertext at rest, and a refresh token is
// only replaced when the provider actually supplies a new one.
//
// Writes that follow a refresh run under a per-user mutex so two
// concurrent 401 recoveries don't interleave their refresh-and-persist
// steps.
type Vault struct {
	db     *gorm.DB
	cipher *secret.Cipher

	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

// NewVault builds a Vault over the given database and cipher.
func NewVault(database *gorm.DB, cipher *secret.Cipher) *Vault {
	return &Vault{
		db:     database,
		cipher: cipher,
		locks:  make(map[uint]*sync.Mutex),
	}
}

// LockUser acquires the refresh mutex for one user and returns the
// unlock function.
func (v *Vault) LockUser(userID uint) func() {
	v.mu.Lock()
	l, ok := v.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		v.locks[userID] = l
	}
	v.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// AccessToken decrypts the user's stored access token. Absent or
// unreadable credentials both mean the provider link is unusable.
func (v *Vault) AccessToken(user *models.User) (string, error) {
	if user.NaverAccessToken == "" {
		return "", apperr.New(apperr.KindNoCredential, "no provider link on file, please re-link your account")
	}
	plaintext, err := v.cipher.Decrypt(user.NaverAccessToken)
	if err != nil || plaintext == "" {
		return "", apperr.Wrap(apperr.KindNoCredential, "stored access token is unreadable, please re-link your account", err)
	}
	return plaintext, nil
}

// RefreshToken decrypts the user's stored refresh token.
func (v *Vault) RefreshToken(user *models.User) (string, error) {
	if user.NaverRefreshToken == "" {
		return "", apperr.New(apperr.KindNoCredential, "no refresh token on file, please re-link your account")
	}
	plaintext, err := v.cipher.Decrypt(user.NaverRefreshToken)
	if err != nil || plaintext == "" {
		return "", apperr.Wrap(apperr.KindNoCredential, "stored refresh token is unreadable, please re-link your account", err)
	}
	return plaintext, nil
}

// StoreExchange persists the results of a full code exchange. The
// access token is always replaced; the refresh token only when the
// provider returned one this time.
func (v *Vault) StoreExchange(user *models.User, accessToken, refreshToken string) error {
	sealedAccess, err := v.cipher.Encrypt(accessToken)
	if err != nil {
		return err
	}
	user.NaverAccessToken = sealedAccess

	if refreshToken != "" {
		sealedRefresh, err := v.cipher.Encrypt(refreshToken)
		if err != nil {
			return err
		}
		user.NaverRefreshToken = sealedRefresh
	}

	return v.db.Save(user).Error
}

// StoreRefreshedAccess persists a new access token after a refresh
// grant. The refresh token column is left untouched.
func (v *Vault) StoreRefreshedAccess(user *models.User, accessToken string) error {
	sealed, err := v.cipher.Encrypt(accessToken)
	if err != nil {
		return err
	}
	user.NaverAccessToken = sealed
	return v.db.Model(user).Update("naver_access_token", sealed).Error
}

// Reload re-reads the user row, picking up credential writes made by a
// concurrent request while this one waited on the user lock.
func (v *Vault) Reload(user *models.User) error {
	return v.db.First(user, "user_id = ?", user.UserID).Error
}
