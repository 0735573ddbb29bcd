// Package config loads service configuration. Non-secret settings come
// from a YAML file; secrets are read from the environment so they can be
// rotated independently of the deployed config file.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// ProviderConfig holds the external identity provider endpoints.
type ProviderConfig struct {
	// TokenURL is the endpoint used for both the authorization code
	// exchange and the refresh grant.
	TokenURL string `yaml:"token_url"`
	// ProfileURL returns the authenticated user's profile.
	ProfileURL string `yaml:"profile_url"`
	// CalendarURL is the schedule-creation endpoint.
	CalendarURL string `yaml:"calendar_url"`
}

// CalendarConfig holds the fixed calendar export parameters.
type CalendarConfig struct {
	// TimezoneID is the IANA zone name written into the payload (TZID).
	TimezoneID string `yaml:"timezone_id"`
	// UTCOffsetMinutes is the fixed offset of TimezoneID from UTC.
	// Event instants are stored in UTC and shifted by this amount when
	// rendered; the ambient process timezone is never consulted.
	UTCOffsetMinutes int `yaml:"utc_offset_minutes"`
	// CalendarID is the provider-side target calendar identifier.
	CalendarID string `yaml:"calendar_id"`
	// ProdID identifies this service in rendered payloads.
	ProdID string `yaml:"prod_id"`
	// UIDDomain is appended to generated event UIDs.
	UIDDomain string `yaml:"uid_domain"`
}

// Config is the top-level non-secret service configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen"`
	// DBPath is the SQLite database file path.
	DBPath string `yaml:"db_path"`

	Provider ProviderConfig `yaml:"provider"`
	Calendar CalendarConfig `yaml:"calendar"`
}

// Default returns the built-in configuration targeting the Naver open
// API with an Asia/Seoul calendar.
func Default() *Config {
	return &Config{
		Listen: "127.0.0.1:8080",
		DBPath: "eventmap.db",
		Provider: ProviderConfig{
			TokenURL:    "https://nid.naver.com/oauth2.0/token",
			ProfileURL:  "https://openapi.naver.com/v1/nid/me",
			CalendarURL: "https://openapi.naver.com/calendar/createSchedule.json",
		},
		Calendar: CalendarConfig{
			TimezoneID:       "Asia/Seoul",
			UTCOffsetMinutes: 540,
			CalendarID:       "defaultCalendarId",
			ProdID:           "EventMap",
			UIDDomain:        "eventmap.com",
		},
	}
}

// Load reads the YAML config at path, overlaying it on Default. A
// missing file is not an error; defaults are returned unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Secrets holds credential material read from the environment. The
// encryption key and the session signing secret are deliberately
// separate values so each can be rotated on its own.
type Secrets struct {
	ClientID      string `env:"NAVER_CLIENT_ID"`
	ClientSecret  string `env:"NAVER_CLIENT_SECRET"`
	EncryptionKey string `env:"TOKEN_ENCRYPTION_KEY"`
	SessionSecret string `env:"JWT_SECRET"`
}

// LoadSecrets parses and validates secrets from the environment.
func LoadSecrets() (Secrets, error) {
	var s Secrets
	if err := env.Parse(&s); err != nil {
		return Secrets{}, fmt.Errorf("parse env: %w", err)
	}

	s.ClientID = strings.TrimSpace(s.ClientID)
	s.ClientSecret = strings.TrimSpace(s.ClientSecret)
	s.EncryptionKey = strings.TrimSpace(s.EncryptionKey)
	s.SessionSecret = strings.TrimSpace(s.SessionSecret)

	if s.ClientID == "" {
		return Secrets{}, fmt.Errorf("NAVER_CLIENT_ID is required")
	}
	if s.ClientSecret == "" {
		return Secrets{}, fmt.Errorf("NAVER_CLIENT_SECRET is required")
	}
	if s.EncryptionKey == "" {
		return Secrets{}, fmt.Errorf("TOKEN_ENCRYPTION_KEY is required")
	}
	if s.SessionSecret == "" {
		return Secrets{}, fmt.Errorf("JWT_SECRET is required")
	}
	if s.EncryptionKey == s.SessionSecret {
		return Secrets{}, fmt.Errorf("TOKEN_ENCRYPTION_KEY and JWT_SECRET must be distinct secrets")
	}
	if _, err := s.AESKey(); err != nil {
		return Secrets{}, err
	}
	return s, nil
}

// AESKey decodes the encryption key into raw AES key bytes. A raw
// 16/24/32-byte string is used as-is; otherwise a base64 encoding of
// such a key is accepted for keys produced by tooling.
func (s Secrets) AESKey() ([]byte, error) {
	raw := []byte(s.EncryptionKey)
	if validAESLen(len(raw)) {
		return raw, nil
	}
	if decoded, err := base64.StdEncoding.DecodeString(s.EncryptionKey); err == nil && validAESLen(len(decoded)) {
		return decoded, nil
	}
	return nil, fmt.Errorf("TOKEN_ENCRYPTION_KEY must be 16, 24 or 32 bytes (raw or base64)")
}

func validAESLen(n int) bool {
	return n == 16 || n == 24 || n == 32
}
