package services

import (
	"errors"
	"strings"
	"time"

	"winelist/internal/config"
	"winelist/internal/utils"
)

var ErrLoginDisabled = errors.New("login is disabled: JWT_SECRET is not set")

type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type AuthService struct {
	cfg config.AuthConfig
	now func() time.Time
}

func NewAuthService(cfg config.AuthConfig) *AuthService {
	return &AuthService{cfg: cfg, now: time.Now}
}

// Authorize accepts the shared admin token or a valid admin session token.
func (s *AuthService) Authorize(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrUnauthorized
	}
	if utils.EqualSecret(s.cfg.AdminToken, token) {
		return nil
	}
	if s.cfg.JWTSecret != "" {
		if _, err := utils.VerifyJWT(token, []byte(s.cfg.JWTSecret)); err == nil {
			return nil
		}
	}
	return ErrUnauthorized
}

// Login checks the admin password and issues a session token.
func (s *AuthService) Login(password string) (*Session, error) {
	if s.cfg.JWTSecret == "" {
		return nil, ErrLoginDisabled
	}
	if !s.checkPassword(password) {
		return nil, ErrUnauthorized
	}

	token, expiresAt, err := utils.GenerateAdminToken([]byte(s.cfg.JWTSecret), s.cfg.TokenTTL, s.now())
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expiresAt}, nil
}

func (s *AuthService) checkPassword(password string) bool {
	if password == "" {
		return false
	}
	if s.cfg.AdminPasswordHash != "" {
		return utils.VerifyPassword(s.cfg.AdminPasswordHash, password) == nil
	}
	return utils.EqualSecret(s.cfg.AdminToken, password)
}
