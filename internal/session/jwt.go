package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "sprints"

type jwtMinter struct {
	key []byte
	cfg Config
}

func newJWTMinter(secret string, cfg Config) (*jwtMinter, error) {
	key, err := deriveKey(secret, "session-token")
	if err != nil {
		return nil, err
	}
	// Defaults
	if cfg.MaxAge == 0 {
		cfg.MaxAge = 30 * 24 * time.Hour
	}
	if cfg.UpdateAge == 0 {
		cfg.UpdateAge = 24 * time.Hour
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &jwtMinter{key: key, cfg: cfg}, nil
}

func (m *jwtMinter) Mint(id Identity) (string, error) {
	if id.Subject == "" {
		return "", fmt.Errorf("session: identity has no subject")
	}
	if id.Role == "" {
		id.Role = RoleUser
	}

	now := m.cfg.Now()
	c := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Subject,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.cfg.MaxAge)),
		},
		Email: id.Email,
		Name:  id.Name,
		Role:  id.Role,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("session: signing token: %w", err)
	}
	return signed, nil
}

func (m *jwtMinter) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&Claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("session: unexpected signing method: %v", token.Header["alg"])
			}
			return m.key, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(m.cfg.Now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	c, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || c.Subject == "" {
		return nil, ErrInvalid
	}
	if c.Role == "" {
		c.Role = RoleUser
	}
	return c, nil
}

func (m *jwtMinter) Refresh(c *Claims) (string, bool, error) {
	if c == nil || c.IssuedAt == nil {
		return "", false, ErrInvalid
	}
	if m.cfg.Now().Sub(c.IssuedAt.Time) < m.cfg.UpdateAge {
		return "", false, nil
	}
	token, err := m.Mint(c.Identity())
	if err != nil {
		return "", false, err
	}
	return token, true, nil
}
