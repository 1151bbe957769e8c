package auth

import (
	"errors"
	"fmt"
	"time"

	"expoadmin/config"
	"expoadmin/domain/shared"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "expoadmin"

// Claims 管理员 token 声明
type Claims struct {
	jwt.RegisteredClaims
}

// TokenService 签发与校验 HS256 token
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(cfg config.AuthConfig) (*TokenService, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("auth.jwt_secret is required")
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &TokenService{secret: []byte(cfg.JWTSecret), ttl: ttl, now: time.Now}, nil
}

// Issue 返回 token 与过期时间
func (s *TokenService) Issue(subject string) (string, time.Time, error) {
	now := s.now()
	expires := now.Add(s.ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, expires, nil
}

// Verify 实现 middleware.TokenVerifier
func (s *TokenService) Verify(tokenStr string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", shared.NewUnauthorizedError("token expired")
		}
		return "", shared.NewUnauthorizedError("invalid token")
	}
	if !token.Valid || claims.Subject == "" {
		return "", shared.NewUnauthorizedError("invalid token")
	}
	return claims.Subject, nil
}
