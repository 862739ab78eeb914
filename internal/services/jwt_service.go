package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"go-checklist/backend/internal/models"
)

// Claims JWTクレームの構造体
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// JWTService はJWTトークンの生成と検証を扱います。
type JWTService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTService は新しいJWTServiceを作成します。
func NewJWTService(secret string, ttl time.Duration) (*JWTService, error) {
	if secret == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	return &JWTService{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// GenerateToken はユーザーIDをsubjectに持つJWTトークンを生成します。
func (s *JWTService) GenerateToken(userID, email string) (string, error) {
	issuedAt := s.now()
	claims := &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken はJWTトークンを検証し、クレームを返します。
func (s *JWTService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("invalid user id")
	}

	return &models.JWTClaims{UserID: claims.Subject, Email: claims.Email}, nil
}
