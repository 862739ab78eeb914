package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"go-checklist/backend/internal/apperrors"
	"go-checklist/backend/internal/models"
	"go-checklist/backend/internal/repositories"
)

// UserService はユーザー登録とログインのビジネスロジックを扱います。
type UserService struct {
	userRepo   repositories.UserStore
	jwtService *JWTService
}

// NewUserService は新しいUserServiceを作成します。
func NewUserService(userRepo repositories.UserStore, jwtService *JWTService) *UserService {
	return &UserService{userRepo: userRepo, jwtService: jwtService}
}

// RegisterUser はユーザーを登録します。
func (s *UserService) RegisterUser(ctx context.Context, req *models.UserRegisterRequest) (*models.User, error) {
	hashedPassword, err := repositories.HashPassword(req.Password)
	if err != nil {
		// マルチバイト文字は文字数の上限を通っても72バイトを超えることがある
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, apperrors.Validation("Password must be at most 72 bytes",
				apperrors.FieldError{Field: "password", Message: "Password must be at most 72 bytes"})
		}
		return nil, apperrors.Internal(err)
	}

	createdUser, err := s.userRepo.Create(ctx, &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hashedPassword,
	})
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return nil, apperrors.Conflict("Email already registered")
		}
		return nil, apperrors.Internal(err)
	}
	createdUser.PasswordHash = "" // レスポンスにパスワードを含めない
	return createdUser, nil
}

// Login はユーザーを認証し、成功したらトークンを発行します。
// ユーザーが存在しない場合とパスワード違いは区別せずに401を返します。
func (s *UserService) Login(ctx context.Context, req *models.UserLoginRequest) (*models.LoginResponse, error) {
	foundUser, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.Unauthorized("Invalid credentials")
		}
		return nil, apperrors.Internal(err)
	}

	if err := repositories.VerifyPassword(foundUser.PasswordHash, req.Password); err != nil {
		return nil, apperrors.Unauthorized("Invalid credentials")
	}

	token, err := s.jwtService.GenerateToken(foundUser.ID, foundUser.Email)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("generate token: %w", err))
	}

	foundUser.PasswordHash = ""
	return &models.LoginResponse{Token: token, User: foundUser}, nil
}
