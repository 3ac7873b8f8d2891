package service

import (
	"context"
	"errors"
	"net/mail"
	"time"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DTOs for Request validation
type RegisterRequest struct {
	TenantName string `json:"tenant_name" binding:"required"`
	Username   string `json:"username" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

// DTO for returning User without exposing sensitive data (e.g. password)
type UserResponse struct {
	ID        string `json:"id"`
	TenantID  string `json:"tenant_id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

type UserService interface {
	Register(ctx context.Context, req RegisterRequest) (*UserResponse, error)
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
}

type userService struct {
	userRepo   repository.UserRepository
	tenantRepo repository.TenantRepository
	txManager  repository.TransactionManager
	log        *logrus.Logger
}

func NewUserService(
	userRepo repository.UserRepository,
	tenantRepo repository.TenantRepository,
	txManager repository.TransactionManager,
	log *logrus.Logger,
) UserService {
	return &userService{
		userRepo:   userRepo,
		tenantRepo: tenantRepo,
		txManager:  txManager,
		log:        log,
	}
}

func mapToUserResponse(user *model.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID.String(),
		TenantID:  user.TenantID.String(),
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}

// Register provisions a fresh tenant and its first (admin) user in one
// transaction.
func (s *userService) Register(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return nil, apperror.Validation("invalid email format")
	}

	if _, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil {
		return nil, apperror.Conflict("email already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "failed to hash password", err)
	}

	tenant := &model.Tenant{Name: req.TenantName, IsActive: true}
	user := &model.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashedPassword),
		Role:     "admin",
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.tenantRepo.Create(txCtx, tenant); createErr != nil {
			return createErr
		}
		user.TenantID = tenant.ID
		return s.userRepo.Create(txCtx, user)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflict("username or email already exists")
		}
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"tenant_id": tenant.ID,
		"user_id":   user.ID,
	}).Info("tenant registered")

	return mapToUserResponse(user), nil
}

func (s *userService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperror.New(apperror.KindUnauthorized, "invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, apperror.New(apperror.KindUnauthorized, "invalid email or password")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":    user.ID.String(),
		"role":   user.Role,
		"tenant": user.TenantID.String(),
		"exp":    time.Now().Add(24 * time.Hour).Unix(),
	})

	tokenString, err := token.SignedString(middleware.GetJWTSecret())
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "failed to generate token", err)
	}

	return &TokenResponse{Token: tokenString}, nil
}
