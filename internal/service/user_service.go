package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"pawnshop-service/configs"
	"pawnshop-service/internal/models"
	"pawnshop-service/internal/repository"
	"pawnshop-service/pkg/crypto"
)

// UserSvc is an implementation of the service.UserService interface
type UserSvc struct {
	repos     *repository.Repository
	logger    *logrus.Logger
	config    *configs.Config
	hasher    *crypto.PasswordHasher
	jwtSecret string
	jwtTTL    time.Duration
}

// NewUserService creates a new UserSvc
func NewUserService(deps Dependencies) *UserSvc {
	return &UserSvc{
		repos:     deps.Repos,
		logger:    deps.Logger,
		config:    deps.Config,
		hasher:    crypto.NewPasswordHasher(),
		jwtSecret: deps.Config.JWT.Secret,
		jwtTTL:    time.Duration(deps.Config.JWT.TTL) * time.Hour,
	}
}

// Register registers a new back-office user
func (s *UserSvc) Register(ctx context.Context, userReg *models.UserRegistration) (int, error) {
	if err := userReg.ValidateRegistration(); err != nil {
		return 0, fmt.Errorf("invalid user data: %w", err)
	}

	_, err := s.repos.User.GetByUsername(ctx, userReg.Username)
	if err == nil {
		return 0, errors.New("username already exists")
	}

	_, err = s.repos.User.GetByEmail(ctx, userReg.Email)
	if err == nil {
		return 0, errors.New("email already exists")
	}

	user := userReg.ToUser()
	user.Role = "clerk"

	hashedPassword, err := s.hasher.HashPassword(user.Password)
	if err != nil {
		return 0, fmt.Errorf("failed to hash password: %w", err)
	}

	user.PassHash = hashedPassword

	id, err := s.repos.User.Create(ctx, user)
	if err != nil {
		return 0, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Infof("User registered: %d", id)

	return id, nil
}

// Login logs in a user and returns a JWT token
func (s *UserSvc) Login(ctx context.Context, login *models.UserLogin) (*models.TokenResponse, error) {
	user, err := s.repos.User.GetByUsername(ctx, login.Username)
	if err != nil {
		return nil, errors.New("invalid credentials")
	}

	if !s.hasher.CheckPasswordHash(login.Password, user.PassHash) {
		return nil, errors.New("invalid credentials")
	}

	expirationTime := time.Now().Add(s.jwtTTL)

	claims := jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Role,
		"exp":     expirationTime.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Infof("User logged in: %d", user.ID)

	return &models.TokenResponse{
		Token:     tokenString,
		ExpiresAt: expirationTime.Unix(),
	}, nil
}

// GetByID gets a user by ID
func (s *UserSvc) GetByID(ctx context.Context, id int) (*models.User, error) {
	user, err := s.repos.User.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	// Don't expose the password hash
	user.PassHash = ""

	return user, nil
}

// Update updates a user
func (s *UserSvc) Update(ctx context.Context, user *models.User) error {
	originalUser, err := s.repos.User.GetByID(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	if user.Username != originalUser.Username {
		existingUser, err := s.repos.User.GetByUsername(ctx, user.Username)
		if err == nil && existingUser.ID != user.ID {
			return errors.New("username already exists")
		}
	}

	if user.Email != originalUser.Email {
		existingUser, err := s.repos.User.GetByEmail(ctx, user.Email)
		if err == nil && existingUser.ID != user.ID {
			return errors.New("email already exists")
		}
	}

	err = s.repos.User.Update(ctx, user)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.Infof("User updated: %d", user.ID)

	return nil
}
