package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/elimu-hub/backend/internal/auth/service"
	"github.com/elimu-hub/backend/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository is the interface that wraps methods for User table data access
type UserRepository interface {
	// Method Create inserts a new user into the database.
	//
	// "user" parameter is used to create a new user.
	//
	// If some error occurs during user creation, the error will be returned together with "nil" value.
	Create(ctx context.Context, user *models.User) error
	// Method GetByEmailOrUsername retrieves a user by email or username.
	//
	// "login" parameter is used to retrieve a user by email or username.
	//
	// If user with such email or username does not exist, the error will be returned together with "nil" value.
	GetByEmailOrUsername(ctx context.Context, login string) (*models.User, error)
	// Method GetByID retrieves a user by ID.
	//
	// "userID" parameter is used to retrieve a user by ID.
	//
	// If user with such ID does not exist, the error will be returned together with "nil" value.
	GetByID(ctx context.Context, userID int) (*models.User, error)
	// Method ExistsByEmail checks if a user with such email exists.
	//
	// "email" parameter is used to check if a user with such email exists.
	//
	// If some error occurs during check, the error will be returned together with "false" value.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// Method ExistsByUsername checks if a user with such username exists.
	//
	// "username" parameter is used to check if a user with such username exists.
	//
	// If some error occurs during check, the error will be returned together with "false" value.
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

// authService implements AuthService
type authService struct {
	userRepo       UserRepository
	tokenGenerator *service.TokenGenerator
	logger         *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo UserRepository, tokenGenerator *service.TokenGenerator, logger *zap.Logger) *authService {
	return &authService{
		userRepo:       userRepo,
		tokenGenerator: tokenGenerator,
		logger:         logger,
	}
}

// emailRegex validates email format
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// passwordRegex validates password: at least 8 chars, uppercase, lowercase, number, special: !_?^&+-=|
var passwordRegex = []*regexp.Regexp{
	regexp.MustCompile(`.{8,}`),
	regexp.MustCompile(`[a-z]`),
	regexp.MustCompile(`[A-Z]`),
	regexp.MustCompile(`[0-9]`),
	regexp.MustCompile(`[!_?^&+\-=|]`),
}

// Register creates a new user account with the regular user role
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)

	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if !emailRegex.MatchString(email) {
		return nil, fmt.Errorf("invalid email format")
	}
	for _, re := range passwordRegex {
		if !re.MatchString(req.Password) {
			return nil, fmt.Errorf("password does not meet complexity requirements")
		}
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("user with this email already exists")
	}

	exists, err = s.userRepo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("user with this username already exists")
	}

	// Hash password
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(passwordHash),
		Role:         models.RoleUser,
		IsActive:     true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.Int("user_id", user.ID), zap.String("username", user.Username))

	return s.issueTokens(user)
}

// Login authenticates a user by email or username and password
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.TokenResponse, error) {
	login := strings.TrimSpace(req.Login)
	if login == "" || req.Password == "" {
		return nil, fmt.Errorf("login and password are required")
	}

	user, err := s.userRepo.GetByEmailOrUsername(ctx, login)
	if err != nil {
		// Do not leak whether the account exists
		return nil, fmt.Errorf("invalid credentials")
	}

	if !user.IsActive {
		return nil, fmt.Errorf("account is deactivated")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}

	return s.issueTokens(user)
}

// issueTokens generates a token pair for the user
func (s *authService) issueTokens(user *models.User) (*models.TokenResponse, error) {
	accessToken, refreshToken, err := s.tokenGenerator.GenerateTokens(user.ID, int(user.Role))
	if err != nil {
		return nil, err
	}

	return &models.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}
