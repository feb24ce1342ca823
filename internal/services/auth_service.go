package services

import (
	"database/sql"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/google/uuid"
	"github.com/transitline/bus-booking-backend/internal/database"
	"github.com/transitline/bus-booking-backend/internal/models"
	"github.com/transitline/bus-booking-backend/pkg/jwt"
)

var (
	// ErrEmailTaken signals a registration with an already-used email.
	ErrEmailTaken = errors.New("an account with this email already exists")

	// ErrInvalidCredentials covers both unknown email and wrong password;
	// login responses never distinguish the two.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidOperatorKey signals a registration with an unknown or
	// already-consumed operator key.
	ErrInvalidOperatorKey = errors.New("invalid or already used operator key")
)

// AuthService handles registration, login and token refresh.
type AuthService struct {
	userRepo        *database.UserRepository
	operatorKeyRepo *database.OperatorKeyRepository
	jwtService      *jwt.Service
	bcryptCost      int
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo *database.UserRepository,
	operatorKeyRepo *database.OperatorKeyRepository,
	jwtService *jwt.Service,
	bcryptCost int,
) *AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		userRepo:        userRepo,
		operatorKeyRepo: operatorKeyRepo,
		jwtService:      jwtService,
		bcryptCost:      bcryptCost,
	}
}

// Register creates an account and returns a fresh token pair. The first
// account ever registered becomes the admin. A valid unused operator key
// upgrades the account to BUS_OPERATOR and consumes the key.
func (s *AuthService) Register(req *models.RegisterRequest) (*models.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.userRepo.GetByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if err != sql.ErrNoRows {
		return nil, err
	}

	role := models.RoleUser

	count, err := s.userRepo.Count()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		role = models.RoleAdmin
	}

	var operatorKey *models.OperatorKey
	if role != models.RoleAdmin && req.OperatorKey != nil && *req.OperatorKey != "" {
		operatorKey, err = s.operatorKeyRepo.GetByKey(*req.OperatorKey)
		if err != nil {
			if err == sql.ErrNoRows {
				return nil, ErrInvalidOperatorKey
			}
			return nil, err
		}
		if operatorKey.UsedAt != nil {
			return nil, ErrInvalidOperatorKey
		}
		role = models.RoleOperator
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: string(hash),
		Phone:        req.Phone,
		Role:         role,
	}

	// The key is consumed before the account exists; a registration that
	// loses the single-use race fails without leaving an operator account.
	if operatorKey != nil {
		if err := s.operatorKeyRepo.MarkUsed(operatorKey.ID, user.ID); err != nil {
			return nil, ErrInvalidOperatorKey
		}
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	return s.tokenResponse(user)
}

// Login authenticates an email and password pair
func (s *AuthService) Login(req *models.LoginRequest) (*models.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.tokenResponse(user)
}

// Refresh exchanges a valid refresh token for a new token pair
func (s *AuthService) Refresh(refreshToken string) (*models.AuthResponse, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(claims.UserID)
	if err != nil {
		return nil, err
	}

	return s.tokenResponse(user)
}

// GetUser retrieves a user's profile by ID
func (s *AuthService) GetUser(userID string) (*models.User, error) {
	return s.userRepo.GetByID(userID)
}

func (s *AuthService) tokenResponse(user *models.User) (*models.AuthResponse, error) {
	token, err := s.jwtService.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}
	refresh, err := s.jwtService.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	return &models.AuthResponse{
		Token:        token,
		RefreshToken: refresh,
		User:         user,
	}, nil
}
