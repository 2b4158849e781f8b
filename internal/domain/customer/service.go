// internal/domain/customer/service.go
package customer

import (
	"fmt"
	"time"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
	"gorm.io/gorm"
)

// Service handles customer account business logic
type Service struct {
	db              *gorm.DB
	config          *config.Config
	jwtManager      *auth.JWTManager
	passwordManager *auth.PasswordManager
}

// NewService creates a new customer service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:              db,
		config:          cfg,
		jwtManager:      auth.NewJWTManager(cfg),
		passwordManager: auth.NewPasswordManager(cfg),
	}
}

// RegisterRequest represents registration data
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Phone     string `json:"phone"`
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest represents profile update data
type UpdateProfileRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// AuthResponse represents a successful authentication result
type AuthResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	Customer     *Customer `json:"customer"`
}

// Register creates a new customer account
func (s *Service) Register(req *RegisterRequest) (*AuthResponse, error) {
	// Reject duplicate emails up front for a friendlier message
	var existing Customer
	if err := s.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("an account with this email already exists")
	}

	hashedPassword, err := s.passwordManager.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	cust := Customer{
		Email:     req.Email,
		Password:  hashedPassword,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		IsActive:  true,
	}

	if err := s.db.Create(&cust).Error; err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return s.issueTokens(&cust)
}

// Login authenticates a customer and issues tokens
func (s *Service) Login(req *LoginRequest) (*AuthResponse, error) {
	var cust Customer
	if err := s.db.Where("email = ?", req.Email).First(&cust).Error; err != nil {
		return nil, fmt.Errorf("invalid email or password")
	}

	if !cust.IsActive {
		return nil, fmt.Errorf("account is deactivated")
	}

	if err := s.passwordManager.VerifyPassword(req.Password, cust.Password); err != nil {
		return nil, fmt.Errorf("invalid email or password")
	}

	now := time.Now().UTC()
	s.db.Model(&cust).Update("last_login_at", now)

	return s.issueTokens(&cust)
}

// RefreshToken exchanges a valid refresh token for a new token pair
func (s *Service) RefreshToken(refreshToken string) (*AuthResponse, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	var cust Customer
	if err := s.db.First(&cust, claims.UserID).Error; err != nil {
		return nil, fmt.Errorf("account not found")
	}

	if !cust.IsActive {
		return nil, fmt.Errorf("account is deactivated")
	}

	return s.issueTokens(&cust)
}

// GetProfile retrieves a customer by ID
func (s *Service) GetProfile(customerID uint) (*Customer, error) {
	var cust Customer
	if err := s.db.First(&cust, customerID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("account not found")
		}
		return nil, fmt.Errorf("failed to retrieve account: %w", err)
	}
	return &cust, nil
}

// UpdateProfile updates mutable profile fields
func (s *Service) UpdateProfile(customerID uint, req *UpdateProfileRequest) (*Customer, error) {
	cust, err := s.GetProfile(customerID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.FirstName != "" {
		updates["first_name"] = req.FirstName
	}
	if req.LastName != "" {
		updates["last_name"] = req.LastName
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}

	if len(updates) > 0 {
		if err := s.db.Model(cust).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update profile: %w", err)
		}
	}

	return cust, nil
}

func (s *Service) issueTokens(cust *Customer) (*AuthResponse, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(cust.ID, cust.Email, cust.IsAdmin, cust.IsProducer)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(cust.ID, cust.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Customer:     cust,
	}, nil
}
