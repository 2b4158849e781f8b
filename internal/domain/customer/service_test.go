// internal/domain/customer/service_test.go
package customer_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/customer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupCustomerTest(t *testing.T) (*gorm.DB, *customer.Service) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(&customer.Customer{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:             "0123456789abcdef0123456789abcdef",
			AccessTokenExpiry:  15 * time.Minute,
			RefreshTokenExpiry: 7 * 24 * time.Hour,
		},
		Security: config.SecurityConfig{BcryptCost: 4},
	}

	return db, customer.NewService(db, cfg)
}

func TestRegister(t *testing.T) {
	t.Run("creates an account and issues tokens", func(t *testing.T) {
		_, svc := setupCustomerTest(t)

		response, err := svc.Register(&customer.RegisterRequest{
			Email:     "Jane@Example.com",
			Password:  "secret1234",
			FirstName: "Jane",
			LastName:  "Doe",
		})
		assert.NoError(t, err)
		assert.NotEmpty(t, response.AccessToken)
		assert.NotEmpty(t, response.RefreshToken)
		assert.True(t, response.Customer.IsActive)
		// Emails are normalized to lowercase on create
		assert.Equal(t, "jane@example.com", response.Customer.Email)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		_, svc := setupCustomerTest(t)

		req := &customer.RegisterRequest{
			Email:     "jane@example.com",
			Password:  "secret1234",
			FirstName: "Jane",
			LastName:  "Doe",
		}
		_, err := svc.Register(req)
		assert.NoError(t, err)

		_, err = svc.Register(req)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")
	})

	t.Run("rejects weak passwords", func(t *testing.T) {
		_, svc := setupCustomerTest(t)

		_, err := svc.Register(&customer.RegisterRequest{
			Email:     "jane@example.com",
			Password:  "allletters",
			FirstName: "Jane",
			LastName:  "Doe",
		})
		assert.Error(t, err)
	})
}

func TestLogin(t *testing.T) {
	register := func(t *testing.T, svc *customer.Service) {
		_, err := svc.Register(&customer.RegisterRequest{
			Email:     "jane@example.com",
			Password:  "secret1234",
			FirstName: "Jane",
			LastName:  "Doe",
		})
		assert.NoError(t, err)
	}

	t.Run("valid credentials", func(t *testing.T) {
		_, svc := setupCustomerTest(t)
		register(t, svc)

		response, err := svc.Login(&customer.LoginRequest{
			Email:    "jane@example.com",
			Password: "secret1234",
		})
		assert.NoError(t, err)
		assert.NotEmpty(t, response.AccessToken)
		assert.NotNil(t, response.Customer.LastLoginAt)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, svc := setupCustomerTest(t)
		register(t, svc)

		_, err := svc.Login(&customer.LoginRequest{
			Email:    "jane@example.com",
			Password: "wrong12345",
		})
		assert.Error(t, err)
		assert.Equal(t, "invalid email or password", err.Error())
	})

	t.Run("unknown email", func(t *testing.T) {
		_, svc := setupCustomerTest(t)

		_, err := svc.Login(&customer.LoginRequest{
			Email:    "nobody@example.com",
			Password: "secret1234",
		})
		assert.Error(t, err)
	})

	t.Run("deactivated account", func(t *testing.T) {
		db, svc := setupCustomerTest(t)
		register(t, svc)
		db.Model(&customer.Customer{}).Where("email = ?", "jane@example.com").Update("is_active", false)

		_, err := svc.Login(&customer.LoginRequest{
			Email:    "jane@example.com",
			Password: "secret1234",
		})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "deactivated")
	})
}

func TestRefreshToken(t *testing.T) {
	_, svc := setupCustomerTest(t)

	registered, err := svc.Register(&customer.RegisterRequest{
		Email:     "jane@example.com",
		Password:  "secret1234",
		FirstName: "Jane",
		LastName:  "Doe",
	})
	assert.NoError(t, err)

	t.Run("exchanges a refresh token for a new pair", func(t *testing.T) {
		response, err := svc.RefreshToken(registered.RefreshToken)
		assert.NoError(t, err)
		assert.NotEmpty(t, response.AccessToken)
	})

	t.Run("rejects an access token", func(t *testing.T) {
		_, err := svc.RefreshToken(registered.AccessToken)
		assert.Error(t, err)
	})
}

func TestUpdateProfile(t *testing.T) {
	_, svc := setupCustomerTest(t)

	registered, err := svc.Register(&customer.RegisterRequest{
		Email:     "jane@example.com",
		Password:  "secret1234",
		FirstName: "Jane",
		LastName:  "Doe",
	})
	assert.NoError(t, err)

	updated, err := svc.UpdateProfile(registered.Customer.ID, &customer.UpdateProfileRequest{
		FirstName: "Janet",
		Phone:     "555-0101",
	})
	assert.NoError(t, err)
	assert.Equal(t, "Janet", updated.FirstName)
	assert.Equal(t, "Doe", updated.LastName)
	assert.Equal(t, "555-0101", updated.Phone)
}
