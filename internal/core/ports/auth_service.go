package ports

import (
	"context"

	"github.com/smsrent/rental-system/internal/core/domain"
)

// RegisterInput carries the signup form fields.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// AuthService handles account registration and credential verification.
// New accounts start with role "user", status "active", and zero credits.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.Account, error)
	Login(ctx context.Context, email, password string) (string, *domain.Account, error)
}
