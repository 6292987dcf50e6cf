package services

import (
	"context"
	"errors"
	"strings"

	"shop-backend/models"
	"shop-backend/repositories"
	"shop-backend/utils"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type AuthService struct {
	users repositories.UserStore
	carts repositories.CartStore
}

func NewAuthService(users repositories.UserStore, carts repositories.CartStore) *AuthService {
	return &AuthService{users: users, carts: carts}
}

// Register creates the user with a hashed password and an owned cart, and
// returns the user plus a signed token. The email is checked before the cart
// is created so a rejected registration leaves nothing behind.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, "", repositories.ErrDuplicateEmail
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, "", err
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, "", err
	}

	cart, err := s.carts.Create(ctx)
	if err != nil {
		return nil, "", err
	}

	user, err := s.users.Create(ctx, models.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     email,
		Age:       req.Age,
		Password:  hashed,
		Cart:      cart.ID,
		Role:      "user",
	})
	if err != nil {
		return nil, "", err
	}

	token, err := utils.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login verifies credentials and lazily creates the user's cart when an
// older record has none.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !utils.VerifyPassword(user.Password, req.Password) {
		return nil, "", ErrInvalidCredentials
	}

	if err := s.EnsureCart(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := utils.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// EnsureCart creates and attaches a cart when the user has none.
func (s *AuthService) EnsureCart(ctx context.Context, user *models.User) error {
	if user.Cart != "" {
		return nil
	}
	cart, err := s.carts.Create(ctx)
	if err != nil {
		return err
	}
	if err := s.users.SetCart(ctx, user.ID, cart.ID); err != nil {
		return err
	}
	user.Cart = cart.ID
	return nil
}

// Current resolves the user behind a validated token.
func (s *AuthService) Current(ctx context.Context, userID string) (*models.User, error) {
	return s.users.FindByID(ctx, userID)
}
