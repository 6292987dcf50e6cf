package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"shop-backend/config"
	"shop-backend/models"
	"shop-backend/repositories"
	"shop-backend/utils"
)

func TestMain(m *testing.M) {
	config.LoadConfig()
	os.Exit(m.Run())
}

type fakeUserStore struct {
	users  map[string]models.User
	nextID int
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]models.User{}}
}

func (f *fakeUserStore) Create(ctx context.Context, u models.User) (*models.User, error) {
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return nil, repositories.ErrDuplicateEmail
		}
	}
	f.nextID++
	u.ID = fmt.Sprintf("u%d", f.nextID)
	f.users[u.ID] = u
	return &u, nil
}

func (f *fakeUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			copied := u
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := u
	return &copied, nil
}

func (f *fakeUserStore) SetCart(ctx context.Context, userID, cartID string) error {
	u, ok := f.users[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	u.Cart = cartID
	f.users[userID] = u
	return nil
}

func registerRequest() models.RegisterRequest {
	return models.RegisterRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Age:       30,
		Password:  "secret123",
	}
}

func TestAuthServiceRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates user with hashed password and owned cart", func(t *testing.T) {
		users := newFakeUserStore()
		svc := NewAuthService(users, newFakeCartStore())
		user, token, err := svc.Register(ctx, registerRequest())
		if err != nil {
			t.Fatalf("Register: %v", err)
		}
		if token == "" {
			t.Error("expected a signed token")
		}
		if user.Cart == "" {
			t.Error("expected an attached cart")
		}
		if user.Role != "user" {
			t.Errorf("role = %q, want user", user.Role)
		}
		stored := users.users[user.ID]
		if stored.Password == "secret123" {
			t.Error("password stored in plain text")
		}
		if !utils.VerifyPassword(stored.Password, "secret123") {
			t.Error("stored hash does not verify against the original password")
		}
	})

	t.Run("normalizes the email", func(t *testing.T) {
		svc := NewAuthService(newFakeUserStore(), newFakeCartStore())
		req := registerRequest()
		req.Email = "  Ada@Example.COM "
		user, _, err := svc.Register(ctx, req)
		if err != nil {
			t.Fatalf("Register: %v", err)
		}
		if user.Email != "ada@example.com" {
			t.Errorf("email = %q", user.Email)
		}
	})

	t.Run("rejects a duplicate email", func(t *testing.T) {
		carts := newFakeCartStore()
		svc := NewAuthService(newFakeUserStore(), carts)
		if _, _, err := svc.Register(ctx, registerRequest()); err != nil {
			t.Fatalf("first Register: %v", err)
		}
		_, _, err := svc.Register(ctx, registerRequest())
		if !errors.Is(err, repositories.ErrDuplicateEmail) {
			t.Fatalf("expected ErrDuplicateEmail, got %v", err)
		}
		// the rejected registration must not leave an orphan cart behind
		if len(carts.carts) != 1 {
			t.Errorf("cart count = %d, want 1", len(carts.carts))
		}
	})
}

func TestAuthServiceLogin(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserStore()
	carts := newFakeCartStore()
	svc := NewAuthService(users, carts)
	registered, _, err := svc.Register(ctx, registerRequest())
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	t.Run("valid credentials return the user and a token", func(t *testing.T) {
		user, token, err := svc.Login(ctx, models.LoginRequest{Email: "Ada@example.com", Password: "secret123"})
		if err != nil {
			t.Fatalf("Login: %v", err)
		}
		if user.ID != registered.ID {
			t.Errorf("user id = %q, want %q", user.ID, registered.ID)
		}
		claims, err := utils.ValidateToken(token)
		if err != nil {
			t.Fatalf("ValidateToken: %v", err)
		}
		if claims.UserID != registered.ID {
			t.Errorf("token subject = %q, want %q", claims.UserID, registered.ID)
		}
	})

	t.Run("wrong password and unknown email fail the same way", func(t *testing.T) {
		_, _, err := svc.Login(ctx, models.LoginRequest{Email: "ada@example.com", Password: "wrong"})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("wrong password: got %v", err)
		}
		_, _, err = svc.Login(ctx, models.LoginRequest{Email: "nobody@example.com", Password: "secret123"})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("unknown email: got %v", err)
		}
	})

	t.Run("login creates a cart for a user without one", func(t *testing.T) {
		// simulate an older record with no cart
		stored := users.users[registered.ID]
		stored.Cart = ""
		users.users[registered.ID] = stored

		user, _, err := svc.Login(ctx, models.LoginRequest{Email: "ada@example.com", Password: "secret123"})
		if err != nil {
			t.Fatalf("Login: %v", err)
		}
		if user.Cart == "" {
			t.Fatal("expected a lazily created cart")
		}
		if _, ok := carts.carts[user.Cart]; !ok {
			t.Errorf("cart %q was not persisted", user.Cart)
		}
		if users.users[registered.ID].Cart != user.Cart {
			t.Error("cart id was not written back to the user record")
		}
	})
}

func TestAuthServiceCurrent(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(newFakeUserStore(), newFakeCartStore())
	user, _, err := svc.Register(ctx, registerRequest())
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, err := svc.Current(ctx, user.ID)
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if got.Email != "ada@example.com" {
		t.Errorf("email = %q", got.Email)
	}

	if _, err := svc.Current(ctx, "missing"); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
