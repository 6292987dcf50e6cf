package repositories

import (
	"context"
	"errors"

	"shop-backend/models"
)

// ErrNotFound covers unknown identifiers and identifiers whose format the
// backend cannot represent (a non-hex mongo id, a non-UUID postgres key).
// Real I/O failures are never folded into it.
var ErrNotFound = errors.New("record not found")

// ErrImmutableID is returned when a partial update tries to overwrite the
// identifier.
var ErrImmutableID = errors.New("cannot update id field")

var ErrDuplicateEmail = errors.New("email already registered")

type SortOrder int

const (
	SortNone SortOrder = iota
	SortPriceAsc
	SortPriceDesc
)

type FilterKind int

const (
	// FilterAll matches every record.
	FilterAll FilterKind = iota
	// FilterStructured matches field equality against a decoded JSON object.
	FilterStructured
	// FilterStatus matches records whose status equals the boolean.
	FilterStatus
	// FilterCategory matches category case-insensitively (regex, falling back
	// to substring where the pattern does not compile).
	FilterCategory
)

// Filter is the tagged variant resolved from the loose `query` parameter.
type Filter struct {
	Kind     FilterKind
	Fields   map[string]any
	Status   bool
	Category string
}

// ListQuery is the backend-native paging request: the backend applies the
// filter, then the sort, then skip/limit, and reports the total match count
// before slicing.
type ListQuery struct {
	Filter Filter
	Sort   SortOrder
	Skip   int
	Limit  int
}

type ProductStore interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	// Add assigns a fresh identifier, normalizes a nil thumbnail list to
	// empty, persists and returns the stored record.
	Add(ctx context.Context, p models.Product) (*models.Product, error)
	// UpdateByID merges only the provided fields. An "id" or "_id" key fails
	// with ErrImmutableID before anything is written.
	UpdateByID(ctx context.Context, id string, fields map[string]any) (*models.Product, error)
	DeleteByID(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, q ListQuery) ([]models.Product, int, error)
}

type CartStore interface {
	Create(ctx context.Context) (*models.Cart, error)
	GetByID(ctx context.Context, id string) (*models.Cart, error)
	// Save replaces the stored record wholesale. ErrNotFound if the cart was
	// deleted between read and write.
	Save(ctx context.Context, cart *models.Cart) error
}

type UserStore interface {
	Create(ctx context.Context, u models.User) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	SetCart(ctx context.Context, userID, cartID string) error
}

// Stores bundles the three contracts for one backend.
type Stores struct {
	Products ProductStore
	Carts    CartStore
	Users    UserStore
}

// rejectIDFields guards the identifier-immutability rule shared by every
// backend.
func rejectIDFields(fields map[string]any) error {
	if _, ok := fields["id"]; ok {
		return ErrImmutableID
	}
	if _, ok := fields["_id"]; ok {
		return ErrImmutableID
	}
	return nil
}
