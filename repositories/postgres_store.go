package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"shop-backend/models"
)

// The postgres backend stores each entity as one JSONB document keyed by
// UUID, so partial updates and cart replaces are single-row statements and
// therefore atomic per record.

const pgSchema = `
CREATE TABLE IF NOT EXISTS products (id UUID PRIMARY KEY, doc JSONB NOT NULL);
CREATE TABLE IF NOT EXISTS carts    (id UUID PRIMARY KEY, doc JSONB NOT NULL);
CREATE TABLE IF NOT EXISTS users    (id UUID PRIMARY KEY, doc JSONB NOT NULL);
`

// InitPostgresSchema creates the document tables when absent.
func InitPostgresSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, pgSchema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

func parsePgID(id string) (string, bool) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}

func marshalDoc(v any, dropKeys ...string) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	doc := map[string]any{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	for _, k := range dropKeys {
		delete(doc, k)
	}
	return json.Marshal(doc)
}

type PgProductStore struct {
	pool *pgxpool.Pool
}

func NewPgProductStore(pool *pgxpool.Pool) *PgProductStore {
	return &PgProductStore{pool: pool}
}

func scanProduct(id string, doc []byte) (*models.Product, error) {
	var p models.Product
	if err := json.Unmarshal(doc, &p); err != nil {
		return nil, fmt.Errorf("decode product %s: %w", id, err)
	}
	p.ID = id
	if p.Thumbnails == nil {
		p.Thumbnails = []string{}
	}
	return &p, nil
}

func (s *PgProductStore) GetAll(ctx context.Context) ([]models.Product, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, doc FROM products`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		var id string
		var doc []byte
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, err
		}
		p, err := scanProduct(id, doc)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (s *PgProductStore) GetByID(ctx context.Context, id string) (*models.Product, error) {
	key, ok := parsePgID(id)
	if !ok {
		return nil, ErrNotFound
	}
	var doc []byte
	err := s.pool.QueryRow(ctx, `SELECT doc FROM products WHERE id = $1`, key).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return scanProduct(key, doc)
}

func (s *PgProductStore) Add(ctx context.Context, p models.Product) (*models.Product, error) {
	p.ID = uuid.NewString()
	if p.Thumbnails == nil {
		p.Thumbnails = []string{}
	}
	doc, err := marshalDoc(p, "id")
	if err != nil {
		return nil, err
	}
	if _, err := s.pool.Exec(ctx, `INSERT INTO products (id, doc) VALUES ($1, $2)`, p.ID, doc); err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}
	return &p, nil
}

func (s *PgProductStore) UpdateByID(ctx context.Context, id string, fields map[string]any) (*models.Product, error) {
	if err := rejectIDFields(fields); err != nil {
		return nil, err
	}
	key, ok := parsePgID(id)
	if !ok {
		return nil, ErrNotFound
	}
	patch, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	var doc []byte
	err = s.pool.QueryRow(ctx,
		`UPDATE products SET doc = doc || $2::jsonb WHERE id = $1 RETURNING doc`,
		key, patch,
	).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return scanProduct(key, doc)
}

func (s *PgProductStore) DeleteByID(ctx context.Context, id string) (bool, error) {
	key, ok := parsePgID(id)
	if !ok {
		return false, nil
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, key)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PgProductStore) List(ctx context.Context, q ListQuery) ([]models.Product, int, error) {
	where := ""
	args := []any{}
	switch q.Filter.Kind {
	case FilterStructured:
		patch, err := json.Marshal(q.Filter.Fields)
		if err != nil {
			return nil, 0, err
		}
		where = ` WHERE doc @> $1::jsonb`
		args = append(args, patch)
	case FilterStatus:
		patch, _ := json.Marshal(map[string]bool{"status": q.Filter.Status})
		where = ` WHERE doc @> $1::jsonb`
		args = append(args, patch)
	case FilterCategory:
		where = ` WHERE doc->>'category' ~* $1`
		args = append(args, q.Filter.Category)
	}

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	order := ""
	switch q.Sort {
	case SortPriceAsc:
		order = ` ORDER BY (doc->>'price')::numeric ASC`
	case SortPriceDesc:
		order = ` ORDER BY (doc->>'price')::numeric DESC`
	}

	query := fmt.Sprintf(`SELECT id, doc FROM products%s%s LIMIT $%d OFFSET $%d`,
		where, order, len(args)+1, len(args)+2)
	args = append(args, q.Limit, q.Skip)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		var id string
		var doc []byte
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, 0, err
		}
		p, err := scanProduct(id, doc)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, *p)
	}
	return products, total, rows.Err()
}

type PgCartStore struct {
	pool *pgxpool.Pool
}

func NewPgCartStore(pool *pgxpool.Pool) *PgCartStore {
	return &PgCartStore{pool: pool}
}

func (s *PgCartStore) Create(ctx context.Context) (*models.Cart, error) {
	cart := models.Cart{ID: uuid.NewString(), Products: []models.CartLine{}}
	doc, err := marshalDoc(cart, "id")
	if err != nil {
		return nil, err
	}
	if _, err := s.pool.Exec(ctx, `INSERT INTO carts (id, doc) VALUES ($1, $2)`, cart.ID, doc); err != nil {
		return nil, fmt.Errorf("insert cart: %w", err)
	}
	return &cart, nil
}

func (s *PgCartStore) GetByID(ctx context.Context, id string) (*models.Cart, error) {
	key, ok := parsePgID(id)
	if !ok {
		return nil, ErrNotFound
	}
	var doc []byte
	err := s.pool.QueryRow(ctx, `SELECT doc FROM carts WHERE id = $1`, key).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var cart models.Cart
	if err := json.Unmarshal(doc, &cart); err != nil {
		return nil, fmt.Errorf("decode cart %s: %w", key, err)
	}
	cart.ID = key
	if cart.Products == nil {
		cart.Products = []models.CartLine{}
	}
	return &cart, nil
}

func (s *PgCartStore) Save(ctx context.Context, cart *models.Cart) error {
	key, ok := parsePgID(cart.ID)
	if !ok {
		return ErrNotFound
	}
	doc, err := marshalDoc(cart, "id")
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `UPDATE carts SET doc = $2 WHERE id = $1`, key, doc)
	if err != nil {
		return fmt.Errorf("update cart: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type PgUserStore struct {
	pool *pgxpool.Pool
}

func NewPgUserStore(pool *pgxpool.Pool) *PgUserStore {
	return &PgUserStore{pool: pool}
}

type pgUser struct {
	models.User
	Password string `json:"password"`
}

func scanPgUser(id string, doc []byte) (*models.User, error) {
	var u pgUser
	if err := json.Unmarshal(doc, &u); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", id, err)
	}
	user := u.User
	user.Password = u.Password
	user.ID = id
	return &user, nil
}

func (s *PgUserStore) Create(ctx context.Context, u models.User) (*models.User, error) {
	if _, err := s.FindByEmail(ctx, u.Email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	u.ID = uuid.NewString()
	doc, err := marshalDoc(pgUser{User: u, Password: u.Password}, "id")
	if err != nil {
		return nil, err
	}
	if _, err := s.pool.Exec(ctx, `INSERT INTO users (id, doc) VALUES ($1, $2)`, u.ID, doc); err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &u, nil
}

func (s *PgUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var id string
	var doc []byte
	err := s.pool.QueryRow(ctx, `SELECT id, doc FROM users WHERE doc->>'email' = $1`, email).Scan(&id, &doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return scanPgUser(id, doc)
}

func (s *PgUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	key, ok := parsePgID(id)
	if !ok {
		return nil, ErrNotFound
	}
	var doc []byte
	err := s.pool.QueryRow(ctx, `SELECT doc FROM users WHERE id = $1`, key).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return scanPgUser(key, doc)
}

func (s *PgUserStore) SetCart(ctx context.Context, userID, cartID string) error {
	key, ok := parsePgID(userID)
	if !ok {
		return ErrNotFound
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET doc = jsonb_set(doc, '{cart}', to_jsonb($2::text)) WHERE id = $1`,
		key, cartID)
	if err != nil {
		return fmt.Errorf("set cart: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// NewPgStores returns the postgres JSONB backend.
func NewPgStores(pool *pgxpool.Pool) Stores {
	return Stores{
		Products: NewPgProductStore(pool),
		Carts:    NewPgCartStore(pool),
		Users:    NewPgUserStore(pool),
	}
}
