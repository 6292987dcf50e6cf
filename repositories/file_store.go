package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"shop-backend/models"
)

// fileCollection is one JSON array on disk. Every operation is a
// read-modify-write of the whole file under the collection mutex, which keeps
// single-process writers from clobbering each other; there is no cross-process
// guarantee.
type fileCollection struct {
	path string
	mu   sync.Mutex
}

func newFileCollection(dir, name string) (*fileCollection, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
			return nil, fmt.Errorf("seed %s: %w", name, err)
		}
	}
	return &fileCollection{path: path}, nil
}

func (c *fileCollection) load(v any) error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return fmt.Errorf("read %s: %w", c.path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", c.path, err)
	}
	return nil
}

func (c *fileCollection) store(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", c.path, err)
	}
	return nil
}

// FileProductStore keeps products in data/products.json with UUID ids.
type FileProductStore struct {
	col *fileCollection
}

func NewFileProductStore(dir string) (*FileProductStore, error) {
	col, err := newFileCollection(dir, "products.json")
	if err != nil {
		return nil, err
	}
	return &FileProductStore{col: col}, nil
}

func (s *FileProductStore) GetAll(ctx context.Context) ([]models.Product, error) {
	s.col.mu.Lock()
	defer s.col.mu.Unlock()
	products := []models.Product{}
	if err := s.col.load(&products); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *FileProductStore) GetByID(ctx context.Context, id string) (*models.Product, error) {
	s.col.mu.Lock()
	defer s.col.mu.Unlock()
	products := []models.Product{}
	if err := s.col.load(&products); err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ID == id {
			return &products[i], nil
		}
	}
	return nil, ErrNotFound
}

func (s *FileProductStore) Add(ctx context.Context, p models.Product) (*models.Product, error) {
	s.col.mu.Lock()
	defer s.col.mu.Unlock()
	products := []models.Product{}
	if err := s.col.load(&products); err != nil {
		return nil, err
	}
	p.ID = uuid.NewString()
	if p.Thumbnails == nil {
		p.Thumbnails = []string{}
	}
	products = append(products, p)
	if err := s.col.store(products); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *FileProductStore) UpdateByID(ctx context.Context, id string, fields map[string]any) (*models.Product, error) {
	if err := rejectIDFields(fields); err != nil {
		return nil, err
	}
	s.col.mu.Lock()
	defer s.col.mu.Unlock()
	products := []models.Product{}
	if err := s.col.load(&products); err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ID != id {
			continue
		}
		merged, err := mergeProductFields(products[i], fields)
		if err != nil {
			return nil, err
		}
		products[i] = *merged
		if err := s.col.store(products); err != nil {
			return nil, err
		}
		return merged, nil
	}
	return nil, ErrNotFound
}

func (s *FileProductStore) DeleteByID(ctx context.Context, id string) (bool, error) {
	s.col.mu.Lock()
	defer s.col.mu.Unlock()
	products := []models.Product{}
	if err := s.col.load(&products); err != nil {
		return false, err
	}
	for i := range products {
		if products[i].ID == id {
			products = append(products[:i], products[i+1:]...)
			if err := s.col.store(products); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

func (s *FileProductStore) List(ctx context.Context, q ListQuery) ([]models.Product, int, error) {
	s.col.mu.Lock()
	defer s.col.mu.Unlock()
	products := []models.Product{}
	if err := s.col.load(&products); err != nil {
		return nil, 0, err
	}

	matched := []models.Product{}
	for _, p := range products {
		ok, err := matchProduct(p, q.Filter)
		if err != nil {
			return nil, 0, err
		}
		if ok {
			matched = append(matched, p)
		}
	}

	switch q.Sort {
	case SortPriceAsc:
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].Price < matched[j].Price })
	case SortPriceDesc:
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].Price > matched[j].Price })
	}

	total := len(matched)
	if q.Skip >= total {
		return []models.Product{}, total, nil
	}
	end := q.Skip + q.Limit
	if end > total {
		end = total
	}
	return matched[q.Skip:end], total, nil
}

// mergeProductFields overlays the provided fields onto the JSON form of the
// record and decodes it back, so partial updates behave exactly like the
// document backends' $set/jsonb merge. The identifier survives untouched.
func mergeProductFields(p models.Product, fields map[string]any) (*models.Product, error) {
	doc, err := productToDoc(p)
	if err != nil {
		return nil, err
	}
	for k, v := range fields {
		doc[k] = v
	}
	delete(doc, "id")
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	merged := models.Product{}
	if err := json.Unmarshal(raw, &merged); err != nil {
		return nil, fmt.Errorf("merge fields: %w", err)
	}
	merged.ID = p.ID
	return &merged, nil
}

func productToDoc(p models.Product) (map[string]any, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	doc := map[string]any{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func matchProduct(p models.Product, f Filter) (bool, error) {
	switch f.Kind {
	case FilterStructured:
		doc, err := productToDoc(p)
		if err != nil {
			return false, err
		}
		for k, want := range f.Fields {
			if !jsonEqual(doc[k], want) {
				return false, nil
			}
		}
		return true, nil
	case FilterStatus:
		return p.Status == f.Status, nil
	case FilterCategory:
		if re, err := regexp.Compile("(?i)" + f.Category); err == nil {
			return re.MatchString(p.Category), nil
		}
		return strings.Contains(strings.ToLower(p.Category), strings.ToLower(f.Category)), nil
	default:
		return true, nil
	}
}

// jsonEqual compares two values through their JSON encoding, so 10 and 10.0
// or []string and []any line up.
func jsonEqual(a, b any) bool {
	ra, err := json.Marshal(a)
	if err != nil {
		return false
	}
	rb, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return string(ra) == string(rb)
}

// FileCartStore keeps carts in data/carts.json.
type FileCartStore struct {
	col *fileCollection
}

func NewFileCartStore(dir string) (*FileCartStore, error) {
	col, err := newFileCollection(dir, "carts.json")
	if err != nil {
		return nil, err
	}
	return &FileCartStore{col: col}, nil
}

func (s *FileCartStore) Create(ctx context.Context) (*models.Cart, error) {
	s.col.mu.Lock()
	defer s.col.mu.Unlock()
	carts := []models.Cart{}
	if err := s.col.load(&carts); err != nil {
		return nil, err
	}
	cart := models.Cart{ID: uuid.NewString(), Products: []models.CartLine{}}
	carts = append(carts, cart)
	if err := s.col.store(carts); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (s *FileCartStore) GetByID(ctx context.Context, id string) (*models.Cart, error) {
	s.col.mu.Lock()
	defer s.col.mu.Unlock()
	carts := []models.Cart{}
	if err := s.col.load(&carts); err != nil {
		return nil, err
	}
	for i := range carts {
		if carts[i].ID == id {
			return &carts[i], nil
		}
	}
	return nil, ErrNotFound
}

func (s *FileCartStore) Save(ctx context.Context, cart *models.Cart) error {
	s.col.mu.Lock()
	defer s.col.mu.Unlock()
	carts := []models.Cart{}
	if err := s.col.load(&carts); err != nil {
		return err
	}
	for i := range carts {
		if carts[i].ID == cart.ID {
			carts[i] = *cart
			return s.col.store(carts)
		}
	}
	return ErrNotFound
}

// FileUserStore keeps users in data/users.json.
type FileUserStore struct {
	col *fileCollection
}

func NewFileUserStore(dir string) (*FileUserStore, error) {
	col, err := newFileCollection(dir, "users.json")
	if err != nil {
		return nil, err
	}
	return &FileUserStore{col: col}, nil
}

type fileUser struct {
	models.User
	Password string `json:"password"`
}

func (s *FileUserStore) Create(ctx context.Context, u models.User) (*models.User, error) {
	s.col.mu.Lock()
	defer s.col.mu.Unlock()
	users := []fileUser{}
	if err := s.col.load(&users); err != nil {
		return nil, err
	}
	for _, existing := range users {
		if existing.Email == u.Email {
			return nil, ErrDuplicateEmail
		}
	}
	u.ID = uuid.NewString()
	users = append(users, fileUser{User: u, Password: u.Password})
	if err := s.col.store(users); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *FileUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	s.col.mu.Lock()
	defer s.col.mu.Unlock()
	users := []fileUser{}
	if err := s.col.load(&users); err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Email == email {
			u := users[i].User
			u.Password = users[i].Password
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *FileUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	s.col.mu.Lock()
	defer s.col.mu.Unlock()
	users := []fileUser{}
	if err := s.col.load(&users); err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].User.ID == id {
			u := users[i].User
			u.Password = users[i].Password
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *FileUserStore) SetCart(ctx context.Context, userID, cartID string) error {
	s.col.mu.Lock()
	defer s.col.mu.Unlock()
	users := []fileUser{}
	if err := s.col.load(&users); err != nil {
		return err
	}
	for i := range users {
		if users[i].User.ID == userID {
			users[i].User.Cart = cartID
			return s.col.store(users)
		}
	}
	return ErrNotFound
}

// NewFileStores seeds the data directory (empty JSON arrays for products,
// carts and users) and returns the flat-file backend.
func NewFileStores(dir string) (Stores, error) {
	products, err := NewFileProductStore(dir)
	if err != nil {
		return Stores{}, err
	}
	carts, err := NewFileCartStore(dir)
	if err != nil {
		return Stores{}, err
	}
	users, err := NewFileUserStore(dir)
	if err != nil {
		return Stores{}, err
	}
	return Stores{Products: products, Carts: carts, Users: users}, nil
}
