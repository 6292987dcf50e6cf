package repositories

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shop-backend/models"
)

type productDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Code        string             `bson:"code"`
	Price       float64            `bson:"price"`
	Status      bool               `bson:"status"`
	Stock       int                `bson:"stock"`
	Category    string             `bson:"category"`
	Thumbnails  []string           `bson:"thumbnails"`
}

func (d productDoc) model() models.Product {
	p := models.Product{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Code:        d.Code,
		Price:       d.Price,
		Status:      d.Status,
		Stock:       d.Stock,
		Category:    d.Category,
		Thumbnails:  d.Thumbnails,
	}
	if p.Thumbnails == nil {
		p.Thumbnails = []string{}
	}
	return p
}

// MongoProductStore keeps products in a mongo collection with native
// find/sort/skip/limit for the query engine.
type MongoProductStore struct {
	col *mongo.Collection
}

func NewMongoProductStore(db *mongo.Database) *MongoProductStore {
	return &MongoProductStore{col: db.Collection("products")}
}

func (s *MongoProductStore) GetAll(ctx context.Context) ([]models.Product, error) {
	cur, err := s.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	defer cur.Close(ctx)

	products := []models.Product{}
	for cur.Next(ctx) {
		var doc productDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		products = append(products, doc.model())
	}
	return products, cur.Err()
}

func (s *MongoProductStore) GetByID(ctx context.Context, id string) (*models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var doc productDoc
	err = s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p := doc.model()
	return &p, nil
}

func (s *MongoProductStore) Add(ctx context.Context, p models.Product) (*models.Product, error) {
	if p.Thumbnails == nil {
		p.Thumbnails = []string{}
	}
	doc := productDoc{
		Title:       p.Title,
		Description: p.Description,
		Code:        p.Code,
		Price:       p.Price,
		Status:      p.Status,
		Stock:       p.Stock,
		Category:    p.Category,
		Thumbnails:  p.Thumbnails,
	}
	res, err := s.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}
	p.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &p, nil
}

func (s *MongoProductStore) UpdateByID(ctx context.Context, id string, fields map[string]any) (*models.Product, error) {
	if err := rejectIDFields(fields); err != nil {
		return nil, err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	after := options.After
	var doc productDoc
	err = s.col.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M(fields)},
		options.FindOneAndUpdate().SetReturnDocument(after),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p := doc.model()
	return &p, nil
}

func (s *MongoProductStore) DeleteByID(ctx context.Context, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (s *MongoProductStore) List(ctx context.Context, q ListQuery) ([]models.Product, int, error) {
	filter := mongoFilter(q.Filter)

	total, err := s.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	opts := options.Find().SetSkip(int64(q.Skip)).SetLimit(int64(q.Limit))
	switch q.Sort {
	case SortPriceAsc:
		opts.SetSort(bson.D{{Key: "price", Value: 1}})
	case SortPriceDesc:
		opts.SetSort(bson.D{{Key: "price", Value: -1}})
	}

	cur, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find products: %w", err)
	}
	defer cur.Close(ctx)

	products := []models.Product{}
	for cur.Next(ctx) {
		var doc productDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, 0, err
		}
		products = append(products, doc.model())
	}
	return products, int(total), cur.Err()
}

func mongoFilter(f Filter) bson.M {
	switch f.Kind {
	case FilterStructured:
		return bson.M(f.Fields)
	case FilterStatus:
		return bson.M{"status": f.Status}
	case FilterCategory:
		return bson.M{"category": primitive.Regex{Pattern: f.Category, Options: "i"}}
	default:
		return bson.M{}
	}
}

type cartDoc struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Products []models.CartLine  `bson:"products"`
}

type MongoCartStore struct {
	col *mongo.Collection
}

func NewMongoCartStore(db *mongo.Database) *MongoCartStore {
	return &MongoCartStore{col: db.Collection("carts")}
}

func (s *MongoCartStore) Create(ctx context.Context) (*models.Cart, error) {
	res, err := s.col.InsertOne(ctx, cartDoc{Products: []models.CartLine{}})
	if err != nil {
		return nil, fmt.Errorf("insert cart: %w", err)
	}
	return &models.Cart{
		ID:       res.InsertedID.(primitive.ObjectID).Hex(),
		Products: []models.CartLine{},
	}, nil
}

func (s *MongoCartStore) GetByID(ctx context.Context, id string) (*models.Cart, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var doc cartDoc
	err = s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	cart := models.Cart{ID: doc.ID.Hex(), Products: doc.Products}
	if cart.Products == nil {
		cart.Products = []models.CartLine{}
	}
	return &cart, nil
}

func (s *MongoCartStore) Save(ctx context.Context, cart *models.Cart) error {
	oid, err := primitive.ObjectIDFromHex(cart.ID)
	if err != nil {
		return ErrNotFound
	}
	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": oid}, cartDoc{ID: oid, Products: cart.Products})
	if err != nil {
		return fmt.Errorf("replace cart: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

type userDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	FirstName string             `bson:"first_name"`
	LastName  string             `bson:"last_name"`
	Email     string             `bson:"email"`
	Age       int                `bson:"age"`
	Password  string             `bson:"password"`
	Cart      string             `bson:"cart,omitempty"`
	Role      string             `bson:"role"`
}

func (d userDoc) model() models.User {
	return models.User{
		ID:        d.ID.Hex(),
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Email:     d.Email,
		Age:       d.Age,
		Password:  d.Password,
		Cart:      d.Cart,
		Role:      d.Role,
	}
}

type MongoUserStore struct {
	col *mongo.Collection
}

func NewMongoUserStore(db *mongo.Database) *MongoUserStore {
	return &MongoUserStore{col: db.Collection("users")}
}

func (s *MongoUserStore) Create(ctx context.Context, u models.User) (*models.User, error) {
	err := s.col.FindOne(ctx, bson.M{"email": u.Email}).Err()
	if err == nil {
		return nil, ErrDuplicateEmail
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}
	doc := userDoc{
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Age:       u.Age,
		Password:  u.Password,
		Cart:      u.Cart,
		Role:      u.Role,
	}
	res, err := s.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	u.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &u, nil
}

func (s *MongoUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var doc userDoc
	err := s.col.FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u := doc.model()
	return &u, nil
}

func (s *MongoUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var doc userDoc
	err = s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u := doc.model()
	return &u, nil
}

func (s *MongoUserStore) SetCart(ctx context.Context, userID, cartID string) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return ErrNotFound
	}
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"cart": cartID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// NewMongoStores returns the document-database backend over one database.
func NewMongoStores(db *mongo.Database) Stores {
	return Stores{
		Products: NewMongoProductStore(db),
		Carts:    NewMongoCartStore(db),
		Users:    NewMongoUserStore(db),
	}
}
