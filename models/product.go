package models

// Product is the backend-agnostic persisted shape. The ID is opaque: the file
// and postgres stores issue UUIDs, the mongo store issues ObjectID hex.
type Product struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Code        string   `json:"code"`
	Price       float64  `json:"price"`
	Status      bool     `json:"status"`
	Stock       int      `json:"stock"`
	Category    string   `json:"category"`
	Thumbnails  []string `json:"thumbnails"`
}
