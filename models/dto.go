package models

type CreateProductRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Code        *string  `json:"code"`
	Price       *float64 `json:"price"`
	Status      *bool    `json:"status"`
	Stock       *int     `json:"stock"`
	Category    *string  `json:"category"`
	Thumbnails  []string `json:"thumbnails"`
}

// MissingFields lists the required fields absent from the request. Status and
// thumbnails are optional and default at the storage layer.
func (r *CreateProductRequest) MissingFields() []string {
	missing := []string{}
	if r.Title == nil {
		missing = append(missing, "title")
	}
	if r.Description == nil {
		missing = append(missing, "description")
	}
	if r.Code == nil {
		missing = append(missing, "code")
	}
	if r.Price == nil {
		missing = append(missing, "price")
	}
	if r.Stock == nil {
		missing = append(missing, "stock")
	}
	if r.Category == nil {
		missing = append(missing, "category")
	}
	return missing
}

type CartLineInput struct {
	Product  string `json:"product" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
}

type ReplaceCartRequest struct {
	Products []CartLineInput `json:"products"`
}

type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

type RegisterRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Age       int    `json:"age" binding:"required,min=1"`
	Password  string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
