package models

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Payload interface{} `json:"payload,omitempty"`
}

type ErrorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

// PaginatedProducts is the envelope for GET /api/products. Field names are
// fixed by the API contract; prevPage/nextPage and the links are null at the
// boundaries.
type PaginatedProducts struct {
	Status      string    `json:"status"`
	Payload     []Product `json:"payload"`
	TotalPages  int       `json:"totalPages"`
	PrevPage    *int      `json:"prevPage"`
	NextPage    *int      `json:"nextPage"`
	Page        int       `json:"page"`
	HasPrevPage bool      `json:"hasPrevPage"`
	HasNextPage bool      `json:"hasNextPage"`
	PrevLink    *string   `json:"prevLink"`
	NextLink    *string   `json:"nextLink"`
}

type SessionPayload struct {
	User  User   `json:"user"`
	Token string `json:"token,omitempty"`
}
