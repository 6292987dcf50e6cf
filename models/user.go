package models

type User struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Age       int    `json:"age"`
	Password  string `json:"-"`
	Cart      string `json:"cart,omitempty"`
	Role      string `json:"role"`
}
