package carpenter

import "github.com/meblomat/meblomat/internal/domain/order"

type WorkshopRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Carpenter struct {
	ID       int64        `json:"id"`
	Name     string       `json:"name"`
	Email    string       `json:"email"`
	Phone    string       `json:"phone,omitempty"`
	Headline string       `json:"headline,omitempty"`
	Skills   []string     `json:"skills"`
	Workshop *WorkshopRef `json:"workshop,omitempty"`
	// Slim order stubs joined for dashboard counters.
	Orders []order.Stub `json:"orders,omitempty"`
}
