package client

import "github.com/meblomat/meblomat/internal/domain/order"

type Client struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Company string `json:"company,omitempty"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	// Slim order stubs joined for dashboard counters.
	Orders []order.Stub `json:"orders,omitempty"`
}
