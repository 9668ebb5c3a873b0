package models

import "time"

// Item is the single inventory record. ID and CreatedAt are assigned by the
// storage layer and never accepted from clients.
type Item struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Price       float64   `json:"price"`
	Quantity    int       `json:"quantity"`
	CreatedAt   time.Time `json:"created_at"`
}

// ItemInput is the client payload for create and update. Pointer fields
// distinguish "absent" from zero values during validation.
type ItemInput struct {
	Name        string   `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Quantity    *int     `json:"quantity"`
}
