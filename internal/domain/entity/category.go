package entity

import "time"

// Category agrupa productos.
type Category struct {
	ID          string
	Name        string // único
	Description string
	CreatedAt   time.Time
}
