// Package model defines the data structures shared across layers.
package model

import "time"

// Snippet is a saved piece of code in one registered language. Running it goes through
// the same dispatcher as POST /run/{language}.
type Snippet struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Language    string    `json:"language"`
	Code        string    `json:"code"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
