package domain

import "time"

// User is the domain entity for a todo owner.
type User struct {
	ID        string
	Email     string
	Name      string
	CreatedAt time.Time
}
