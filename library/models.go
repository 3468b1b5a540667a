package library

import (
	"time"

	"github.com/google/uuid"
)

// LoanPeriodDays is how long a checkout lasts before the book is due back.
const LoanPeriodDays = 14

// FinePerDay is charged for every full day a return is overdue, in dollars.
const FinePerDay = 1.0

// Book represents one title's catalog record together with its lending
// state. A title can have several copies; loans and the reservation queue
// are tracked by user ID, not by user name, since names are not unique.
type Book struct {
	Title    string
	Author   string
	ISBN     string
	Category string
	Copies   int

	CheckedOut   int
	DueDates     map[string]time.Time // user ID -> due date
	Reservations []string             // user IDs, FIFO
	Ratings      []int
}

// NewBook creates a catalog record with all copies on the shelf.
// Copies is clamped to at least one.
func NewBook(title, author, isbn, category string, copies int) *Book {
	if copies < 1 {
		copies = 1
	}
	return &Book{
		Title:    title,
		Author:   author,
		ISBN:     isbn,
		Category: category,
		Copies:   copies,
		DueDates: make(map[string]time.Time),
	}
}

// User represents a registered patron. The ID is generated once and serves
// as the stable key inside due-date maps and reservation queues.
type User struct {
	ID    string
	Name  string
	Role  string
	Fines float64

	CheckedOutBooks []*Book
	History         []string

	// PasswordHash is optional and held in memory only; the persisted
	// file format has no password field.
	PasswordHash []byte
}

// NewUser creates a patron with a fresh ID. An empty role defaults to
// "user"; the role string is otherwise not validated.
func NewUser(name, role string) *User {
	if role == "" {
		role = RoleUser
	}
	return &User{
		ID:   uuid.NewString(),
		Name: name,
		Role: role,
	}
}

// Recognized role values. Roles are informational and not validated on input.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)
