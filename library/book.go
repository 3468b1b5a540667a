package library

import (
	"fmt"
	"time"
)

// Checkout lends one copy to the given user until now plus the loan period.
// It reports false, with no state change, when every copy is already out.
func (b *Book) Checkout(userID string, now time.Time) (time.Time, bool) {
	if b.CheckedOut >= b.Copies {
		return time.Time{}, false
	}
	if b.DueDates == nil {
		b.DueDates = make(map[string]time.Time)
	}
	due := now.AddDate(0, 0, LoanPeriodDays)
	b.DueDates[userID] = due
	b.CheckedOut++
	return due, true
}

// Return takes the user's copy back and yields the due date that applied to
// the loan. The due date is captured before the entry is removed so the
// caller can still compute lateness. Reports false when the user has no
// recorded checkout for this book.
func (b *Book) Return(userID string) (time.Time, bool) {
	due, ok := b.DueDates[userID]
	if !ok {
		return time.Time{}, false
	}
	delete(b.DueDates, userID)
	b.CheckedOut--
	return due, true
}

// Reserve queues the user for this book. When a copy is currently on the
// shelf no reservation is needed and nothing changes (queued is false);
// otherwise the user is appended and their 1-based queue position returned.
func (b *Book) Reserve(userID string) (position int, queued bool) {
	if b.CheckedOut < b.Copies {
		return 0, false
	}
	b.Reservations = append(b.Reservations, userID)
	return len(b.Reservations), true
}

// popReservation removes and returns the head of the reservation queue.
func (b *Book) popReservation() (string, bool) {
	if len(b.Reservations) == 0 {
		return "", false
	}
	head := b.Reservations[0]
	b.Reservations = b.Reservations[1:]
	return head, true
}

// AddRating records a rating between 1 and 5 inclusive.
func (b *Book) AddRating(rating int) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("%w: got %d", ErrInvalidRating, rating)
	}
	b.Ratings = append(b.Ratings, rating)
	return nil
}

// AverageRating is the arithmetic mean of all ratings, 0 when unrated.
func (b *Book) AverageRating() float64 {
	if len(b.Ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range b.Ratings {
		sum += r
	}
	return float64(sum) / float64(len(b.Ratings))
}

// AvailableCopies is how many copies are currently on the shelf.
func (b *Book) AvailableCopies() int {
	return b.Copies - b.CheckedOut
}

// String renders a one-line summary for listings and reports.
func (b *Book) String() string {
	return fmt.Sprintf("%s by %s (ISBN: %s, Category: %s) - Checked out: %d/%d, Average Rating: %.1f",
		b.Title, b.Author, b.ISBN, b.Category, b.CheckedOut, b.Copies, b.AverageRating())
}
