package library

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Library is the aggregate root owning the catalog and the user roster.
// One process holds one Library; all operations are synchronous and every
// cross-reference (held lists, due-date maps, reservation queues) points
// into these collections.
type Library struct {
	Name    string
	Books   []*Book
	Users   []*User
	History []string

	// BorrowingStats maps book title to times borrowed. The original
	// system defines this counter but never increments it on checkout;
	// that behavior is preserved, so the map stays empty in practice.
	BorrowingStats map[string]int

	ledger *Ledger
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Library.
type Option func(*Library)

// WithLedger attaches a circulation ledger. Ledger failures are logged and
// never fail the domain operation.
func WithLedger(lg *Ledger) Option {
	return func(l *Library) { l.ledger = lg }
}

// WithLogger sets the operational logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Library) { l.logger = logger }
}

// WithClock overrides the time source, mainly for tests exercising due
// dates and late fines.
func WithClock(now func() time.Time) Option {
	return func(l *Library) { l.now = now }
}

// New creates an empty library.
func New(name string, opts ...Option) *Library {
	l := &Library{
		Name:           name,
		BorrowingStats: make(map[string]int),
		logger:         slog.Default(),
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ---------------------------------------------------------------------------
// Catalog and roster lifecycle
// ---------------------------------------------------------------------------

// AddBook appends the book to the catalog and logs the addition.
func (l *Library) AddBook(b *Book) {
	l.Books = append(l.Books, b)
	l.recordHistory(fmt.Sprintf("Added book: %s", b))
}

// RemoveBook removes the first book matching the ISBN.
func (l *Library) RemoveBook(isbn string) (*Book, error) {
	for i, b := range l.Books {
		if b.ISBN == isbn {
			l.Books = append(l.Books[:i], l.Books[i+1:]...)
			l.recordHistory(fmt.Sprintf("Removed book: %s", b))
			return b, nil
		}
	}
	return nil, fmt.Errorf("%w: ISBN %s", ErrBookNotFound, isbn)
}

// AddUser appends the user to the roster and logs the addition.
// Users are never removed.
func (l *Library) AddUser(u *User) {
	l.Users = append(l.Users, u)
	l.recordHistory(fmt.Sprintf("Added user: %s", u.Name))
}

// LookupBook finds the first book with an exactly matching title.
func (l *Library) LookupBook(title string) (*Book, error) {
	for _, b := range l.Books {
		if b.Title == title {
			return b, nil
		}
	}
	return nil, fmt.Errorf("%w: title %q", ErrBookNotFound, title)
}

// LookupUser finds the first user with an exactly matching name.
func (l *Library) LookupUser(name string) (*User, error) {
	for _, u := range l.Users {
		if u.Name == name {
			return u, nil
		}
	}
	return nil, fmt.Errorf("%w: name %q", ErrUserNotFound, name)
}

func (l *Library) userByID(id string) (*User, bool) {
	for _, u := range l.Users {
		if u.ID == id {
			return u, true
		}
	}
	return nil, false
}

// FindBooks filters the catalog by case-insensitive substring match on
// title, author and category. Empty filters match everything; an empty
// result is not an error.
func (l *Library) FindBooks(title, author, category string) []*Book {
	matches := func(haystack, needle string) bool {
		return needle == "" || strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
	}
	var found []*Book
	for _, b := range l.Books {
		if matches(b.Title, title) && matches(b.Author, author) && matches(b.Category, category) {
			found = append(found, b)
		}
	}
	return found
}

// Authenticate verifies the named user's password, if one is set.
func (l *Library) Authenticate(name, password string) error {
	u, err := l.LookupUser(name)
	if err != nil {
		return err
	}
	return u.VerifyPassword(password)
}

// ---------------------------------------------------------------------------
// Circulation
// ---------------------------------------------------------------------------

// CheckoutResult describes a successful checkout.
type CheckoutResult struct {
	User    *User
	Book    *Book
	DueDate time.Time
}

// ReturnResult describes everything a single return caused: the fine, if
// any, and the cascading checkout to the next reserver, if the queue was
// not empty.
type ReturnResult struct {
	User      *User
	Book      *Book
	DueDate   time.Time
	Late      bool
	DaysLate  int
	FineAdded float64

	AssignedTo  *User
	AssignedDue time.Time
}

// ReserveResult describes the outcome of a reservation request.
type ReserveResult struct {
	User     *User
	Book     *Book
	Queued   bool // false: copies available, nothing was enqueued
	Position int  // 1-based queue position when Queued
}

// CheckoutBook lends the titled book to the named user for the loan period.
func (l *Library) CheckoutBook(userName, title string) (*CheckoutResult, error) {
	u, err := l.LookupUser(userName)
	if err != nil {
		return nil, err
	}
	b, err := l.LookupBook(title)
	if err != nil {
		return nil, err
	}

	due, ok := b.Checkout(u.ID, l.now())
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoCopiesAvailable, b.Title)
	}
	u.holdBook(b)
	u.recordAction(fmt.Sprintf("Checked out '%s'", b.Title))
	l.recordEvent(EventCheckout, u.Name, b.Title, fmt.Sprintf("due %s", due.Format("2006-01-02")))

	return &CheckoutResult{User: u, Book: b, DueDate: due}, nil
}

// ReturnBook takes the titled book back from the named user. The whole
// effect is applied in one call: the due date captured at removal drives
// the fine, and when the reservation queue is non-empty its head is
// immediately checked out to the same book.
func (l *Library) ReturnBook(userName, title string) (*ReturnResult, error) {
	u, err := l.LookupUser(userName)
	if err != nil {
		return nil, err
	}
	b, err := l.LookupBook(title)
	if err != nil {
		return nil, err
	}

	due, ok := b.Return(u.ID)
	if !ok {
		return nil, fmt.Errorf("%w: %s / %q", ErrNotCheckedOut, u.Name, b.Title)
	}
	u.releaseBook(b)

	res := &ReturnResult{User: u, Book: b, DueDate: due}
	if late := daysLate(due, l.now()); late > 0 {
		res.Late = true
		res.DaysLate = late
		res.FineAdded = float64(late) * FinePerDay
		u.addFine(res.FineAdded)
	}

	l.assignNextReservation(b, res)

	u.recordAction(fmt.Sprintf("Returned '%s'", b.Title))
	l.recordEvent(EventReturn, u.Name, b.Title, fmt.Sprintf("fine $%.2f", res.FineAdded))

	return res, nil
}

// assignNextReservation pops the reservation queue and checks the book out
// to the first waiting user that still exists. Users are never removed from
// the roster, so the loop runs at most once in practice.
func (l *Library) assignNextReservation(b *Book, res *ReturnResult) {
	for {
		nextID, ok := b.popReservation()
		if !ok {
			return
		}
		next, ok := l.userByID(nextID)
		if !ok {
			l.logger.Warn("dropping reservation for unknown user", "book", b.Title, "user_id", nextID)
			continue
		}
		due, ok := b.Checkout(next.ID, l.now())
		if !ok {
			// A freed copy was just returned, so this cannot happen.
			return
		}
		next.holdBook(b)
		next.recordAction(fmt.Sprintf("Checked out '%s'", b.Title))
		l.recordEvent(EventCheckout, next.Name, b.Title, fmt.Sprintf("due %s (from reservation)", due.Format("2006-01-02")))
		res.AssignedTo = next
		res.AssignedDue = due
		return
	}
}

// ReserveBook queues the named user for the titled book, or reports that a
// copy is available and no reservation is needed.
func (l *Library) ReserveBook(userName, title string) (*ReserveResult, error) {
	u, err := l.LookupUser(userName)
	if err != nil {
		return nil, err
	}
	b, err := l.LookupBook(title)
	if err != nil {
		return nil, err
	}

	pos, queued := b.Reserve(u.ID)
	if queued {
		l.recordEvent(EventReserve, u.Name, b.Title, fmt.Sprintf("queue position %d", pos))
	}
	return &ReserveResult{User: u, Book: b, Queued: queued, Position: pos}, nil
}

// RateBook adds a rating to the titled book.
func (l *Library) RateBook(title string, rating int) (*Book, error) {
	b, err := l.LookupBook(title)
	if err != nil {
		return nil, err
	}
	if err := b.AddRating(rating); err != nil {
		return nil, err
	}
	return b, nil
}

// PayFine applies a fine payment for the named user and returns the
// remaining balance.
func (l *Library) PayFine(userName string, amount float64) (float64, error) {
	u, err := l.LookupUser(userName)
	if err != nil {
		return 0, err
	}
	if err := u.PayFine(amount); err != nil {
		return u.Fines, err
	}
	l.recordEvent(EventFinePaid, u.Name, "", fmt.Sprintf("paid $%.2f, remaining $%.2f", amount, u.Fines))
	return u.Fines, nil
}

// ---------------------------------------------------------------------------
// Reporting
// ---------------------------------------------------------------------------

// UserReport summarizes one user's standing for the library report.
type UserReport struct {
	Name            string
	CheckedOutBooks int
	Fines           float64
}

// Report aggregates the library-wide counts and per-user standing.
type Report struct {
	TotalBooks int
	TotalUsers int
	Users      []UserReport
}

// GenerateReport builds the aggregate report.
func (l *Library) GenerateReport() Report {
	rep := Report{
		TotalBooks: len(l.Books),
		TotalUsers: len(l.Users),
	}
	for _, u := range l.Users {
		rep.Users = append(rep.Users, UserReport{
			Name:            u.Name,
			CheckedOutBooks: len(u.CheckedOutBooks),
			Fines:           u.Fines,
		})
	}
	return rep
}

// Statistics returns a copy of the borrow-count mapping. See the
// BorrowingStats field note: nothing increments it.
func (l *Library) Statistics() map[string]int {
	stats := make(map[string]int, len(l.BorrowingStats))
	for title, count := range l.BorrowingStats {
		stats[title] = count
	}
	return stats
}

// ---------------------------------------------------------------------------
// Internals
// ---------------------------------------------------------------------------

func (l *Library) recordHistory(entry string) {
	l.History = append(l.History, entry)
}

func (l *Library) recordEvent(event, userName, bookTitle, detail string) {
	if l.ledger == nil {
		return
	}
	if err := l.ledger.Record(event, userName, bookTitle, detail); err != nil {
		l.logger.Error("record ledger event", "event", event, "error", err)
	}
}

// daysLate counts whole calendar days between the due date and now,
// ignoring time of day. Zero or negative means the return was on time.
func daysLate(due, now time.Time) int {
	days := int(dateOf(now).Sub(dateOf(due)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
