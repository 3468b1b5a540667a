package library

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestLibrary returns a library with a controllable clock. Moving the
// returned pointer moves "today" for every operation.
func newTestLibrary(t *testing.T) (*Library, *time.Time) {
	t.Helper()
	current := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	lib := New("Test Library", WithClock(func() time.Time { return current }))
	return lib, &current
}

func TestCheckoutAndReturnFlow(t *testing.T) {
	lib, now := newTestLibrary(t)
	lib.AddBook(NewBook("Dune", "Frank Herbert", "978-0441013593", "Science Fiction", 1))
	lib.AddUser(NewUser("Alice", RoleUser))

	res, err := lib.CheckoutBook("Alice", "Dune")
	require.NoError(t, err)
	assert.Equal(t, now.AddDate(0, 0, LoanPeriodDays), res.DueDate)
	assert.Len(t, res.User.CheckedOutBooks, 1)
	assert.Equal(t, []string{"Checked out 'Dune'"}, res.User.History)

	ret, err := lib.ReturnBook("Alice", "Dune")
	require.NoError(t, err)
	assert.False(t, ret.Late)
	assert.Zero(t, ret.FineAdded)
	assert.Zero(t, ret.User.Fines)
	assert.Empty(t, ret.User.CheckedOutBooks)
	assert.Equal(t, 0, ret.Book.CheckedOut)
	assert.Equal(t, "Returned 'Dune'", ret.User.History[len(ret.User.History)-1])
}

func TestCheckoutFailures(t *testing.T) {
	lib, _ := newTestLibrary(t)
	lib.AddBook(NewBook("Dune", "Frank Herbert", "978-0441013593", "Science Fiction", 1))
	lib.AddUser(NewUser("Alice", RoleUser))
	lib.AddUser(NewUser("Bob", RoleUser))

	_, err := lib.CheckoutBook("Nobody", "Dune")
	require.ErrorIs(t, err, ErrUserNotFound)

	_, err = lib.CheckoutBook("Alice", "Missing Title")
	require.ErrorIs(t, err, ErrBookNotFound)

	_, err = lib.CheckoutBook("Alice", "Dune")
	require.NoError(t, err)

	// Last copy is out: the second checkout fails and changes nothing.
	_, err = lib.CheckoutBook("Bob", "Dune")
	require.ErrorIs(t, err, ErrNoCopiesAvailable)

	bob, err := lib.LookupUser("Bob")
	require.NoError(t, err)
	assert.Empty(t, bob.CheckedOutBooks)
	assert.Empty(t, bob.History)

	book, err := lib.LookupBook("Dune")
	require.NoError(t, err)
	assert.Equal(t, 1, book.CheckedOut)
	checkLendingInvariant(t, book)
}

func TestReturnWithoutCheckoutLeavesStateUnchanged(t *testing.T) {
	lib, _ := newTestLibrary(t)
	lib.AddBook(NewBook("Dune", "Frank Herbert", "978-0441013593", "Science Fiction", 1))
	lib.AddUser(NewUser("Alice", RoleUser))

	_, err := lib.ReturnBook("Alice", "Dune")
	require.ErrorIs(t, err, ErrNotCheckedOut)

	alice, err := lib.LookupUser("Alice")
	require.NoError(t, err)
	assert.Empty(t, alice.History)
	assert.Zero(t, alice.Fines)
}

// TestReturnLateComputesFineFromCapturedDueDate pins the resolution of the
// original system's read-after-delete ordering: the due date used for the
// fine is the one captured when the loan entry is removed.
func TestReturnLateComputesFineFromCapturedDueDate(t *testing.T) {
	lib, now := newTestLibrary(t)
	lib.AddBook(NewBook("Dune", "Frank Herbert", "978-0441013593", "Science Fiction", 1))
	lib.AddUser(NewUser("Alice", RoleUser))

	_, err := lib.CheckoutBook("Alice", "Dune")
	require.NoError(t, err)

	// 20 days pass on a 14-day loan: 6 days late.
	*now = now.AddDate(0, 0, 20)

	ret, err := lib.ReturnBook("Alice", "Dune")
	require.NoError(t, err)
	assert.True(t, ret.Late)
	assert.Equal(t, 6, ret.DaysLate)
	assert.Equal(t, 6.0, ret.FineAdded)
	assert.Equal(t, 6.0, ret.User.Fines)

	book, err := lib.LookupBook("Dune")
	require.NoError(t, err)
	assert.Empty(t, book.DueDates)
}

func TestReturnAssignsNextReservation(t *testing.T) {
	lib, _ := newTestLibrary(t)
	lib.AddBook(NewBook("Dune", "Frank Herbert", "978-0441013593", "Science Fiction", 1))
	alice := NewUser("Alice", RoleUser)
	bob := NewUser("Bob", RoleUser)
	charlie := NewUser("Charlie", RoleUser)
	lib.AddUser(alice)
	lib.AddUser(bob)
	lib.AddUser(charlie)

	_, err := lib.CheckoutBook("Alice", "Dune")
	require.NoError(t, err)

	res, err := lib.ReserveBook("Bob", "Dune")
	require.NoError(t, err)
	require.True(t, res.Queued)
	assert.Equal(t, 1, res.Position)

	res, err = lib.ReserveBook("Charlie", "Dune")
	require.NoError(t, err)
	require.True(t, res.Queued)
	assert.Equal(t, 2, res.Position)

	// Alice returns: the head of the queue gets the copy in the same call,
	// the rest of the queue keeps its order.
	ret, err := lib.ReturnBook("Alice", "Dune")
	require.NoError(t, err)
	require.NotNil(t, ret.AssignedTo)
	assert.Equal(t, bob.ID, ret.AssignedTo.ID)

	book, err := lib.LookupBook("Dune")
	require.NoError(t, err)
	assert.Equal(t, 1, book.CheckedOut)
	assert.Equal(t, []string{charlie.ID}, book.Reservations)
	assert.Contains(t, book.DueDates, bob.ID)
	assert.Len(t, bob.CheckedOutBooks, 1)
	assert.Equal(t, []string{"Checked out 'Dune'"}, bob.History)
	checkLendingInvariant(t, book)

	// Bob returns: Charlie's turn, queue now empty.
	ret, err = lib.ReturnBook("Bob", "Dune")
	require.NoError(t, err)
	require.NotNil(t, ret.AssignedTo)
	assert.Equal(t, charlie.ID, ret.AssignedTo.ID)
	assert.Empty(t, book.Reservations)

	// Charlie returns: nobody is waiting, all copies back on the shelf.
	ret, err = lib.ReturnBook("Charlie", "Dune")
	require.NoError(t, err)
	assert.Nil(t, ret.AssignedTo)
	assert.Equal(t, 0, book.CheckedOut)
}

func TestReserveWithCopiesAvailable(t *testing.T) {
	lib, _ := newTestLibrary(t)
	lib.AddBook(NewBook("Dune", "Frank Herbert", "978-0441013593", "Science Fiction", 2))
	lib.AddUser(NewUser("Alice", RoleUser))

	res, err := lib.ReserveBook("Alice", "Dune")
	require.NoError(t, err)
	assert.False(t, res.Queued)
	assert.Empty(t, res.Book.Reservations)
}

func TestFindBooks(t *testing.T) {
	lib, _ := newTestLibrary(t)
	lib.AddBook(NewBook("1984", "George Orwell", "978-0451524935", "Dystopian", 1))
	lib.AddBook(NewBook("Animal Farm", "George Orwell", "978-0451526342", "Satire", 1))
	lib.AddBook(NewBook("Dune", "Frank Herbert", "978-0441013593", "Science Fiction", 1))

	// No filters: everything matches.
	assert.Len(t, lib.FindBooks("", "", ""), 3)

	// Case-insensitive substring on any filter.
	found := lib.FindBooks("", "ORWELL", "")
	require.Len(t, found, 2)

	found = lib.FindBooks("farm", "orwell", "sat")
	require.Len(t, found, 1)
	assert.Equal(t, "Animal Farm", found[0].Title)

	// No match is an empty result, not an error.
	assert.Empty(t, lib.FindBooks("foo", "", ""))
}

func TestRemoveBook(t *testing.T) {
	lib, _ := newTestLibrary(t)
	lib.AddBook(NewBook("1984", "George Orwell", "978-0451524935", "Dystopian", 1))
	lib.AddBook(NewBook("1984", "George Orwell", "978-0451524935", "Dystopian", 1))

	removed, err := lib.RemoveBook("978-0451524935")
	require.NoError(t, err)
	assert.Equal(t, "1984", removed.Title)
	assert.Len(t, lib.Books, 1, "only the first ISBN match is removed")

	_, err = lib.RemoveBook("no-such-isbn")
	require.ErrorIs(t, err, ErrBookNotFound)
}

func TestRateBookThroughLibrary(t *testing.T) {
	lib, _ := newTestLibrary(t)
	lib.AddBook(NewBook("Dune", "Frank Herbert", "978-0441013593", "Science Fiction", 1))

	_, err := lib.RateBook("Missing", 4)
	require.ErrorIs(t, err, ErrBookNotFound)

	_, err = lib.RateBook("Dune", 9)
	require.ErrorIs(t, err, ErrInvalidRating)

	book, err := lib.RateBook("Dune", 4)
	require.NoError(t, err)
	assert.Equal(t, 4.0, book.AverageRating())
}

func TestPayFineThroughLibrary(t *testing.T) {
	lib, _ := newTestLibrary(t)
	alice := NewUser("Alice", RoleUser)
	alice.Fines = 5
	lib.AddUser(alice)

	remaining, err := lib.PayFine("Alice", 2)
	require.NoError(t, err)
	assert.Equal(t, 3.0, remaining)

	remaining, err = lib.PayFine("Alice", 10)
	require.ErrorIs(t, err, ErrPaymentExceedsFines)
	assert.Equal(t, 3.0, remaining)
}

func TestGenerateReport(t *testing.T) {
	lib, _ := newTestLibrary(t)
	lib.AddBook(NewBook("Dune", "Frank Herbert", "978-0441013593", "Science Fiction", 1))
	lib.AddBook(NewBook("1984", "George Orwell", "978-0451524935", "Dystopian", 1))
	alice := NewUser("Alice", RoleUser)
	alice.Fines = 2
	lib.AddUser(alice)
	lib.AddUser(NewUser("Bob", RoleUser))

	_, err := lib.CheckoutBook("Alice", "Dune")
	require.NoError(t, err)

	rep := lib.GenerateReport()
	assert.Equal(t, 2, rep.TotalBooks)
	assert.Equal(t, 2, rep.TotalUsers)
	require.Len(t, rep.Users, 2)
	assert.Equal(t, UserReport{Name: "Alice", CheckedOutBooks: 1, Fines: 2}, rep.Users[0])
	assert.Equal(t, UserReport{Name: "Bob", CheckedOutBooks: 0, Fines: 0}, rep.Users[1])
}

// The borrow counter exists but nothing increments it; checkouts must not
// start doing so.
func TestBorrowingStatisticsStayEmpty(t *testing.T) {
	lib, _ := newTestLibrary(t)
	lib.AddBook(NewBook("Dune", "Frank Herbert", "978-0441013593", "Science Fiction", 1))
	lib.AddUser(NewUser("Alice", RoleUser))

	_, err := lib.CheckoutBook("Alice", "Dune")
	require.NoError(t, err)
	_, err = lib.ReturnBook("Alice", "Dune")
	require.NoError(t, err)

	assert.Empty(t, lib.Statistics())
}

func TestHistoryLog(t *testing.T) {
	lib, _ := newTestLibrary(t)
	lib.AddBook(NewBook("Dune", "Frank Herbert", "978-0441013593", "Science Fiction", 1))
	lib.AddUser(NewUser("Alice", RoleUser))
	_, err := lib.RemoveBook("978-0441013593")
	require.NoError(t, err)

	require.Len(t, lib.History, 3)
	assert.Contains(t, lib.History[0], "Added book: Dune")
	assert.Equal(t, "Added user: Alice", lib.History[1])
	assert.Contains(t, lib.History[2], "Removed book: Dune")
}

func TestAuthenticate(t *testing.T) {
	lib, _ := newTestLibrary(t)
	alice := NewUser("Alice", RoleUser)
	require.NoError(t, alice.SetPassword("opensesame"))
	lib.AddUser(alice)

	require.NoError(t, lib.Authenticate("Alice", "opensesame"))
	require.ErrorIs(t, lib.Authenticate("Alice", "nope"), ErrAuthFailed)
	require.ErrorIs(t, lib.Authenticate("Nobody", "x"), ErrUserNotFound)
}
