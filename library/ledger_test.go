package library

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempLedger(t *testing.T) *Ledger {
	t.Helper()
	lg, err := OpenLedger(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { lg.Close() })
	return lg
}

func TestLedgerRecordAndRecent(t *testing.T) {
	lg := tempLedger(t)

	require.NoError(t, lg.Record(EventCheckout, "Alice", "Dune", "due 2026-03-15"))
	require.NoError(t, lg.Record(EventReserve, "Bob", "Dune", "queue position 1"))
	require.NoError(t, lg.Record(EventReturn, "Alice", "Dune", "fine $0.00"))

	entries, err := lg.Recent(2)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first.
	assert.Equal(t, EventReturn, entries[0].Event)
	assert.Equal(t, EventReserve, entries[1].Event)
	assert.Equal(t, "Bob", entries[1].UserName)
	assert.False(t, entries[0].RecordedAt.IsZero())
}

func TestLedgerOpenCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ledger.db")
	lg, err := OpenLedger(path)
	require.NoError(t, err)
	require.NoError(t, lg.Close())
}

func TestLibraryRecordsCirculationEvents(t *testing.T) {
	lg := tempLedger(t)

	current := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	lib := New("Test Library", WithLedger(lg), WithClock(func() time.Time { return current }))
	lib.AddBook(NewBook("Dune", "Frank Herbert", "978-0441013593", "Science Fiction", 1))
	alice := NewUser("Alice", RoleUser)
	alice.Fines = 5
	lib.AddUser(alice)
	lib.AddUser(NewUser("Bob", RoleUser))

	_, err := lib.CheckoutBook("Alice", "Dune")
	require.NoError(t, err)
	_, err = lib.ReserveBook("Bob", "Dune")
	require.NoError(t, err)
	_, err = lib.ReturnBook("Alice", "Dune")
	require.NoError(t, err)
	_, err = lib.PayFine("Alice", 2)
	require.NoError(t, err)

	entries, err := lg.Recent(10)
	require.NoError(t, err)

	var events []string
	for _, e := range entries {
		events = append(events, e.Event)
	}
	// Newest first: fine payment, cascade checkout to Bob, Alice's return,
	// Bob's reservation, Alice's checkout.
	assert.Equal(t, []string{EventFinePaid, EventReturn, EventCheckout, EventReserve, EventCheckout}, events)
}
