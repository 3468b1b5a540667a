package library

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// SetPassword protects the user with a bcrypt-hashed password. The hash
// lives in memory only and never reaches the persisted data file.
func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = hash
	return nil
}

// HasPassword reports whether the user requires authentication.
func (u *User) HasPassword() bool {
	return len(u.PasswordHash) > 0
}

// VerifyPassword checks the password against the stored hash. Users without
// a password always pass.
func (u *User) VerifyPassword(password string) error {
	if !u.HasPassword() {
		return nil
	}
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return ErrAuthFailed
	}
	return nil
}

// PayFine subtracts amount from the outstanding balance. Payments above the
// balance are rejected entirely; there are no partial payments.
func (u *User) PayFine(amount float64) error {
	if amount <= 0 {
		return ErrInvalidPayment
	}
	if amount > u.Fines {
		return fmt.Errorf("%w: owed $%.2f", ErrPaymentExceedsFines, u.Fines)
	}
	u.Fines -= amount
	return nil
}

// addFine accrues a late fee and records nothing else; callers append the
// matching history entry.
func (u *User) addFine(amount float64) {
	u.Fines += amount
}

// recordAction appends a line to the user's chronological history.
func (u *User) recordAction(action string) {
	u.History = append(u.History, action)
}

// holdBook tracks a successful checkout on the user's side.
func (u *User) holdBook(b *Book) {
	u.CheckedOutBooks = append(u.CheckedOutBooks, b)
}

// releaseBook drops the first matching entry from the user's held list.
func (u *User) releaseBook(b *Book) {
	for i, held := range u.CheckedOutBooks {
		if held == b {
			u.CheckedOutBooks = append(u.CheckedOutBooks[:i], u.CheckedOutBooks[i+1:]...)
			return
		}
	}
}

// String renders a one-line summary for listings.
func (u *User) String() string {
	return fmt.Sprintf("%s - Fines: $%.2f, Role: %s", u.Name, u.Fines, u.Role)
}
