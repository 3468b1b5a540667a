package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUserDefaults(t *testing.T) {
	u := NewUser("Alice", "")
	assert.Equal(t, RoleUser, u.Role)
	assert.NotEmpty(t, u.ID)
	assert.Zero(t, u.Fines)

	other := NewUser("Alice", RoleAdmin)
	assert.Equal(t, RoleAdmin, other.Role)
	assert.NotEqual(t, u.ID, other.ID, "every user gets their own identity, names are not unique")
}

func TestPayFine(t *testing.T) {
	u := NewUser("Alice", RoleUser)
	u.Fines = 10

	// Payments above the balance are rejected outright.
	require.ErrorIs(t, u.PayFine(10.5), ErrPaymentExceedsFines)
	assert.Equal(t, 10.0, u.Fines)

	require.ErrorIs(t, u.PayFine(0), ErrInvalidPayment)
	require.ErrorIs(t, u.PayFine(-3), ErrInvalidPayment)
	assert.Equal(t, 10.0, u.Fines)

	require.NoError(t, u.PayFine(4))
	assert.Equal(t, 6.0, u.Fines)

	require.NoError(t, u.PayFine(6))
	assert.Zero(t, u.Fines)
}

func TestPasswordVerification(t *testing.T) {
	u := NewUser("Alice", RoleUser)

	assert.False(t, u.HasPassword())
	require.NoError(t, u.VerifyPassword("anything"), "users without a password always pass")

	require.NoError(t, u.SetPassword("opensesame"))
	assert.True(t, u.HasPassword())
	require.NoError(t, u.VerifyPassword("opensesame"))
	require.ErrorIs(t, u.VerifyPassword("wrong"), ErrAuthFailed)
}

func TestUserString(t *testing.T) {
	u := NewUser("Alice", RoleAdmin)
	u.Fines = 2.5
	assert.Equal(t, "Alice - Fines: $2.50, Role: admin", u.String())
}
