package hash

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCheck(t *testing.T) {
	h := New(bcrypt.MinCost)

	hashed, err := h.Hash("Secr3t!")
	require.NoError(t, err)
	require.NotEqual(t, "Secr3t!", hashed)

	require.True(t, h.Check("Secr3t!", hashed))
	require.False(t, h.Check("wrong", hashed))
}

func TestHashIsSalted(t *testing.T) {
	h := New(bcrypt.MinCost)

	a, err := h.Hash("Secr3t!")
	require.NoError(t, err)
	b, err := h.Hash("Secr3t!")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestCheckMalformedHash(t *testing.T) {
	h := New(bcrypt.MinCost)
	require.False(t, h.Check("anything", "not-a-bcrypt-hash"))
}

func TestNewClampsCost(t *testing.T) {
	require.Equal(t, bcrypt.DefaultCost, New(0).cost)
	require.Equal(t, bcrypt.DefaultCost, New(99).cost)
	require.Equal(t, bcrypt.MinCost, New(bcrypt.MinCost).cost)
}
