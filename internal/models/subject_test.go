package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSubject_GuestRoundTripThroughClaim(t *testing.T) {
	t.Parallel()

	g := Guest()
	require.True(t, g.IsGuest())

	_, ok := g.UserID()
	require.False(t, ok, "гость не должен давать id пользователя")

	back := SubjectFromClaim(g.ClaimValue())
	require.True(t, back.IsGuest())
	require.Equal(t, "guest", back.String())
}

func TestSubject_Registered(t *testing.T) {
	t.Parallel()

	s := SubjectFromClaim(42)
	require.False(t, s.IsGuest())

	id, ok := s.UserID()
	require.True(t, ok)
	require.EqualValues(t, 42, id)
	require.Equal(t, "42", s.String())
}

func TestParsePurpose(t *testing.T) {
	t.Parallel()

	p, err := ParsePurpose("register")
	require.NoError(t, err)
	require.Equal(t, PurposeRegister, p)

	p, err = ParsePurpose("reset")
	require.NoError(t, err)
	require.Equal(t, PurposeReset, p)

	_, err = ParsePurpose("login")
	require.Error(t, err)
}

func TestVerificationCode_Active(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := &VerificationCode{ExpiresAt: now.Add(10 * time.Minute)}

	require.True(t, c.Active(now))
	require.True(t, c.Active(now.Add(9*time.Minute)))
	require.False(t, c.Active(now.Add(10*time.Minute)))

	c.Used = true
	require.False(t, c.Active(now))
}
