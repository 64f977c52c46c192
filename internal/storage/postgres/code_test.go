package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/pribylovaa/gamehub-auth/internal/models"
	"github.com/pribylovaa/gamehub-auth/internal/storage"
	"github.com/stretchr/testify/require"
)

func saveCode(t *testing.T, st *Storage, code string, createdAt time.Time) *models.VerificationCode {
	t.Helper()
	c := &models.VerificationCode{
		Email:     "a@x.com",
		Code:      code,
		Purpose:   models.PurposeRegister,
		ExpiresAt: createdAt.Add(10 * time.Minute),
		CreatedAt: createdAt,
	}
	require.NoError(t, st.SaveCode(context.Background(), c))
	require.NotZero(t, c.ID)
	return c
}

func TestIntegration_LatestActiveCode_NewestOnly(t *testing.T) {
	st := startPostgres(t)
	ctx := context.Background()

	t0 := time.Now().UTC().Truncate(time.Second)
	saveCode(t, st, "111111", t0)
	saveCode(t, st, "222222", t0.Add(30*time.Second))

	got, err := st.LatestActiveCode(ctx, "a@x.com", models.PurposeRegister, t0.Add(time.Minute))
	require.NoError(t, err)
	require.Equal(t, "222222", got.Code)
	require.Equal(t, models.PurposeRegister, got.Purpose)

	_, err = st.LatestActiveCode(ctx, "a@x.com", models.PurposeReset, t0.Add(time.Minute))
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestIntegration_LatestActiveCode_Expired(t *testing.T) {
	st := startPostgres(t)

	t0 := time.Now().UTC().Truncate(time.Second)
	saveCode(t, st, "013579", t0)

	_, err := st.LatestActiveCode(context.Background(), "a@x.com", models.PurposeRegister, t0.Add(10*time.Minute))
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestIntegration_MarkUsed_Idempotent(t *testing.T) {
	st := startPostgres(t)
	ctx := context.Background()

	t0 := time.Now().UTC().Truncate(time.Second)
	saveCode(t, st, "013579", t0)

	ok, err := st.MarkUsed(ctx, "a@x.com", "013579", models.PurposeRegister)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = st.MarkUsed(ctx, "a@x.com", "013579", models.PurposeRegister)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = st.LatestActiveCode(ctx, "a@x.com", models.PurposeRegister, t0.Add(time.Minute))
	require.ErrorIs(t, err, storage.ErrNotFound)
}
