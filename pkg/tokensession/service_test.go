package tokensession

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	idmerrors "github.com/veralend/identity/pkg/errors"
)

func newService(ttl time.Duration, maxAttempts int) (*Service, *InMemoryRepository) {
	repo := NewInMemoryRepository()
	return NewService(repo, ttl, maxAttempts), repo
}

func TestIssue(t *testing.T) {
	ctx := context.Background()

	t.Run("CreatesActiveToken", func(t *testing.T) {
		svc, _ := newService(time.Hour, 5)
		accountID := uuid.New()

		tok, err := svc.Issue(ctx, accountID, PurposeCreate)
		require.NoError(t, err)
		assert.Equal(t, accountID, tok.AccountID)
		assert.Equal(t, StatusActive, tok.Status)
		assert.NotEmpty(t, tok.Token)
		assert.True(t, tok.ExpiresAt.After(time.Now()))
	})

	t.Run("RefreshesExistingActiveToken", func(t *testing.T) {
		svc, _ := newService(time.Hour, 5)
		accountID := uuid.New()

		first, err := svc.Issue(ctx, accountID, PurposeCreate)
		require.NoError(t, err)

		// Second issue, even for another purpose, must not create a
		// second live row.
		second, err := svc.Issue(ctx, accountID, PurposeForgot)
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, first.Token, second.Token)
		assert.Equal(t, first.Purpose, second.Purpose)
		assert.False(t, second.ExpiresAt.Before(first.ExpiresAt))
	})

	t.Run("NewTokenAfterInvalidation", func(t *testing.T) {
		svc, _ := newService(time.Hour, 5)
		accountID := uuid.New()

		first, err := svc.Issue(ctx, accountID, PurposeUnlock)
		require.NoError(t, err)
		require.NoError(t, svc.Invalidate(ctx, first))

		second, err := svc.Issue(ctx, accountID, PurposeUnlock)
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, second.ID)
	})
}

func TestValidate(t *testing.T) {
	ctx := context.Background()

	t.Run("LiveTokenPasses", func(t *testing.T) {
		svc, _ := newService(time.Hour, 5)
		tok, err := svc.Issue(ctx, uuid.New(), PurposeForgot)
		require.NoError(t, err)

		got, err := svc.Validate(ctx, tok.Token)
		require.NoError(t, err)
		assert.Equal(t, tok.ID, got.ID)
	})

	t.Run("AcceptsBase64WrappedValue", func(t *testing.T) {
		svc, _ := newService(time.Hour, 5)
		tok, err := svc.Issue(ctx, uuid.New(), PurposeForgot)
		require.NoError(t, err)

		_, err = svc.Validate(ctx, EncodeToken(tok.Token))
		assert.NoError(t, err)
	})

	t.Run("UnknownToken", func(t *testing.T) {
		svc, _ := newService(time.Hour, 5)

		_, err := svc.Validate(ctx, uuid.NewString())
		assert.True(t, idmerrors.IsCode(err, idmerrors.ErrCodeTokenNotFound))
	})

	t.Run("EmptyToken", func(t *testing.T) {
		svc, _ := newService(time.Hour, 5)

		_, err := svc.Validate(ctx, "")
		assert.True(t, idmerrors.IsCode(err, idmerrors.ErrCodeTokenNotFound))
	})

	t.Run("ExpiredToken", func(t *testing.T) {
		svc, _ := newService(-time.Minute, 5)
		tok, err := svc.Issue(ctx, uuid.New(), PurposeForgot)
		require.NoError(t, err)

		_, err = svc.Validate(ctx, tok.Token)
		assert.True(t, idmerrors.IsCode(err, idmerrors.ErrCodeTokenExpired))
	})

	t.Run("InactiveToken", func(t *testing.T) {
		svc, _ := newService(time.Hour, 5)
		tok, err := svc.Issue(ctx, uuid.New(), PurposeForgot)
		require.NoError(t, err)
		require.NoError(t, svc.Invalidate(ctx, tok))

		_, err = svc.Validate(ctx, tok.Token)
		assert.True(t, idmerrors.IsCode(err, idmerrors.ErrCodeTokenInactive))
	})
}

func TestRecordVerifyAttempt(t *testing.T) {
	ctx := context.Background()

	t.Run("DeactivatesAtCeiling", func(t *testing.T) {
		svc, _ := newService(time.Hour, 3)
		tok, err := svc.Issue(ctx, uuid.New(), PurposeForgot)
		require.NoError(t, err)

		for i := 0; i < 2; i++ {
			require.NoError(t, svc.RecordVerifyAttempt(ctx, tok.Token))
			_, err := svc.Validate(ctx, tok.Token)
			require.NoError(t, err)
		}

		require.NoError(t, svc.RecordVerifyAttempt(ctx, tok.Token))
		_, err = svc.Validate(ctx, tok.Token)
		assert.True(t, idmerrors.IsCode(err, idmerrors.ErrCodeTokenInactive))
	})
}

func TestRegenerate(t *testing.T) {
	ctx := context.Background()

	t.Run("RejectedWhileStillValid", func(t *testing.T) {
		svc, _ := newService(time.Hour, 5)
		tok, err := svc.Issue(ctx, uuid.New(), PurposeForgot)
		require.NoError(t, err)

		_, err = svc.Regenerate(ctx, tok.Token)
		assert.True(t, idmerrors.IsCode(err, idmerrors.ErrCodeTokenNotExpired))
	})

	t.Run("ExpiredTokenGetsNewValueAndExpiry", func(t *testing.T) {
		repo := NewInMemoryRepository()
		expired := NewService(repo, -time.Minute, 5)
		tok, err := expired.Issue(ctx, uuid.New(), PurposeForgot)
		require.NoError(t, err)

		svc := NewService(repo, time.Hour, 5)
		fresh, err := svc.Regenerate(ctx, tok.Token)
		require.NoError(t, err)
		assert.NotEqual(t, tok.Token, fresh.Token)
		assert.True(t, fresh.ExpiresAt.After(tok.ExpiresAt))

		// The old value no longer resolves; the new one does.
		_, err = svc.Validate(ctx, tok.Token)
		assert.True(t, idmerrors.IsCode(err, idmerrors.ErrCodeTokenNotFound))
		_, err = svc.Validate(ctx, fresh.Token)
		assert.NoError(t, err)
	})
}

func TestInvalidateActiveForAccount(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(time.Hour, 5)
	accountID := uuid.New()

	tok, err := svc.Issue(ctx, accountID, PurposeCreate)
	require.NoError(t, err)

	require.NoError(t, svc.InvalidateActiveForAccount(ctx, accountID))
	_, err = svc.Validate(ctx, tok.Token)
	assert.True(t, idmerrors.IsCode(err, idmerrors.ErrCodeTokenInactive))

	// No live token is a no-op.
	assert.NoError(t, svc.InvalidateActiveForAccount(ctx, uuid.New()))
}

func TestDecodeRaw(t *testing.T) {
	t.Run("UUIDPassesThrough", func(t *testing.T) {
		raw := uuid.NewString()
		assert.Equal(t, raw, DecodeRaw(raw))
	})

	t.Run("Base64Unwraps", func(t *testing.T) {
		raw := uuid.NewString()
		assert.Equal(t, raw, DecodeRaw(EncodeToken(raw)))
	})

	t.Run("GarbageReturnedAsIs", func(t *testing.T) {
		assert.Equal(t, "!!not-a-token!!", DecodeRaw("!!not-a-token!!"))
	})
}
