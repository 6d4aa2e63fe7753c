package middleware_test

import (
	"context"
	"testing"

	"github.com/aretw0/stagehand/pkg/adapters/memory"
	"github.com/aretw0/stagehand/pkg/domain"
	"github.com/aretw0/stagehand/pkg/persistence/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPIIMiddleware_Masking(t *testing.T) {
	underlying := memory.NewStore()
	// Mask keys containing "password" or "ssn"
	mw, err := middleware.NewPIIMiddleware([]string{"password", "ssn"})
	require.NoError(t, err)
	secure := mw(underlying)

	ctx := context.Background()
	d := domain.Descriptor{
		UniqueID: "pii",
		URL:      "/profile",
		URLParams: map[string]any{
			"username":      "jdoe",
			"user_password": "secret123",
			"details": map[string]any{
				"address":    "123 St",
				"ssn_number": "999-99-9999",
			},
		},
	}
	require.NoError(t, secure.Save(ctx, d))

	// The caller's descriptor is untouched.
	assert.Equal(t, "secret123", d.URLParams["user_password"])
	assert.Equal(t, "999-99-9999", d.URLParams["details"].(map[string]any)["ssn_number"])

	stored, err := underlying.Load(ctx, "pii")
	require.NoError(t, err)
	assert.Equal(t, "jdoe", stored.URLParams["username"])
	assert.Equal(t, middleware.Mask, stored.URLParams["user_password"])
	details := stored.URLParams["details"].(map[string]any)
	assert.Equal(t, middleware.Mask, details["ssn_number"])
	assert.Equal(t, "123 St", details["address"])
}

func TestPIIMiddleware_BadPattern(t *testing.T) {
	_, err := middleware.NewPIIMiddleware([]string{"("})
	assert.Error(t, err)
}

func TestChain(t *testing.T) {
	underlying := memory.NewStore()
	redact, err := middleware.NewPIIMiddleware([]string{"token"})
	require.NoError(t, err)
	encrypt, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	require.NoError(t, err)

	// Redact first, then seal what remains.
	store := middleware.Chain(underlying, redact, encrypt)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, domain.Descriptor{
		UniqueID:  "chained",
		URL:       "/pay",
		URLParams: map[string]any{"token": "t0k", "amount": 10},
	}))

	raw, err := underlying.Load(ctx, "chained")
	require.NoError(t, err)
	assert.Contains(t, raw.URLParams, middleware.EnvelopeKey)

	loaded, err := store.Load(ctx, "chained")
	require.NoError(t, err)
	assert.Equal(t, middleware.Mask, loaded.URLParams["token"])
	assert.EqualValues(t, 10, loaded.URLParams["amount"])
}
