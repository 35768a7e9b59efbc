package i18n

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgcache "MarketBoard/pkg/cache"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := New("es", pkgcache.NewMemoryCache())
	require.NoError(t, err)
	return svc
}

func TestTranslateWithFallback(t *testing.T) {
	svc := newTestService(t)

	assert.Equal(t, "Símbolo", svc.T("es", "market.column.symbol"))
	assert.Equal(t, "Symbol", svc.T("en", "market.column.symbol"))

	// Unknown language falls back to default.
	assert.Equal(t, "Símbolo", svc.T("fr", "market.column.symbol"))

	// Unknown key surfaces the key.
	assert.Equal(t, "no.such.key", svc.T("es", "no.such.key"))
}

func TestBundleAndLanguages(t *testing.T) {
	svc := newTestService(t)

	b, ok := svc.Bundle("en")
	require.True(t, ok)
	assert.Equal(t, "Stock market", b["market.title"])

	_, ok = svc.Bundle("pt")
	assert.False(t, ok)

	// sorted so the languages endpoint is deterministic
	assert.Equal(t, []string{"en", "es"}, svc.Languages())
}

func TestPreference(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	assert.Equal(t, "es", svc.Preference(ctx))

	require.NoError(t, svc.SavePreference(ctx, "en"))
	assert.Equal(t, "en", svc.Preference(ctx))

	assert.Error(t, svc.SavePreference(ctx, "de"))
}
