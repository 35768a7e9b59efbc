package format

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsBadInput(t *testing.T) {
	_, err := New("not a locale", "COP")
	assert.Error(t, err)

	_, err = New("es-CO", "XXXX")
	assert.Error(t, err)
}

func TestNumberUsesLocaleSeparators(t *testing.T) {
	f, err := New("es-CO", "COP")
	require.NoError(t, err)

	got := f.Number(1234567.5)
	// es-CO groups with '.' and uses ',' as decimal separator.
	assert.Contains(t, got, ",50")
	assert.Contains(t, got, ".")
}

func TestVolumeHasNoFraction(t *testing.T) {
	f, err := New("es-CO", "COP")
	require.NoError(t, err)

	got := f.Volume(1000000)
	assert.NotContains(t, got, ",")
}

func TestCurrencyCarriesSymbol(t *testing.T) {
	f, err := New("es-CO", "COP")
	require.NoError(t, err)

	got := f.Currency(150)
	assert.True(t, strings.Contains(got, "$") || strings.Contains(got, "COP"), got)
}

func TestPercentSign(t *testing.T) {
	f, err := New("es-CO", "COP")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(f.Percent(1.25), "+"))
	assert.True(t, strings.HasPrefix(f.Percent(-1.25), "-"))
	assert.True(t, strings.HasSuffix(f.Percent(0), "%"))
}
