package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// consume loadOnce so the getters below read what each test loads
	_ = Load()
	os.Exit(m.Run())
}

func decimalOf(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	jsonPath := writeFile(t, dir, "app.json", `{"app_port": "9000", "tax_rate": 0.1, "basket_key": "fromJSON"}`)
	envPath := writeFile(t, dir, ".env", "# comment\nAPP_PORT=9100\nBASKET_DRIVER='memory'\n")
	t.Setenv("APP_PORT", "9200")

	require.NoError(t, loadFromFiles(jsonPath, envPath))

	assert.Equal(t, "9200", get("APP_PORT", ""), "process env wins")
	assert.Equal(t, "memory", get("BASKET_DRIVER", ""), ".env beats defaults")
	assert.Equal(t, "fromJSON", get("BASKET_KEY", ""), "app.json beats defaults")
	assert.True(t, TaxRate().Equal(decimalOf(t, "0.1")))
}

func TestLoadMissingFilesUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, loadFromFiles(filepath.Join(dir, "nope.json"), filepath.Join(dir, "nope.env")))

	assert.Equal(t, defaultBasketKey, BasketKey())
	assert.Equal(t, "9.99", ShippingFlatFee().String())
	assert.Equal(t, "50", FreeShippingOver().String())
	assert.Equal(t, "0.08", TaxRate().String())
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	dir := t.TempDir()
	jsonPath := writeFile(t, dir, "app.json", `{not json`)
	assert.Error(t, loadFromFiles(jsonPath, filepath.Join(dir, ".env")))
}

func TestInvalidValuesFallBack(t *testing.T) {
	dir := t.TempDir()
	envPath := writeFile(t, dir, ".env", "BASKET_DRIVER=floppy\nTAX_RATE=-1\nSHIPPING_FLAT_FEE=abc\n")
	require.NoError(t, loadFromFiles(filepath.Join(dir, "none.json"), envPath))

	assert.Equal(t, defaultBasketDriver, BasketDriver())
	assert.Equal(t, "0.08", TaxRate().String())
	assert.Equal(t, "9.99", ShippingFlatFee().String())
}

func TestCORSOrigins(t *testing.T) {
	Set("CORS_ORIGINS", "https://a.example, https://b.example ,")
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, CORSOrigins())
}
