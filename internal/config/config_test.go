package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/calciq/internal/budget"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	for _, k := range []string{"CALCIQ_THEME", "CALCIQ_CURRENCY", "CALCIQ_ADDR", "CALCIQ_DB_PATH", "CALCIQ_FORMULA"} {
		t.Setenv(k, "")
	}
	return dir
}

func TestLoad_DefaultsWhenMissing(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.False(t, Exists())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	isolate(t)

	cfg := DefaultConfig()
	cfg.Budget.Income = 82000
	cfg.Budget.Members = 3
	cfg.Budget.City = "Pune"
	cfg.Budget.Formula = "scaled"
	cfg.Appearance.Theme = "catppuccin-mocha"
	require.NoError(t, Save(cfg))
	require.True(t, Exists())

	got, err := Load()
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := isolate(t)

	cfg := DefaultConfig()
	cfg.Appearance.Theme = "tokyo-night"
	cfg.General.Currency = "USD"
	require.NoError(t, Save(cfg))

	dbPath := filepath.Join(dir, "elsewhere.db")
	t.Setenv("CALCIQ_THEME", "terminal")
	t.Setenv("CALCIQ_DB_PATH", dbPath)
	t.Setenv("CALCIQ_ADDR", "127.0.0.1:9999")
	t.Setenv("CALCIQ_FORMULA", "scaled")

	got, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "terminal", got.Appearance.Theme)
	assert.Equal(t, "USD", got.General.Currency, "unset env keeps the file value")
	assert.Equal(t, dbPath, got.DBPath())
	assert.Equal(t, "127.0.0.1:9999", got.Server.Addr)
	assert.Equal(t, "scaled", got.Budget.Formula)
}

func TestLoad_NormalizesBadValues(t *testing.T) {
	isolate(t)
	require.NoError(t, os.MkdirAll(Dir(), 0o755))
	data := []byte("[budget]\nmembers = 0\n[game]\nresolve_delay_ms = -3\nleaderboard_size = 0\n")
	require.NoError(t, os.WriteFile(Path(), data, 0o600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Budget.Members)
	assert.Equal(t, 700, cfg.Game.ResolveDelayMS)
	assert.Equal(t, 5, cfg.Game.LeaderboardSize)
}

func TestLoad_InvalidTOML(t *testing.T) {
	isolate(t)
	require.NoError(t, os.MkdirAll(Dir(), 0o755))
	require.NoError(t, os.WriteFile(Path(), []byte("[budget\n"), 0o600))

	_, err := Load()
	require.Error(t, err)
}

func TestDBPathDefault(t *testing.T) {
	dir := isolate(t)
	cfg := DefaultConfig()
	if got, want := cfg.DBPath(), filepath.Join(dir, "cache", "calciq", "calciq.db"); got != want {
		t.Errorf("DBPath() = %q, want %q", got, want)
	}
}

func TestLookupCurrency(t *testing.T) {
	c, ok := LookupCurrency(" inr ")
	if !ok || c.Symbol != "₹" || c.Grouping != GroupLakh {
		t.Errorf("LookupCurrency(inr) = %+v, %v", c, ok)
	}
	c, ok = LookupCurrency("chf")
	if ok || c.Symbol != "CHF " {
		t.Errorf("LookupCurrency(chf) = %+v, %v", c, ok)
	}
}

func TestBudgetInputFeedsAllocator(t *testing.T) {
	b := BudgetConfig{Income: 50000, Members: 2, Lifestyle: "middle", City: "Pune", Formula: "scaled"}
	in := b.Input()

	p, err := budget.ComputePlan(in)
	require.NoError(t, err)
	assert.Equal(t, budget.FormulaScaled, p.Formula)
	assert.Equal(t, budget.Middle, p.Lifestyle)
	assert.Equal(t, "Pune", p.City)
	assert.Equal(t, int64(15000), p.Rent)
}
