package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	// Explicit missing file path is an error; empty path falls back to defaults.
	assert.Error(t, err)

	cfg, err = Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, int64(10000), cfg.Fees.FeePPM)
	assert.Equal(t, int64(50000), cfg.Fees.BaseFeeMsat)
	assert.Equal(t, int64(1), cfg.Limits.MinAmountSat)
	assert.Equal(t, int64(100000), cfg.Limits.MaxAmountSat)
	assert.Equal(t, int64(10), cfg.Limits.MaxPendingPerUser)
	assert.Equal(t, int64(20), cfg.Limits.MaxDailyNewUsers)
	assert.Equal(t, int64(3600), cfg.Limits.InvoiceExpirySecs)
	assert.Equal(t, "lnledger", cfg.JWT.Issuer)
	assert.Equal(t, 30*time.Second, cfg.Node.Timeout)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9090
fees:
  fee_ppm: 5000
  base_fee_msat: 1000
limits:
  max_amount_sat: 50000
jwt:
  secret: test-secret
admin:
  token: admin-token
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, int64(5000), cfg.Fees.FeePPM)
	assert.Equal(t, int64(1000), cfg.Fees.BaseFeeMsat)
	assert.Equal(t, int64(50000), cfg.Limits.MaxAmountSat)
	assert.Equal(t, "test-secret", cfg.JWT.Secret)
	assert.Equal(t, "admin-token", cfg.Admin.Token)
	// Untouched values keep their defaults.
	assert.Equal(t, "localhost", cfg.Database.Host)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("LNL_DATABASE_HOST", "db.internal")
	t.Setenv("LNL_JWT_SECRET", "env-secret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "env-secret", cfg.JWT.Secret)
}

func TestLoad_InvalidFeePPM(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fees:\n  fee_ppm: 0\n"), 0o600))

	_, err := Load(path)
	assert.ErrorContains(t, err, "fee_ppm")
}

func TestLoad_InvalidAmountBounds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("limits:\n  min_amount_sat: 10\n  max_amount_sat: 5\n"), 0o600))

	_, err := Load(path)
	assert.ErrorContains(t, err, "min_amount_sat")
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Host: "localhost", Port: 5432, User: "u", Password: "p",
		DBName: "lnledger", SSLMode: "disable",
	}
	assert.Equal(t, "postgres://u:p@localhost:5432/lnledger?sslmode=disable", d.DSN())
}

func TestFeeConfig_FeeMsat(t *testing.T) {
	f := FeeConfig{FeePPM: 10000, BaseFeeMsat: 50000}
	// 250_000/10_000 = 25, + 50_000 base
	assert.Equal(t, int64(50_025), f.FeeMsat(250_000))
	// Integer division truncates.
	assert.Equal(t, int64(50_000), f.FeeMsat(9_999))
}

func TestLimitsConfig_MsatBounds(t *testing.T) {
	l := LimitsConfig{MinAmountSat: 1, MaxAmountSat: 100000}
	assert.Equal(t, int64(1000), l.MinAmountMsat())
	assert.Equal(t, int64(100_000_000), l.MaxAmountMsat())
}
