package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "GO_ENV", "DATABASE_URL", "REDIS_URL", "DATASET_SOURCE", "ORDERS_CSV",
		"PRODUCTS_CSV", "TOP_PRODUCTS", "ANALYTICS_CACHE_TTL_SECONDS", "SNAPSHOT_CRON", "EXPORT_DIR",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, SourceCSV, cfg.DatasetSource)
	assert.Equal(t, 10, cfg.TopProducts)
	assert.Equal(t, 10*time.Minute, cfg.AnalyticsCacheTTL)
	assert.Equal(t, 100, cfg.StoreModel.Estimators)
	assert.Equal(t, 0.1, cfg.StoreModel.LearningRate)
	assert.Equal(t, 3, cfg.StoreModel.Tree.MaxDepth)
	assert.Equal(t, 6, cfg.GroupModel.Tree.MaxDepth)
	assert.True(t, cfg.GroupModel.Bootstrap)
	assert.Equal(t, int64(42), cfg.GroupModel.Seed)
}

func TestLoad_YAMLFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "app.yaml", `
server:
  port: "9000"
dataset:
  orders_csv: data/orders.csv
analytics:
  top_products: 5
forecast:
  store:
    estimators: 50
    max_depth: 2
  groups:
    trees: 20
    bootstrap: false
    seed: 7
`)
	t.Setenv("PORT", "9100")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9100", cfg.Port, "env wins over file")
	assert.Equal(t, "data/orders.csv", cfg.OrdersCSV)
	assert.Equal(t, "Product_Details_Cleaned.csv", cfg.ProductsCSV, "unset keys keep defaults")
	assert.Equal(t, 5, cfg.TopProducts)
	assert.Equal(t, 50, cfg.StoreModel.Estimators)
	assert.Equal(t, 2, cfg.StoreModel.Tree.MaxDepth)
	assert.Equal(t, 0.1, cfg.StoreModel.LearningRate)
	assert.Equal(t, 20, cfg.GroupModel.Trees)
	assert.False(t, cfg.GroupModel.Bootstrap)
	assert.Equal(t, int64(7), cfg.GroupModel.Seed)
}

func TestLoad_TOMLAndJSON(t *testing.T) {
	clearEnv(t)

	tomlPath := writeConfig(t, "app.toml", `
[analytics]
cache_ttl_seconds = 30

[snapshot]
cron = "@daily"
`)
	cfg, err := Load(tomlPath)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.AnalyticsCacheTTL)
	assert.Equal(t, "@daily", cfg.SnapshotCron)

	jsonPath := writeConfig(t, "app.json", `{"dependencies": {"redis_url": "redis://localhost:6379/0"}}`)
	cfg, err = Load(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "app.ini", "port=1"))
	assert.ErrorContains(t, err, "unsupported")

	_, err = Load(writeConfig(t, "bad.yaml", "server: [unclosed"))
	assert.ErrorContains(t, err, "failed to parse")

	_, err = Load(t.TempDir())
	assert.ErrorContains(t, err, "directory")
}

func TestLoad_EnvValidation(t *testing.T) {
	clearEnv(t)

	t.Setenv("DATASET_SOURCE", "postgres")
	_, err := Load("")
	assert.ErrorContains(t, err, "DATABASE_URL")

	t.Setenv("DATABASE_URL", "postgres://localhost/shop")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, SourcePostgres, cfg.DatasetSource)

	t.Setenv("DATASET_SOURCE", "parquet")
	_, err = Load("")
	assert.ErrorContains(t, err, "unknown dataset source")

	t.Setenv("DATASET_SOURCE", "")
	t.Setenv("TOP_PRODUCTS", "abc")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.TopProducts, "invalid ints fall back")

	t.Setenv("TOP_PRODUCTS", "0")
	_, err = Load("")
	assert.ErrorContains(t, err, "top products")
}
