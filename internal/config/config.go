// Package config resolves runtime settings from defaults, an optional
// config file and the environment, in that order.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"

	"github.com/RahulBhaskar05/lugXieee-datathon/internal/forecast"
)

// Dataset sources
const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

// Config holds every runtime setting
type Config struct {
	Port        string
	Env         string
	DatabaseURL string
	RedisURL    string

	DatasetSource string
	OrdersCSV     string
	ProductsCSV   string

	TopProducts       int
	AnalyticsCacheTTL time.Duration
	SnapshotCron      string
	ExportDir         string

	// Operator-level model settings, read from the config file only
	StoreModel forecast.GradientBoosting
	GroupModel forecast.RandomForest
}

// configFile mirrors the on-disk layout. Zero values mean "not set".
type configFile struct {
	Server struct {
		Port string `yaml:"port" toml:"port" json:"port"`
		Env  string `yaml:"env" toml:"env" json:"env"`
	} `yaml:"server" toml:"server" json:"server"`
	Dependencies struct {
		DatabaseURL string `yaml:"database_url" toml:"database_url" json:"database_url"`
		RedisURL    string `yaml:"redis_url" toml:"redis_url" json:"redis_url"`
	} `yaml:"dependencies" toml:"dependencies" json:"dependencies"`
	Dataset struct {
		Source      string `yaml:"source" toml:"source" json:"source"`
		OrdersCSV   string `yaml:"orders_csv" toml:"orders_csv" json:"orders_csv"`
		ProductsCSV string `yaml:"products_csv" toml:"products_csv" json:"products_csv"`
	} `yaml:"dataset" toml:"dataset" json:"dataset"`
	Analytics struct {
		TopProducts     int `yaml:"top_products" toml:"top_products" json:"top_products"`
		CacheTTLSeconds int `yaml:"cache_ttl_seconds" toml:"cache_ttl_seconds" json:"cache_ttl_seconds"`
	} `yaml:"analytics" toml:"analytics" json:"analytics"`
	Snapshot struct {
		Cron      string `yaml:"cron" toml:"cron" json:"cron"`
		ExportDir string `yaml:"export_dir" toml:"export_dir" json:"export_dir"`
	} `yaml:"snapshot" toml:"snapshot" json:"snapshot"`
	Forecast struct {
		Store  modelFile `yaml:"store" toml:"store" json:"store"`
		Groups modelFile `yaml:"groups" toml:"groups" json:"groups"`
	} `yaml:"forecast" toml:"forecast" json:"forecast"`
}

type modelFile struct {
	Estimators      int     `yaml:"estimators" toml:"estimators" json:"estimators"`
	Trees           int     `yaml:"trees" toml:"trees" json:"trees"`
	LearningRate    float64 `yaml:"learning_rate" toml:"learning_rate" json:"learning_rate"`
	Subsample       float64 `yaml:"subsample" toml:"subsample" json:"subsample"`
	Bootstrap       *bool   `yaml:"bootstrap" toml:"bootstrap" json:"bootstrap"`
	Seed            *int64  `yaml:"seed" toml:"seed" json:"seed"`
	MaxDepth        int     `yaml:"max_depth" toml:"max_depth" json:"max_depth"`
	MinSamplesSplit int     `yaml:"min_samples_split" toml:"min_samples_split" json:"min_samples_split"`
	MinSamplesLeaf  int     `yaml:"min_samples_leaf" toml:"min_samples_leaf" json:"min_samples_leaf"`
	MaxFeatures     int     `yaml:"max_features" toml:"max_features" json:"max_features"`
}

// Default returns the built-in settings
func Default() Config {
	return Config{
		Port:              "8080",
		Env:               "development",
		DatasetSource:     SourceCSV,
		OrdersCSV:         "Order_Details_Cleaned.csv",
		ProductsCSV:       "Product_Details_Cleaned.csv",
		TopProducts:       10,
		AnalyticsCacheTTL: 10 * time.Minute,
		ExportDir:         "reports",
		StoreModel:        forecast.DefaultGradientBoosting(),
		GroupModel:        forecast.DefaultRandomForest(),
	}
}

// Load resolves configuration: defaults -> file -> env.
// An empty path skips the file; a named file that cannot be read is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		f, err := readFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg.apply(f)
	}

	cfg.Port = envOrDefault("PORT", cfg.Port)
	cfg.Env = envOrDefault("GO_ENV", cfg.Env)
	cfg.DatabaseURL = envOrDefault("DATABASE_URL", cfg.DatabaseURL)
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.DatasetSource = strings.ToLower(strings.TrimSpace(envOrDefault("DATASET_SOURCE", cfg.DatasetSource)))
	cfg.OrdersCSV = envOrDefault("ORDERS_CSV", cfg.OrdersCSV)
	cfg.ProductsCSV = envOrDefault("PRODUCTS_CSV", cfg.ProductsCSV)
	cfg.TopProducts = envInt("TOP_PRODUCTS", cfg.TopProducts)
	cfg.AnalyticsCacheTTL = time.Duration(envInt("ANALYTICS_CACHE_TTL_SECONDS", int(cfg.AnalyticsCacheTTL.Seconds()))) * time.Second
	cfg.SnapshotCron = envOrDefault("SNAPSHOT_CRON", cfg.SnapshotCron)
	cfg.ExportDir = envOrDefault("EXPORT_DIR", cfg.ExportDir)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with
func (c Config) Validate() error {
	var errs []error
	switch c.DatasetSource {
	case SourceCSV:
		if c.OrdersCSV == "" || c.ProductsCSV == "" {
			errs = append(errs, errors.New("config: csv dataset needs ORDERS_CSV and PRODUCTS_CSV"))
		}
	case SourcePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("config: postgres dataset needs DATABASE_URL"))
		}
	default:
		errs = append(errs, fmt.Errorf("config: unknown dataset source %q", c.DatasetSource))
	}
	if c.TopProducts <= 0 {
		errs = append(errs, fmt.Errorf("config: top products must be positive, got %d", c.TopProducts))
	}
	if c.AnalyticsCacheTTL < 0 {
		errs = append(errs, errors.New("config: analytics cache ttl must not be negative"))
	}
	if c.StoreModel.LearningRate <= 0 || c.StoreModel.LearningRate > 1 {
		errs = append(errs, fmt.Errorf("config: store learning rate %v out of (0, 1]", c.StoreModel.LearningRate))
	}
	return errors.Join(errs...)
}

func readFile(path string) (configFile, error) {
	var f configFile

	info, err := os.Stat(path)
	if err != nil {
		return f, fmt.Errorf("config: failed to access %s: %w", path, err)
	}
	if info.IsDir() {
		return f, fmt.Errorf("config: %s is a directory, not a file", path)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return f, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(raw, &f)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &f)
	case ".json":
		err = json.Unmarshal(raw, &f)
	default:
		return f, fmt.Errorf("config: unsupported file format %q", ext)
	}
	if err != nil {
		return f, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	return f, nil
}

func (c *Config) apply(f configFile) {
	setString(&c.Port, f.Server.Port)
	setString(&c.Env, f.Server.Env)
	setString(&c.DatabaseURL, f.Dependencies.DatabaseURL)
	setString(&c.RedisURL, f.Dependencies.RedisURL)
	setString(&c.DatasetSource, f.Dataset.Source)
	setString(&c.OrdersCSV, f.Dataset.OrdersCSV)
	setString(&c.ProductsCSV, f.Dataset.ProductsCSV)
	setString(&c.SnapshotCron, f.Snapshot.Cron)
	setString(&c.ExportDir, f.Snapshot.ExportDir)
	if f.Analytics.TopProducts > 0 {
		c.TopProducts = f.Analytics.TopProducts
	}
	if f.Analytics.CacheTTLSeconds > 0 {
		c.AnalyticsCacheTTL = time.Duration(f.Analytics.CacheTTLSeconds) * time.Second
	}

	store := f.Forecast.Store
	if store.Estimators > 0 {
		c.StoreModel.Estimators = store.Estimators
	}
	if store.LearningRate > 0 {
		c.StoreModel.LearningRate = store.LearningRate
	}
	if store.Subsample > 0 {
		c.StoreModel.Subsample = store.Subsample
	}
	if store.Seed != nil {
		c.StoreModel.Seed = *store.Seed
	}
	store.applyTree(&c.StoreModel.Tree)

	groups := f.Forecast.Groups
	if groups.Trees > 0 {
		c.GroupModel.Trees = groups.Trees
	}
	if groups.Bootstrap != nil {
		c.GroupModel.Bootstrap = *groups.Bootstrap
	}
	if groups.Seed != nil {
		c.GroupModel.Seed = *groups.Seed
	}
	groups.applyTree(&c.GroupModel.Tree)
}

func (m modelFile) applyTree(t *forecast.TreeConfig) {
	if m.MaxDepth > 0 {
		t.MaxDepth = m.MaxDepth
	}
	if m.MinSamplesSplit > 0 {
		t.MinSamplesSplit = m.MinSamplesSplit
	}
	if m.MinSamplesLeaf > 0 {
		t.MinSamplesLeaf = m.MinSamplesLeaf
	}
	if m.MaxFeatures > 0 {
		t.MaxFeatures = m.MaxFeatures
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// envOrDefault returns an env var when present, otherwise the fallback
func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

// envInt parses integer env vars, keeping the fallback on empty or invalid values
func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
