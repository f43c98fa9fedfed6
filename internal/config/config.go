package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port    string `yaml:"port"`
	DBDSN   string `yaml:"db_dsn"`
	LogFile string `yaml:"log_file"`

	// CartBackend selects where the cart slot lives: sqlite, redis or memory.
	CartBackend       string        `yaml:"cart_backend"`
	RedisURL          string        `yaml:"redis_url"`
	CartKey           string        `yaml:"cart_key"`
	CartWriteDebounce time.Duration `yaml:"cart_write_debounce"`
	CartWriteTimeout  time.Duration `yaml:"cart_write_timeout"`

	CategoriesURL  string        `yaml:"catalog_categories_url"`
	ItemsURL       string        `yaml:"catalog_items_url"`
	CatalogTimeout time.Duration `yaml:"catalog_timeout"`
	CatalogTTL     time.Duration `yaml:"catalog_ttl"`

	DeliveryFee float64 `yaml:"delivery_fee"`
	Discount    float64 `yaml:"discount"`
}

func Defaults() Config {
	return Config{
		Port:             "8080",
		DBDSN:            "coffeeshop.db", // sqlite file in project root
		LogFile:          "./coffeeshop.log",
		CartBackend:      "sqlite",
		CartKey:          "coffee_cart",
		CartWriteTimeout: 2 * time.Second,
		CategoriesURL:    "https://thenextcoders.com/coffee/categories.json",
		ItemsURL:         "https://thenextcoders.com/coffee/coffee_items.json",
		CatalogTimeout:   5 * time.Second,
		CatalogTTL:       5 * time.Minute,
		DeliveryFee:      1.0,
		Discount:         1.0,
	}
}

// Load layers defaults, the optional YAML file named by COFFEESHOP_CONFIG,
// and environment variables, in that order.
func Load() Config {
	cfg := Defaults()
	if path := os.Getenv("COFFEESHOP_CONFIG"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			log.Printf("[warn] could not read config file %s: %v", path, err)
		}
	}
	cfg.mergeEnv()
	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s CART_BACKEND=%s CART_KEY=%s CATALOG_ITEMS_URL=%s",
		cfg.Port, cfg.DBDSN, cfg.LogFile, cfg.CartBackend, cfg.CartKey, cfg.ItemsURL)
	return cfg
}

func (c *Config) mergeFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, c)
}

func (c *Config) mergeEnv() {
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v := os.Getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				log.Printf("[warn] ignoring %s=%q: %v", key, v, err)
				return
			}
			*dst = d
		}
	}
	num := func(key string, dst *float64) {
		if v := os.Getenv(key); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil || f < 0 {
				log.Printf("[warn] ignoring %s=%q", key, v)
				return
			}
			*dst = f
		}
	}

	str("PORT", &c.Port)
	str("DB_DSN", &c.DBDSN)
	str("LOG_FILE", &c.LogFile)
	str("CART_BACKEND", &c.CartBackend)
	str("REDIS_URL", &c.RedisURL)
	str("CART_KEY", &c.CartKey)
	dur("CART_WRITE_DEBOUNCE", &c.CartWriteDebounce)
	dur("CART_WRITE_TIMEOUT", &c.CartWriteTimeout)
	str("CATALOG_CATEGORIES_URL", &c.CategoriesURL)
	str("CATALOG_ITEMS_URL", &c.ItemsURL)
	dur("CATALOG_TIMEOUT", &c.CatalogTimeout)
	dur("CATALOG_TTL", &c.CatalogTTL)
	num("DELIVERY_FEE", &c.DeliveryFee)
	num("DISCOUNT", &c.Discount)
}
