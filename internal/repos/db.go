package repos

import (
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Key-value slots (persisted cart lives under one key)
CREATE TABLE IF NOT EXISTS kv_slots(
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at TEXT
);

-- Orders placed through checkout (payment is mocked)
CREATE TABLE IF NOT EXISTS orders(
  id TEXT PRIMARY KEY,
  delivery_method TEXT NOT NULL CHECK (delivery_method IN ('deliver','pickup')),
  address TEXT,
  note TEXT,
  subtotal NUMERIC NOT NULL,
  delivery_fee NUMERIC NOT NULL,
  discount NUMERIC NOT NULL,
  total NUMERIC NOT NULL CHECK (total >= 0),
  status TEXT NOT NULL DEFAULT 'PLACED',
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at);

CREATE TABLE IF NOT EXISTS order_items(
  order_id   TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  line_no    INTEGER NOT NULL,
  product_id TEXT NOT NULL,
  title      TEXT NOT NULL,
  image      TEXT,
  size       TEXT NOT NULL,
  qty        INTEGER NOT NULL CHECK (qty >= 1),
  price      NUMERIC NOT NULL,
  PRIMARY KEY (order_id, line_no)
);
`
	_, err := db.Exec(schema)
	return err
}
