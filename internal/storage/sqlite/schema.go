package sqlite

import "fmt"

// schemaSQL creates the two core tables: the URL queue and the product
// table. Column names follow URLRecord/ProductRecord in internal/models
// exactly.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS url_queue (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	url               TEXT NOT NULL,
	product_type_id   TEXT NOT NULL DEFAULT '',
	processing_status TEXT NOT NULL DEFAULT 'pending',
	retry_count       INTEGER NOT NULL DEFAULT 0,
	claimed_by        TEXT,
	claimed_at        INTEGER,
	processed_at      INTEGER,
	updated_at        INTEGER NOT NULL,
	success           INTEGER,
	products_found    INTEGER NOT NULL DEFAULT 0,
	products_saved    INTEGER NOT NULL DEFAULT 0,
	error_message     TEXT NOT NULL DEFAULT '',
	last_strategy     TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_url_queue_status_id ON url_queue(processing_status, id);
CREATE INDEX IF NOT EXISTS idx_url_queue_claimed_at ON url_queue(claimed_at) WHERE claimed_by IS NOT NULL;

CREATE TABLE IF NOT EXISTS products (
	id                   INTEGER PRIMARY KEY AUTOINCREMENT,
	platform_url         TEXT NOT NULL DEFAULT '',
	product_name         TEXT NOT NULL,
	product_url          TEXT NOT NULL,
	original_price       TEXT NOT NULL DEFAULT '',
	current_price        REAL,
	product_image_url    TEXT NOT NULL DEFAULT '',
	description          TEXT NOT NULL DEFAULT '',
	rating               REAL,
	reviews              INTEGER,
	in_stock             INTEGER,
	brand                TEXT NOT NULL DEFAULT '',
	product_type_id      TEXT NOT NULL DEFAULT '',
	searched_product_id  TEXT NOT NULL DEFAULT '',
	created_at           INTEGER NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_products_url ON products(product_url);
`

// InitSchema creates the tables if they do not already exist.
func (d *DB) InitSchema() error {
	if _, err := d.conn.Exec(schemaSQL); err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}
