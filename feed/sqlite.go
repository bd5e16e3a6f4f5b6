package feed

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rushteam/homerec/core"
)

// SQLiteFeed 从 SQLite 的 properties 表读取房源，按 position 排序（即 Feed 顺序）。
type SQLiteFeed struct {
	db *sql.DB
}

// OpenSQLite 打开（必要时创建）数据库并确保表结构存在。
func OpenSQLite(path string) (*SQLiteFeed, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	f := &SQLiteFeed{db: db}
	if err := f.EnsureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return f, nil
}

func (f *SQLiteFeed) Close() error { return f.db.Close() }

func (f *SQLiteFeed) Name() string { return "sqlite" }

func (f *SQLiteFeed) EnsureSchema() error {
	const createTable = `
CREATE TABLE IF NOT EXISTS properties (
  id TEXT PRIMARY KEY,
  position INTEGER NOT NULL,
  address TEXT NOT NULL DEFAULT '',
  city TEXT NOT NULL DEFAULT '',
  state TEXT NOT NULL DEFAULT '',
  zip_code INTEGER NOT NULL DEFAULT 0,
  bedrooms INTEGER NOT NULL,
  bathrooms INTEGER NOT NULL,
  square_feet INTEGER NOT NULL,
  year_built INTEGER NOT NULL,
  lot_size INTEGER NOT NULL DEFAULT 0,
  property_type TEXT NOT NULL DEFAULT 'House',
  school_rating REAL NOT NULL DEFAULT 0,
  commute_time INTEGER NOT NULL DEFAULT 0,
  has_pool INTEGER NOT NULL DEFAULT 0,
  has_garage INTEGER NOT NULL DEFAULT 0,
  has_garden INTEGER NOT NULL DEFAULT 0,
  image_url TEXT NOT NULL DEFAULT ''
);
`
	if _, err := f.db.Exec(createTable); err != nil {
		return err
	}
	if _, err := f.db.Exec(`CREATE INDEX IF NOT EXISTS idx_properties_position ON properties(position);`); err != nil {
		return err
	}
	return nil
}

func (f *SQLiteFeed) CountProperties(ctx context.Context) (int, error) {
	var n int
	err := f.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM properties`).Scan(&n)
	return n, err
}

// UpsertMany 追加写入房源，已存在的 ID 不重复写入。
func (f *SQLiteFeed) UpsertMany(ctx context.Context, props []core.Property) error {
	tx, err := f.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var next int
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(position), -1) + 1 FROM properties`).Scan(&next); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT OR IGNORE INTO properties
(id, position, address, city, state, zip_code, bedrooms, bathrooms, square_feet, year_built,
 lot_size, property_type, school_rating, commute_time, has_pool, has_garage, has_garden, image_url)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, p := range props {
		if _, err := stmt.ExecContext(ctx,
			p.ID, next+i, p.Street, p.City, p.State, p.ZipCode, p.Bedrooms, p.Bathrooms, p.SquareFeet, p.YearBuilt,
			p.LotSize, p.PropertyType, p.SchoolRating, p.CommuteTime, p.HasPool, p.HasGarage, p.HasGarden, p.ImageURL,
		); err != nil {
			return fmt.Errorf("insert property %s: %w", p.ID, err)
		}
	}
	return tx.Commit()
}

func (f *SQLiteFeed) Properties(ctx context.Context) ([]core.Property, error) {
	rows, err := f.db.QueryContext(ctx, `
SELECT id, address, city, state, zip_code, bedrooms, bathrooms, square_feet, year_built,
       lot_size, property_type, school_rating, commute_time, has_pool, has_garage, has_garden, image_url
FROM properties
ORDER BY position, id
`)
	if err != nil {
		return nil, unavailable(f.Name(), err)
	}
	defer rows.Close()

	out := make([]core.Property, 0)
	for rows.Next() {
		var p core.Property
		if err := rows.Scan(
			&p.ID, &p.Street, &p.City, &p.State, &p.ZipCode, &p.Bedrooms, &p.Bathrooms, &p.SquareFeet, &p.YearBuilt,
			&p.LotSize, &p.PropertyType, &p.SchoolRating, &p.CommuteTime, &p.HasPool, &p.HasGarage, &p.HasGarden, &p.ImageURL,
		); err != nil {
			return nil, unavailable(f.Name(), err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable(f.Name(), err)
	}
	return out, nil
}
