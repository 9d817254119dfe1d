// Package sqlite is a SQLite-backed Repository. Line items live in a JSON
// column and are decoded application-side, keeping the analytics modules
// independent of how the store represents nested data.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"pos-analytics/internal/models"
	"pos-analytics/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS products (
	id         TEXT PRIMARY KEY,
	company_id TEXT NOT NULL,
	name       TEXT NOT NULL,
	category   TEXT NOT NULL DEFAULT '',
	price      REAL NOT NULL DEFAULT 0,
	cost       REAL NOT NULL DEFAULT 0,
	stock      INTEGER NOT NULL DEFAULT 0,
	active     INTEGER NOT NULL DEFAULT 1
);
CREATE INDEX IF NOT EXISTS idx_products_company ON products(company_id);

CREATE TABLE IF NOT EXISTS customers (
	id          TEXT PRIMARY KEY,
	company_id  TEXT NOT NULL,
	name        TEXT NOT NULL,
	total_spent REAL NOT NULL DEFAULT 0,
	visit_count INTEGER NOT NULL DEFAULT 0,
	last_visit  INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_customers_company ON customers(company_id);

CREATE TABLE IF NOT EXISTS transactions (
	id          TEXT PRIMARY KEY,
	company_id  TEXT NOT NULL,
	customer_id TEXT NOT NULL DEFAULT '',
	ts          INTEGER NOT NULL,
	status      TEXT NOT NULL,
	items       TEXT NOT NULL DEFAULT '[]',
	subtotal    REAL NOT NULL DEFAULT 0,
	tax         REAL NOT NULL DEFAULT 0,
	discount    REAL NOT NULL DEFAULT 0,
	total       REAL NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_transactions_company_ts ON transactions(company_id, ts);
CREATE INDEX IF NOT EXISTS idx_transactions_customer ON transactions(company_id, customer_id);
`

type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// InsertTransaction stores a transaction, assigning an id when absent.
func (s *Store) InsertTransaction(ctx context.Context, tx models.Transaction) (models.Transaction, error) {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	items, err := json.Marshal(tx.Items)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("encode items: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO transactions (id, company_id, customer_id, ts, status, items, subtotal, tax, discount, total)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.CompanyID, tx.CustomerID, tx.Timestamp.UTC().UnixMilli(), string(tx.Status),
		string(items), tx.Subtotal, tx.Tax, tx.Discount, tx.Total)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	return tx, nil
}

// InsertProduct stores a product, assigning an id when absent.
func (s *Store) InsertProduct(ctx context.Context, p models.Product) (models.Product, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, company_id, name, category, price, cost, stock, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.CompanyID, p.Name, p.Category, p.Price, p.Cost, p.Stock, boolToInt(p.Active))
	if err != nil {
		return models.Product{}, fmt.Errorf("insert product: %w", err)
	}
	return p, nil
}

// InsertCustomer stores a customer, assigning an id when absent.
func (s *Store) InsertCustomer(ctx context.Context, c models.Customer) (models.Customer, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO customers (id, company_id, name, total_spent, visit_count, last_visit)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.CompanyID, c.Name, c.TotalSpent, c.VisitCount, c.LastVisit.UTC().UnixMilli())
	if err != nil {
		return models.Customer{}, fmt.Errorf("insert customer: %w", err)
	}
	return c, nil
}

func (s *Store) DailyRevenue(ctx context.Context, companyID string, from, to time.Time) ([]models.TimeSeriesPoint, error) {
	if companyID == "" {
		return nil, store.ErrInvalidCompany
	}
	query := `
		SELECT date(ts/1000, 'unixepoch') AS day, SUM(total)
		FROM transactions
		WHERE company_id = ? AND status = ?` + windowClause(from, to) + `
		GROUP BY day
		ORDER BY day ASC`
	rows, err := s.db.QueryContext(ctx, query, windowArgs(companyID, from, to)...)
	if err != nil {
		return nil, fmt.Errorf("query daily revenue: %w", err)
	}
	defer rows.Close()

	var series []models.TimeSeriesPoint
	for rows.Next() {
		var day string
		var value float64
		if err := rows.Scan(&day, &value); err != nil {
			return nil, fmt.Errorf("scan daily revenue: %w", err)
		}
		date, err := time.Parse("2006-01-02", day)
		if err != nil {
			return nil, fmt.Errorf("parse day %q: %w", day, err)
		}
		series = append(series, models.TimeSeriesPoint{Date: date, Value: value})
	}
	return series, rows.Err()
}

func (s *Store) DailyUnits(ctx context.Context, companyID, productID string, from, to time.Time) ([]models.TimeSeriesPoint, error) {
	// Item payloads are opaque JSON to SQLite; fetch the raw rows and
	// aggregate after decoding.
	txs, err := s.TransactionsSince(ctx, companyID, from)
	if err != nil {
		return nil, err
	}

	buckets := make(map[string]float64)
	for _, tx := range txs {
		if !to.IsZero() && tx.Timestamp.After(to) {
			continue
		}
		for _, item := range tx.Items {
			if item.ProductID == productID {
				buckets[tx.Timestamp.UTC().Format("2006-01-02")] += float64(item.Quantity)
			}
		}
	}

	days := make([]string, 0, len(buckets))
	for day := range buckets {
		days = append(days, day)
	}
	// Lexicographic order matches chronological order for this format.
	slices.Sort(days)

	series := make([]models.TimeSeriesPoint, 0, len(days))
	for _, day := range days {
		date, err := time.Parse("2006-01-02", day)
		if err != nil {
			return nil, fmt.Errorf("parse day %q: %w", day, err)
		}
		series = append(series, models.TimeSeriesPoint{Date: date, Value: buckets[day]})
	}
	return series, nil
}

func (s *Store) TransactionsSince(ctx context.Context, companyID string, from time.Time) ([]models.Transaction, error) {
	if companyID == "" {
		return nil, store.ErrInvalidCompany
	}
	query := `
		SELECT id, company_id, customer_id, ts, status, items, subtotal, tax, discount, total
		FROM transactions
		WHERE company_id = ? AND status = ?`
	args := []any{companyID, string(models.StatusCompleted)}
	if !from.IsZero() {
		query += ` AND ts >= ?`
		args = append(args, from.UTC().UnixMilli())
	}
	query += ` ORDER BY ts ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

func (s *Store) CustomerTransactions(ctx context.Context, companyID, customerID string) ([]models.Transaction, error) {
	if companyID == "" {
		return nil, store.ErrInvalidCompany
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, company_id, customer_id, ts, status, items, subtotal, tax, discount, total
		FROM transactions
		WHERE company_id = ? AND customer_id = ? AND status = ?
		ORDER BY ts ASC`,
		companyID, customerID, string(models.StatusCompleted))
	if err != nil {
		return nil, fmt.Errorf("query customer transactions: %w", err)
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

func (s *Store) Products(ctx context.Context, companyID string) ([]models.Product, error) {
	if companyID == "" {
		return nil, store.ErrInvalidCompany
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, company_id, name, category, price, cost, stock, active
		FROM products
		WHERE company_id = ? AND active = 1
		ORDER BY name ASC`, companyID)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		var active int
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.Name, &p.Category, &p.Price, &p.Cost, &p.Stock, &active); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		p.Active = active != 0
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *Store) Product(ctx context.Context, companyID, productID string) (models.Product, error) {
	if companyID == "" {
		return models.Product{}, store.ErrInvalidCompany
	}
	var p models.Product
	var active int
	err := s.db.QueryRowContext(ctx, `
		SELECT id, company_id, name, category, price, cost, stock, active
		FROM products
		WHERE company_id = ? AND id = ?`, companyID, productID).
		Scan(&p.ID, &p.CompanyID, &p.Name, &p.Category, &p.Price, &p.Cost, &p.Stock, &active)
	if err == sql.ErrNoRows {
		return models.Product{}, store.ErrNotFound
	}
	if err != nil {
		return models.Product{}, fmt.Errorf("query product: %w", err)
	}
	p.Active = active != 0
	return p, nil
}

func (s *Store) Customers(ctx context.Context, companyID string) ([]models.Customer, error) {
	if companyID == "" {
		return nil, store.ErrInvalidCompany
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, company_id, name, total_spent, visit_count, last_visit
		FROM customers
		WHERE company_id = ?
		ORDER BY name ASC`, companyID)
	if err != nil {
		return nil, fmt.Errorf("query customers: %w", err)
	}
	defer rows.Close()

	var customers []models.Customer
	for rows.Next() {
		var c models.Customer
		var lastVisit int64
		if err := rows.Scan(&c.ID, &c.CompanyID, &c.Name, &c.TotalSpent, &c.VisitCount, &lastVisit); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		c.LastVisit = time.UnixMilli(lastVisit).UTC()
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func scanTransaction(rows *sql.Rows) (models.Transaction, error) {
	var tx models.Transaction
	var ts int64
	var status, items string
	if err := rows.Scan(&tx.ID, &tx.CompanyID, &tx.CustomerID, &ts, &status, &items,
		&tx.Subtotal, &tx.Tax, &tx.Discount, &tx.Total); err != nil {
		return models.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	tx.Timestamp = time.UnixMilli(ts).UTC()
	tx.Status = models.TransactionStatus(status)
	// Malformed item payloads drop the line items but keep the totals, so
	// revenue-level aggregates under-report items instead of failing.
	if err := json.Unmarshal([]byte(items), &tx.Items); err != nil {
		tx.Items = nil
	}
	return tx, nil
}

func windowClause(from, to time.Time) string {
	clause := ""
	if !from.IsZero() {
		clause += " AND ts >= ?"
	}
	if !to.IsZero() {
		clause += " AND ts <= ?"
	}
	return clause
}

func windowArgs(companyID string, from, to time.Time) []any {
	args := []any{companyID, string(models.StatusCompleted)}
	if !from.IsZero() {
		args = append(args, from.UTC().UnixMilli())
	}
	if !to.IsZero() {
		args = append(args, to.UTC().UnixMilli())
	}
	return args
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
