package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"stockbook/internal/domain"
	"stockbook/internal/store"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(4)
	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{db: db}
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// ensureSchema creates the ledger tables if they do not exist. The DDL is
// idempotent; there is no migration framework beyond it.
func (s *Store) ensureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS products (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			quantity INT NOT NULL CHECK (quantity >= 0),
			cost_cents BIGINT NOT NULL CHECK (cost_cents >= 0),
			has_arrived BOOLEAN NOT NULL DEFAULT false,
			date_added TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS sales (
			id BIGSERIAL PRIMARY KEY,
			product_id BIGINT NOT NULL REFERENCES products(id),
			quantity INT NOT NULL CHECK (quantity > 0),
			sale_price_cents BIGINT NOT NULL CHECK (sale_price_cents >= 0),
			date_sold TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_sales_date_sold ON sales(date_sold)
	`)
	return err
}

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.Name == "" || product.Quantity < 0 || product.CostCents < 0 {
		return nil, store.ErrInvalidInput
	}

	created := product
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO products (name, quantity, cost_cents, has_arrived)
		VALUES ($1,$2,$3,$4)
		RETURNING id, date_added
	`, product.Name, product.Quantity, product.CostCents, product.HasArrived).Scan(&created.ID, &created.DateAdded)
	if err != nil {
		return nil, err
	}
	created.DateAdded = created.DateAdded.UTC()

	return &created, nil
}

func (s *Store) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, quantity, cost_cents, has_arrived, date_added
		FROM products
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.Quantity, &p.CostCents, &p.HasArrived, &p.DateAdded)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	p.DateAdded = p.DateAdded.UTC()
	return &p, nil
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.queryProducts(ctx, `
		SELECT id, name, quantity, cost_cents, has_arrived, date_added
		FROM products
		WHERE quantity > 0
		ORDER BY date_added DESC, id DESC
	`)
}

func (s *Store) ListSellableProducts(ctx context.Context) ([]domain.Product, error) {
	return s.queryProducts(ctx, `
		SELECT id, name, quantity, cost_cents, has_arrived, date_added
		FROM products
		WHERE quantity > 0 AND has_arrived
		ORDER BY date_added DESC, id DESC
	`)
}

func (s *Store) queryProducts(ctx context.Context, query string) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 64)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Quantity, &p.CostCents, &p.HasArrived, &p.DateAdded); err != nil {
			return nil, err
		}
		p.DateAdded = p.DateAdded.UTC()
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}

func (s *Store) ToggleArrived(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := s.db.QueryRowContext(ctx, `
		UPDATE products
		SET has_arrived = NOT has_arrived
		WHERE id = $1
		RETURNING id, name, quantity, cost_cents, has_arrived, date_added
	`, id).Scan(&p.ID, &p.Name, &p.Quantity, &p.CostCents, &p.HasArrived, &p.DateAdded)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	p.DateAdded = p.DateAdded.UTC()
	return &p, nil
}

// CreateSale records the sale and decrements the product's stock in one
// transaction. The stock check runs against a locked row, so two rapid
// submissions cannot both pass validation against the same units.
func (s *Store) CreateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error) {
	if sale.ProductID < 1 || sale.Quantity < 1 || sale.SalePriceCents < 0 {
		return nil, store.ErrInvalidInput
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var currentStock int
	err = tx.QueryRowContext(ctx, `
		SELECT quantity
		FROM products
		WHERE id = $1
		FOR UPDATE
	`, sale.ProductID).Scan(&currentStock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	if currentStock < sale.Quantity {
		return nil, store.ErrInsufficientStock
	}

	created := sale
	if sale.DateSold.IsZero() {
		err = tx.QueryRowContext(ctx, `
			INSERT INTO sales (product_id, quantity, sale_price_cents)
			VALUES ($1,$2,$3)
			RETURNING id, date_sold
		`, sale.ProductID, sale.Quantity, sale.SalePriceCents).Scan(&created.ID, &created.DateSold)
	} else {
		err = tx.QueryRowContext(ctx, `
			INSERT INTO sales (product_id, quantity, sale_price_cents, date_sold)
			VALUES ($1,$2,$3,$4)
			RETURNING id, date_sold
		`, sale.ProductID, sale.Quantity, sale.SalePriceCents, sale.DateSold).Scan(&created.ID, &created.DateSold)
	}
	if err != nil {
		return nil, err
	}
	created.DateSold = created.DateSold.UTC()

	_, err = tx.ExecContext(ctx, `
		UPDATE products
		SET quantity = quantity - $1
		WHERE id = $2
	`, sale.Quantity, sale.ProductID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *Store) ListSales(ctx context.Context) ([]domain.SaleRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.product_id, s.quantity, s.sale_price_cents, s.date_sold,
			p.name, p.cost_cents
		FROM sales s
		JOIN products p ON p.id = s.product_id
		ORDER BY s.date_sold DESC, s.id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.SaleRecord, 0, 128)
	for rows.Next() {
		var rec domain.SaleRecord
		if err := rows.Scan(&rec.ID, &rec.ProductID, &rec.Quantity, &rec.SalePriceCents, &rec.DateSold, &rec.ProductName, &rec.ProductCostCents); err != nil {
			return nil, err
		}
		rec.DateSold = rec.DateSold.UTC()
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Store) SumSales(ctx context.Context) (domain.SalesSums, error) {
	var sums domain.SalesSums
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(s.quantity * s.sale_price_cents),0)::bigint,
			COALESCE(SUM(s.quantity * p.cost_cents),0)::bigint
		FROM sales s
		JOIN products p ON p.id = s.product_id
	`).Scan(&sums.RevenueCents, &sums.CostCents)
	if err != nil {
		return domain.SalesSums{}, err
	}
	return sums, nil
}

func (s *Store) SumSalesByDay(ctx context.Context, from time.Time) ([]domain.DailySalesSums, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			(s.date_sold AT TIME ZONE 'UTC')::date,
			COALESCE(SUM(s.quantity * s.sale_price_cents),0)::bigint,
			COALESCE(SUM(s.quantity * p.cost_cents),0)::bigint
		FROM sales s
		JOIN products p ON p.id = s.product_id
		WHERE s.date_sold >= $1
		GROUP BY 1
		ORDER BY 1
	`, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	days := make([]domain.DailySalesSums, 0, 31)
	for rows.Next() {
		var day time.Time
		var entry domain.DailySalesSums
		if err := rows.Scan(&day, &entry.RevenueCents, &entry.CostCents); err != nil {
			return nil, err
		}
		entry.Date = day.Format("2006-01-02")
		days = append(days, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return days, nil
}

func (s *Store) SumSalesByProduct(ctx context.Context) ([]domain.ProductSalesSums, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.name,
			COALESCE(SUM(s.quantity * s.sale_price_cents),0)::bigint,
			COALESCE(SUM(s.quantity * p.cost_cents),0)::bigint
		FROM sales s
		JOIN products p ON p.id = s.product_id
		GROUP BY p.id, p.name
		ORDER BY p.id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sums := make([]domain.ProductSalesSums, 0, 32)
	for rows.Next() {
		var entry domain.ProductSalesSums
		if err := rows.Scan(&entry.ProductID, &entry.ProductName, &entry.RevenueCents, &entry.CostCents); err != nil {
			return nil, err
		}
		sums = append(sums, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sums, nil
}
