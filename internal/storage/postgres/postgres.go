package postgres

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/storage"
)

// Odoo keeps product names as translatable jsonb, the dashboard reads en_US.
const salesFactsQuery = `
	SELECT
		so.id AS order_id,
		so.name AS order_number,
		so.date_order::date AS order_date,
		so.state,
		rp.name AS customer,
		ru.login AS salesperson,
		sol.product_uom_qty::text AS quantity,
		sol.price_total::text AS line_total,
		COALESCE(pt.name->>'en_US', '') AS product,
		c.name AS category
	FROM sale_order_line sol
	JOIN sale_order so ON so.id = sol.order_id
	JOIN res_partner rp ON rp.id = so.partner_id
	LEFT JOIN res_users ru ON ru.id = so.user_id
	JOIN product_product pp ON pp.id = sol.product_id
	JOIN product_template pt ON pt.id = pp.product_tmpl_id
	LEFT JOIN product_category c ON c.id = pt.categ_id
	WHERE so.state IN ('draft', 'sent', 'sale', 'done', 'cancel')`

type Storage struct {
	pool *pgxpool.Pool
}

func connString(cfg config.DB) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf(
		"postgresql://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(cfg.User),
		url.QueryEscape(cfg.Password),
		cfg.Host,
		cfg.Port,
		url.QueryEscape(cfg.Name),
		sslMode,
	)
}

func New(ctx context.Context, cfg config.DB) (*Storage, error) {
	const op = "storage.postgres.New"

	poolConfig, err := pgxpool.ParseConfig(connString(cfg))
	if err != nil {
		return nil, fmt.Errorf("%s: parse config: %w", op, err)
	}

	poolConfig.MaxConns = cfg.MaxConns
	if poolConfig.MaxConns == 0 {
		poolConfig.MaxConns = 4
	}
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.ConnConfig.RuntimeParams["default_transaction_read_only"] = "on"
	poolConfig.ConnConfig.RuntimeParams["application_name"] = "sales-dashboard"

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("%s: create pool: %w", op, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: ping: %w", op, err)
	}

	return &Storage{pool: pool}, nil
}

func (s *Storage) Query() string {
	return salesFactsQuery
}

func (s *Storage) LoadFacts(ctx context.Context) ([]storage.OrderLineFact, error) {
	const op = "storage.postgres.LoadFacts"

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("%s: begin: %w", op, err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, salesFactsQuery)
	if err != nil {
		return nil, fmt.Errorf("%s: query: %w", op, err)
	}
	defer rows.Close()

	var facts []storage.OrderLineFact
	for rows.Next() {
		fact, err := storage.ScanFact(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		facts = append(facts, fact)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}

	return facts, nil
}

func (s *Storage) Close() error {
	s.pool.Close()
	return nil
}
