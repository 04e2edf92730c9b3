package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/storage"
)

// Реплика таблиц Odoo в MySQL: name у product_template лежит в JSON-колонке.
const salesFactsQuery = `
	SELECT
		so.id AS order_id,
		so.name AS order_number,
		DATE(so.date_order) AS order_date,
		so.state,
		rp.name AS customer,
		ru.login AS salesperson,
		CAST(sol.product_uom_qty AS CHAR) AS quantity,
		CAST(sol.price_total AS CHAR) AS line_total,
		COALESCE(JSON_UNQUOTE(JSON_EXTRACT(pt.name, '$.en_US')), '') AS product,
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
	db *sql.DB
}

func dsn(cfg config.DB) string {
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = cfg.Host + ":" + strconv.Itoa(cfg.Port)
	mc.DBName = cfg.Name
	mc.ParseTime = true
	mc.Loc = time.UTC

	return mc.FormatDSN()
}

func New(ctx context.Context, cfg config.DB) (*Storage, error) {
	const op = "storage.mysql.New"

	db, err := sql.Open("mysql", dsn(cfg))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(int(cfg.MaxConns))
	}
	db.SetConnMaxIdleTime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: ping: %w", op, err)
	}

	return &Storage{db: db}, nil
}

func (s *Storage) Query() string {
	return salesFactsQuery
}

func (s *Storage) LoadFacts(ctx context.Context) ([]storage.OrderLineFact, error) {
	const op = "storage.mysql.LoadFacts"

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка открытия транзакции %w", op, err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, salesFactsQuery)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка получения строк заказов %w", op, err)
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

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: ошибка сканирования строк %w", op, err)
	}

	return facts, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}
