package postgres

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/storage"
)

// Минимальная схема Odoo: только колонки, которые читает запрос.
var odooSchema = []string{
	`CREATE TABLE res_partner (id serial PRIMARY KEY, name varchar NOT NULL)`,
	`CREATE TABLE res_users (id serial PRIMARY KEY, login varchar NOT NULL)`,
	`CREATE TABLE product_category (id serial PRIMARY KEY, name varchar NOT NULL)`,
	`CREATE TABLE product_template (id serial PRIMARY KEY, name jsonb NOT NULL, categ_id int REFERENCES product_category(id))`,
	`CREATE TABLE product_product (id serial PRIMARY KEY, product_tmpl_id int NOT NULL REFERENCES product_template(id))`,
	`CREATE TABLE sale_order (id serial PRIMARY KEY, name varchar NOT NULL, date_order timestamp NOT NULL, state varchar NOT NULL,
		partner_id int NOT NULL REFERENCES res_partner(id), user_id int REFERENCES res_users(id))`,
	`CREATE TABLE sale_order_line (id serial PRIMARY KEY, order_id int NOT NULL REFERENCES sale_order(id),
		product_id int NOT NULL REFERENCES product_product(id), product_uom_qty numeric NOT NULL, price_total numeric NOT NULL)`,
}

var odooFixture = []string{
	`INSERT INTO res_partner (id, name) VALUES (1, 'Azure Interior'), (2, 'Deco Addict')`,
	`INSERT INTO res_users (id, login) VALUES (1, 'admin')`,
	`INSERT INTO product_category (id, name) VALUES (1, 'Furniture')`,
	`INSERT INTO product_template (id, name, categ_id) VALUES (1, '{"en_US": "Office Chair"}', 1), (2, '{"en_US": "Gift Card"}', NULL)`,
	`INSERT INTO product_product (id, product_tmpl_id) VALUES (1, 1), (2, 2)`,
	`INSERT INTO sale_order (id, name, date_order, state, partner_id, user_id) VALUES
		(1, 'S00001', '2024-03-01 10:15:00', 'sale', 1, 1),
		(2, 'S00002', '2024-03-02 23:59:00', 'draft', 2, NULL),
		(3, 'S00003', '2024-03-03 08:00:00', 'cancel', 2, 1)`,
	`INSERT INTO sale_order_line (order_id, product_id, product_uom_qty, price_total) VALUES
		(1, 1, 2, 250.50),
		(1, 2, 1, 100),
		(2, 1, 1.5, 125.25),
		(3, 2, 1, 0)`,
}

func startPostgres(t *testing.T) config.DB {
	t.Helper()

	if testing.Short() {
		t.Skip("integration test, requires Docker")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_DB":       "odoo",
				"POSTGRES_USER":     "odoo",
				"POSTGRES_PASSWORD": "odoo",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)
	portNum, err := strconv.Atoi(port.Port())
	require.NoError(t, err)

	return config.DB{
		Driver:   "postgres",
		Host:     host,
		Port:     portNum,
		User:     "odoo",
		Password: "odoo",
		Name:     "odoo",
		SSLMode:  "disable",
	}
}

func seed(t *testing.T, cfg config.DB, stmts ...[]string) {
	t.Helper()

	ctx := context.Background()
	s, err := New(ctx, cfg)
	require.NoError(t, err)
	defer s.Close()

	// пул открыт в read-only, для наполнения схемы нужна отдельная запись
	conn, err := s.pool.Acquire(ctx)
	require.NoError(t, err)
	defer conn.Release()

	_, err = conn.Exec(ctx, "SET SESSION CHARACTERISTICS AS TRANSACTION READ WRITE")
	require.NoError(t, err)
	for _, group := range stmts {
		for _, stmt := range group {
			_, err := conn.Exec(ctx, stmt)
			require.NoError(t, err, stmt)
		}
	}
}

func TestLoadFacts(t *testing.T) {
	cfg := startPostgres(t)
	seed(t, cfg, odooSchema, odooFixture)

	ctx := context.Background()
	s, err := New(ctx, cfg)
	require.NoError(t, err)
	defer s.Close()

	facts, err := s.LoadFacts(ctx)
	require.NoError(t, err)
	require.Len(t, facts, 4)

	byTotal := map[string]storage.OrderLineFact{}
	for _, f := range facts {
		byTotal[f.LineTotal.String()] = f
	}

	chair := byTotal["250.5"]
	assert.Equal(t, "S00001", chair.OrderNumber)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), chair.OrderDate)
	assert.Equal(t, storage.StateSale, chair.State)
	assert.Equal(t, "Office Chair", chair.Product)
	require.NotNil(t, chair.Category)
	assert.Equal(t, "Furniture", *chair.Category)
	require.NotNil(t, chair.Salesperson)
	assert.Equal(t, "admin", *chair.Salesperson)
	assert.Equal(t, "2", chair.Quantity.String())

	draft := byTotal["125.25"]
	assert.Equal(t, storage.StateDraft, draft.State)
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), draft.OrderDate)
	assert.Nil(t, draft.Salesperson)
	assert.Equal(t, "1.5", draft.Quantity.String())

	gift := byTotal["100"]
	assert.Nil(t, gift.Category)
	assert.Equal(t, "Gift Card", gift.Product)
}

func TestLoadFacts_IsReadOnly(t *testing.T) {
	cfg := startPostgres(t)
	seed(t, cfg, odooSchema)

	ctx := context.Background()
	s, err := New(ctx, cfg)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.pool.Exec(ctx, `INSERT INTO res_partner (name) VALUES ('Intruder')`)
	assert.Error(t, err)
}

func TestNew_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := New(ctx, config.DB{Host: "127.0.0.1", Port: 1, User: "x", Name: "x"})
	assert.Error(t, err)
}

func TestConnString_Escapes(t *testing.T) {
	got := connString(config.DB{Host: "db", Port: 5432, User: "read only", Password: "p@ss/word", Name: "aus_live"})
	assert.Equal(t, "postgresql://read+only:p%40ss%2Fword@db:5432/aus_live?sslmode=disable", got)
}
