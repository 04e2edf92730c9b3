package mysql

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

var replicaSchema = []string{
	`CREATE TABLE res_partner (id INT PRIMARY KEY, name VARCHAR(255) NOT NULL)`,
	`CREATE TABLE res_users (id INT PRIMARY KEY, login VARCHAR(255) NOT NULL)`,
	`CREATE TABLE product_category (id INT PRIMARY KEY, name VARCHAR(255) NOT NULL)`,
	`CREATE TABLE product_template (id INT PRIMARY KEY, name JSON NOT NULL, categ_id INT NULL)`,
	`CREATE TABLE product_product (id INT PRIMARY KEY, product_tmpl_id INT NOT NULL)`,
	`CREATE TABLE sale_order (id INT PRIMARY KEY, name VARCHAR(64) NOT NULL, date_order DATETIME NOT NULL,
		state VARCHAR(16) NOT NULL, partner_id INT NOT NULL, user_id INT NULL)`,
	`CREATE TABLE sale_order_line (id INT AUTO_INCREMENT PRIMARY KEY, order_id INT NOT NULL, product_id INT NOT NULL,
		product_uom_qty DECIMAL(16,3) NOT NULL, price_total DECIMAL(16,2) NOT NULL)`,
}

type TestOrderFixture struct {
	ID        int
	OrderNum  string
	DateOrder string
	State     string
	PartnerID int
	UserID    *int
	Lines     []TestLine
}

type TestLine struct {
	ProductID int
	Qty       string
	Total     string
}

func startMySQL(t *testing.T) *Storage {
	t.Helper()

	if testing.Short() {
		t.Skip("integration test, requires Docker")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mysql:8.0",
			ExposedPorts: []string{"3306/tcp"},
			Env: map[string]string{
				"MYSQL_ROOT_PASSWORD": "root",
				"MYSQL_DATABASE":      "odoo_replica",
			},
			WaitingFor: wait.ForListeningPort("3306/tcp").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "3306/tcp")
	require.NoError(t, err)
	portNum, err := strconv.Atoi(port.Port())
	require.NoError(t, err)

	cfg := config.DB{Driver: "mysql", Host: host, Port: portNum, User: "root", Password: "root", Name: "odoo_replica"}

	// mysqld может принимать соединения чуть позже, чем открывает порт
	var s *Storage
	require.Eventually(t, func() bool {
		s, err = New(ctx, cfg)
		return err == nil
	}, time.Minute, time.Second)
	t.Cleanup(func() { _ = s.Close() })

	for _, stmt := range replicaSchema {
		_, err := s.db.Exec(stmt)
		require.NoError(t, err, stmt)
	}

	_, err = s.db.Exec(`INSERT INTO res_partner (id, name) VALUES (1, 'Azure Interior'), (2, 'Deco Addict')`)
	require.NoError(t, err)
	_, err = s.db.Exec(`INSERT INTO res_users (id, login) VALUES (1, 'admin')`)
	require.NoError(t, err)
	_, err = s.db.Exec(`INSERT INTO product_category (id, name) VALUES (1, 'Furniture')`)
	require.NoError(t, err)
	_, err = s.db.Exec(`INSERT INTO product_template (id, name, categ_id) VALUES (1, '{"en_US": "Office Chair"}', 1), (2, '{"en_US": "Gift Card"}', NULL)`)
	require.NoError(t, err)
	_, err = s.db.Exec(`INSERT INTO product_product (id, product_tmpl_id) VALUES (1, 1), (2, 2)`)
	require.NoError(t, err)

	return s
}

func createTestOrder(t *testing.T, s *Storage, fixture TestOrderFixture) {
	t.Helper()

	_, err := s.db.Exec(
		`INSERT INTO sale_order (id, name, date_order, state, partner_id, user_id) VALUES (?, ?, ?, ?, ?, ?)`,
		fixture.ID, fixture.OrderNum, fixture.DateOrder, fixture.State, fixture.PartnerID, fixture.UserID,
	)
	require.NoError(t, err)

	for _, line := range fixture.Lines {
		_, err := s.db.Exec(
			`INSERT INTO sale_order_line (order_id, product_id, product_uom_qty, price_total) VALUES (?, ?, ?, ?)`,
			fixture.ID, line.ProductID, line.Qty, line.Total,
		)
		require.NoError(t, err)
	}
}

func intPtr(i int) *int {
	return &i
}

func TestLoadFacts(t *testing.T) {
	s := startMySQL(t)

	createTestOrder(t, s, TestOrderFixture{
		ID: 1, OrderNum: "S00001", DateOrder: "2024-03-01 10:15:00", State: "sale", PartnerID: 1, UserID: intPtr(1),
		Lines: []TestLine{{ProductID: 1, Qty: "2", Total: "250.50"}, {ProductID: 2, Qty: "1", Total: "100"}},
	})
	createTestOrder(t, s, TestOrderFixture{
		ID: 2, OrderNum: "S00002", DateOrder: "2024-03-02 23:59:00", State: "draft", PartnerID: 2,
		Lines: []TestLine{{ProductID: 1, Qty: "1.5", Total: "125.25"}},
	})

	facts, err := s.LoadFacts(context.Background())
	require.NoError(t, err)
	require.Len(t, facts, 3)

	byTotal := map[string]storage.OrderLineFact{}
	for _, f := range facts {
		byTotal[f.LineTotal.String()] = f
	}

	chair := byTotal["250.5"]
	assert.Equal(t, "S00001", chair.OrderNumber)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), chair.OrderDate)
	assert.Equal(t, "Office Chair", chair.Product)
	require.NotNil(t, chair.Salesperson)
	assert.Equal(t, "admin", *chair.Salesperson)

	draft := byTotal["125.25"]
	assert.Equal(t, storage.StateDraft, draft.State)
	assert.Nil(t, draft.Salesperson)
	assert.Equal(t, "1.5", draft.Quantity.String())

	gift := byTotal["100"]
	assert.Nil(t, gift.Category)
}

func TestLoadFacts_SkipsForeignStates(t *testing.T) {
	s := startMySQL(t)

	createTestOrder(t, s, TestOrderFixture{
		ID: 1, OrderNum: "S00001", DateOrder: "2024-03-01 10:15:00", State: "sale", PartnerID: 1,
		Lines: []TestLine{{ProductID: 1, Qty: "1", Total: "10"}},
	})
	// запрос фильтрует состояния, поэтому чужое состояние просто не попадает в выборку
	createTestOrder(t, s, TestOrderFixture{
		ID: 2, OrderNum: "S00002", DateOrder: "2024-03-01 10:15:00", State: "quotation", PartnerID: 1,
		Lines: []TestLine{{ProductID: 1, Qty: "1", Total: "10"}},
	})

	facts, err := s.LoadFacts(context.Background())
	require.NoError(t, err)
	assert.Len(t, facts, 1)
}

func TestDSN(t *testing.T) {
	got := dsn(config.DB{Host: "replica", Port: 3306, User: "reader", Password: "secret", Name: "odoo"})
	assert.Contains(t, got, "reader:secret@tcp(replica:3306)/odoo")
	assert.Contains(t, got, "parseTime=true")
}
