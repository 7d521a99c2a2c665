// Package dbtest opens migrated in-memory sqlite databases for tests.
package dbtest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Keoroanthony/farmmarket/internal/db"
	"github.com/Keoroanthony/farmmarket/internal/models"
)

// New returns a fresh database named after the test, with foreign keys
// enforced. A single connection is used so the in-memory database lives as
// long as the test does.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", name)

	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: db.NewGormLogger(zaptest.NewLogger(t), gormlogger.Warn),
	})
	if err != nil {
		t.Fatalf("failed to connect test database: %v", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("failed to get sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.Migrate(conn); err != nil {
		t.Fatalf("failed to auto-migrate models: %v", err)
	}

	t.Cleanup(func() { _ = sqlDB.Close() })
	return conn
}

// Fixture is a small marketplace: two farmers, one buyer, two products.
type Fixture struct {
	Buyer    models.User
	Farmer1  models.User
	Farmer2  models.User
	Category models.Category
	P1       models.Product
	P2       models.Product
}

// Seed inserts the fixture used by most storage tests: P1 (4.99) sold by
// Farmer1 and P2 (6.99) sold by Farmer2.
func Seed(t testing.TB, conn *gorm.DB) Fixture {
	t.Helper()

	f := Fixture{
		Buyer:    models.User{Name: "Jane Customer", Email: "jane@email.com", Address: "123 Customer St", Role: models.RoleCustomer},
		Farmer1:  models.User{Name: "John Farmer", Email: "john.farmer@email.com", Role: models.RoleFarmer, FarmName: "Green Valley Farm"},
		Farmer2:  models.User{Name: "Sarah Green", Email: "sarah.green@email.com", Role: models.RoleFarmer, FarmName: "Sunshine Organic Farm"},
		Category: models.Category{Name: "vegetables"},
	}
	mustCreate(t, conn, &f.Buyer)
	mustCreate(t, conn, &f.Farmer1)
	mustCreate(t, conn, &f.Farmer2)
	mustCreate(t, conn, &f.Category)

	f.P1 = models.Product{
		Name:       "Organic Tomatoes",
		Price:      decimal.RequireFromString("4.99"),
		ImageURL:   "https://example.com/tomatoes.jpg",
		CategoryID: f.Category.ID,
		SellerID:   &f.Farmer1.ID,
	}
	f.P2 = models.Product{
		Name:       "Free-Range Eggs",
		Price:      decimal.RequireFromString("6.99"),
		ImageURL:   "https://example.com/eggs.jpg",
		CategoryID: f.Category.ID,
		SellerID:   &f.Farmer2.ID,
	}
	mustCreate(t, conn, &f.P1)
	mustCreate(t, conn, &f.P2)
	return f
}

// AddToCart puts a cart row for user directly.
func AddToCart(t testing.TB, conn *gorm.DB, userID, productID uint, qty int) models.CartItem {
	t.Helper()
	item := models.CartItem{UserID: userID, ProductID: productID, Quantity: qty}
	mustCreate(t, conn, &item)
	return item
}

func mustCreate(t testing.TB, conn *gorm.DB, value any) {
	t.Helper()
	if err := conn.Create(value).Error; err != nil {
		t.Fatalf("seed %T: %v", value, err)
	}
}
