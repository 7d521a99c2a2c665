package catalog

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Keoroanthony/farmmarket/internal/db/dbtest"
	"github.com/Keoroanthony/farmmarket/internal/models"
)

func TestSellerForProduct(t *testing.T) {
	conn := dbtest.New(t)
	f := dbtest.Seed(t, conn)
	ctx := context.Background()

	seller, err := Lookup{}.SellerForProduct(ctx, conn, f.P1.ID)
	require.NoError(t, err)
	require.NotNil(t, seller)
	assert.Equal(t, f.Farmer1.ID, *seller)

	seller, err = Lookup{}.SellerForProduct(ctx, conn, f.P2.ID)
	require.NoError(t, err)
	require.NotNil(t, seller)
	assert.Equal(t, f.Farmer2.ID, *seller)
}

func TestSellerForProductMissing(t *testing.T) {
	conn := dbtest.New(t)
	dbtest.Seed(t, conn)

	seller, err := Lookup{}.SellerForProduct(context.Background(), conn, 9999)
	assert.NoError(t, err)
	assert.Nil(t, seller)
}

func TestSellerForProductWithoutSeller(t *testing.T) {
	conn := dbtest.New(t)
	f := dbtest.Seed(t, conn)

	orphan := models.Product{Name: "Wild Honey", Price: decimal.RequireFromString("9.50"), CategoryID: f.Category.ID}
	require.NoError(t, conn.Create(&orphan).Error)

	seller, err := Lookup{}.SellerForProduct(context.Background(), conn, orphan.ID)
	assert.NoError(t, err)
	assert.Nil(t, seller)
}

func TestSellerForProductStorageError(t *testing.T) {
	conn := dbtest.New(t)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	seller, err := Lookup{}.SellerForProduct(context.Background(), conn, 1)
	assert.Error(t, err)
	assert.Nil(t, seller)
}
