package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Keoroanthony/farmmarket/internal/handlers"
	"github.com/Keoroanthony/farmmarket/internal/models"
	"github.com/Keoroanthony/farmmarket/internal/orders"
)

func TestCreateProductHandler(t *testing.T) {
	router, testDB, f := setupTestRouter(t, orders.VerifyTotal)
	farmer := &f.Farmer1.ID

	t.Run("Successfully creates a product owned by the caller", func(t *testing.T) {
		reqBody := handlers.CreateProductRequest{
			Name:          "Raw Honey",
			Price:         decimal.RequireFromString("12.50"),
			StockQuantity: 30,
			CategoryID:    f.Category.ID,
		}
		recorder := performAuthenticatedRequest(router, http.MethodPost, "/api/products", reqBody, farmer)
		require.Equal(t, http.StatusCreated, recorder.Code)

		var responseProduct models.Product
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &responseProduct))
		assert.Greater(t, responseProduct.ID, uint(0))
		assert.Equal(t, "Raw Honey", responseProduct.Name)
		assert.Equal(t, "12.50", responseProduct.Price.StringFixed(2))
		assert.Equal(t, f.Category.Name, responseProduct.Category.Name)
		require.NotNil(t, responseProduct.SellerID)
		assert.Equal(t, f.Farmer1.ID, *responseProduct.SellerID)

		var storedProduct models.Product
		require.NoError(t, testDB.First(&storedProduct, responseProduct.ID).Error)
		assert.Equal(t, 30, storedProduct.StockQuantity)
	})

	t.Run("Returns 403 for buyers", func(t *testing.T) {
		reqBody := handlers.CreateProductRequest{Name: "Raw Honey", Price: decimal.RequireFromString("12.50"), CategoryID: f.Category.ID}
		recorder := performAuthenticatedRequest(router, http.MethodPost, "/api/products", reqBody, &f.Buyer.ID)
		assert.Equal(t, http.StatusForbidden, recorder.Code)
	})

	t.Run("Returns 400 for invalid JSON request - missing name", func(t *testing.T) {
		reqBody := map[string]interface{}{"price": 100.00, "category_id": f.Category.ID}
		recorder := performAuthenticatedRequest(router, http.MethodPost, "/api/products", reqBody, farmer)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Contains(t, decodeError(t, recorder), "Key: 'CreateProductRequest.Name' Error:Field validation for 'Name' failed on the 'required' tag")
	})

	t.Run("Returns 400 for invalid JSON request - price less than or equal to 0", func(t *testing.T) {
		reqBody := map[string]interface{}{"name": "Free Sample", "price": -1, "category_id": f.Category.ID}
		recorder := performAuthenticatedRequest(router, http.MethodPost, "/api/products", reqBody, farmer)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Equal(t, "price must be greater than zero", decodeError(t, recorder))
	})

	t.Run("Returns 400 for a price with sub-cent precision", func(t *testing.T) {
		body := fmt.Sprintf(`{"name":"Heirloom Seeds","price":1.005,"category_id":%d}`, f.Category.ID)
		recorder := performAuthenticatedRequest(router, http.MethodPost, "/api/products", json.RawMessage(body), farmer)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Equal(t, "price must have at most 2 decimal places", decodeError(t, recorder))

		var count int64
		testDB.Model(&models.Product{}).Where("name = ?", "Heirloom Seeds").Count(&count)
		assert.Equal(t, int64(0), count)
	})

	t.Run("Keeps the exact decimal price sent as a JSON number", func(t *testing.T) {
		body := fmt.Sprintf(`{"name":"Goat Cheese","price":0.10,"stock_quantity":3,"category_id":%d}`, f.Category.ID)
		recorder := performAuthenticatedRequest(router, http.MethodPost, "/api/products", json.RawMessage(body), farmer)
		require.Equal(t, http.StatusCreated, recorder.Code)

		var stored models.Product
		require.NoError(t, testDB.Where("name = ?", "Goat Cheese").First(&stored).Error)
		assert.True(t, stored.Price.Equal(decimal.RequireFromString("0.10")))
	})

	t.Run("Returns 404 if category not found", func(t *testing.T) {
		reqBody := handlers.CreateProductRequest{Name: "Orphan Product", Price: decimal.RequireFromString("50.00"), CategoryID: 999}
		recorder := performAuthenticatedRequest(router, http.MethodPost, "/api/products", reqBody, farmer)

		assert.Equal(t, http.StatusNotFound, recorder.Code)
		assert.Equal(t, "Category not found with ID: 999", decodeError(t, recorder))

		var count int64
		testDB.Model(&models.Product{}).Where("name = ?", "Orphan Product").Count(&count)
		assert.Equal(t, int64(0), count)
	})
}

func TestGetAveragePriceHandler(t *testing.T) {
	router, testDB, f := setupTestRouter(t, orders.VerifyTotal)
	buyer := &f.Buyer.ID

	produce := models.Category{Name: "produce"}
	require.NoError(t, testDB.Create(&produce).Error)
	fruit := models.Category{Name: "fruit", ParentID: &produce.ID}
	berries := models.Category{Name: "berries", ParentID: &produce.ID}
	require.NoError(t, testDB.Create(&fruit).Error)
	require.NoError(t, testDB.Create(&berries).Error)
	empty := models.Category{Name: "empty"}
	require.NoError(t, testDB.Create(&empty).Error)

	for name, seed := range map[string]struct {
		price    string
		category uint
	}{
		"Apples":       {"10.00", produce.ID},
		"Pears":        {"20.00", produce.ID},
		"Mangoes":      {"30.00", fruit.ID},
		"Strawberries": {"40.00", berries.ID},
	} {
		p := models.Product{Name: name, Price: decimal.RequireFromString(seed.price), CategoryID: seed.category}
		require.NoError(t, testDB.Create(&p).Error)
	}

	average := func(t *testing.T, query string) (int, map[string]interface{}) {
		recorder := performAuthenticatedRequest(router, http.MethodGet, "/api/products/average"+query, nil, buyer)
		var response map[string]interface{}
		_ = json.Unmarshal(recorder.Body.Bytes(), &response)
		return recorder.Code, response
	}

	t.Run("Averages a category and its descendants", func(t *testing.T) {
		code, response := average(t, fmt.Sprintf("?category_id=%d", produce.ID))
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, float64(produce.ID), response["category_id"])
		assert.Equal(t, "25", response["average_price"])
	})

	t.Run("Leaf category", func(t *testing.T) {
		code, response := average(t, fmt.Sprintf("?category_id=%d", berries.ID))
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "40", response["average_price"])
	})

	t.Run("Returns 0 for a category with no products", func(t *testing.T) {
		code, response := average(t, fmt.Sprintf("?category_id=%d", empty.ID))
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "0", response["average_price"])
	})

	t.Run("Returns 400 if category_id is missing", func(t *testing.T) {
		code, response := average(t, "")
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "category_id is required", response["error"])
	})

	t.Run("Returns 400 for invalid category_id", func(t *testing.T) {
		code, response := average(t, "?category_id=abc")
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "Invalid category_id", response["error"])
	})
}
