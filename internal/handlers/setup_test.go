package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"github.com/Keoroanthony/farmmarket/internal/auth"
	"github.com/Keoroanthony/farmmarket/internal/auth/authtest"
	"github.com/Keoroanthony/farmmarket/internal/cart"
	"github.com/Keoroanthony/farmmarket/internal/catalog"
	"github.com/Keoroanthony/farmmarket/internal/db/dbtest"
	"github.com/Keoroanthony/farmmarket/internal/handlers"
	"github.com/Keoroanthony/farmmarket/internal/orders"
)

func setupTestRouter(t *testing.T, policy orders.TotalPolicy) (*gin.Engine, *gorm.DB, dbtest.Fixture) {
	gin.SetMode(gin.TestMode)

	testDB := dbtest.New(t)
	f := dbtest.Seed(t, testDB)
	log := zaptest.NewLogger(t)

	cartSvc := cart.NewService(testDB)
	engine := orders.NewEngine(testDB, catalog.Lookup{}, cartSvc, log).
		WithTotalPolicy(policy, orders.DefaultPricing())
	h := handlers.New(testDB, engine, orders.NewQueryService(testDB, log), cartSvc, orders.DefaultPricing(), log)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(sessions.Sessions(auth.SessionName, authtest.Store()))
	h.Routes(r)

	return r, testDB, f
}

func newRequest(method, path string, body interface{}) *http.Request {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(reqBody))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func performAuthenticatedRequest(router *gin.Engine, method, path string, body interface{}, userID *uint) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	req := newRequest(method, path, body)
	req.Header.Set("Cookie", authtest.SessionCookie(auth.SessionName, auth.SessionUserKey, userID))

	router.ServeHTTP(recorder, req)
	return recorder
}

func decodeError(t *testing.T, recorder *httptest.ResponseRecorder) string {
	t.Helper()
	var response map[string]string
	_ = json.Unmarshal(recorder.Body.Bytes(), &response)
	return response["error"]
}
