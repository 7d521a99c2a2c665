// Package authtest builds session cookies for handler tests.
package authtest

import (
	"net/http"
	"net/http/httptest"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

const Secret = "test-secret-key"

// Store returns the cookie store handler tests mount.
func Store() sessions.Store {
	return cookie.NewStore([]byte(Secret))
}

// SessionCookie returns a Cookie header value for a session holding
// userID under key. A nil userID yields an empty session.
func SessionCookie(sessionName, key string, userID *uint) string {
	tempW := httptest.NewRecorder()
	tempC, _ := gin.CreateTestContext(tempW)
	tempC.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	sessions.Sessions(sessionName, Store())(tempC)

	session := sessions.Default(tempC)
	if userID != nil {
		session.Set(key, *userID)
	} else {
		session.Delete(key)
	}
	_ = session.Save()

	return tempW.Header().Get("Set-Cookie")
}
