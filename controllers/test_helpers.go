package controllers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/PressTune/initializers"
	"github.com/PressTune/middlewares"
	"github.com/PressTune/models"
	"github.com/doug-martin/goqu/v9"
	"github.com/gin-gonic/gin"
)

// SetupTestDB creates a mock database and sets it as the global DB for testing
func SetupTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}

	goquDB := goqu.New("postgres", db)

	// Store original DB to restore after test
	originalDB := initializers.DB
	initializers.DB = goquDB

	cleanup := func() {
		// Small delay to allow goroutines (like reply notifications) to complete
		time.Sleep(10 * time.Millisecond)
		db.Close()
		initializers.DB = originalDB
	}

	return db, mock, cleanup
}

// SetupTestContext creates a test Gin context with a response recorder
func SetupTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	return c, w
}

// SetJSONBody attaches body as a JSON request to c
func SetJSONBody(c *gin.Context, method, path string, body interface{}) {
	payload, _ := json.Marshal(body)
	c.Request = httptest.NewRequest(method, path, bytes.NewBuffer(payload))
	c.Request.Header.Set("Content-Type", "application/json")
}

// SetAuthenticatedUser sets the currentUser value in the Gin context
// This simulates what the CheckAuth middleware does
func SetAuthenticatedUser(c *gin.Context, user models.UserProfile) {
	c.Set(middlewares.CurrentUserKey, user)
}
