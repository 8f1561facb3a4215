package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"finance-tracker/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// testContext builds a gin context with the given authenticated user,
// as AuthMiddleware would leave it.
func testContext(t *testing.T, u *models.User, method, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, "/api/users", strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, "/api/users", nil)
	}
	c.Request = r
	c.Set("currentUser", u)
	return c, w
}

// The handlers enforce the user-management policy themselves, so a
// misrouted mount without RequireAdmin still refuses non-admins.
func TestUserHandlerRejectsNonAdmin(t *testing.T) {
	db := openTestDB(t)
	h := NewUserHandler(db)
	regular := &models.User{ID: 2, Email: "user@example.com", Name: "User", Role: models.RoleUser}

	calls := []struct {
		name   string
		method string
		body   string
		invoke func(*gin.Context)
	}{
		{"list", http.MethodGet, "", h.List},
		{"create", http.MethodPost, `{"email":"x@example.com","name":"New","password":"secret1","role":"USER"}`, h.Create},
		{"update", http.MethodPut, `{"name":"Renamed"}`, h.Update},
		{"delete", http.MethodDelete, "", h.Delete},
	}
	for _, call := range calls {
		t.Run(call.name, func(t *testing.T) {
			c, w := testContext(t, regular, call.method, call.body)
			c.Params = gin.Params{{Key: "id", Value: "1"}}
			call.invoke(c)
			if w.Code != http.StatusForbidden {
				t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
			}
		})
	}

	var count int64
	db.Model(&models.User{}).Count(&count)
	if count != 0 {
		t.Errorf("user rows = %d, want 0", count)
	}
}

func TestUserHandlerCreateAsAdmin(t *testing.T) {
	db := openTestDB(t)
	h := NewUserHandler(db)
	admin := &models.User{ID: 1, Email: "admin@example.com", Name: "Admin", Role: models.RoleAdmin}
	if err := db.Create(admin).Error; err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	c, w := testContext(t, admin, http.MethodPost,
		`{"email":"new@example.com","name":"New User","password":"secret1","role":"USER"}`)
	h.Create(c)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusCreated, w.Body)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp["email"] != "new@example.com" {
		t.Errorf("email = %v", resp["email"])
	}
	if _, ok := resp["password"]; ok {
		t.Error("response leaks a password field")
	}

	var user models.User
	if err := db.Where("email = ?", "new@example.com").First(&user).Error; err != nil {
		t.Fatalf("created user not stored: %v", err)
	}
	if user.Role != models.RoleUser || user.PasswordHash == "" || user.PasswordHash == "secret1" {
		t.Errorf("stored user = %+v", user)
	}
}
