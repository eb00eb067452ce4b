package auth

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Pixel0001/Nutopia-sub001/apperr"
	"github.com/Pixel0001/Nutopia-sub001/config"
	"github.com/Pixel0001/Nutopia-sub001/middleware"
	"github.com/Pixel0001/Nutopia-sub001/models"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func testConfig(adminEmails ...string) config.Config {
	cfg := config.Config{
		JWTSecret:   "test-secret",
		AdminEmails: map[string]struct{}{},
	}
	for _, e := range adminEmails {
		cfg.AdminEmails[e] = struct{}{}
	}
	return cfg
}

func TestResolveIdentity_CreatesUserOnFirstLogin(t *testing.T) {
	db := openTestDB(t)

	user, err := ResolveIdentity(db, testConfig(), "Ana@Example.com ", "Ana")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if user.Email != "ana@example.com" {
		t.Fatalf("email = %q, want normalized", user.Email)
	}
	if user.Role != models.RoleUser {
		t.Fatalf("role = %s, want user", user.Role)
	}
	if user.ID == "" {
		t.Fatalf("no id assigned")
	}

	again, err := ResolveIdentity(db, testConfig(), "ana@example.com", "")
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if again.ID != user.ID {
		t.Fatalf("second login created a new user")
	}
}

func TestResolveIdentity_PromotesConfiguredAdmin(t *testing.T) {
	db := openTestDB(t)
	cfg := testConfig("boss@example.com")

	// Existing plain user gets promoted when the override list names them.
	if err := db.Create(&models.User{ID: "u1", Email: "boss@example.com", Role: models.RoleUser}).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	user, err := ResolveIdentity(db, cfg, "boss@example.com", "Boss")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if user.Role != models.RoleAdmin {
		t.Fatalf("role = %s, want admin", user.Role)
	}

	var reloaded models.User
	db.First(&reloaded, "id = ?", "u1")
	if reloaded.Role != models.RoleAdmin {
		t.Fatalf("promotion not persisted: %s", reloaded.Role)
	}
}

func TestResolveIdentity_RejectsBlockedUser(t *testing.T) {
	db := openTestDB(t)
	if err := db.Create(&models.User{
		ID: "u1", Email: "spam@example.com",
		Blocked: true, BlockReason: "chargeback abuse",
	}).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	_, err := ResolveIdentity(db, testConfig(), "spam@example.com", "")
	if !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("err = %v, want forbidden", err)
	}
	if !strings.Contains(err.Error(), "chargeback abuse") {
		t.Fatalf("err = %v, want the stored reason", err)
	}
}

func TestIssueToken_RoundTripsThroughMiddleware(t *testing.T) {
	user := &models.User{ID: "u1", Email: "ana@example.com", Role: models.RoleModerator}
	token, err := IssueToken("test-secret", user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	r := gin.New()
	r.GET("/whoami",
		middleware.ValidateToken("test-secret"),
		middleware.RequireStaff(),
		func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"user_id": c.GetString("user_id")})
		})

	do := func(authorization string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		if authorization != "" {
			req.Header.Set("Authorization", authorization)
		}
		r.ServeHTTP(w, req)
		return w
	}

	if w := do("Bearer " + token); w.Code != http.StatusOK {
		t.Fatalf("valid token: code = %d, body = %s", w.Code, w.Body.String())
	}
	if w := do(""); w.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: code = %d, want 401", w.Code)
	}
	if w := do("Bearer not-a-token"); w.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: code = %d, want 401", w.Code)
	}

	wrongSecret, err := IssueToken("other-secret", user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if w := do("Bearer " + wrongSecret); w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong secret: code = %d, want 401", w.Code)
	}
}

func TestRequireAdmin_RejectsModerator(t *testing.T) {
	moderator := &models.User{ID: "u1", Email: "mod@example.com", Role: models.RoleModerator}
	token, err := IssueToken("test-secret", moderator)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	r := gin.New()
	r.GET("/admin-only",
		middleware.ValidateToken("test-secret"),
		middleware.RequireAdmin(),
		func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin-only", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("code = %d, want 403 for moderator on admin endpoint", w.Code)
	}
}
