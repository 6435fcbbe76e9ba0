package controllers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	"github.com/maintainly/api-go/controllers"
	"github.com/maintainly/api-go/models"
)

func loginWith(t *testing.T, ac *controllers.AuthController, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/login", ac.Login)
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLoginIssuesTokens(t *testing.T) {
	db := setupControllerDB(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	assert.NoError(t, err)
	p := models.Profile{Email: "t@test.io", Password: string(hash), Role: models.RoleTenant}
	assert.NoError(t, db.Create(&p).Error)

	w := loginWith(t, controllers.NewAuthController(db), `{"email":"t@test.io","password":"secret123"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "access_token")

	var count int64
	assert.NoError(t, db.Model(&models.RefreshToken{}).Where("profile_id = ?", p.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestLoginFailsWhenRefreshTokenNotStored(t *testing.T) {
	db := setupControllerDB(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	assert.NoError(t, err)
	p := models.Profile{Email: "t@test.io", Password: string(hash), Role: models.RoleTenant}
	assert.NoError(t, db.Create(&p).Error)

	// Break the refresh token store: a token the store never saw would fail
	// every future refresh, so the login itself must fail.
	assert.NoError(t, db.Migrator().DropTable(&models.RefreshToken{}))

	w := loginWith(t, controllers.NewAuthController(db), `{"email":"t@test.io","password":"secret123"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "access_token")
}
