package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Truinfo/LivInSync/config"
	"github.com/Truinfo/LivInSync/models"
	"github.com/Truinfo/LivInSync/services/container"
)

func newVisitorTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&models.Visitor{},
		&models.VisitorCode{},
		&models.Notification{},
	))

	cfg := &config.Config{
		VisitorCodeLength:      6,
		VisitorCodeMaxAttempts: 5,
	}
	serviceContainer := container.NewServiceContainer(db, cfg, nil)

	r := gin.New()
	api := r.Group("/api")
	healthController := NewHealthCheckController()
	api.GET("/ping", healthController.Ping)
	api.GET("/visitors/getVisitorsBySocietyIdLast24Hours/:societyId",
		HandleVisitorFunc(serviceContainer, "getRecent"))
	return r
}

func getPath(t *testing.T, r *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPingReportsServiceHealth(t *testing.T) {
	r := newVisitorTestRouter(t)

	w := getPath(t, r, "/api/ping")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "pong", body["message"])
	assert.Equal(t, "livinsync-visitor-service", body["service"])
	assert.Equal(t, "healthy", body["status"])
}

func TestRecentVisitorsWindowParam(t *testing.T) {
	r := newVisitorTestRouter(t)
	base := "/api/visitors/getVisitorsBySocietyIdLast24Hours/soc-1"

	// 省略hours时使用默认24小时窗口
	w := getPath(t, r, base)
	assert.Equal(t, http.StatusOK, w.Code)

	w = getPath(t, r, base+"?hours=48")
	assert.Equal(t, http.StatusOK, w.Code)

	// 非整数和非正值一律拒绝
	for _, raw := range []string{"abc", "1.5m", "-3", "0"} {
		w = getPath(t, r, base+"?hours="+raw)
		assert.Equal(t, http.StatusBadRequest, w.Code, "hours=%s", raw)
	}
}
