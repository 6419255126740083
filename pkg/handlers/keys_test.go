package handlers

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/arnavshah/housekeeping-api-go/pkg/config"
	"github.com/arnavshah/housekeeping-api-go/pkg/database"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKeysRouter(t *testing.T) (*Handler, *gin.Engine) {
	t.Helper()
	db, err := database.Open(&config.Config{DataPath: filepath.Join(t.TempDir(), "keys.db")})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	h := newTestHandler()
	h.DB = db

	r := gin.New()
	admin := r.Group("/admin", h.AuthMiddleware())
	admin.POST("/keys", h.GenerateKey)
	admin.GET("/keys", h.ListKeys)
	admin.PUT("/keys/:id", h.UpdateKeyLimit)
	admin.DELETE("/keys/:id", h.RevokeKey)
	admin.GET("/usage/:id", h.GetUsage)
	return h, r
}

func adminHeader(t *testing.T, h *Handler, hotel string) []string {
	token, err := h.Auth.CreateToken("admin-"+hotel, hotel)
	require.NoError(t, err)
	return []string{"Authorization", "Bearer " + token}
}

func createKey(t *testing.T, r *gin.Engine, header []string, name string) uint {
	rec := do(r, http.MethodPost, "/admin/keys", gin.H{"name": name}, header...)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.ID
}

func TestKeys_OtherHotelIsNotFound(t *testing.T) {
	h, r := newKeysRouter(t)
	harbor := adminHeader(t, h, "harbor")
	seaside := adminHeader(t, h, "seaside")

	id := createKey(t, r, seaside, "seaside-frontdesk")
	path := "/admin/keys/" + strconv.FormatUint(uint64(id), 10)

	rec := do(r, http.MethodPut, path, gin.H{"rate_limit": 1}, harbor...)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(r, http.MethodGet, "/admin/usage/"+strconv.FormatUint(uint64(id), 10), nil, harbor...)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(r, http.MethodDelete, path, nil, harbor...)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var key database.APIKey
	require.NoError(t, h.DB.First(&key, id).Error)
	assert.Equal(t, "seaside", key.Hotel)
	assert.Equal(t, h.DefaultRateLimit, key.RateLimit)

	// the owning hotel still manages its key
	rec = do(r, http.MethodPut, path, gin.H{"rate_limit": 5}, seaside...)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(r, http.MethodGet, "/admin/usage/"+strconv.FormatUint(uint64(id), 10), nil, seaside...)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(r, http.MethodDelete, path, nil, seaside...)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestKeys_UnboundAdminManagesAnyHotel(t *testing.T) {
	h, r := newKeysRouter(t)
	id := createKey(t, r, adminHeader(t, h, "seaside"), "seaside-spa")

	rec := do(r, http.MethodDelete, "/admin/keys/"+strconv.FormatUint(uint64(id), 10), nil, adminHeader(t, h, "")...)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(r, http.MethodDelete, "/admin/keys/"+strconv.FormatUint(uint64(id), 10), nil, adminHeader(t, h, "")...)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGenerateKey_DuplicateName(t *testing.T) {
	h, r := newKeysRouter(t)
	header := adminHeader(t, h, "harbor")

	createKey(t, r, header, "harbor-night")
	rec := do(r, http.MethodPost, "/admin/keys", gin.H{"name": "harbor-night"}, header...)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "already in use")

	var count int64
	require.NoError(t, h.DB.Model(&database.APIKey{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
