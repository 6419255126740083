package handlers

import (
	"embed"
	"errors"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/arnavshah/housekeeping-api-go/pkg/assignment"
	"github.com/arnavshah/housekeeping-api-go/pkg/auth"
	"github.com/arnavshah/housekeeping-api-go/pkg/config"
	"github.com/arnavshah/housekeeping-api-go/pkg/database"
	"github.com/arnavshah/housekeeping-api-go/pkg/metrics"
	"github.com/arnavshah/housekeeping-api-go/pkg/ratelimit"
	"github.com/arnavshah/housekeeping-api-go/pkg/repository"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed static/*
var staticEmbed embed.FS

const (
	ctxAPIKey   = "apiKey"
	ctxTenant   = "tenant"
	ctxUsername = "username"
	ctxHotel    = "hotel"
)

// Handler contains dependencies for the route handlers
type Handler struct {
	DB      *gorm.DB
	Store   *repository.Store
	Auth    *auth.Authenticator
	Log     *zap.Logger
	Metrics *metrics.Collector
	Limiter *ratelimit.Limiter

	Options          assignment.Options
	DefaultRateLimit int
	Admin            config.AdminConfig
}

// New wires a Handler from the service configuration
func New(cfg *config.Config, db *gorm.DB, log *zap.Logger) *Handler {
	return &Handler{
		DB:               db,
		Store:            repository.New(db),
		Auth:             auth.FromConfig(cfg),
		Log:              log,
		Metrics:          metrics.New(),
		Limiter:          ratelimit.New(),
		Options:          cfg.Assignment,
		DefaultRateLimit: cfg.DefaultRateLimit,
		Admin:            cfg.Admin,
	}
}

func bearer(c *gin.Context) string {
	token := c.GetHeader("Authorization")
	return strings.TrimPrefix(token, "Bearer ")
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// AccessLog writes one structured line per request
func (h *Handler) AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if tenant := c.GetString(ctxTenant); tenant != "" {
			fields = append(fields, zap.String("tenant", tenant))
		}
		if len(c.Errors) > 0 {
			h.Log.Warn("request failed", append(fields, zap.String("errors", c.Errors.String()))...)
			return
		}
		h.Log.Info("request", fields...)
	}
}

// AuthMiddleware verifies the JWT token for admin routes
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearer(c)
		if token == "" {
			abort(c, http.StatusUnauthorized, "Authorization header required")
			return
		}

		claims, err := h.Auth.VerifyToken(token)
		if err != nil {
			abort(c, http.StatusUnauthorized, "Invalid token")
			return
		}

		c.Set(ctxUsername, claims.Username)
		c.Set(ctxHotel, claims.Hotel)
		c.Next()
	}
}

// APIKeyMiddleware verifies the HMAC API key, tracks it and applies its rate limit
func (h *Handler) APIKeyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := bearer(c)
		if key == "" {
			abort(c, http.StatusUnauthorized, "API Key required")
			return
		}

		tenant, err := h.Auth.VerifyHMACKey(key)
		if err != nil {
			abort(c, http.StatusUnauthorized, "Invalid API Key signature")
			return
		}

		// Fetch or create API key record to track usage
		var apiKey database.APIKey
		err = h.DB.Where(database.APIKey{Key: key}).FirstOrCreate(&apiKey, database.APIKey{
			Key:        key,
			KeyPreview: auth.KeyPreview(key),
			Name:       tenant,
			RateLimit:  h.DefaultRateLimit,
		}).Error
		if err != nil {
			h.Log.Error("api key lookup failed", zap.String("tenant", tenant), zap.Error(err))
			abort(c, http.StatusInternalServerError, "Could not load API key")
			return
		}

		if h.Limiter != nil && !h.Limiter.Allow(apiKey.ID, apiKey.RateLimit) {
			if h.Metrics != nil {
				h.Metrics.ObserveRateLimited()
			}
			abort(c, http.StatusTooManyRequests, "Rate limit exceeded")
			return
		}

		now := time.Now()
		if err := h.DB.Model(&apiKey).Update("last_used", now).Error; err != nil {
			h.Log.Warn("could not update last_used", zap.Uint("key_id", apiKey.ID), zap.Error(err))
		}

		c.Set(ctxAPIKey, &apiKey)
		c.Set(ctxTenant, tenant)
		c.Next()
	}
}

// HotelScope rejects keys bound to a different hotel than the one in the path
func (h *Handler) HotelScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		hotel := c.Param("hotel")
		if hotel == "" {
			abort(c, http.StatusBadRequest, "hotel is required")
			return
		}
		if raw, ok := c.Get(ctxAPIKey); ok {
			if key := raw.(*database.APIKey); key.Hotel != "" && key.Hotel != hotel {
				abort(c, http.StatusForbidden, "API Key is not valid for this hotel")
				return
			}
		}
		c.Next()
	}
}

// Root returns the service banner
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Housekeeping Assignment API (Go Version)",
		"version": "1.0.0",
	})
}

// Health pings the database
func (h *Handler) Health(c *gin.Context) {
	sqlDB, err := h.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Login handles admin login
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.Auth.Login(h.DB, req.Username, req.Password)
	if errors.Is(err, auth.ErrInvalidCredential) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if err != nil {
		h.Log.Error("token creation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}

// GenerateKey creates a new API key using the HMAC strategy
func (h *Handler) GenerateKey(c *gin.Context) {
	var req struct {
		Name      string `json:"name" binding:"required"`
		Hotel     string `json:"hotel"`
		RateLimit int    `json:"rate_limit" binding:"gte=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.Contains(req.Name, ".") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name must not contain '.'"})
		return
	}

	if req.RateLimit == 0 {
		req.RateLimit = h.DefaultRateLimit
	}
	// admins bound to a hotel can only mint keys for it
	if adminHotel := c.GetString(ctxHotel); adminHotel != "" {
		req.Hotel = adminHotel
	}

	key := h.Auth.GenerateHMACKey(req.Name)
	apiKey := database.APIKey{
		Key:        key,
		Name:       req.Name,
		KeyPreview: auth.KeyPreview(key),
		Hotel:      req.Hotel,
		RateLimit:  req.RateLimit,
	}

	var taken int64
	if err := h.DB.Model(&database.APIKey{}).Where(database.APIKey{Key: key}).Count(&taken).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create key record"})
		return
	}
	// the key is derived from the name, so a reused name would collide
	if taken > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Key name already in use"})
		return
	}

	if err := h.DB.Create(&apiKey).Error; err != nil {
		h.Log.Error("could not create key record", zap.String("name", req.Name), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create key record"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":    apiKey.ID,
		"name":  req.Name,
		"hotel": req.Hotel,
		"key":   key,
	})
}

// ListKeys returns all API keys
func (h *Handler) ListKeys(c *gin.Context) {
	var keys []database.APIKey
	q := h.DB.Order("id")
	if hotel := c.GetString(ctxHotel); hotel != "" {
		q = q.Where("hotel = ?", hotel)
	}
	if err := q.Find(&keys).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not list keys"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"keys": keys})
}

// scopedKeys restricts key queries to the hotel of the calling admin, if any
func scopedKeys(db *gorm.DB, c *gin.Context) *gorm.DB {
	q := db.Model(&database.APIKey{})
	if hotel := c.GetString(ctxHotel); hotel != "" {
		q = q.Where("hotel = ?", hotel)
	}
	return q
}

// ownedKey loads the key named in the path, answering 404 when it does not
// exist or belongs to another hotel
func (h *Handler) ownedKey(c *gin.Context) (database.APIKey, bool) {
	var key database.APIKey
	err := scopedKeys(h.DB, c).Where("id = ?", c.Param("id")).First(&key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Key not found"})
		return key, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load key"})
		return key, false
	}
	return key, true
}

// RevokeKey deletes an API key
func (h *Handler) RevokeKey(c *gin.Context) {
	key, ok := h.ownedKey(c)
	if !ok {
		return
	}
	if err := h.DB.Delete(&key).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not delete key"})
		return
	}
	if h.Limiter != nil {
		h.Limiter.Forget(key.ID)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Key revoked"})
}

// UpdateKeyLimit updates the rate limit for a key
func (h *Handler) UpdateKeyLimit(c *gin.Context) {
	var req struct {
		RateLimit int `json:"rate_limit" form:"rate_limit"`
	}

	// Try JSON first, then Form/Query
	if err := c.ShouldBindJSON(&req); err != nil {
		if err := c.ShouldBindQuery(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rate_limit is required"})
			return
		}
	}

	if req.RateLimit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rate limit"})
		return
	}

	res := scopedKeys(h.DB, c).Where("id = ?", c.Param("id")).Update("rate_limit", req.RateLimit)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update key limit"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Key not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Rate limit updated successfully"})
}

// GetUsage returns usage stats for a key
func (h *Handler) GetUsage(c *gin.Context) {
	key, ok := h.ownedKey(c)
	if !ok {
		return
	}
	var usage []database.APIUsage
	if err := h.DB.Where("key_id = ?", key.ID).Order("date desc").Limit(30).Find(&usage).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch usage details"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"usage": usage})
}

// AdminInterface serves the admin web interface from embedded files
func (h *Handler) AdminInterface(c *gin.Context) {
	if err := h.Auth.EnsureAdminExists(h.DB, h.Admin, h.Log); err != nil {
		h.Log.Error("could not ensure admin", zap.Error(err))
	}

	data, err := staticEmbed.ReadFile("static/index.html")
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "static/index.html not found in embedded FS"})
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", data)
}

// GetStaticFS returns the embedded filesystem for static assets
func (h *Handler) GetStaticFS() http.FileSystem {
	sub, err := fs.Sub(staticEmbed, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
