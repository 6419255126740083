package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/arnavshah/housekeeping-api-go/pkg/config"
	"github.com/arnavshah/housekeeping-api-go/pkg/database"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidToken      = errors.New("invalid token")
	ErrInvalidKeyFormat  = errors.New("invalid key format")
	ErrInvalidSignature  = errors.New("invalid signature")
	ErrInvalidCredential = errors.New("invalid credentials")
)

var jwtAlgorithm = jwt.SigningMethodHS256

// TokenTTL is how long an admin token stays valid
const TokenTTL = 24 * time.Hour

// Claims represents the JWT claims
type Claims struct {
	Username string `json:"username"`
	Hotel    string `json:"hotel,omitempty"`
	jwt.RegisteredClaims
}

// Authenticator signs and verifies admin tokens and tenant API keys
type Authenticator struct {
	jwtSecret    []byte
	masterSecret []byte
	cost         int
	now          func() time.Time
}

// New creates an Authenticator from explicit secrets
func New(jwtSecret, masterSecret string, bcryptCost int) *Authenticator {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Authenticator{
		jwtSecret:    []byte(jwtSecret),
		masterSecret: []byte(masterSecret),
		cost:         bcryptCost,
		now:          time.Now,
	}
}

// FromConfig creates an Authenticator from the service configuration
func FromConfig(cfg *config.Config) *Authenticator {
	return New(cfg.JWTSecret, cfg.APIMasterSecret, cfg.BcryptCost)
}

// HashPassword hashes a password using bcrypt
func (a *Authenticator) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	return string(bytes), err
}

// CheckPasswordHash compares a password with its hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// CreateToken creates a new JWT token for a user
func (a *Authenticator) CreateToken(username, hotel string) (string, error) {
	now := a.now()
	claims := &Claims{
		Username: username,
		Hotel:    hotel,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwtAlgorithm, claims)
	return token.SignedString(a.jwtSecret)
}

// VerifyToken verifies a JWT token
func (a *Authenticator) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwtAlgorithm {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return a.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (a *Authenticator) sign(tenant string) string {
	h := hmac.New(sha256.New, a.masterSecret)
	h.Write([]byte(tenant))
	return hex.EncodeToString(h.Sum(nil))
}

// GenerateHMACKey creates a signed API key using HMAC-SHA256
func (a *Authenticator) GenerateHMACKey(tenant string) string {
	return tenant + "." + a.sign(tenant)
}

// VerifyHMACKey validates an HMAC-signed API key and returns its tenant
func (a *Authenticator) VerifyHMACKey(key string) (string, error) {
	tenant, provided, ok := strings.Cut(key, ".")
	if !ok || tenant == "" || strings.Contains(provided, ".") {
		return "", ErrInvalidKeyFormat
	}

	if !hmac.Equal([]byte(provided), []byte(a.sign(tenant))) {
		return "", ErrInvalidSignature
	}
	return tenant, nil
}

// KeyPreview masks a key for listings
func KeyPreview(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:3] + "..." + key[len(key)-4:]
}

// Login checks credentials against the master users and issues a token
func (a *Authenticator) Login(db *gorm.DB, username, password string) (string, error) {
	var user database.MasterUser
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		return "", ErrInvalidCredential
	}
	if !CheckPasswordHash(password, user.PasswordHash) {
		return "", ErrInvalidCredential
	}
	return a.CreateToken(user.Username, user.Hotel)
}

// EnsureAdminExists creates the configured admin when no master user exists yet
func (a *Authenticator) EnsureAdminExists(db *gorm.DB, admin config.AdminConfig, log *zap.Logger) error {
	var count int64
	if err := db.Model(&database.MasterUser{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := a.HashPassword(admin.Password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	user := database.MasterUser{
		Username:     admin.Username,
		PasswordHash: hash,
		Hotel:        admin.Hotel,
	}
	if err := db.Create(&user).Error; err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	log.Info("default admin user created", zap.String("username", admin.Username))
	return nil
}
