package database

import (
	"fmt"
	"time"

	"github.com/arnavshah/housekeeping-api-go/pkg/config"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// APIKey represents the api_keys table
type APIKey struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Key        string     `gorm:"unique;not null" json:"-"`
	KeyPreview string     `json:"key_preview"`
	Name       string     `gorm:"not null" json:"name"`
	Hotel      string     `gorm:"index" json:"hotel"`
	RateLimit  int        `gorm:"default:10000" json:"rate_limit"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsed   *time.Time `json:"last_used"`
}

// APIUsage represents the api_usage table
type APIUsage struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	KeyID        uint   `gorm:"uniqueIndex:idx_key_date;not null" json:"key_id"`
	Date         string `gorm:"uniqueIndex:idx_key_date;not null" json:"date"`
	RequestCount int    `gorm:"default:0" json:"request_count"`
	TotalRooms   int    `gorm:"default:0" json:"total_rooms"`
	TotalStaff   int    `gorm:"default:0" json:"total_staff"`
}

// MasterUser represents the master_users table
type MasterUser struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"unique;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Hotel        string    `json:"hotel"`
	CreatedAt    time.Time `json:"created_at"`
}

// HotelRoom represents the rooms table. Room ids are only unique within a hotel.
type HotelRoom struct {
	Hotel               string   `gorm:"primaryKey;uniqueIndex:idx_hotel_room;type:varchar(64);not null"`
	ID                  string   `gorm:"primaryKey;type:varchar(64)"`
	RoomNumber          string   `gorm:"uniqueIndex:idx_hotel_room;type:varchar(50);not null"`
	FloorNumber         *int
	Wing                *string  `gorm:"type:varchar(50)"`
	ElevatorProximity   *float64
	RoomSizeSqm         *float64
	RoomCapacity        *int
	IsCheckoutRoom      bool
	TowelChangeRequired bool
	LinenChangeRequired bool
	Status              string `gorm:"index;type:varchar(20);default:clean"`
	RoomCategory        string `gorm:"type:varchar(50)"`
	UpdatedAt           time.Time
}

// HousekeepingStaff represents the staff table
type HousekeepingStaff struct {
	Hotel     string  `gorm:"primaryKey;type:varchar(64);not null"`
	ID        string  `gorm:"primaryKey;type:varchar(64)"`
	FullName  string  `gorm:"not null"`
	Nickname  *string
	Active    bool `gorm:"default:true"`
	CreatedAt time.Time
}

// FloorLayout represents the saved floorplan coordinates of a wing
type FloorLayout struct {
	ID          uint   `gorm:"primaryKey"`
	Hotel       string `gorm:"index;not null"`
	FloorNumber int
	Wing        string `gorm:"type:varchar(50)"`
	X           float64
	Y           float64
}

// RoomPairPattern counts how often two rooms were cleaned by one person on the same day
type RoomPairPattern struct {
	ID          uint   `gorm:"primaryKey"`
	Hotel       string `gorm:"uniqueIndex:idx_hotel_pair;not null"`
	RoomNumberA string `gorm:"uniqueIndex:idx_hotel_pair;not null"`
	RoomNumberB string `gorm:"uniqueIndex:idx_hotel_pair;not null"`
	PairCount   int    `gorm:"default:0"`
	UpdatedAt   time.Time
}

// RoomAssignment is one persisted room-to-staff assignment for a day
type RoomAssignment struct {
	ID               string `gorm:"primaryKey;type:varchar(36)"`
	Hotel            string `gorm:"index:idx_hotel_date;not null"`
	Date             string `gorm:"index:idx_hotel_date;not null"`
	StaffID          string `gorm:"index;not null"`
	RoomID           string `gorm:"not null"`
	RoomNumber       string
	EstimatedMinutes int
	Notes            string
	CreatedAt        time.Time
}

// Open connects to postgres when a DSN is configured, sqlite otherwise
func Open(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	if cfg.DatabaseURL != "" {
		gormCfg.PrepareStmt = false
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  cfg.DatabaseURL,
			PreferSimpleProtocol: true,
		}), gormCfg)
	}
	return gorm.Open(sqlite.Open(cfg.DataPath), gormCfg)
}

// Migrate creates or updates every table the service uses
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&APIKey{}, &APIUsage{}, &MasterUser{},
		&HotelRoom{}, &HousekeepingStaff{}, &FloorLayout{}, &RoomPairPattern{}, &RoomAssignment{},
	)
}

// InitDB initializes the database connection and migrates the schema
func InitDB(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	db, err := Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	driver := "sqlite"
	if cfg.DatabaseURL != "" {
		driver = "postgres"
	}
	log.Info("database ready", zap.String("driver", driver))
	return db, nil
}
