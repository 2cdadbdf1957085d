package slot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// slotRow is one key in the basket_slots table.
type slotRow struct {
	Key       string `gorm:"column:slot_key;primaryKey;size:191"`
	Value     []byte `gorm:"column:slot_value;not null"`
	UpdatedAt time.Time
}

func (slotRow) TableName() string { return "basket_slots" }

// Database keeps each key as a row in basket_slots through GORM.
type Database struct {
	db *gorm.DB
}

// OpenDatabase opens driver/dsn, configures the pool and migrates the
// basket_slots table.
func OpenDatabase(driver, dsn string) (*Database, error) {
	dialector, err := buildDialector(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("slot/database: build dialector: %w", err)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // use pkg/logger, not GORM's own
	})
	if err != nil {
		return nil, fmt.Errorf("slot/database: open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("slot/database: get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(4)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("slot/database: ping: %w", err)
	}

	return NewDatabase(db)
}

// NewDatabase wraps an open *gorm.DB and migrates basket_slots.
func NewDatabase(db *gorm.DB) (*Database, error) {
	if err := db.AutoMigrate(&slotRow{}); err != nil {
		return nil, fmt.Errorf("slot/database: migrate: %w", err)
	}
	return &Database{db: db}, nil
}

func buildDialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "sqlite":
		return sqlite.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	case "sqlserver":
		return sqlserver.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (supported: sqlite, postgres, mysql, sqlserver)", driver)
	}
}

func (d *Database) Name() string { return "database" }

func (d *Database) Get(ctx context.Context, key string) ([]byte, error) {
	var row slotRow
	err := d.db.WithContext(ctx).Where("slot_key = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMissing
	}
	if err != nil {
		return nil, fmt.Errorf("slot/database: get %s: %w", key, err)
	}
	return row.Value, nil
}

func (d *Database) Put(ctx context.Context, key string, value []byte) error {
	row := slotRow{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	err := d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slot_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"slot_value", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("slot/database: put %s: %w", key, err)
	}
	return nil
}

func (d *Database) Forget(ctx context.Context, key string) error {
	err := d.db.WithContext(ctx).Where("slot_key = ?", key).Delete(&slotRow{}).Error
	if err != nil {
		return fmt.Errorf("slot/database: forget %s: %w", key, err)
	}
	return nil
}

func (d *Database) Close(_ context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
