package repositories

import (
	"fmt"

	"github.com/avolkov/offerhub/internal/config"
	"github.com/avolkov/offerhub/internal/entities"
	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DbContext struct {
	DB *gorm.DB
}

func NewDbContext(cfg config.DBConfig) (*DbContext, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	}

	var db *gorm.DB
	var err error

	switch cfg.Driver {
	case "postgres":
		db, err = gorm.Open(postgres.Open(cfg.ConnectionString), gormConfig)
	default:
		db, err = gorm.Open(sqlite.Open(cfg.ConnectionString), gormConfig)
	}
	if err != nil {
		return nil, err
	}

	return &DbContext{DB: db}, nil
}

func (c *DbContext) Migrate() error {
	for _, model := range []any{
		entities.Company{},
		entities.Category{},
		entities.Job{},
		entities.Offer{},
		entities.ImportSource{},
		entities.ImportRun{},
		entities.Translation{},
	} {
		if err := c.DB.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T entity: %w", model, err)
		}
	}
	return nil
}

func (c *DbContext) Close() error {
	db, err := c.DB.DB()
	if err != nil {
		return err
	}

	return db.Close()
}
