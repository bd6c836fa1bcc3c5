package dbmysql

import (
	"fmt"
	"time"

	"gostatus/internal/config"
	applog "gostatus/internal/logger"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Models lists every table owned by the status service.
func Models() []interface{} {
	return []interface{}{
		&Status{},
		&StatusView{},
		&StatusLike{},
		&StatusReport{},
		&Follow{},
	}
}

// NewDatabase opens the configured SQL dialect and migrates the schema.
func NewDatabase(cnf *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cnf.Database.Driver {
	case "", "mysql":
		dialector = mysql.Open(cnf.DSN())
	case "postgres":
		dialector = postgres.Open(cnf.PostgresDSN())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cnf.Database.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:      newGormLogger(cnf),
		PrepareStmt: true,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot connect to %s: %w", cnf.Database.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sql.DB error: %w", err)
	}
	sqlDB.SetMaxOpenConns(cnf.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cnf.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := db.AutoMigrate(Models()...); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	applog.Log.WithField("driver", cnf.Database.Driver).Info("connected to database")
	return db, nil
}

// gorm logs through logrus so SQL warnings land in the same stream.
func newGormLogger(cnf *config.Config) logger.Interface {
	level := logger.Warn
	if cnf.Logging.Level == "debug" {
		level = logger.Info
	}
	return logger.New(applog.Log, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})
}
