package bootstrap

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/voxkit/voxconsole/internal/models"
	"github.com/voxkit/voxconsole/pkg/config"
	"github.com/voxkit/voxconsole/pkg/logger"
)

// Options controls database initialization behavior
type Options struct {
	// InitSQLPath points to a .sql script file (optional); skip if empty
	InitSQLPath string
	// AutoMigrate whether to execute entity migration
	AutoMigrate bool
	// SeedNonProd whether to create the default admin account outside production
	SeedNonProd bool
}

// SetupDatabase unified entry: connect database -> run initialization SQL ->
// migrate entities -> (non-production) seed defaults.
func SetupDatabase(logWriter io.Writer, opts *Options) (*gorm.DB, error) {
	if opts == nil {
		opts = &Options{AutoMigrate: true, SeedNonProd: true}
	}

	db, err := initDBConn(logWriter)
	if err != nil {
		logger.Error("init database failed", zap.Error(err))
		return nil, err
	}

	if opts.InitSQLPath != "" {
		if err := RunInitSQL(db, opts.InitSQLPath); err != nil {
			logger.Error("run init sql failed", zap.String("path", opts.InitSQLPath), zap.Error(err))
			return nil, err
		}
	}

	if opts.AutoMigrate {
		if err := RunMigrations(db); err != nil {
			logger.Error("migration failed", zap.Error(err))
			return nil, err
		}
		logger.Info("migration success",
			zap.String("database", config.GlobalConfig.DBDriver),
			zap.String("dsn", config.GlobalConfig.DSN),
		)
	}

	if opts.SeedNonProd && os.Getenv("APP_ENV") != "production" {
		service := SeedService{db: db}
		if err := service.SeedAll(); err != nil {
			logger.Error("seed failed", zap.Error(err))
			return nil, err
		}
	}

	logger.Info("system bootstrap - database initialization complete")
	return db, nil
}

// initDBConn creates *gorm.DB based on global configuration. Only sqlite is
// supported; the log store itself lives behind the external backend.
func initDBConn(logWriter io.Writer) (*gorm.DB, error) {
	driver := config.GlobalConfig.DBDriver
	if driver != "" && driver != "sqlite" {
		return nil, errors.New("unsupported db driver: " + driver)
	}
	dsn := config.GlobalConfig.DSN
	if dsn == "" {
		dsn = "file::memory:?cache=shared"
	}

	gormLogger := gormlogger.New(
		logAdapter{w: logWriter},
		gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)
	return gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormLogger})
}

type logAdapter struct{ w io.Writer }

func (a logAdapter) Printf(format string, args ...interface{}) {
	logger.Lg.Sugar().Infof(format, args...)
}

// RunMigrations migrates every entity table.
func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Tenant{},
		&models.TenantMember{},
		&models.TenantInvitation{},
		&models.SipUser{},
	)
}

// RunInitSQL executes SQL statements from a local .sql file segment by
// segment (split by semicolon). Idempotent scripts should guard with IF NOT
// EXISTS.
func RunInitSQL(db *gorm.DB, sqlFilePath string) error {
	f, err := os.Open(sqlFilePath)
	if err != nil {
		return err
	}
	defer f.Close()

	var builder strings.Builder
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		builder.WriteString(line)
		builder.WriteString(" ")
		if strings.HasSuffix(line, ";") {
			stmt := strings.TrimSpace(builder.String())
			builder.Reset()
			if stmt == ";" {
				continue
			}
			if err := db.Exec(stmt).Error; err != nil {
				return err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	if rest := strings.TrimSpace(builder.String()); rest != "" {
		return db.Exec(rest).Error
	}
	return nil
}
