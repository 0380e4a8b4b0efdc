package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/pathfinder-roadmap/internal/platform/logger"
)

const (
	DefaultMaxOpen = 5
	DefaultMaxIdle = 1
)

var ErrNoDSN = errors.New("database url is empty")

type Options struct {
	MaxOpen int
	MaxIdle int
}

// Open connects to dsn. postgres:// and postgresql:// use the pgx-backed
// postgres driver; sqlite: and file: DSNs (and ":memory:") use sqlite.
func Open(dsn string, opts Options) (*gorm.DB, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, ErrNoDSN
	}
	dialector, err := dialectorFor(dsn)
	if err != nil {
		return nil, err
	}

	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(dialector, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql pool: %w", err)
	}
	if opts.MaxOpen <= 0 {
		opts.MaxOpen = DefaultMaxOpen
	}
	if opts.MaxIdle <= 0 {
		opts.MaxIdle = DefaultMaxIdle
	}
	sqlDB.SetMaxOpenConns(opts.MaxOpen)
	sqlDB.SetMaxIdleConns(opts.MaxIdle)
	return db, nil
}

func dialectorFor(dsn string) (gorm.Dialector, error) {
	lower := strings.ToLower(dsn)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return postgres.Open(dsn), nil
	case strings.HasPrefix(lower, "sqlite:"):
		return sqlite.Open(strings.TrimPrefix(dsn[len("sqlite:"):], "//")), nil
	case strings.HasPrefix(lower, "file:"), dsn == ":memory:":
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database url scheme in %q", redactDSN(dsn))
	}
}

// Lazy opens the database on first use. Concurrent first callers share one
// open attempt; a failed attempt is not cached, so a later call retries.
type Lazy struct {
	dsn  string
	opts Options
	log  *logger.Logger

	group singleflight.Group
	db    atomic.Pointer[gorm.DB]
	open  func(string, Options) (*gorm.DB, error)
}

func NewLazy(dsn string, opts Options, log *logger.Logger) *Lazy {
	if log == nil {
		log = logger.Nop()
	}
	return &Lazy{dsn: strings.TrimSpace(dsn), opts: opts, log: log.With("service", "LazyDB"), open: Open}
}

// Configured reports whether a DSN is present. It never connects.
func (l *Lazy) Configured() bool { return l != nil && l.dsn != "" }

func (l *Lazy) Get(ctx context.Context) (*gorm.DB, error) {
	if db := l.db.Load(); db != nil {
		return db.WithContext(ctx), nil
	}
	if !l.Configured() {
		return nil, ErrNoDSN
	}
	v, err, _ := l.group.Do("open", func() (any, error) {
		if db := l.db.Load(); db != nil {
			return db, nil
		}
		start := time.Now()
		db, err := l.open(l.dsn, l.opts)
		if err != nil {
			l.log.Error("database open failed", "error", err, "dsn", redactDSN(l.dsn))
			return nil, err
		}
		l.db.Store(db)
		l.log.Info("database connection established", "elapsed_ms", time.Since(start).Milliseconds())
		return db, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*gorm.DB).WithContext(ctx), nil
}

// Close releases the pool if it was ever opened.
func (l *Lazy) Close() error {
	db := l.db.Swap(nil)
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func redactDSN(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	scheme := strings.Index(dsn, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return dsn
	}
	return dsn[:scheme+3] + "***" + dsn[at:]
}
