package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/mattn/go-sqlite3"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"taskdesk/internal/config"
	"taskdesk/pkg/task"
)

// Connect opens a pgx pool and verifies it with a ping.
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// ConnectMongo dials MongoDB and verifies the connection.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// OpenSQL opens a database/sql handle for the sqlite3 or mysql driver.
// MySQL DSNs get parseTime so DATETIME columns scan into time.Time.
func OpenSQL(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	if driver == task.DialectMySQL {
		mc, err := mysql.ParseDSN(dsn)
		if err != nil {
			return nil, fmt.Errorf("parse mysql dsn: %w", err)
		}
		mc.ParseTime = true
		mc.Loc = time.UTC
		dsn = mc.FormatDSN()
	}
	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == task.DialectSQLite {
		// one writer at a time avoids "database is locked"
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return sqlDB, nil
}

// OpenStore builds the task repository selected by cfg.DBDriver and ensures
// its schema. The returned close function releases the connection.
func OpenStore(ctx context.Context, cfg *config.Config) (task.Store, func(), error) {
	var (
		store   task.Store
		closeFn = func() {}
	)
	switch cfg.DBDriver {
	case "postgres":
		pool, err := Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		store, closeFn = task.NewPgStore(pool), pool.Close
	case "mongo":
		client, err := ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		coll := client.Database(cfg.MongoDatabase).Collection("tasks")
		store = task.NewMongoStore(coll)
		closeFn = func() { _ = client.Disconnect(context.Background()) }
	case task.DialectSQLite, task.DialectMySQL:
		sqlDB, err := OpenSQL(ctx, cfg.DBDriver, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		s, err := task.NewSQLStore(sqlDB, cfg.DBDriver)
		if err != nil {
			sqlDB.Close()
			return nil, nil, err
		}
		store, closeFn = s, func() { sqlDB.Close() }
	case "memory":
		store = task.NewMemStore()
	default:
		return nil, nil, fmt.Errorf("unknown db driver %q", cfg.DBDriver)
	}

	if err := store.EnsureTable(ctx); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("ensure tasks table: %w", err)
	}
	return store, closeFn, nil
}
