package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

// MySQLDeliveryLog implements DeliveryLogRepository using MySQL, for
// deployments where several notifier instances share one log.
type MySQLDeliveryLog struct {
	db *sql.DB
}

// NewMySQLDeliveryLog connects to MySQL and ensures the table exists.
// dsn format: "user:password@tcp(host:port)/dbname?parseTime=true"
func NewMySQLDeliveryLog(dsn string) (*MySQLDeliveryLog, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	query := `
	CREATE TABLE IF NOT EXISTS notification_deliveries (
		topic VARCHAR(64) NOT NULL,
		partition_id INT NOT NULL,
		message_offset BIGINT NOT NULL,
		recipient VARCHAR(255) NOT NULL,
		subject VARCHAR(255) NOT NULL,
		sent_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (topic, partition_id, message_offset, recipient)
	)`
	if _, err := db.Exec(query); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Println("[MySQLDeliveryLog] Initialized")
	return &MySQLDeliveryLog{db: db}, nil
}

// MarkSent records a delivery, reporting whether it is new.
func (l *MySQLDeliveryLog) MarkSent(ctx context.Context, topic string, partition int, offset int64, recipient, subject string) (bool, error) {
	query := `
		INSERT IGNORE INTO notification_deliveries (topic, partition_id, message_offset, recipient, subject)
		VALUES (?, ?, ?, ?, ?)`

	res, err := l.db.ExecContext(ctx, query, topic, partition, offset, recipient, subject)
	if err != nil {
		return false, fmt.Errorf("failed to record delivery: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected > 0, nil
}

// Close closes the database connection.
func (l *MySQLDeliveryLog) Close() error {
	return l.db.Close()
}
