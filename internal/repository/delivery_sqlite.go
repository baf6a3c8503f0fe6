package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

// SQLiteDeliveryLog implements DeliveryLogRepository using SQLite. The
// default backend: the notifier is a single standalone process and an
// embedded file is all it needs.
type SQLiteDeliveryLog struct {
	db *sql.DB
}

// NewSQLiteDeliveryLog opens (or creates) the delivery log database.
// dbPath is the path to the SQLite database file (e.g., "./data/deliveries.db")
func NewSQLiteDeliveryLog(dbPath string) (*SQLiteDeliveryLog, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports 1 writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	query := `
	CREATE TABLE IF NOT EXISTS notification_deliveries (
		topic TEXT NOT NULL,
		partition INTEGER NOT NULL,
		message_offset INTEGER NOT NULL,
		recipient TEXT NOT NULL,
		subject TEXT NOT NULL,
		sent_at DATETIME NOT NULL DEFAULT (datetime('now')),
		PRIMARY KEY (topic, partition, message_offset, recipient)
	);`
	if _, err := db.Exec(query); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Printf("[SQLiteDeliveryLog] Initialized with database: %s", dbPath)
	return &SQLiteDeliveryLog{db: db}, nil
}

// MarkSent records a delivery, reporting whether it is new.
func (l *SQLiteDeliveryLog) MarkSent(ctx context.Context, topic string, partition int, offset int64, recipient, subject string) (bool, error) {
	query := `
		INSERT INTO notification_deliveries (topic, partition, message_offset, recipient, subject)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(topic, partition, message_offset, recipient) DO NOTHING`

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
func (l *SQLiteDeliveryLog) Close() error {
	return l.db.Close()
}
