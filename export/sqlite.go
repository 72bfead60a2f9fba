// Package export writes finalized statistics snapshots to a SQLite file.
// The analytics engine itself stays non-persistent; this sink only
// materializes derived output for downstream tooling.
package export

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/scoredlab/archivist/stats"
)

// Database is a handle on one snapshot file.
type Database struct {
	db  *sql.DB
	log *logrus.Logger
}

// NewDatabase opens (creating if needed) a snapshot database.
func NewDatabase(dbPath string, log *logrus.Logger) (*Database, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	database := &Database{db: db, log: log}
	if err := database.initTables(); err != nil {
		return nil, fmt.Errorf("failed to initialize tables: %w", err)
	}
	return database, nil
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.db.Close()
}

func (d *Database) initTables() error {
	query := `
	CREATE TABLE IF NOT EXISTS user_stats (
		username TEXT PRIMARY KEY,
		total_posts INTEGER NOT NULL,
		total_comments INTEGER NOT NULL,
		total_interactions_sent INTEGER NOT NULL,
		total_interactions_received INTEGER NOT NULL,
		num_communities INTEGER NOT NULL,
		total_awards_received INTEGER NOT NULL,
		detail TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS community_stats (
		community TEXT PRIMARY KEY,
		total_posts INTEGER NOT NULL,
		total_comments INTEGER NOT NULL,
		unique_users INTEGER NOT NULL,
		interactions INTEGER NOT NULL,
		active_months INTEGER NOT NULL,
		total_awards INTEGER NOT NULL,
		detail TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_user_stats_posts ON user_stats(total_posts DESC);
	CREATE INDEX IF NOT EXISTS idx_community_stats_users ON community_stats(unique_users DESC);
	`

	_, err := d.db.Exec(query)
	return err
}

// SaveUserStats writes one snapshot of per-user statistics. The full
// finalized record goes into the detail column as JSON so nullable derived
// metrics survive round-tripping.
func (d *Database) SaveUserStats(all map[string]stats.UserStats) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
	INSERT OR REPLACE INTO user_stats (
		username, total_posts, total_comments,
		total_interactions_sent, total_interactions_received,
		num_communities, total_awards_received, detail
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for username, s := range all {
		detail, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("failed to encode stats for %s: %w", username, err)
		}
		if _, err := stmt.Exec(
			username, s.TotalPosts, s.TotalComments,
			s.TotalInteractionsSent, s.TotalInteractionsReceived,
			s.NumCommunities, s.TotalAwardsReceived, string(detail),
		); err != nil {
			return fmt.Errorf("failed to save stats for %s: %w", username, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit user stats: %w", err)
	}

	d.log.WithField("users", len(all)).Info("Exported user statistics")
	return nil
}

// SaveCommunityStats writes one snapshot of per-community statistics.
func (d *Database) SaveCommunityStats(all map[string]stats.CommunityStats) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
	INSERT OR REPLACE INTO community_stats (
		community, total_posts, total_comments, unique_users,
		interactions, active_months, total_awards, detail
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for community, s := range all {
		detail, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("failed to encode stats for %s: %w", community, err)
		}
		if _, err := stmt.Exec(
			community, s.TotalPosts, s.TotalComments, s.UniqueUsers,
			s.Interactions, s.ActiveMonths, s.TotalAwards, string(detail),
		); err != nil {
			return fmt.Errorf("failed to save stats for %s: %w", community, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit community stats: %w", err)
	}

	d.log.WithField("communities", len(all)).Info("Exported community statistics")
	return nil
}
