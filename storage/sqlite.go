package storage

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"parcelsync/models"
)

// SQLiteStore is the local operational store: run history and run-scoped
// logs. Domain data lives in Postgres.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sync_runs (
		id INTEGER PRIMARY KEY,
		trigger TEXT,
		started_at DATETIME,
		finished_at DATETIME,
		status TEXT,
		markets_total INTEGER DEFAULT 0,
		markets_failed INTEGER DEFAULT 0,
		total_processed INTEGER DEFAULT 0,
		total_inserted INTEGER DEFAULT 0,
		total_updated INTEGER DEFAULT 0,
		companies_added INTEGER DEFAULT 0,
		error_message TEXT
	);

	CREATE TABLE IF NOT EXISTS sync_logs (
		id INTEGER PRIMARY KEY,
		run_id INTEGER,
		timestamp DATETIME,
		level TEXT,
		message TEXT,
		market TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_logs_run ON sync_logs(run_id, timestamp);
	CREATE INDEX IF NOT EXISTS idx_runs_status ON sync_runs(status, started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) CreateRun(run *models.SyncRun) (int64, error) {
	result, err := s.db.Exec(`
		INSERT INTO sync_runs (trigger, started_at, status, markets_total, markets_failed,
			total_processed, total_inserted, total_updated, companies_added)
		VALUES (?, ?, ?, 0, 0, 0, 0, 0, 0)`,
		run.Trigger, run.StartedAt, run.Status)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (s *SQLiteStore) UpdateRun(run *models.SyncRun) error {
	_, err := s.db.Exec(`
		UPDATE sync_runs SET finished_at = ?, status = ?, markets_total = ?, markets_failed = ?,
			total_processed = ?, total_inserted = ?, total_updated = ?, companies_added = ?,
			error_message = ?
		WHERE id = ?`,
		run.FinishedAt, run.Status, run.MarketsTotal, run.MarketsFailed,
		run.TotalProcessed, run.TotalInserted, run.TotalUpdated, run.CompaniesAdded,
		run.ErrorMessage, run.ID)
	return err
}

func (s *SQLiteStore) Log(runID *int64, level models.LogLevel, message, market string) error {
	_, err := s.db.Exec(`
		INSERT INTO sync_logs (run_id, timestamp, level, message, market)
		VALUES (?, ?, ?, ?, ?)`,
		runID, time.Now(), level, message, market)
	return err
}

func (s *SQLiteStore) RecentRuns(limit int) ([]models.SyncRun, error) {
	rows, err := s.db.Query(`
		SELECT id, trigger, started_at, finished_at, status, markets_total, markets_failed,
			total_processed, total_inserted, total_updated, companies_added,
			COALESCE(error_message, '')
		FROM sync_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.SyncRun
	for rows.Next() {
		var run models.SyncRun
		if err := rows.Scan(&run.ID, &run.Trigger, &run.StartedAt, &run.FinishedAt, &run.Status,
			&run.MarketsTotal, &run.MarketsFailed, &run.TotalProcessed, &run.TotalInserted,
			&run.TotalUpdated, &run.CompaniesAdded, &run.ErrorMessage); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *SQLiteStore) LogsForRun(runID int64) ([]models.SyncLog, error) {
	rows, err := s.db.Query(`
		SELECT id, run_id, timestamp, level, message, market
		FROM sync_logs WHERE run_id = ? ORDER BY timestamp`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.SyncLog
	for rows.Next() {
		var entry models.SyncLog
		if err := rows.Scan(&entry.ID, &entry.RunID, &entry.Timestamp, &entry.Level,
			&entry.Message, &entry.Market); err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}
