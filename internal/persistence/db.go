// Package persistence provides SQLite storage for simulation runs.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/agro-ecosim/internal/ecosystem"
	"github.com/talgya/agro-ecosim/internal/evaluation"
	"github.com/talgya/agro-ecosim/internal/runner"
)

// ErrRunNotFound is returned when no run has the requested id.
var ErrRunNotFound = errors.New("run not found")

// DB wraps a SQLite connection for run storage.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		batch_id TEXT NOT NULL,
		scenario_id TEXT NOT NULL,
		scenario_name TEXT NOT NULL,
		scenario_json TEXT NOT NULL,
		years INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS snapshots (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		step INTEGER NOT NULL,
		year INTEGER NOT NULL,
		season TEXT NOT NULL,
		crop REAL NOT NULL,
		weed REAL NOT NULL,
		pest REAL NOT NULL,
		bird REAL NOT NULL,
		bat REAL NOT NULL,
		soil_nutrient REAL NOT NULL,
		soil_health REAL NOT NULL,
		herbicide_residue REAL NOT NULL,
		pesticide_residue REAL NOT NULL,
		PRIMARY KEY (run_id, step)
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		year INTEGER NOT NULL,
		season TEXT NOT NULL,
		category TEXT NOT NULL,
		description TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS evaluations (
		run_id TEXT PRIMARY KEY REFERENCES runs(id) ON DELETE CASCADE,
		overall REAL NOT NULL,
		summary TEXT NOT NULL,
		scores_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_batch ON runs(batch_id);
	CREATE INDEX IF NOT EXISTS idx_runs_scenario ON runs(scenario_id);
	CREATE INDEX IF NOT EXISTS idx_events_run ON events(run_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// Run is the stored summary of one run.
type Run struct {
	ID           string    `db:"id" json:"id"`
	BatchID      string    `db:"batch_id" json:"batch_id"`
	ScenarioID   string    `db:"scenario_id" json:"scenario_id"`
	ScenarioName string    `db:"scenario_name" json:"scenario_name"`
	Years        int       `db:"years" json:"years"`
	CreatedAt    time.Time `db:"-" json:"created_at"`
	Overall      float64   `db:"overall" json:"overall_score"`

	CreatedUnix  int64  `db:"created_at" json:"-"`
	ScenarioJSON string `db:"scenario_json" json:"-"`
}

// Scenario decodes the stored scenario configuration.
func (r Run) Scenario() (ecosystem.Scenario, error) {
	var sc ecosystem.Scenario
	if err := json.Unmarshal([]byte(r.ScenarioJSON), &sc); err != nil {
		return sc, fmt.Errorf("decode scenario of run %s: %w", r.ID, err)
	}
	return sc, nil
}

// SaveBatch stores a batch of results under a fresh batch id and returns the
// batch id and one run id per result, in order.
func (db *DB) SaveBatch(results []runner.Result) (string, []string, error) {
	batchID := uuid.NewString()
	ids := make([]string, 0, len(results))
	for _, r := range results {
		id, err := db.saveRun(batchID, r)
		if err != nil {
			return batchID, ids, err
		}
		ids = append(ids, id)
	}
	if err := db.SaveMeta("last_batch", batchID); err != nil {
		return batchID, ids, fmt.Errorf("save meta: %w", err)
	}
	slog.Info("batch saved", "batch", batchID, "runs", len(ids))
	return batchID, ids, nil
}

// SaveRun stores a single result in its own batch and returns its run id.
func (db *DB) SaveRun(r runner.Result) (string, error) {
	return db.saveRun(uuid.NewString(), r)
}

func (db *DB) saveRun(batchID string, r runner.Result) (string, error) {
	id := uuid.NewString()

	scenarioJSON, err := json.Marshal(r.Scenario)
	if err != nil {
		return "", fmt.Errorf("encode scenario: %w", err)
	}
	scoresJSON, err := json.Marshal(r.Evaluation)
	if err != nil {
		return "", fmt.Errorf("encode evaluation: %w", err)
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO runs
		(id, batch_id, scenario_id, scenario_name, scenario_json, years, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, batchID, r.Scenario.ID, r.Scenario.Name, string(scenarioJSON), r.Years, time.Now().Unix(),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	if err := saveSnapshots(tx, id, r.History); err != nil {
		return "", err
	}
	if err := saveEvents(tx, id, r.Events); err != nil {
		return "", err
	}

	_, err = tx.Exec(
		"INSERT INTO evaluations (run_id, overall, summary, scores_json) VALUES (?, ?, ?, ?)",
		id, r.Evaluation.Overall, r.Evaluation.Summary, string(scoresJSON),
	)
	if err != nil {
		return "", fmt.Errorf("insert evaluation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

func saveSnapshots(tx *sqlx.Tx, runID string, h ecosystem.History) error {
	stmt, err := tx.Preparex(`INSERT INTO snapshots
		(run_id, step, year, season, crop, weed, pest, bird, bat,
		 soil_nutrient, soil_health, herbicide_residue, pesticide_residue)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, s := range h.Snapshots() {
		_, err := stmt.Exec(
			runID, i, s.Year, s.Season.String(),
			s.Crop, s.Weed, s.Pest, s.Bird, s.Bat,
			s.SoilNutrient, s.SoilHealth, s.HerbicideResidue, s.PesticideResidue,
		)
		if err != nil {
			return fmt.Errorf("insert snapshot %d: %w", i, err)
		}
	}
	return nil
}

func saveEvents(tx *sqlx.Tx, runID string, events []ecosystem.Event) error {
	for _, e := range events {
		_, err := tx.Exec(
			"INSERT INTO events (run_id, year, season, category, description) VALUES (?, ?, ?, ?, ?)",
			runID, e.Year, e.Season.String(), e.Category, e.Description,
		)
		if err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
	}
	return nil
}

const runColumns = `r.id, r.batch_id, r.scenario_id, r.scenario_name, r.scenario_json,
	r.years, r.created_at, COALESCE(e.overall, 0) AS overall`

// ListRuns returns stored runs, newest first.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	var runs []Run
	err := db.conn.Select(&runs,
		`SELECT `+runColumns+` FROM runs r
		 LEFT JOIN evaluations e ON e.run_id = r.id
		 ORDER BY r.created_at DESC, r.rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	for i := range runs {
		runs[i].CreatedAt = time.Unix(runs[i].CreatedUnix, 0)
	}
	return runs, nil
}

// GetRun returns the stored summary of a run.
func (db *DB) GetRun(id string) (Run, error) {
	var run Run
	err := db.conn.Get(&run,
		`SELECT `+runColumns+` FROM runs r
		 LEFT JOIN evaluations e ON e.run_id = r.id
		 WHERE r.id = ?`,
		id,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return run, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return run, err
	}
	run.CreatedAt = time.Unix(run.CreatedUnix, 0)
	return run, nil
}

type snapshotRow struct {
	Year             int     `db:"year"`
	Season           string  `db:"season"`
	Crop             float64 `db:"crop"`
	Weed             float64 `db:"weed"`
	Pest             float64 `db:"pest"`
	Bird             float64 `db:"bird"`
	Bat              float64 `db:"bat"`
	SoilNutrient     float64 `db:"soil_nutrient"`
	SoilHealth       float64 `db:"soil_health"`
	HerbicideResidue float64 `db:"herbicide_residue"`
	PesticideResidue float64 `db:"pesticide_residue"`
}

// LoadHistory rebuilds the recorded history of a run.
func (db *DB) LoadHistory(id string) (ecosystem.History, error) {
	if _, err := db.GetRun(id); err != nil {
		return ecosystem.History{}, err
	}

	var rows []snapshotRow
	err := db.conn.Select(&rows,
		`SELECT year, season, crop, weed, pest, bird, bat, soil_nutrient, soil_health,
		        herbicide_residue, pesticide_residue
		 FROM snapshots WHERE run_id = ? ORDER BY step`,
		id,
	)
	if err != nil {
		return ecosystem.History{}, err
	}

	snaps := make([]ecosystem.Snapshot, len(rows))
	for i, row := range rows {
		season, err := ecosystem.ParseSeason(row.Season)
		if err != nil {
			return ecosystem.History{}, fmt.Errorf("snapshot %d: %w", i, err)
		}
		snaps[i] = ecosystem.Snapshot{
			Year:   row.Year,
			Season: season,
			State: ecosystem.State{
				Crop:             row.Crop,
				Weed:             row.Weed,
				Pest:             row.Pest,
				Bird:             row.Bird,
				Bat:              row.Bat,
				SoilNutrient:     row.SoilNutrient,
				SoilHealth:       row.SoilHealth,
				HerbicideResidue: row.HerbicideResidue,
				PesticideResidue: row.PesticideResidue,
			},
		}
	}
	return ecosystem.NewHistory(snaps), nil
}

type eventRow struct {
	Year        int    `db:"year"`
	Season      string `db:"season"`
	Category    string `db:"category"`
	Description string `db:"description"`
}

// LoadEvents returns the farming operations recorded for a run.
func (db *DB) LoadEvents(id string) ([]ecosystem.Event, error) {
	var rows []eventRow
	err := db.conn.Select(&rows,
		"SELECT year, season, category, description FROM events WHERE run_id = ? ORDER BY id",
		id,
	)
	if err != nil {
		return nil, err
	}

	events := make([]ecosystem.Event, len(rows))
	for i, row := range rows {
		season, err := ecosystem.ParseSeason(row.Season)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		events[i] = ecosystem.Event{
			Year:        row.Year,
			Season:      season,
			Category:    row.Category,
			Description: row.Description,
		}
	}
	return events, nil
}

// LoadEvaluation returns the stored evaluation of a run.
func (db *DB) LoadEvaluation(id string) (evaluation.Result, error) {
	var scores string
	err := db.conn.Get(&scores, "SELECT scores_json FROM evaluations WHERE run_id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return evaluation.Result{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return evaluation.Result{}, err
	}

	var res evaluation.Result
	if err := json.Unmarshal([]byte(scores), &res); err != nil {
		return res, fmt.Errorf("decode evaluation: %w", err)
	}
	return res, nil
}

// DeleteRun removes a run and everything recorded for it.
func (db *DB) DeleteRun(id string) error {
	res, err := db.conn.Exec("DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

// SaveMeta stores a key-value pair in database metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM meta WHERE key = ?", key)
	return value, err
}
