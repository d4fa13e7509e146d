// Package history keeps a local sqlite journal of game sessions, dispatched
// actions and game results. The journal is purely observational: it records
// what the ledger confirmed, it never feeds back into game state.
package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/decred/dcrd/dcrutil/v4"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"teenpatti-client/pkg/ledger"
)

// Store is the journal database.
type Store struct {
	db *sql.DB
}

// ActionRecord is one dispatched action and its terminal outcome.
type ActionRecord struct {
	SessionID string
	Kind      string
	Amount    dcrutil.Amount
	Outcome   string
	Reason    string
	CreatedAt time.Time
}

// ResultRecord is the recorded outcome of one ended game.
type ResultRecord struct {
	GameID     ledger.GameID
	Winner     string
	Pot        dcrutil.Amount
	RecordedAt time.Time
}

// Action outcomes.
const (
	OutcomeConfirmed = "confirmed"
	OutcomeRejected  = "rejected"
)

// NewStore opens (and if needed creates) the journal at dbPath.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			game_id INTEGER NOT NULL,
			identity TEXT NOT NULL,
			started_at TIMESTAMP NOT NULL,
			ended_at TIMESTAMP
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS actions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			amount INTEGER NOT NULL DEFAULT 0,
			outcome TEXT NOT NULL,
			reason TEXT,
			created_at TIMESTAMP NOT NULL,
			FOREIGN KEY (session_id) REFERENCES sessions(id)
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS results (
			game_id INTEGER PRIMARY KEY,
			winner TEXT,
			pot INTEGER NOT NULL,
			recorded_at TIMESTAMP NOT NULL
		)
	`)
	return err
}

// StartSession records the beginning of a game session and returns its id.
func (s *Store) StartSession(gameID ledger.GameID, identity string, now time.Time) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(`
		INSERT INTO sessions (id, game_id, identity, started_at)
		VALUES (?, ?, ?, ?)
	`, id, uint64(gameID), identity, now)
	if err != nil {
		return "", fmt.Errorf("failed to start session: %v", err)
	}
	return id, nil
}

// EndSession marks a session as finished.
func (s *Store) EndSession(sessionID string, now time.Time) error {
	_, err := s.db.Exec(`
		UPDATE sessions SET ended_at = ? WHERE id = ?
	`, now, sessionID)
	if err != nil {
		return fmt.Errorf("failed to end session: %v", err)
	}
	return nil
}

// RecordAction appends an action with its terminal outcome.
func (s *Store) RecordAction(rec ActionRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO actions (session_id, kind, amount, outcome, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.SessionID, rec.Kind, int64(rec.Amount), rec.Outcome, rec.Reason, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record action: %v", err)
	}
	return nil
}

// RecordResult stores the outcome of an ended game. Re-recording the same
// game keeps the latest winner and pot the ledger reported.
func (s *Store) RecordResult(rec ResultRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO results (game_id, winner, pot, recorded_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(game_id) DO UPDATE SET
			winner = excluded.winner,
			pot = excluded.pot,
			recorded_at = excluded.recorded_at
	`, uint64(rec.GameID), rec.Winner, int64(rec.Pot), rec.RecordedAt)
	if err != nil {
		return fmt.Errorf("failed to record result: %v", err)
	}
	return nil
}

// ActionsForSession returns the actions of one session in dispatch order.
func (s *Store) ActionsForSession(sessionID string) ([]ActionRecord, error) {
	rows, err := s.db.Query(`
		SELECT session_id, kind, amount, outcome, COALESCE(reason, ''), created_at
		FROM actions WHERE session_id = ? ORDER BY id
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query actions: %v", err)
	}
	defer rows.Close()

	var recs []ActionRecord
	for rows.Next() {
		var rec ActionRecord
		var amount int64
		if err := rows.Scan(&rec.SessionID, &rec.Kind, &amount,
			&rec.Outcome, &rec.Reason, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Amount = dcrutil.Amount(amount)
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// Result returns the recorded outcome of a game, or nil if none was
// recorded.
func (s *Store) Result(gameID ledger.GameID) (*ResultRecord, error) {
	var rec ResultRecord
	var pot int64
	var id uint64
	err := s.db.QueryRow(`
		SELECT game_id, COALESCE(winner, ''), pot, recorded_at
		FROM results WHERE game_id = ?
	`, uint64(gameID)).Scan(&id, &rec.Winner, &pot, &rec.RecordedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query result: %v", err)
	}
	rec.GameID = ledger.GameID(id)
	rec.Pot = dcrutil.Amount(pot)
	return &rec, nil
}

// Close closes the journal database.
func (s *Store) Close() error {
	return s.db.Close()
}
