package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/balloonpop/internal/game"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Round is a finished round stored in the database.
type Round struct {
	ID         string    `json:"id"`
	Mode       string    `json:"mode"`
	Score      int       `json:"score"`
	HighScore  int       `json:"high_score"`
	Pops       int       `json:"pops"`
	Escapes    int       `json:"escapes"`
	FinalSpeed int       `json:"final_speed"`
	StartedAt  time.Time `json:"started_at"`
	EndedAt    time.Time `json:"ended_at"`
}

// NewRound converts a game round summary into a storable round with a fresh ID.
func NewRound(r game.Round) *Round {
	return &Round{
		ID:         uuid.New().String(),
		Mode:       string(r.Mode),
		Score:      r.Score,
		HighScore:  r.HighScore,
		Pops:       r.Pops,
		Escapes:    r.Escapes,
		FinalSpeed: r.FinalSpeed,
		StartedAt:  r.StartedAt,
		EndedAt:    r.EndedAt,
	}
}

// Duration returns how long the round lasted.
func (r *Round) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

// RoundRepository provides CRUD operations for rounds.
type RoundRepository struct {
	db *sql.DB
}

// Rounds returns the round repository for this store.
func (s *Store) Rounds() *RoundRepository {
	return &RoundRepository{db: s.db}
}

const roundColumns = `id, mode, score, high_score, pops, escapes, final_speed, started_at, ended_at`

// Create inserts a round. An empty ID is filled with a new UUID.
func (r *RoundRepository) Create(rd *Round) error {
	if rd.ID == "" {
		rd.ID = uuid.New().String()
	}

	_, err := r.db.Exec(
		`INSERT INTO rounds (`+roundColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rd.ID, rd.Mode, rd.Score, rd.HighScore, rd.Pops, rd.Escapes, rd.FinalSpeed,
		rd.StartedAt.UTC(), rd.EndedAt.UTC(),
	)
	return err
}

// GetByID retrieves a round by its ID.
func (r *RoundRepository) GetByID(id string) (*Round, error) {
	rd, err := scanRound(r.db.QueryRow(`SELECT `+roundColumns+` FROM rounds WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rd, nil
}

// Top returns the best rounds, highest score first. Ties go to the earlier round.
func (r *RoundRepository) Top(limit int) ([]*Round, error) {
	return r.query(`SELECT `+roundColumns+` FROM rounds ORDER BY score DESC, ended_at ASC LIMIT ?`, limit)
}

// TopByMode is Top restricted to one mode.
func (r *RoundRepository) TopByMode(mode string, limit int) ([]*Round, error) {
	return r.query(`SELECT `+roundColumns+` FROM rounds WHERE mode = ? ORDER BY score DESC, ended_at ASC LIMIT ?`, mode, limit)
}

// Recent returns the latest rounds, newest first.
func (r *RoundRepository) Recent(limit int) ([]*Round, error) {
	return r.query(`SELECT `+roundColumns+` FROM rounds ORDER BY ended_at DESC LIMIT ?`, limit)
}

// RecentByMode is Recent restricted to one mode.
func (r *RoundRepository) RecentByMode(mode string, limit int) ([]*Round, error) {
	return r.query(`SELECT `+roundColumns+` FROM rounds WHERE mode = ? ORDER BY ended_at DESC LIMIT ?`, mode, limit)
}

// Best returns the highest recorded score, optionally for one mode.
// It returns 0 when nothing has been recorded.
func (r *RoundRepository) Best(mode string) (int, error) {
	var best sql.NullInt64
	var err error
	if mode == "" {
		err = r.db.QueryRow(`SELECT MAX(score) FROM rounds`).Scan(&best)
	} else {
		err = r.db.QueryRow(`SELECT MAX(score) FROM rounds WHERE mode = ?`, mode).Scan(&best)
	}
	if err != nil {
		return 0, err
	}
	return int(best.Int64), nil
}

// Count returns the number of recorded rounds.
func (r *RoundRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM rounds`).Scan(&n)
	return n, err
}

// Delete removes a round by its ID.
func (r *RoundRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM rounds WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *RoundRepository) query(q string, args ...any) ([]*Round, error) {
	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rounds []*Round
	for rows.Next() {
		rd, err := scanRound(rows)
		if err != nil {
			return nil, err
		}
		rounds = append(rounds, rd)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rounds, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRound(row scanner) (*Round, error) {
	rd := &Round{}
	err := row.Scan(&rd.ID, &rd.Mode, &rd.Score, &rd.HighScore, &rd.Pops, &rd.Escapes,
		&rd.FinalSpeed, &rd.StartedAt, &rd.EndedAt)
	if err != nil {
		return nil, err
	}
	return rd, nil
}
