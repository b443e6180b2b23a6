package store

import (
	"errors"
	"testing"
	"time"

	"github.com/ayusman/balloonpop/internal/game"
)

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func seedRounds(t *testing.T, s *Store) []*Round {
	t.Helper()
	rounds := []*Round{
		{Mode: "classic", Score: 40, StartedAt: base, EndedAt: base.Add(30 * time.Second)},
		{Mode: "replay", Score: 120, StartedAt: base.Add(time.Minute), EndedAt: base.Add(time.Minute + 30*time.Second)},
		{Mode: "guided", Score: 80, StartedAt: base.Add(2 * time.Minute), EndedAt: base.Add(2*time.Minute + 30*time.Second)},
		{Mode: "replay", Score: 120, StartedAt: base.Add(3 * time.Minute), EndedAt: base.Add(3*time.Minute + 30*time.Second)},
	}
	for _, rd := range rounds {
		if err := s.Rounds().Create(rd); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}
	return rounds
}

func TestRoundRepository_CreateAssignsID(t *testing.T) {
	s := newTestStore(t)

	rd := &Round{Mode: "classic", Score: 30, StartedAt: base, EndedAt: base.Add(30 * time.Second)}
	if err := s.Rounds().Create(rd); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if rd.ID == "" {
		t.Fatal("Create() should assign an ID")
	}

	got, err := s.Rounds().GetByID(rd.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Score != 30 || got.Mode != "classic" {
		t.Errorf("GetByID() = %+v", got)
	}
	if !got.StartedAt.Equal(rd.StartedAt) || !got.EndedAt.Equal(rd.EndedAt) {
		t.Errorf("times = %v..%v, want %v..%v", got.StartedAt, got.EndedAt, rd.StartedAt, rd.EndedAt)
	}
	if got.Duration() != 30*time.Second {
		t.Errorf("Duration() = %v, want 30s", got.Duration())
	}
}

func TestRoundRepository_GetByIDNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Rounds().GetByID("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestRoundRepository_Top(t *testing.T) {
	s := newTestStore(t)
	rounds := seedRounds(t, s)

	top, err := s.Rounds().Top(3)
	if err != nil {
		t.Fatalf("Top() error = %v", err)
	}
	if len(top) != 3 {
		t.Fatalf("Top(3) returned %d rounds", len(top))
	}
	// Equal scores keep the earlier round first
	wantIDs := []string{rounds[1].ID, rounds[3].ID, rounds[2].ID}
	for i, want := range wantIDs {
		if top[i].ID != want {
			t.Errorf("Top()[%d] = %s (score %d), want %s", i, top[i].ID, top[i].Score, want)
		}
	}
}

func TestRoundRepository_TopByMode(t *testing.T) {
	s := newTestStore(t)
	seedRounds(t, s)

	top, err := s.Rounds().TopByMode("replay", 10)
	if err != nil {
		t.Fatalf("TopByMode() error = %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("TopByMode(replay) returned %d rounds, want 2", len(top))
	}
	for _, rd := range top {
		if rd.Mode != "replay" {
			t.Errorf("unexpected mode %q", rd.Mode)
		}
	}
}

func TestRoundRepository_Recent(t *testing.T) {
	s := newTestStore(t)
	rounds := seedRounds(t, s)

	recent, err := s.Rounds().Recent(2)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("Recent(2) returned %d rounds", len(recent))
	}
	if recent[0].ID != rounds[3].ID || recent[1].ID != rounds[2].ID {
		t.Errorf("Recent() order = %s, %s", recent[0].ID, recent[1].ID)
	}
}

func TestRoundRepository_Best(t *testing.T) {
	s := newTestStore(t)

	best, err := s.Rounds().Best("")
	if err != nil {
		t.Fatalf("Best() on empty table error = %v", err)
	}
	if best != 0 {
		t.Errorf("Best() on empty table = %d, want 0", best)
	}

	seedRounds(t, s)

	tests := []struct {
		mode string
		want int
	}{
		{"", 120},
		{"classic", 40},
		{"guided", 80},
		{"replay", 120},
	}
	for _, tt := range tests {
		got, err := s.Rounds().Best(tt.mode)
		if err != nil {
			t.Fatalf("Best(%q) error = %v", tt.mode, err)
		}
		if got != tt.want {
			t.Errorf("Best(%q) = %d, want %d", tt.mode, got, tt.want)
		}
	}
}

func TestRoundRepository_Delete(t *testing.T) {
	s := newTestStore(t)
	rounds := seedRounds(t, s)

	if err := s.Rounds().Delete(rounds[0].ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Rounds().GetByID(rounds[0].ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}
	if err := s.Rounds().Delete(rounds[0].ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestNewRound(t *testing.T) {
	gr := game.Round{
		Mode:       game.ModeGuided,
		Score:      70,
		HighScore:  90,
		Pops:       7,
		Escapes:    2,
		FinalSpeed: 24,
		StartedAt:  base,
		EndedAt:    base.Add(31 * time.Second),
	}

	rd := NewRound(gr)
	if rd.ID == "" {
		t.Error("NewRound() should assign an ID")
	}
	if rd.Mode != "guided" || rd.Score != 70 || rd.HighScore != 90 ||
		rd.Pops != 7 || rd.Escapes != 2 || rd.FinalSpeed != 24 {
		t.Errorf("NewRound() = %+v", rd)
	}
}

func TestRoundRepository_RecentByMode(t *testing.T) {
	s := newTestStore(t)
	rounds := seedRounds(t, s)

	recent, err := s.Rounds().RecentByMode("replay", 10)
	if err != nil {
		t.Fatalf("RecentByMode() error = %v", err)
	}
	if len(recent) != 2 || recent[0].ID != rounds[3].ID || recent[1].ID != rounds[1].ID {
		t.Errorf("RecentByMode(replay) = %v", recent)
	}
}
