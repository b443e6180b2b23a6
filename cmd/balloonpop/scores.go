package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ayusman/balloonpop/internal/config"
	"github.com/ayusman/balloonpop/internal/game"
	"github.com/ayusman/balloonpop/internal/store"
)

var (
	flagScoresMode   string
	flagScoresLimit  int
	flagScoresRecent bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show the best and latest rounds",
	Long: `Display the top rounds from the round history, best first.

Examples:
  balloonpop scores
  balloonpop scores --mode classic
  balloonpop scores --recent --limit 20`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runScores,
}

func init() {
	scoresCmd.Flags().StringVar(&flagScoresMode, "mode", "", "Only show rounds of this mode")
	scoresCmd.Flags().IntVar(&flagScoresLimit, "limit", 10, "Number of rounds to show")
	scoresCmd.Flags().BoolVar(&flagScoresRecent, "recent", false, "Show the latest rounds instead of the best")
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("245"))
	rankStyle   = lipgloss.NewStyle().Width(6)
	scoreStyle  = lipgloss.NewStyle().Width(8).Align(lipgloss.Right).Foreground(lipgloss.Color("11"))
	cellStyle   = lipgloss.NewStyle().Width(10).PaddingLeft(2)
	dateStyle   = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("245"))
	bestStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
)

func runScores(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	mode := ""
	if flagScoresMode != "" {
		m, err := game.ParseMode(flagScoresMode)
		if err != nil {
			return err
		}
		mode = string(m)
	}
	if flagScoresLimit <= 0 {
		return fmt.Errorf("--limit must be positive, got %d", flagScoresLimit)
	}

	if cfg.Store.Path == "" {
		return fmt.Errorf("round history is disabled (store.path is empty)")
	}
	path, err := config.ExpandHome(cfg.Store.Path)
	if err != nil {
		return err
	}
	st, err := store.New(path)
	if err != nil {
		return fmt.Errorf("open round history: %w", err)
	}
	defer st.Close()

	rounds, err := listRounds(st.Rounds(), mode, flagScoresRecent, flagScoresLimit)
	if err != nil {
		return fmt.Errorf("read rounds: %w", err)
	}
	best, err := st.Rounds().Best(mode)
	if err != nil {
		return fmt.Errorf("read best score: %w", err)
	}

	printScores(os.Stdout, rounds, mode, flagScoresRecent, best)
	return nil
}

func listRounds(repo *store.RoundRepository, mode string, recent bool, limit int) ([]*store.Round, error) {
	switch {
	case recent && mode != "":
		return repo.RecentByMode(mode, limit)
	case recent:
		return repo.Recent(limit)
	case mode != "":
		return repo.TopByMode(mode, limit)
	default:
		return repo.Top(limit)
	}
}

// printScores writes the rounds as a table followed by the best score.
func printScores(w io.Writer, rounds []*store.Round, mode string, recent bool, best int) {
	title := "High Scores"
	if recent {
		title = "Latest Rounds"
	}
	if mode != "" {
		title += " - " + mode
	}
	fmt.Fprintln(w, titleStyle.Render(title))
	fmt.Fprintln(w)

	if len(rounds) == 0 {
		fmt.Fprintln(w, "No rounds recorded yet.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Run 'balloonpop play' to set the first high score!")
		return
	}

	header := lipgloss.JoinHorizontal(lipgloss.Top,
		rankStyle.Render("Rank"),
		lipgloss.NewStyle().Width(8).Align(lipgloss.Right).Render("Score"),
		cellStyle.Render("Mode"),
		cellStyle.Render("Pops"),
		dateStyle.Render("Date"),
	)
	fmt.Fprintln(w, headerStyle.Render(header))
	fmt.Fprintln(w, headerStyle.Render(strings.Repeat("-", lipgloss.Width(header))))

	for i, r := range rounds {
		fmt.Fprintln(w, lipgloss.JoinHorizontal(lipgloss.Top,
			rankStyle.Render(fmt.Sprintf("%d", i+1)),
			scoreStyle.Render(fmt.Sprintf("%d", r.Score)),
			cellStyle.Render(r.Mode),
			cellStyle.Render(fmt.Sprintf("%d", r.Pops)),
			dateStyle.Render(r.EndedAt.Local().Format("2006-01-02 15:04")),
		))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, bestStyle.Render(fmt.Sprintf("Best: %d", best)))
}
