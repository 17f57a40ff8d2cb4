// Package main provides the CLI entrypoint for deptsays.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/deptsays/internal/config"
	"github.com/verte-zerg/deptsays/internal/generator"
	"github.com/verte-zerg/deptsays/internal/historyui"
	"github.com/verte-zerg/deptsays/internal/input"
	"github.com/verte-zerg/deptsays/internal/model"
	"github.com/verte-zerg/deptsays/internal/stats"
	"github.com/verte-zerg/deptsays/internal/store"
	"github.com/verte-zerg/deptsays/internal/tui"
)

const (
	defaultTrendWindow   = 5
	defaultTerminalWidth = 80
)

var (
	gameDurationSec  int
	gameDays         float64
	gameDaysDecay    float64
	gameInputMs      int
	gameStartMs      int
	gameTransitionMs int
	gameSequenceMin  int
	gameSequenceMax  int
	gameMetaMin      int
	gameMetaMax      int
	gameCompletion   int
	gameMetaBonus    int
	gamePenalty      int
	gameVoice        string
	gameHistory      bool
	gameNoHistory    bool
	gameSeed         int64

	historySince  string
	historyLast   int
	historyWindow int
	historyPlain  bool

	voiceTestSource string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	defaults := model.DefaultConfig()
	rootCmd := &cobra.Command{
		Use:           "deptsays",
		Short:         "Department sequence memory game",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runGameCmd,
	}

	rootCmd.Flags().IntVar(&gameDurationSec, "duration", int(defaults.SessionDuration/time.Second), "session length in seconds")
	rootCmd.Flags().Float64Var(&gameDays, "days", defaults.DaysBudget, "days budget")
	rootCmd.Flags().Float64Var(&gameDaysDecay, "days-decay", defaults.DaysDecay, "days consumed per idle second")
	rootCmd.Flags().IntVar(&gameInputMs, "input-timeout-ms", int(defaults.InputTimeout/time.Millisecond), "time allowed per step in milliseconds")
	rootCmd.Flags().IntVar(&gameStartMs, "start-delay-ms", int(defaults.StartDelay/time.Millisecond), "delay before the first challenge in milliseconds")
	rootCmd.Flags().IntVar(&gameTransitionMs, "transition-delay-ms", int(defaults.TransitionDelay/time.Millisecond), "delay between challenges in milliseconds")
	rootCmd.Flags().IntVar(&gameSequenceMin, "sequence-min", defaults.SequenceMin, "shortest sequence")
	rootCmd.Flags().IntVar(&gameSequenceMax, "sequence-max", defaults.SequenceMax, "longest sequence")
	rootCmd.Flags().IntVar(&gameMetaMin, "meta-min", defaults.MetaMin, "lowest department goal")
	rootCmd.Flags().IntVar(&gameMetaMax, "meta-max", defaults.MetaMax, "highest department goal")
	rootCmd.Flags().IntVar(&gameCompletion, "completion-score", defaults.CompletionScore, "points for a completed sequence")
	rootCmd.Flags().IntVar(&gameMetaBonus, "meta-bonus", defaults.MetaBonus, "extra points when a department reaches its goal")
	rootCmd.Flags().IntVar(&gamePenalty, "failure-penalty", defaults.FailurePenalty, "points lost on a failed sequence")
	rootCmd.Flags().StringVar(&gameVoice, "voice", "", "file or FIFO with recognized speech, one utterance per line")
	rootCmd.Flags().BoolVar(&gameHistory, "history", true, "record finished games")
	rootCmd.Flags().BoolVar(&gameNoHistory, "no-history", false, "do not record finished games")
	rootCmd.Flags().Int64Var(&gameSeed, "seed", 0, "random seed (0 picks one)")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newDepartmentsCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newVoiceTestCmd())

	return rootCmd
}

func runGameCmd(cmd *cobra.Command, _ []string) error {
	env, err := config.LoadEnv()
	if err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}
	fileCfg, err := config.LoadConfig(env.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg, voice, history := resolveGameConfig(cmd, fileCfg.Game)
	if voice == "" {
		voice = env.Voice
	}
	record := history && !gameNoHistory && !env.NoHistory

	if err := validateConfig(cfg); err != nil {
		return err
	}
	cat, err := fileCfg.Catalog()
	if err != nil {
		return err
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("deptsays needs an interactive terminal")
	}

	closeLog, err := setupLogging(env.LogPath)
	if err != nil {
		return err
	}
	defer closeLog()

	var st *store.Store
	if record {
		st, err = store.Open(env.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open db: %w", err)
		}
		defer func() {
			if cerr := st.Close(); cerr != nil {
				logErrf("failed to close db: %v\n", cerr)
			}
		}()
	}

	gen := generator.New()
	if gameSeed != 0 {
		gen = generator.NewSeeded(gameSeed)
	}
	m := tui.NewModel(tui.Options{
		Config:    cfg,
		Catalog:   cat,
		Generator: gen,
		Store:     st,
		VoicePath: voice,
	})
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// resolveGameConfig layers config file values under explicitly set flags and
// returns the session tuning with the voice path and history switch.
func resolveGameConfig(cmd *cobra.Command, g config.GameConfig) (model.Config, string, bool) {
	applyIntConfig(cmd, "duration", &gameDurationSec, g.DurationSec)
	applyFloatConfig(cmd, "days", &gameDays, g.Days)
	applyFloatConfig(cmd, "days-decay", &gameDaysDecay, g.DaysDecay)
	applyIntConfig(cmd, "input-timeout-ms", &gameInputMs, g.InputTimeoutMs)
	applyIntConfig(cmd, "start-delay-ms", &gameStartMs, g.StartDelayMs)
	applyIntConfig(cmd, "transition-delay-ms", &gameTransitionMs, g.TransitionDelayMs)
	applyIntConfig(cmd, "sequence-min", &gameSequenceMin, g.SequenceMin)
	applyIntConfig(cmd, "sequence-max", &gameSequenceMax, g.SequenceMax)
	applyIntConfig(cmd, "meta-min", &gameMetaMin, g.MetaMin)
	applyIntConfig(cmd, "meta-max", &gameMetaMax, g.MetaMax)
	applyIntConfig(cmd, "completion-score", &gameCompletion, g.CompletionScore)
	applyIntConfig(cmd, "meta-bonus", &gameMetaBonus, g.MetaBonus)
	applyIntConfig(cmd, "failure-penalty", &gamePenalty, g.FailurePenalty)
	applyStringConfig(cmd, "voice", &gameVoice, g.Voice)
	applyBoolConfig(cmd, "history", &gameHistory, g.History)

	cfg := model.Config{
		SessionDuration: time.Duration(gameDurationSec) * time.Second,
		DaysBudget:      gameDays,
		DaysDecay:       gameDaysDecay,
		InputTimeout:    time.Duration(gameInputMs) * time.Millisecond,
		StartDelay:      time.Duration(gameStartMs) * time.Millisecond,
		TransitionDelay: time.Duration(gameTransitionMs) * time.Millisecond,
		SequenceMin:     gameSequenceMin,
		SequenceMax:     gameSequenceMax,
		MetaMin:         gameMetaMin,
		MetaMax:         gameMetaMax,
		CompletionScore: gameCompletion,
		MetaBonus:       gameMetaBonus,
		FailurePenalty:  gamePenalty,
	}
	return cfg, gameVoice, gameHistory
}

// setupLogging routes the standard logger to path, or discards it so stray
// output never lands on the alt screen.
func setupLogging(path string) (func(), error) {
	if path == "" {
		log.SetOutput(io.Discard)
		return func() {}, nil
	}
	f, err := tea.LogToFile(path, "deptsays")
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return func() {
		if cerr := f.Close(); cerr != nil {
			logErrf("failed to close log file: %v\n", cerr)
		}
	}, nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	env, err := config.LoadEnv()
	if err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}
	path := env.ConfigPath
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newDepartmentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "departments",
		Short: "List departments",
		Args:  cobra.NoArgs,
		RunE:  runDepartmentsCmd,
	}
}

func runDepartmentsCmd(cmd *cobra.Command, _ []string) error {
	env, err := config.LoadEnv()
	if err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}
	fileCfg, err := config.LoadConfig(env.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cat, err := fileCfg.Catalog()
	if err != nil {
		return err
	}
	rows := make([][]string, 0, cat.Len())
	for _, d := range cat.All() {
		rows = append(rows, []string{d.ID, d.Name, strconv.Itoa(d.Men), strconv.Itoa(d.Women), d.Color})
	}
	lines := stats.FormatTable([]string{"ID", "Name", "Men", "Women", "Color"}, rows, map[int]bool{2: true, 3: true})
	for _, line := range lines {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded games",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historySince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&historyLast, "last", 0, "limit to last N games")
	cmd.Flags().IntVar(&historyWindow, "window", defaultTrendWindow, "grade trend moving average window")
	cmd.Flags().BoolVar(&historyPlain, "plain", false, "print a text report instead of the interactive view")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if historySince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", historySince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if historyLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	if historyWindow < 1 {
		return fmt.Errorf("--window must be >= 1")
	}
	cfg := model.HistoryConfig{Since: sinceTime, Last: historyLast}

	env, err := config.LoadEnv()
	if err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}
	st, err := store.Open(env.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if historyPlain || !term.IsTerminal(int(os.Stdout.Fd())) {
		report, err := stats.BuildReport(cmd.Context(), st, cfg)
		if err != nil {
			return fmt.Errorf("failed to load history: %w", err)
		}
		return stats.RenderHistory(cmd.OutOrStdout(), report, historyWindow, terminalWidth())
	}

	program := tea.NewProgram(historyui.NewModel(st, cfg, historyWindow), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run history TUI: %w", err)
	}
	return nil
}

func newVoiceTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "voice-test",
		Short: "Show how recognized speech is interpreted",
		Args:  cobra.NoArgs,
		RunE:  runVoiceTestCmd,
	}
	cmd.Flags().StringVar(&voiceTestSource, "voice", "", "file or FIFO to read (default: $DEPTSAYS_VOICE, then stdin)")
	return cmd
}

func runVoiceTestCmd(cmd *cobra.Command, _ []string) error {
	env, err := config.LoadEnv()
	if err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}
	source := voiceTestSource
	if source == "" {
		source = env.Voice
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	var (
		ch     <-chan input.Transcript
		cancel context.CancelFunc
	)
	if source == "" || source == "-" {
		ch, cancel = input.Subscribe(ctx, cmd.InOrStdin())
	} else {
		if _, err := os.Stat(source); err != nil {
			return fmt.Errorf("failed to open voice source: %w", err)
		}
		ch, cancel = input.SubscribePath(ctx, source)
	}
	defer cancel()

	out := cmd.OutOrStdout()
	for t := range ch {
		if t.Err != nil {
			logErrf("voice source failed: %v\n", t.Err)
			continue
		}
		if _, err := fmt.Fprintf(out, "%q -> %s\n", t.Text, describeTranscript(t)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func describeTranscript(t input.Transcript) string {
	switch {
	case !t.OK:
		return "not recognized"
	case t.Command.Kind == model.CommandTogglePause:
		return "pause"
	default:
		return fmt.Sprintf("%s %s", t.Command.Direction.Arrow(), t.Command.Direction)
	}
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return defaultTerminalWidth
	}
	return width
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	d := model.DefaultConfig()
	return fmt.Sprintf(`# deptsays configuration
# Uncomment a value to enable it. CLI flags override config values.

[game]
# duration = %d              # Session length in seconds
# days = %.1f                # Days budget
# days-decay = %.2f          # Days consumed per idle second
# input-timeout-ms = %d    # Time allowed per step
# start-delay-ms = %d      # Delay before the first challenge
# transition-delay-ms = %d # Delay between challenges
# sequence-min = %d
# sequence-max = %d
# meta-min = %d
# meta-max = %d
# completion-score = %d      # Points for a completed sequence
# meta-bonus = %d           # Extra points when a department reaches its goal
# failure-penalty = %d       # Points lost on a failed sequence
# voice = "/tmp/deptsays.fifo"  # Recognized speech, one utterance per line
# history = true             # Record finished games

# Replace the built-in departments by listing your own:
# [[departments]]
# id = "ti"
# name = "Tecnologia"
# men = 1
# women = 2
# color = "#1f6feb"
`,
		int(d.SessionDuration/time.Second),
		d.DaysBudget,
		d.DaysDecay,
		int(d.InputTimeout/time.Millisecond),
		int(d.StartDelay/time.Millisecond),
		int(d.TransitionDelay/time.Millisecond),
		d.SequenceMin,
		d.SequenceMax,
		d.MetaMin,
		d.MetaMax,
		d.CompletionScore,
		d.MetaBonus,
		d.FailurePenalty,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.SessionDuration < time.Second {
		return fmt.Errorf("--duration must be >= 1")
	}
	if cfg.DaysBudget <= 0 {
		return fmt.Errorf("--days must be > 0")
	}
	if cfg.DaysDecay < 0 {
		return fmt.Errorf("--days-decay must be >= 0")
	}
	if cfg.InputTimeout <= 0 {
		return fmt.Errorf("--input-timeout-ms must be > 0")
	}
	if cfg.StartDelay < 0 || cfg.TransitionDelay < 0 {
		return fmt.Errorf("delays must be >= 0")
	}
	if cfg.SequenceMin < 1 || cfg.SequenceMax < cfg.SequenceMin {
		return fmt.Errorf("--sequence-min must be >= 1 and <= --sequence-max")
	}
	if cfg.MetaMin < 1 || cfg.MetaMax < cfg.MetaMin {
		return fmt.Errorf("--meta-min must be >= 1 and <= --meta-max")
	}
	if cfg.CompletionScore < 0 || cfg.MetaBonus < 0 || cfg.FailurePenalty < 0 {
		return fmt.Errorf("score values must be >= 0")
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
