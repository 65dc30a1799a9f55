// Package main provides the CLI entrypoint for wireloop.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/wireloop/internal/audio"
	"github.com/verte-zerg/wireloop/internal/config"
	"github.com/verte-zerg/wireloop/internal/levels"
	"github.com/verte-zerg/wireloop/internal/log"
	"github.com/verte-zerg/wireloop/internal/model"
	"github.com/verte-zerg/wireloop/internal/stats"
	"github.com/verte-zerg/wireloop/internal/statsui"
	"github.com/verte-zerg/wireloop/internal/store"
	"github.com/verte-zerg/wireloop/internal/tui"
)

const (
	defaultLogLevel    = "info"
	defaultFPS         = 60
	defaultCurveWindow = 10
)

var (
	logLevel  string
	levelsDir string

	playLevel int
	playTouch bool
	playSound bool
	playFPS   int

	statsLevel       int
	statsSince       string
	statsLast        int
	statsCurveWindow int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "wireloop",
		Short:         "Terminal wire-loop game: trace the path without slipping off",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPlayCmd,
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error, none)")
	rootCmd.PersistentFlags().StringVar(&levelsDir, "levels-dir", config.DefaultLevelsDir(), "directory with user level files")

	rootCmd.Flags().IntVar(&playLevel, "level", 0, "start directly on this level")
	rootCmd.Flags().BoolVar(&playTouch, "touch", false, "use touch tolerances")
	rootCmd.Flags().BoolVar(&playSound, "sound", false, "play audio cues")
	rootCmd.Flags().IntVar(&playFPS, "fps", defaultFPS, "frame rate of the game loop")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newLevelsCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newServeCmd())

	return rootCmd
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.LogLevel)
	applyStringConfig(cmd, "levels-dir", &levelsDir, fileCfg.Play.LevelsDir)
	applyIntConfig(cmd, "level", &playLevel, fileCfg.Play.Level)
	applyBoolConfig(cmd, "touch", &playTouch, fileCfg.Play.Touch)
	applyBoolConfig(cmd, "sound", &playSound, fileCfg.Play.Sound)
	applyIntConfig(cmd, "fps", &playFPS, fileCfg.Play.FPS)

	if playFPS <= 0 {
		return fmt.Errorf("--fps must be > 0")
	}
	if playLevel < 0 {
		return fmt.Errorf("--level must be >= 0")
	}

	logger, closeLog, err := openLogFile(config.DefaultLogPath(), log.LevelFromString(logLevel))
	if err != nil {
		return err
	}
	defer closeLog()

	catalog := levels.Load(levelsDir, logger)

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	var cues audio.Cues = audio.Nop{}
	if playSound {
		speaker, err := audio.NewSpeaker(audio.DefaultVolume)
		if err != nil {
			logErrf("sound disabled: %v\n", err)
		} else {
			cues = speaker
		}
	}
	defer cues.Close()

	m := tui.NewModel(tui.Options{
		Catalog: catalog,
		Store:   st,
		Cues:    cues,
		Logger:  logger,
		Touch:   playTouch,
		FPS:     playFPS,
		Level:   playLevel,
	})
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func openLogFile(path string, level log.Level) (*log.Logger, func(), error) {
	if level == log.LevelNone {
		return log.Discard(), func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return log.New(f, level), func() {
		if cerr := f.Close(); cerr != nil {
			logErrf("failed to close log: %v\n", cerr)
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
	path := config.DefaultConfigPath()
	if err := ensureConfigFile(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// ensureConfigFile writes the commented template unless path exists.
func ensureConfigFile(path string) error {
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
	return nil
}

func newLevelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "levels",
		Short: "List available levels",
		Args:  cobra.NoArgs,
		RunE:  runLevelsCmd,
	}
}

func runLevelsCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "levels-dir", &levelsDir, fileCfg.Play.LevelsDir)
	logger := log.New(os.Stderr, log.LevelFromString(logLevel))
	return writeLevels(cmd.OutOrStdout(), levels.Load(levelsDir, logger))
}

func writeLevels(w io.Writer, catalog *levels.Catalog) error {
	all := catalog.All()
	nameWidth := len("Name")
	for _, l := range all {
		if n := runewidth.StringWidth(l.Name); n > nameWidth {
			nameWidth = n
		}
	}
	if _, err := fmt.Fprintf(w, "%3s  %s  %-10s  %s\n", "#", runewidth.FillRight("Name", nameWidth), "Difficulty", "Points"); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	for _, l := range all {
		if _, err := fmt.Fprintf(w, "%3d  %s  %-10s  %d\n", l.ID, runewidth.FillRight(l.Name, nameWidth), l.Difficulty, len(l.Points)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().IntVar(&statsLevel, "level", 0, "level filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N attempts")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := statsConfig(statsLevel, statsSince, statsLast, statsCurveWindow)
	if err != nil {
		return err
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		report, err := stats.BuildReport(context.Background(), st, cfg)
		if err != nil {
			return fmt.Errorf("failed to build report: %w", err)
		}
		return report.Render(cmd.OutOrStdout(), cfg.CurveWindow)
	}

	program := tea.NewProgram(statsui.NewModel(st, cfg), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func statsConfig(level int, since string, last, window int) (model.StatsConfig, error) {
	if level < 0 {
		return model.StatsConfig{}, fmt.Errorf("--level must be >= 0")
	}
	if last < 0 {
		return model.StatsConfig{}, fmt.Errorf("--last must be >= 0")
	}
	if window <= 0 {
		return model.StatsConfig{}, fmt.Errorf("--curve-window must be > 0")
	}
	var sinceTime *time.Time
	if since != "" {
		parsed, err := time.ParseInLocation("2006-01-02", since, time.Local)
		if err != nil {
			return model.StatsConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	return model.StatsConfig{
		Level:       level,
		Since:       sinceTime,
		Last:        last,
		CurveWindow: window,
	}, nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyStringsConfig(cmd *cobra.Command, name string, target *[]string, value []string) {
	if len(value) == 0 || cmd.Flags().Changed(name) {
		return
	}
	*target = value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# wireloop configuration
# Uncomment a value to enable it. CLI flags override config values.

# log-level = %q          # debug, info, warn, error or none

[play]
# level = 1               # Start directly on this level (0 opens the menu)
# touch = false           # Use the wider touch tolerances
# sound = false           # Play audio cues
# fps = %d                # Frame rate of the game loop
# levels-dir = %q

[serve]
# addr = %q
# tick-rate = %d          # Frames per second sent to each client
# allowed-origins = []     # Accepted Origin headers; empty accepts any
`,
		defaultLogLevel,
		defaultFPS,
		config.DefaultLevelsDir(),
		defaultAddr,
		defaultTickRate,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
