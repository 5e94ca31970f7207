// Package main provides the CLI entrypoint for cstrafe.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/cstrafe/internal/capture"
	"github.com/verte-zerg/cstrafe/internal/config"
	"github.com/verte-zerg/cstrafe/internal/logging"
	"github.com/verte-zerg/cstrafe/internal/model"
	"github.com/verte-zerg/cstrafe/internal/stats"
	"github.com/verte-zerg/cstrafe/internal/strafe"
	"github.com/verte-zerg/cstrafe/internal/trainer"
	"github.com/verte-zerg/cstrafe/internal/tui"
)

const (
	exitFailure         = 1
	exitCaptureDenied   = 2
	defaultSummaryWidth = 40
	summaryTrendPrefix  = len("Hold trend (ms): ")
)

var (
	keyLeft      string
	keyLeftAlias string
	keyRight     string
	keyShoot     string
	keyQuit      string

	captureDevice string
	captureQueue  int
	displayFPS    int

	logLevel  string
	logFile   string
	logFormat string

	configPath string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, capture.ErrCaptureUnavailable) {
			os.Exit(exitCaptureDenied)
		}
		os.Exit(exitFailure)
	}
}

func newRootCmd() *cobra.Command {
	defaults := config.Defaults()
	rootCmd := &cobra.Command{
		Use:           "cstrafe",
		Short:         "Counter-strafe timing trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runTrainCmd,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigPath(), "config file path")

	rootCmd.Flags().StringVar(&keyLeft, "left", defaults.Left, "strafe left key")
	rootCmd.Flags().StringVar(&keyLeftAlias, "left-alias", defaults.LeftAlias, "extra key for strafe left (empty disables)")
	rootCmd.Flags().StringVar(&keyRight, "right", defaults.Right, "strafe right key")
	rootCmd.Flags().StringVar(&keyShoot, "shoot", defaults.Shoot, "shoot key")
	rootCmd.Flags().StringVar(&keyQuit, "quit", defaults.Quit, "quit key")
	rootCmd.Flags().StringVar(&captureDevice, "device", "", "input event device (default: every keyboard)")
	rootCmd.Flags().IntVar(&captureQueue, "queue", defaults.Queue, "event queue capacity")
	rootCmd.Flags().IntVar(&displayFPS, "fps", defaults.FPS, "redraw rate")
	rootCmd.Flags().StringVar(&logLevel, "log-level", defaults.LogLevel, "log level: debug, info, warn, error")
	rootCmd.Flags().StringVar(&logFile, "log-file", defaults.LogFile, `log file path ("-" for stderr)`)
	rootCmd.Flags().StringVar(&logFormat, "log-format", defaults.LogFormat, "log format: text or json")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newDevicesCmd())

	return rootCmd
}

func runTrainCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	bindings, err := capture.ParseBindings(cfg)
	if err != nil {
		return fmt.Errorf("invalid key bindings: %w", err)
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("stdout is not a terminal")
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := logger.Close(); cerr != nil {
			logErrf("failed to close log: %v\n", cerr)
		}
	}()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	bridge := capture.NewBridge(bindings, cfg.Queue, logger.Logger)
	if err := bridge.Start(ctx, capture.NewEvdevSource(cfg.Device)); err != nil {
		logger.Error("capture unavailable", "err", err)
		if errors.Is(err, capture.ErrCaptureUnavailable) {
			logErrln(capture.PermissionHint)
		}
		return err
	}
	defer bridge.Stop()
	logger.Info("session started", "device", cfg.Device, "queue", cfg.Queue, "fps", cfg.FPS)

	labels := keyLabels(cfg)
	tr := trainer.New(bridge, labels, logger.Logger)
	program := tea.NewProgram(tui.NewModel(tr, cfg.FPS, labels[model.KeyQuit]), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	st := tr.Stats()
	bs := bridge.Stats()
	logger.Info("session finished",
		"attempts", st.Total,
		"perfect", st.Perfect,
		"good", st.Good,
		"failed", st.Failed,
		"dropped_events", bs.Dropped,
		"overflow_bursts", bs.Bursts,
	)
	if err := stats.RenderSummary(os.Stdout, st, tr.Holds(), summaryWidth()); err != nil {
		return fmt.Errorf("failed to print summary: %w", err)
	}
	if tr.Frozen() {
		return capture.ErrCaptureLost
	}
	return nil
}

// resolveConfig layers built-in defaults, the config file, then flags that
// were set explicitly.
func resolveConfig(cmd *cobra.Command) (model.Config, error) {
	fileCfg, err := config.LoadConfig(configPath)
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "left", &keyLeft, fileCfg.Keys.Left)
	applyStringConfig(cmd, "left-alias", &keyLeftAlias, fileCfg.Keys.LeftAlias)
	applyStringConfig(cmd, "right", &keyRight, fileCfg.Keys.Right)
	applyStringConfig(cmd, "shoot", &keyShoot, fileCfg.Keys.Shoot)
	applyStringConfig(cmd, "quit", &keyQuit, fileCfg.Keys.Quit)
	applyStringConfig(cmd, "device", &captureDevice, fileCfg.Capture.Device)
	applyIntConfig(cmd, "queue", &captureQueue, fileCfg.Capture.Queue)
	applyIntConfig(cmd, "fps", &displayFPS, fileCfg.Display.FPS)
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-file", &logFile, fileCfg.Log.File)
	applyStringConfig(cmd, "log-format", &logFormat, fileCfg.Log.Format)

	cfg := model.Config{
		Left:      keyLeft,
		LeftAlias: keyLeftAlias,
		Right:     keyRight,
		Shoot:     keyShoot,
		Quit:      keyQuit,
		Device:    captureDevice,
		Queue:     captureQueue,
		FPS:       displayFPS,
		LogLevel:  logLevel,
		LogFile:   logFile,
		LogFormat: logFormat,
	}
	if err := config.Validate(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func newLogger(cfg model.Config) (*logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(logging.Config{Level: level, Format: format, File: cfg.LogFile})
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}
	return logger, nil
}

func keyLabels(cfg model.Config) strafe.Labels {
	var labels strafe.Labels
	labels[model.KeyLeft] = capture.Label(cfg.Left)
	labels[model.KeyRight] = capture.Label(cfg.Right)
	labels[model.KeyShoot] = capture.Label(cfg.Shoot)
	labels[model.KeyQuit] = capture.Label(cfg.Quit)
	return labels
}

func summaryWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= summaryTrendPrefix {
		return defaultSummaryWidth
	}
	return width - summaryTrendPrefix
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
	path := configPath
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(config.Template()), 0o644); err != nil {
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

func newDevicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List keyboard input devices",
		Args:  cobra.NoArgs,
		RunE:  runDevicesCmd,
	}
}

func runDevicesCmd(cmd *cobra.Command, _ []string) error {
	devices, err := capture.ListKeyboards()
	if err != nil {
		return fmt.Errorf("failed to list devices: %w", err)
	}
	if len(devices) == 0 {
		logErrln("No keyboard devices found.")
		return fmt.Errorf("no keyboard devices found")
	}
	readable := 0
	out := cmd.OutOrStdout()
	for _, d := range devices {
		access := "no permission"
		if d.Readable {
			access = "readable"
			readable++
		}
		if _, err := fmt.Fprintf(out, "%s\t%s\t(%s)\n", d.Path, d.Name, access); err != nil {
			return err
		}
	}
	if readable == 0 {
		logErrln(capture.PermissionHint)
	}
	return nil
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
