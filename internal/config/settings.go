package config

import (
	"fmt"
	"strings"

	"github.com/verte-zerg/cstrafe/internal/model"
)

// Limits for user-tunable values.
const (
	MinFPS   = 10
	MaxFPS   = 1000
	MinQueue = 8
)

// Defaults returns the built-in settings.
func Defaults() model.Config {
	return model.Config{
		Left:      "a",
		LeftAlias: "left_alt",
		Right:     "d",
		Shoot:     "space",
		Quit:      "esc",
		Queue:     256,
		FPS:       120,
		LogLevel:  "info",
		LogFile:   DefaultLogPath(),
		LogFormat: "text",
	}
}

// Validate checks ranges. Key names are checked when bindings are parsed.
func Validate(cfg model.Config) error {
	if strings.TrimSpace(cfg.Left) == "" || strings.TrimSpace(cfg.Right) == "" {
		return fmt.Errorf("left and right keys must be set")
	}
	if strings.EqualFold(strings.TrimSpace(cfg.Left), strings.TrimSpace(cfg.Right)) {
		return fmt.Errorf("left and right keys must differ")
	}
	if cfg.FPS < MinFPS || cfg.FPS > MaxFPS {
		return fmt.Errorf("fps must be between %d and %d", MinFPS, MaxFPS)
	}
	if cfg.Queue < MinQueue {
		return fmt.Errorf("queue must be at least %d", MinQueue)
	}
	return nil
}

// Template is the commented config written by `cstrafe config`.
func Template() string {
	d := Defaults()
	return fmt.Sprintf(`# cstrafe configuration
# Uncomment a value to enable it. CLI flags override config values.

[keys]
# left = %q              # Strafe left
# left_alias = %q  # Extra key for left; "" disables it
# right = %q             # Strafe right
# shoot = %q         # Fire; pressing it mid counter-strafe is an error
# quit = %q            # Ends the session

[capture]
# device = ""             # Event device path; empty reads every keyboard
# queue = %d             # Events buffered between capture and the trainer

[display]
# fps = %d               # Redraw rate (%d-%d)

[log]
# level = %q          # debug, info, warn, error
# file = ""               # Log path; "-" is stderr (default under XDG_STATE_HOME)
# format = %q         # text or json
`,
		d.Left,
		d.LeftAlias,
		d.Right,
		d.Shoot,
		d.Quit,
		d.Queue,
		d.FPS, MinFPS, MaxFPS,
		d.LogLevel,
		d.LogFormat,
	)
}
