package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dshills/unfold/internal/config"
	"github.com/dshills/unfold/internal/document"
	"github.com/dshills/unfold/internal/logging"
)

const configFileName = config.DefaultFileName

// settings holds what every command resolves from its flags.
type settings struct {
	configPath string
	cfg        *config.Config
	logger     *logging.Logger

	// levelOverride is set when --log-level wins over the config file.
	levelOverride bool
}

func loadSettings(cmd *cobra.Command) (*settings, error) {
	flags := cmd.Root().PersistentFlags()

	colorMode, err := flags.GetString("color")
	if err != nil {
		return nil, err
	}
	if err := applyColorMode(colorMode); err != nil {
		return nil, err
	}

	path, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}
	if path == "" {
		path = configFileName
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	levelName, err := flags.GetString("log-level")
	if err != nil {
		return nil, err
	}
	level := cfg.LogLevel()
	if levelName != "" {
		var ok bool
		if level, ok = logging.ParseLevel(levelName); !ok {
			return nil, fmt.Errorf("invalid log level %q (must be debug, info, warn, or error)", levelName)
		}
	}

	logger := logging.New(logging.Config{
		Level:  level,
		Output: os.Stderr,
		Prefix: "unfold",
	})

	return &settings{
		configPath:    path,
		cfg:           cfg,
		logger:        logger,
		levelOverride: levelName != "",
	}, nil
}

// documentOptions maps configuration onto document options.
func documentOptions(cfg *config.Config) []document.Option {
	return []document.Option{
		document.WithInvalidation(cfg.Invalidation()),
		document.WithTabWidth(cfg.Document.TabWidth),
		document.WithRetain(cfg.Document.Retain),
	}
}

func applyColorMode(mode string) error {
	switch mode {
	case "auto":
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		return fmt.Errorf("unsupported color mode %q (must be auto, on, or off)", mode)
	}
	return nil
}
