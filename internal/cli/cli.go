package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/vk/lazygrid/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// evalFlags are shared by every command that evaluates a program.
type evalFlags struct {
	Entry    string   `help:"Value to evaluate, e.g. server.ports[0]. Defaults to every top-level definition." short:"e"`
	MaxDepth int      `help:"Maximum number of nested function calls. 0 uses the engine default." env:"LAZYGRID_MAX_DEPTH"`
	Paths    []string `arg:"" optional:"" help:"Path to a single .hcl file or a directory containing .hcl files."`
}

type evalCmd struct {
	Flags  evalFlags `embed:""`
	Output string    `help:"Result format: 'json' or 'yaml'." short:"o" env:"LAZYGRID_OUTPUT"`
}

type callsCmd struct {
	Flags evalFlags `embed:""`
}

// arguments is the kong grammar of the command line.
type arguments struct {
	Config    string   `help:"Configuration file. Defaults to ${default_config} when it exists." short:"c" placeholder:"FILE"`
	LogLevel  string   `help:"Set the logging level. Options: 'debug', 'info', 'warn', 'error'." env:"LAZYGRID_LOG_LEVEL"`
	LogFormat string   `help:"Log output format. Options: 'text' or 'json'." env:"LAZYGRID_LOG_FORMAT"`
	Color     string   `help:"Colorize diagnostics: auto, always or never." enum:"auto,always,never" default:"auto"`
	Eval      evalCmd  `cmd:"" help:"Evaluate a program and print the result."`
	Calls     callsCmd `cmd:"" help:"Evaluate a program and print its call log and the reconstructed call chain."`
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	if err := loadEnvFile(".env"); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	var cli arguments
	exited := false
	parser, err := kong.New(&cli,
		kong.Name("lazygrid"),
		kong.Description("Evaluate lazy HCL programs and explain failures with the call chain that led to them."),
		kong.Writers(output, output),
		kong.Exit(func(int) { exited = true }),
		kong.Vars{"default_config": app.DefaultConfigFile},
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to build command line parser: %w", err)
	}

	if len(args) == 0 {
		args = []string{"--help"}
	}
	kctx, err := parser.Parse(args)
	if exited {
		return nil, true, nil
	}
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.", "command", kctx.Command())

	cfg := app.Config{
		LogLevel:  strings.ToLower(cli.LogLevel),
		LogFormat: strings.ToLower(cli.LogFormat),
	}
	command := strings.Fields(kctx.Command())[0]
	var flags evalFlags
	switch command {
	case app.CommandEval:
		flags = cli.Eval.Flags
		cfg.Output = strings.ToLower(cli.Eval.Output)
	case app.CommandCalls:
		flags = cli.Calls.Flags
	default:
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unknown command %q", command)}
	}
	cfg.Command = command
	cfg.Entry = flags.Entry
	cfg.MaxDepth = flags.MaxDepth
	cfg.Paths = flags.Paths

	fileCfg, err := loadConfigFile(cli.Config)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	fileCfg.ApplyTo(&cfg)
	cfg.Color = resolveColor(cli.Color, fileCfg.Color)

	config, err := app.NewConfig(cfg)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}

// loadConfigFile reads the named configuration file, or the default one if
// it exists.
func loadConfigFile(path string) (*app.FileConfig, error) {
	explicit := path != ""
	if !explicit {
		path = app.DefaultConfigFile
	}
	fc, err := app.LoadConfigFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return &app.FileConfig{}, nil
		}
		return nil, err
	}
	slog.Debug("Configuration file loaded.", "path", path)
	return fc, nil
}

// loadEnvFile exports the variables of a dotenv file, if one exists.
// Variables already set in the environment are kept.
func loadEnvFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	slog.Debug("Environment file loaded.", "path", path)
	return nil
}

func resolveColor(mode string, fromFile *bool) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if fromFile != nil {
		return *fromFile
	}
	return !color.NoColor
}
