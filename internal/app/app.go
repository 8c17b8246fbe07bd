package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/lazygrid/internal/ctxlog"
	"github.com/vk/lazygrid/internal/diagnostic"
	"github.com/vk/lazygrid/internal/engine"
	"github.com/vk/lazygrid/internal/loader"
	"github.com/vk/lazygrid/internal/position"
	"github.com/vk/lazygrid/internal/program"
)

var (
	// ErrLoadFailed is returned once load diagnostics were written.
	ErrLoadFailed = errors.New("loading failed")
	// ErrEvaluationFailed is returned once an evaluation error was written.
	ErrEvaluationFailed = errors.New("evaluation failed")
)

// diagnosticWidth wraps diagnostic text.
const diagnosticWidth = 100

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	errW     io.Writer
	logger   *slog.Logger
	config   *Config
	files    *position.Files
	loader   *loader.Loader
	renderer *diagnostic.Renderer
	engine   *engine.Engine
}

// NewApp is the constructor for the main application. Results are written
// to outW; logs and diagnostics go to errW.
func NewApp(outW, errW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, errW)
	logger.Debug("Logger configured successfully.")

	files := position.NewFiles()
	l := loader.New(files)
	return &App{
		outW:     outW,
		errW:     errW,
		logger:   logger,
		config:   cfg,
		files:    files,
		loader:   l,
		renderer: diagnostic.NewRenderer(files, l.HCLFiles(), diagnosticWidth, cfg.Color),
	}
}

// Load parses the builtin library and the configured paths, and prepares
// the engine. Failures are written to the error writer.
func (a *App) Load(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("Loading program.", "paths", a.config.Paths)

	prog := program.New()
	builtin, err := a.loader.LoadStdlib(ctx, prog)
	if err == nil {
		err = a.loader.LoadPaths(ctx, prog, a.config.Paths...)
	}
	if err == nil {
		a.engine, err = engine.New(a.files, prog, builtin, engine.Options{MaxDepth: a.config.MaxDepth})
	}
	if err != nil {
		a.report(err)
		return fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	a.logger.Info("Program loaded.", "files", a.files.Len(), "lets", len(prog.Lets), "functions", len(prog.Functions))
	return nil
}

// Engine returns the loaded engine, nil before Load. This is primarily for
// testing.
func (a *App) Engine() *engine.Engine {
	return a.engine
}

// report renders err for the user.
func (a *App) report(err error) {
	if werr := a.renderer.Write(a.errW, err); werr != nil {
		a.logger.Error("Failed to write diagnostics.", "error", werr)
	}
}
