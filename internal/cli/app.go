package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/mvp-joe/component-atlas/internal/component"
	"github.com/mvp-joe/component-atlas/internal/config"
	"github.com/mvp-joe/component-atlas/internal/discovery"
	"github.com/mvp-joe/component-atlas/internal/logging"
	"github.com/mvp-joe/component-atlas/internal/parser"
	"github.com/mvp-joe/component-atlas/internal/query"
	"github.com/mvp-joe/component-atlas/internal/store"
	"github.com/mvp-joe/component-atlas/internal/syncer"
)

// appOptions are the inputs shared by every command.
type appOptions struct {
	ProjectDir string
	ConfigFile string
	Verbose    bool
	LogOutput  io.Writer
	Progress   parser.ProgressReporter
}

// app is the wired pipeline: parser -> sync engine -> store, fronted by the
// bootstrapper and the query service.
type app struct {
	root    string
	cfg     *config.Config
	logger  *log.Logger
	parser  *parser.Parser
	store   *store.FileStore
	engine  *syncer.Engine
	boot    *discovery.Bootstrapper
	queries *query.Service
}

func currentAppOptions() appOptions {
	return appOptions{
		ProjectDir: projectDir,
		ConfigFile: cfgFile,
		Verbose:    verbose,
	}
}

func newApp(opts appOptions) (*app, error) {
	root := opts.ProjectDir
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		root = wd
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project root: %w", err)
	}

	var loader config.Loader
	if opts.ConfigFile != "" {
		loader = config.NewFileLoader(root, opts.ConfigFile)
	} else {
		loader = config.NewLoader(root)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	level := cfg.Log.Level
	if opts.Verbose {
		level = "debug"
	}
	logger, err := logging.New(logging.Options{Level: level, Output: opts.LogOutput})
	if err != nil {
		return nil, err
	}

	classifier, err := component.NewClassifier(cfg.Categories)
	if err != nil {
		return nil, fmt.Errorf("invalid category rules: %w", err)
	}

	p, err := parser.New(parser.Options{
		RootDir:           root,
		Manifest:          cfg.ManifestPath(root),
		ComponentPatterns: cfg.Paths.Components,
		DocPatterns:       cfg.Paths.Docs,
		IgnorePatterns:    cfg.Paths.Ignore,
		Classifier:        classifier,
		Logger:            logger,
		Progress:          opts.Progress,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create parser: %w", err)
	}

	st := store.NewFileStore(cfg.StorePath(root))
	engine := syncer.New(p, st, logger)
	boot := discovery.New(st, engine, discovery.Options{
		ForceSyncOnStart: cfg.Server.ForceSyncOnStart,
		Logger:           logger,
	})

	queries, err := query.NewService(cfg.Server.SearchCacheSize, logger)
	if err != nil {
		return nil, err
	}

	logger.Debug("Project loaded", "root", root, "manifest", p.ManifestPath(), "store", st.Path())

	return &app{
		root:    root,
		cfg:     cfg,
		logger:  logger,
		parser:  p,
		store:   st,
		engine:  engine,
		boot:    boot,
		queries: queries,
	}, nil
}

func (a *app) Close() {
	a.queries.Close()
}
