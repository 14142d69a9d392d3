package main

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"facettes/internal/analysis"
	"facettes/internal/cannibal"
	"facettes/internal/catalog"
	"facettes/internal/config"
	ferrors "facettes/internal/errors"
	"facettes/internal/gateway"
	"facettes/internal/paths"
	"facettes/internal/providers/semrush"
	"facettes/internal/providers/suggest"
	"facettes/internal/query"
	"facettes/internal/ratelimit"
	"facettes/internal/scoring"
	"facettes/internal/slogutil"
	"facettes/internal/storage"
)

// environment is what every command derives from the global flags.
type environment struct {
	dataDir string
	cfg     *config.Config
	logger  *slog.Logger
	factory *slogutil.LoggerFactory

	db      *storage.DB
	history *storage.HistoryStore
	limiter *ratelimit.Limiter
}

var (
	envOnce   sync.Once
	sharedEnv *environment
	envErr    error
)

// getEnv loads and validates the configuration and builds the logger.
// It is initialized on first use.
func getEnv() (*environment, error) {
	envOnce.Do(func() {
		dataDir := paths.ResolveDataDir(dataDirFlag)

		cfg, err := config.LoadConfig(dataDir)
		if err != nil {
			envErr = ferrors.Wrap(ferrors.ConfigurationError, "failed to load configuration", err)
			return
		}
		if catalogFlag != "" {
			cfg.CatalogPath = catalogFlag
		}
		if err := cfg.Validate(); err != nil {
			envErr = ferrors.Wrap(ferrors.ConfigurationError, "invalid configuration", err)
			return
		}

		factory := slogutil.NewLoggerFactory(dataDir, cfg, slogutil.LevelFromVerbosity(verbosity, quietFlag))
		sharedEnv = &environment{
			dataDir: dataDir,
			cfg:     cfg,
			logger:  factory.CLILogger(os.Stderr),
			factory: factory,
		}
	})
	return sharedEnv, envErr
}

// mustGetEnv returns the shared environment or exits on error.
func mustGetEnv() *environment {
	env, err := getEnv()
	if err != nil {
		exitWithError(err)
	}
	return env
}

// closeEnv releases the shared environment, if built.
func closeEnv() {
	if sharedEnv != nil {
		sharedEnv.close()
	}
}

// close releases the database and log files.
func (e *environment) close() {
	if e.history != nil {
		e.history.Close()
		e.history = nil
	}
	if e.db != nil {
		if err := e.db.Close(); err != nil {
			e.logger.Warn("Failed to close database", "error", err.Error())
		}
		e.db = nil
	}
	if e.factory != nil {
		_ = e.factory.Close()
	}
}

// exitWithError prints err with its suggested fixes and exits with status 1.
func exitWithError(err error) {
	fe := ferrors.AsFacetError(err)
	if ferrors.Code(err) == "" {
		err = fe
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)

	if len(fe.SuggestedFixes) > 0 {
		fmt.Fprintln(os.Stderr, "\nSuggested fixes:")
		for _, fix := range fe.SuggestedFixes {
			switch fix.Type {
			case ferrors.RunCommand:
				fmt.Fprintf(os.Stderr, "  - %s: %s\n", fix.Description, fix.Command)
			case ferrors.SetEnv:
				fmt.Fprintf(os.Stderr, "  - %s: export %s=...\n", fix.Description, fix.Variable)
			default:
				fmt.Fprintf(os.Stderr, "  - %s\n", fix.Description)
			}
		}
	}

	closeEnv()
	os.Exit(1)
}

func (e *environment) catalogPath() string {
	return paths.Resolve(e.dataDir, e.cfg.CatalogPath)
}

func (e *environment) selectionsPath() string {
	return paths.Resolve(e.dataDir, e.cfg.SelectionsPath)
}

// loadCatalog loads and validates the configured catalog.
func (e *environment) loadCatalog() (*catalog.Catalog, error) {
	return catalog.Load(e.catalogPath())
}

// loadSelections returns the stored selections, none when no file is set.
func (e *environment) loadSelections() (catalog.Selections, error) {
	if e.cfg.SelectionsPath == "" {
		return catalog.Selections{}, nil
	}
	return catalog.LoadSelections(e.selectionsPath())
}

// openDB opens the database once per process.
func (e *environment) openDB() (*storage.DB, error) {
	if e.db != nil {
		return e.db, nil
	}
	db, err := storage.Open(e.dataDir, e.logger)
	if err != nil {
		return nil, err
	}
	e.db = db
	return db, nil
}

func (e *environment) openHistory() (*analysis.StoreHistory, error) {
	if e.history == nil {
		db, err := e.openDB()
		if err != nil {
			return nil, err
		}
		h, err := storage.NewHistoryStore(db)
		if err != nil {
			return nil, err
		}
		e.history = h
	}
	return analysis.NewStoreHistory(e.history), nil
}

func (e *environment) openCache() (*storage.Cache, error) {
	db, err := e.openDB()
	if err != nil {
		return nil, err
	}
	return storage.NewCache(db, time.Duration(e.cfg.Cache.TTLSeconds)*time.Second), nil
}

func (e *environment) demandClient() *semrush.Client {
	return semrush.New(semrush.Config{
		Endpoint: e.cfg.Semrush.Endpoint,
		APIKey:   e.cfg.Semrush.APIKey,
		Database: e.cfg.Semrush.Database,
		Timeout:  time.Duration(e.cfg.Semrush.TimeoutMs) * time.Millisecond,
	}, e.logger)
}

func (e *environment) suggestClient() *suggest.Client {
	return suggest.New(suggest.Config{
		Endpoint: e.cfg.Suggest.Endpoint,
		Lang:     e.cfg.Suggest.Lang,
		Country:  e.cfg.Suggest.Country,
		Timeout:  time.Duration(e.cfg.Suggest.TimeoutMs) * time.Millisecond,
	}, e.logger)
}

// newGateway wires both providers behind the persistent cache and a
// limiter paced at the configured rates.
func (e *environment) newGateway() (*gateway.Gateway, error) {
	store, err := e.openCache()
	if err != nil {
		return nil, err
	}
	e.limiter = ratelimit.New(e.logger)
	return gateway.New(e.demandClient(), e.suggestClient(), store, e.limiter, gateway.Rates{
		Demand:  e.cfg.Semrush.RequestsPerSecond,
		Suggest: e.cfg.Suggest.RequestsPerSecond,
	}, e.logger)
}

// newRunner builds the full analysis pipeline.
func (e *environment) newRunner() (*analysis.Runner, error) {
	cat, err := e.loadCatalog()
	if err != nil {
		return nil, err
	}
	selections, err := e.loadSelections()
	if err != nil {
		return nil, err
	}
	gw, err := e.newGateway()
	if err != nil {
		return nil, err
	}
	history, err := e.openHistory()
	if err != nil {
		return nil, err
	}

	qualifier := analysis.NewQualifier(
		gw,
		query.NewCombinator(e.cfg.QueryTemplate, e.logger),
		scoring.NewEngine(scoringConfig(e.cfg)),
		e.cfg.BatchSize,
		e.logger,
	)
	detector := cannibal.NewDetector(e.cfg.Cannibalisation.JaccardThreshold)
	return analysis.NewRunner(cat, selections, qualifier, detector, history, runSettings(e.cfg), e.logger), nil
}

// scoringConfig maps the configuration onto the scoring model.
func scoringConfig(cfg *config.Config) scoring.Config {
	s := cfg.Scoring
	return scoring.Config{
		Weights: scoring.Weights{
			Volume:  s.Weights.Volume,
			Suggest: s.Weights.Suggest,
			CPC:     s.Weights.CPC,
			KD:      s.Weights.KD,
		},
		Caps: scoring.Caps{
			Volume: s.Caps.Volume,
			CPC:    s.Caps.CPC,
			KD:     s.Caps.KD,
		},
		IndexThreshold: s.IndexThreshold,
		Zones: scoring.ZoneThresholds{
			ScoreHigh: cfg.Zones.ScoreHigh,
			ScoreLow:  cfg.Zones.ScoreLow,
			KDEasy:    cfg.Zones.KDEasy,
			KDNiche:   cfg.Zones.KDNiche,
		},
	}
}

func legacyThresholds(t config.LevelThresholds) scoring.LegacyThresholds {
	return scoring.LegacyThresholds{
		VolumeTotalMin:  t.VolumeTotalMin,
		VolumeMedianMin: t.VolumeMedianMin,
		SuggestRateMin:  t.SuggestRateMin,
		CPCMin:          t.CPCMin,
	}
}

func runSettings(cfg *config.Config) analysis.Settings {
	return analysis.Settings{
		MaxCombinationDepth: cfg.MaxCombinationDepth,
		Thresholds: analysis.Thresholds{
			Simple:      legacyThresholds(cfg.Thresholds.Simple),
			Combination: legacyThresholds(cfg.Thresholds.Combination),
		},
	}
}
