package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jobcoach/coach-api/internal/adapters/llm"
	"github.com/jobcoach/coach-api/internal/adapters/scrape"
	firestorestore "github.com/jobcoach/coach-api/internal/adapters/storage/firestore"
	memstore "github.com/jobcoach/coach-api/internal/adapters/storage/memory"
	sqlitestore "github.com/jobcoach/coach-api/internal/adapters/storage/sqlite"
	"github.com/jobcoach/coach-api/internal/app/coaching"
	"github.com/jobcoach/coach-api/internal/app/prompt"
	"github.com/jobcoach/coach-api/internal/config"
	"github.com/jobcoach/coach-api/internal/domain"
	"github.com/jobcoach/coach-api/internal/observability"
)

const app = "coach-api"

var (
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "coach-api is a mode-aware AI interview coach over a bounded-context LLM",
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is coach-api.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// The config file is optional; defaults plus env cover a local run.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			log.Fatal(err)
		}
	}
}

// newService wires the coaching core from configuration: model backend,
// archive backend, fragments, assembler, scraper. The returned cleanup
// releases storage clients.
func newService(ctx context.Context, cfg *config.Config) (*coaching.Service, func(), error) {
	log := observability.Logger()

	var (
		model domain.ModelClient
		err   error
	)
	switch cfg.Model.Backend {
	case "gemini":
		log.Info("using gemini model backend", "model", cfg.Model.Name)
		model, err = llm.NewGeminiClient(ctx, llm.GeminiConfig{
			APIKey:        cfg.Model.APIKey,
			Model:         cfg.Model.Name,
			ContextWindow: cfg.Model.ContextWindow,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("initializing gemini client: %w", err)
		}
	default:
		log.Info("using mock model backend")
		mock := llm.NewMock()
		mock.Window = cfg.Model.ContextWindow
		model = mock
	}

	cleanup := func() {}

	var archive domain.Archive
	switch cfg.Storage.Backend {
	case "sqlite":
		log.Info("using sqlite archive", "path", cfg.Storage.SQLitePath)
		store, err := sqlitestore.NewArchive(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("initializing sqlite archive: %w", err)
		}
		archive = store
		cleanup = func() { store.Close() }
	case "firestore":
		log.Info("using firestore archive", "project", cfg.Storage.GCPProject)
		store, err := firestorestore.NewArchive(ctx, cfg.Storage.GCPProject)
		if err != nil {
			return nil, nil, fmt.Errorf("initializing firestore archive: %w", err)
		}
		archive = store
		cleanup = func() { store.Close() }
	default:
		log.Info("using in-memory archive")
		archive = memstore.NewArchive()
	}

	svc := coaching.NewService(
		model,
		prompt.NewStore(cfg.PromptsDir),
		prompt.NewAssembler(cfg.Session.MaxHistoryTurns),
		archive,
		scrape.New(cfg.Scraper.UserAgent, cfg.Scraper.Timeout),
		cfg.Session.MaxQuestions,
	)
	return svc, cleanup, nil
}
