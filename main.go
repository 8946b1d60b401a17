package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	orchestratorx "github.com/tanpawarit/contact-assistant/agent/agents/orchestrator"
	"github.com/tanpawarit/contact-assistant/agent/contact"
	"github.com/tanpawarit/contact-assistant/agent/llm"
	toolx "github.com/tanpawarit/contact-assistant/agent/tool"
	"github.com/tanpawarit/contact-assistant/api"
	configx "github.com/tanpawarit/contact-assistant/pkg/config"
	_ "github.com/tanpawarit/contact-assistant/pkg/logger/autoload"
)

type AppConfig struct {
	Addr            string        `envconfig:"ADDR" default:":3000"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" split_words:"true" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" split_words:"true" default:"10s"`
	StoreDriver     string        `envconfig:"STORE_DRIVER" split_words:"true" default:"postgres"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appCfg := configx.MustNew[AppConfig]("APP")
	agentCfg := configx.MustNew[orchestratorx.Config]("AGENT")

	llmCfg, err := configx.New[llm.Config]("LLM")
	if err != nil {
		log.Fatal().Err(err).Msg("invalid llm configuration")
	}

	log.Info().
		Str("addr", appCfg.Addr).
		Str("store", appCfg.StoreDriver).
		Str("llm_provider", llmCfg.Provider).
		Str("llm_model", llmCfg.ModelName()).
		Bool("llm_api_key_set", strings.TrimSpace(llmCfg.APIKey) != "").
		Msg("environment check")

	store, closeStore, err := openStore(ctx, appCfg.StoreDriver)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open contact store")
	}
	defer closeStore()

	client, err := llm.New(ctx, *llmCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize model client")
	}

	tools, executor := toolx.BuildCatalog(store, time.Now)
	agent, err := orchestratorx.New(client, tools, executor, *agentCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize orchestrator")
	}

	srv := &http.Server{
		Addr:              appCfg.Addr,
		Handler:           api.NewRouter(store, agent, api.Config{RequestTimeout: appCfg.RequestTimeout}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatal().Err(err).Msg("http server failed")
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), appCfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown")
	}
	log.Info().Msg("server stopped")
}

func openStore(ctx context.Context, driver string) (contact.Store, func(), error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "memory":
		return contact.NewMemoryStore(), func() {}, nil
	case "postgres", "":
		pgCfg, err := configx.New[contact.PostgresConfig]("DATABASE")
		if err != nil {
			return nil, nil, err
		}
		db, err := contact.OpenPostgres(*pgCfg)
		if err != nil {
			return nil, nil, err
		}
		closeDB := func() {
			if err := db.Close(); err != nil {
				log.Warn().Err(err).Msg("close database")
			}
		}
		if pgCfg.AutoMigrate {
			if err := contact.Migrate(ctx, db); err != nil {
				closeDB()
				return nil, nil, err
			}
		}
		store, err := contact.NewBunStore(db)
		if err != nil {
			closeDB()
			return nil, nil, err
		}
		return store, closeDB, nil
	default:
		return nil, nil, fmt.Errorf("unsupported store driver %q", driver)
	}
}
