package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/jasha9/digitaltwin/internal/ai"
	"github.com/jasha9/digitaltwin/internal/classify"
	"github.com/jasha9/digitaltwin/internal/config"
	"github.com/jasha9/digitaltwin/internal/generate"
	"github.com/jasha9/digitaltwin/internal/handler"
	"github.com/jasha9/digitaltwin/internal/job"
	"github.com/jasha9/digitaltwin/internal/kvstore"
	"github.com/jasha9/digitaltwin/internal/middleware"
	"github.com/jasha9/digitaltwin/internal/prompt"
	"github.com/jasha9/digitaltwin/internal/retrieval"
	"github.com/jasha9/digitaltwin/internal/schedule"
	"github.com/jasha9/digitaltwin/internal/semcache"
	"github.com/jasha9/digitaltwin/internal/twin"
	"github.com/jasha9/digitaltwin/internal/vectorstore"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "digitaltwin",
		Short: "digital twin query server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the query server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadAndInit(configPath)
			if err != nil {
				return err
			}
			return runServer(cfg)
		},
	}

	askCmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "answer a single question and exit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadAndInit(configPath)
			if err != nil {
				return err
			}
			return runAsk(cmd.Context(), cfg, args[0])
		},
	}

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "probe the vector index and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadAndInit(configPath)
			if err != nil {
				return err
			}
			return runCheck(cmd.Context(), cfg)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd, askCmd, checkCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func loadAndInit(configPath string) (*config.Config, error) {
	if configPath == "" {
		return nil, fmt.Errorf("--config is required")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger.Init(
		cfg.LogConfig.File,
		cfg.LogConfig.Level,
		int(cfg.LogConfig.FileCount),
		int(cfg.LogConfig.FileSize),
		int(cfg.LogConfig.KeepDays),
		cfg.LogConfig.Console,
	)
	logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))
	return cfg, nil
}

type application struct {
	service *twin.Service
	cache   *semcache.Cache
	kv      kvstore.Store
	cfg     *config.Config
}

func buildApplication(ctx context.Context, cfg *config.Config) (*application, error) {
	var embedder ai.IEmbedder
	if cfg.AI.Embedding != nil {
		embedProvider, err := ai.NewEmbedProvider(cfg.AI.Embedding.Provider, cfg.AI.Providers[cfg.AI.Embedding.Provider])
		if err != nil {
			return nil, fmt.Errorf("init embed provider: %w", err)
		}
		embedder = ai.NewEmbedder(embedProvider, cfg.AI.Embedding.Model)
	}

	store, err := vectorstore.New(cfg.VectorStore.Type, cfg.VectorStore.Data, vectorstore.Deps{Embedder: embedder})
	if err != nil {
		return nil, fmt.Errorf("init vector store: %w", err)
	}

	kv, err := kvstore.New(cfg.KVStore.Type, cfg.KVStore.Data)
	if err != nil {
		return nil, fmt.Errorf("init kv store: %w", err)
	}

	chatProviders := make(map[string]ai.IChatProvider)
	candidates := make([]generate.Candidate, 0, len(cfg.AI.Models))
	for _, mc := range cfg.AI.Models {
		provider, ok := chatProviders[mc.Provider]
		if !ok {
			provider, err = ai.NewChatProvider(mc.Provider, cfg.AI.Providers[mc.Provider])
			if err != nil {
				return nil, fmt.Errorf("init chat provider %s: %w", mc.Provider, err)
			}
			chatProviders[mc.Provider] = provider
		}
		candidates = append(candidates, generate.Candidate{
			Name:       fmt.Sprintf("%s/%s", mc.Provider, mc.Model),
			Provider:   provider,
			Model:      mc.Model,
			MaxRetries: mc.MaxRetries,
			RetryDelay: time.Duration(mc.RetryDelayMS) * time.Millisecond,
		})
	}
	generator, err := generate.NewCoordinator(candidates)
	if err != nil {
		return nil, fmt.Errorf("init generator: %w", err)
	}

	classifier := classify.NewClassifier()
	cache := semcache.New(semcache.Config{
		Capacity:            cfg.Cache.Capacity,
		DefaultTTL:          time.Duration(cfg.Cache.TTLHours) * time.Hour,
		SimilarityThreshold: cfg.Cache.SimilarityThreshold,
	}, classifier)
	cache.LoadFrom(ctx, kv, cfg.Cache.SnapshotKey)

	retriever := retrieval.NewCoordinator(store, retrieval.Config{
		TopK:            cfg.Retrieval.TopK,
		MaxAttempts:     cfg.Retrieval.MaxAttempts,
		Backoff:         time.Duration(cfg.Retrieval.BackoffMS) * time.Millisecond,
		NamespacePrefix: cfg.Retrieval.NamespacePrefix,
	})

	prompts := prompt.NewBuilder(cfg.Persona.Name)
	service := twin.NewService(classifier, cache, retriever, generator, prompts, store)
	return &application{service: service, cache: cache, kv: kv, cfg: cfg}, nil
}

func runServer(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := buildApplication(ctx, cfg)
	if err != nil {
		return err
	}

	scheduler := schedule.New()
	if err := scheduler.Schedule(cfg.Cache.SweepSpec, job.NewCacheSweepJob(app.cache)); err != nil {
		return err
	}
	if err := scheduler.Schedule(cfg.Cache.SnapshotSpec, job.NewCacheSnapshotJob(app.cache, app.kv, cfg.Cache.SnapshotKey)); err != nil {
		return err
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	deps := handler.RouterDeps{
		Twin:       handler.NewTwinHandler(app.service, app.cache),
		AdminToken: cfg.AdminToken,
	}
	extra := []gin.HandlerFunc{
		middleware.CORS(cfg.CORSAllowlist),
		gzip.Gzip(gzip.DefaultCompression),
	}
	if cfg.RateLimitMS > 0 {
		extra = append(extra, middleware.RateLimit(time.Duration(cfg.RateLimitMS)*time.Millisecond))
	}

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	engine, err := webapi.NewEngine(
		"/api/v1",
		addr,
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(extra...),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	logutil.GetLogger(ctx).Info("http server listening", zap.String("addr", addr))

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")

	saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.cache.SaveTo(saveCtx, app.kv, cfg.Cache.SnapshotKey); err != nil {
		logutil.GetLogger(saveCtx).Warn("final cache snapshot failed", zap.Error(err))
	}
	return nil
}

func runAsk(ctx context.Context, cfg *config.Config, question string) error {
	app, err := buildApplication(ctx, cfg)
	if err != nil {
		return err
	}
	result := app.service.Query(ctx, question, nil)
	if !result.Success {
		return fmt.Errorf("query failed: %s", result.Error)
	}
	fmt.Println(result.Answer)
	if len(result.Sources) > 0 {
		fmt.Println()
		fmt.Println("Sources:")
		for _, source := range result.Sources {
			fmt.Printf("  - %s (%.2f)\n", source.Title, source.Relevance)
		}
	}
	return nil
}

func runCheck(ctx context.Context, cfg *config.Config) error {
	app, err := buildApplication(ctx, cfg)
	if err != nil {
		return err
	}
	report := app.service.TestConnectivity(ctx)
	if !report.Success {
		return fmt.Errorf("connectivity check failed: %s", report.Message)
	}
	fmt.Printf("%s: %d vectors, %dms\n", report.Message, report.VectorCount, report.ResponseTimeMs)
	return nil
}
