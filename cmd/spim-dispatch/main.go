// spim-dispatch — этап пайплайна обработки SmartSPIM-датасетов.
//
// Режимы:
//
//	dispatch  Разветвляет датасет на downstream-запуски, по одному
//	          на канал, и записывает run record.
//	clean     Удаляет устаревшие промежуточные артефакты каналов,
//	          downstream-копия которых подтверждена маркером.
//
// Использование:
//
//	spim-dispatch [--config pipeline.yaml] <dispatch|clean>
//
// Интеграции (RabbitMQ, Postgres, Pushgateway) опциональны и
// включаются переменными окружения RABBITMQ_URL, DB_URL,
// PUSHGATEWAY_URL.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shaiso/spim-dispatch/internal/cleaner"
	"github.com/shaiso/spim-dispatch/internal/config"
	"github.com/shaiso/spim-dispatch/internal/discovery"
	"github.com/shaiso/spim-dispatch/internal/dispatcher"
	"github.com/shaiso/spim-dispatch/internal/domain"
	"github.com/shaiso/spim-dispatch/internal/launch"
	"github.com/shaiso/spim-dispatch/internal/ledger"
	"github.com/shaiso/spim-dispatch/internal/mq"
	"github.com/shaiso/spim-dispatch/internal/storage"
	"github.com/shaiso/spim-dispatch/internal/telemetry"
	"github.com/shaiso/spim-dispatch/internal/viz"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	logger := telemetry.SetupLogger()

	var configPath string

	rootCmd := &cobra.Command{
		Use:           "spim-dispatch <dispatch|clean>",
		Short:         "SmartSPIM pipeline stage dispatcher",
		Version:       version,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := domain.ParseMode(args[0])
			if err != nil {
				return err
			}
			return run(cmd.Context(), mode, configPath, logger)
		},
	}
	rootCmd.Flags().StringVar(&configPath, "config", "pipeline.yaml", "Path to the pipeline config file")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Error("stage failed", "error", err)
		os.Exit(1)
	}
}

// run выполняет один вызов этапа в заданном режиме.
func run(ctx context.Context, mode domain.Mode, configPath string, logger *slog.Logger) error {
	log := telemetry.WithMode(logger, string(mode))
	log.Info("starting spim-dispatch", "version", version, "config", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	dataset, err := cfg.DatasetName()
	if err != nil {
		return err
	}
	log = telemetry.WithDataset(log, dataset)

	store, err := storage.NewMinioStore(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("connect to object storage: %w", err)
	}
	log.Info("object storage connected", "endpoint", cfg.Storage.Endpoint, "bucket", cfg.Storage.Bucket)

	// RabbitMQ опционален: без него события просто не публикуются.
	var publisher *mq.Publisher
	if url := os.Getenv("RABBITMQ_URL"); url != "" {
		mqConn, err := mq.NewConnection(url, log)
		if err != nil {
			log.Warn("RabbitMQ not available, events will not be published", "error", err)
		} else {
			defer mqConn.Close()
			if err := mq.SetupTopology(ctx, mqConn); err != nil {
				log.Warn("failed to setup topology", "error", err)
			}
			publisher = mq.NewPublisher(mqConn, log)
		}
	}

	// Postgres-журнал тоже опционален.
	var ledg *ledger.Ledger
	if dsn := os.Getenv("DB_URL"); dsn != "" {
		pool, err := ledger.NewPool(ctx, dsn)
		if err != nil {
			log.Warn("ledger database not available", "error", err)
		} else {
			defer pool.Close()
			ledg = ledger.New(pool)
			if err := ledg.EnsureSchema(ctx); err != nil {
				log.Warn("failed to ensure ledger schema", "error", err)
				ledg = nil
			} else {
				log.Info("ledger database connected")
			}
		}
	}

	defer func() {
		if err := telemetry.PushMetrics("spim-dispatch"); err != nil {
			log.Warn("failed to push metrics", "error", err)
		}
	}()

	switch mode {
	case domain.ModeDispatch:
		return runDispatch(ctx, cfg, dataset, store, publisher, ledg, log)
	case domain.ModeClean:
		return runClean(ctx, cfg, dataset, store, publisher, ledg, log)
	default:
		return domain.ErrInvalidMode
	}
}

// runDispatch обнаруживает каналы и разветвляет датасет на запуски.
func runDispatch(
	ctx context.Context,
	cfg *config.Config,
	dataset string,
	store storage.Store,
	publisher *mq.Publisher,
	ledg *ledger.Ledger,
	log *slog.Logger,
) error {
	if cfg.Launch.BaseURL == "" {
		return config.ErrMissingLaunchURL
	}

	disc, err := discovery.New(store, cfg.Discovery, log)
	if err != nil {
		return err
	}
	channels, err := disc.Discover(ctx, cfg.DatasetRoot)
	if err != nil {
		return err
	}
	telemetry.ChannelsDiscovered.Set(float64(len(channels)))

	d, err := dispatcher.New(dispatcher.Config{
		Submitter:       launch.NewClient(cfg.Launch.BaseURL, cfg.Launch.Token, cfg.Launch.Timeout()),
		Pipeline:        cfg.Pipeline,
		Retry:           cfg.Retry,
		PipelineVersion: cfg.PipelineVersion,
		ResultsDir:      cfg.ResultsDir,
		Publisher:       publisher,
		Ledger:          ledg,
		Logger:          log,
	})
	if err != nil {
		return err
	}

	result, dispatchErr := d.Dispatch(ctx, dataset, channels)
	if result == nil {
		return dispatchErr
	}

	if len(result.Handles) > 0 {
		state, err := viz.Build(cfg.Viz, dataset, cfg.Storage.Bucket, result.Handles)
		if err == nil {
			err = viz.Write(cfg.ResultsDir, state)
		}
		if err != nil {
			log.Warn("failed to write neuroglancer state", "error", err)
		}
	}

	fmt.Print(result.Summary())
	announceCompletion(ctx, publisher, log, mq.StageCompletedPayload{
		Dataset:   dataset,
		Mode:      string(domain.ModeDispatch),
		Succeeded: len(result.Handles),
		Failed:    len(result.Failed),
	})

	return dispatchErr
}

// runClean удаляет подтверждённые промежуточные артефакты.
func runClean(
	ctx context.Context,
	cfg *config.Config,
	dataset string,
	store storage.Store,
	publisher *mq.Publisher,
	ledg *ledger.Ledger,
	log *slog.Logger,
) error {
	c, err := cleaner.New(cleaner.Config{
		Store:  store,
		Marker: cfg.Cleanup.Marker,
		Ledger: ledg,
		Logger: log,
	})
	if err != nil {
		return err
	}

	result, cleanErr := c.Clean(ctx, cfg.ResultsDir)
	if result == nil {
		return cleanErr
	}

	fmt.Print(result.Summary())
	announceCompletion(ctx, publisher, log, mq.StageCompletedPayload{
		Dataset:   dataset,
		Mode:      string(domain.ModeClean),
		Succeeded: len(result.Deleted),
		Failed:    len(result.Failed),
		Skipped:   len(result.Skipped),
	})

	return cleanErr
}

// announceCompletion публикует событие о завершении режима.
// Отказ публикации не влияет на exit-статус.
func announceCompletion(ctx context.Context, publisher *mq.Publisher, log *slog.Logger, payload mq.StageCompletedPayload) {
	if publisher == nil {
		return
	}
	if err := publisher.PublishStageCompleted(ctx, payload); err != nil {
		log.Warn("failed to publish stage.completed event", "error", err)
	}
}
