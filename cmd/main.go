package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"assistant-bot/config"
	telegram "assistant-bot/internal/api"
	app "assistant-bot/internal/application"
	"assistant-bot/internal/container"
	"assistant-bot/internal/domain/port"
	"assistant-bot/internal/export"
	"assistant-bot/internal/infrastructure/storage"
	"assistant-bot/internal/logging"
	"assistant-bot/internal/server"
)

// eventStore хранилище вместе с управлением соединением
type eventStore interface {
	port.EventStore
	Ping(ctx context.Context) error
	Close() error
}

var rootCmd = &cobra.Command{
	Use:           "assistant-bot",
	Short:         "Telegram-помощник: напоминания и список покупок",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Запустить бота, планировщик и служебный HTTP-сервер",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Выгрузить напоминания и покупки пользователя в CSV",
	Long: `Выгрузить напоминания и покупки пользователя в CSV.

Examples:
  assistant-bot export --user 123456789
  assistant-bot export --user 123456789 --out backup.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetInt64("user")
		out, _ := cmd.Flags().GetString("out")
		if userID == 0 {
			return fmt.Errorf("--user is required")
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		store, err := openStore(cfg, slog.Default())
		if err != nil {
			return err
		}
		defer store.Close()

		var w io.Writer = cmd.OutOrStdout()
		if out != "" {
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("creating %s: %w", out, err)
			}
			defer f.Close()
			w = f
		}
		return export.WriteCSV(cmd.Context(), w, store, userID, cfg.Location)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Создать или обновить схему базы данных",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		store, err := openStore(cfg, slog.Default())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "schema is up to date (%s)\n", cfg.DBDriver)
		return store.Close()
	},
}

func init() {
	exportCmd.Flags().Int64("user", 0, "Telegram user ID")
	exportCmd.Flags().String("out", "", "output file (default stdout)")
	rootCmd.AddCommand(serveCmd, exportCmd, migrateCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := logging.Init(cfg.LogLevel)

	if cfg.TelegramToken == "" {
		return errors.New("TELEGRAM_TOKEN is required")
	}

	store, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	clock := app.SystemClock{Location: cfg.Location}

	// Состояния диалогов живут только в памяти процесса
	convRepo := storage.NewMemoryConversationRepository()

	// Собираем сервисы приложения
	appContainer := container.New(store, convRepo, clock, cfg.DateGrace, logger)

	bot, err := telegram.NewBot(cfg.TelegramToken, appContainer, cfg.Location, cfg.DeliveryTimeout, logger)
	if err != nil {
		return fmt.Errorf("create bot: %w", err)
	}

	scheduler := app.NewScheduler(store, bot, clock, app.SchedulerConfig{
		Interval:        cfg.PollInterval,
		Skew:            cfg.DueSkew,
		DeliveryTimeout: cfg.DeliveryTimeout,
	}, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return bot.Run(gctx) })
	g.Go(func() error { return scheduler.Run(gctx) })
	if cfg.HTTPAddr != "" {
		status := server.New(store, store, cfg.Location, cfg.ExportToken, logger)
		g.Go(func() error { return status.Serve(gctx, cfg.HTTPAddr) })
	}

	logger.Info("bot is running", slog.String("db_driver", cfg.DBDriver))
	return g.Wait()
}

func openStore(cfg *config.Config, logger *slog.Logger) (eventStore, error) {
	switch cfg.DBDriver {
	case "postgres":
		s, err := storage.OpenPostgres(cfg.DatabaseURL, logger)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return s, nil
	default:
		s, err := storage.OpenSQLite(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return s, nil
	}
}
