package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/muesli/termenv"
	"github.com/rocketscienceinc/tictactoe-solver/internal/config"
	"github.com/rocketscienceinc/tictactoe-solver/internal/repository"
	"github.com/rocketscienceinc/tictactoe-solver/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-solver/internal/service"
	"github.com/rocketscienceinc/tictactoe-solver/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-solver/transport/console"
	"github.com/rocketscienceinc/tictactoe-solver/transport/rest"
)

var (
	ErrAddrNotFound   = errors.New("redis address string is empty")
	ErrUnknownMode    = errors.New("unknown mode")
	ErrUnknownStorage = errors.New("unknown storage")
)

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	gameRepo, locker, closeStorage, err := initStorage(ctx, conf)
	if err != nil {
		return err
	}

	defer func() {
		if err = closeStorage(); err != nil {
			log.Error("could not close storage", "error", err)
		}
	}()

	var opener service.Opener
	if !conf.Bot.FixedOpening {
		opener = tictactoe.NewRandomOpening(time.Now().UnixNano())
	}

	gameService := service.NewGameService(gameRepo)
	botService := service.NewBotService(opener)
	gamePlay := service.NewGamePlayService(logger, gameService, botService, locker)

	switch conf.Mode {
	case config.ModeHTTP:
		log.Info("Starting HTTP server", "port", conf.HTTPPort, "storage", conf.Storage)
		if err = rest.Start(ctx, conf.HTTPPort, rest.NewRouter(logger, gamePlay)); err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
	case config.ModeConsole:
		// a blocked stdin read never sees ctx, so Ctrl+C ends the session directly
		signal.Reset(syscall.SIGINT)

		cli := console.New(logger, gamePlay, os.Stdin, os.Stdout, termenv.EnvColorProfile())
		if err = cli.Run(ctx); err != nil {
			return fmt.Errorf("console error: %w", err)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownMode, conf.Mode)
	}

	log.Info("Application stopped")

	return nil
}

// initStorage picks the session store and the matching move lock.
func initStorage(ctx context.Context, conf *config.Config) (repository.GameRepository, repository.Locker, func() error, error) {
	switch conf.Storage {
	case config.StorageMemory:
		return repository.NewMemoryGameRepository(), repository.NewMemoryLocker(), func() error { return nil }, nil
	case config.StorageRedis:
		if conf.Redis.Host == "" {
			return nil, nil, nil, ErrAddrNotFound
		}

		redisStorage, err := storage.New(ctx, conf.Redis.GetRedisAddr())
		if err != nil {
			return nil, nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
		}

		gameRepo := repository.NewGameRepository(redisStorage, conf.SessionTTL)
		locker := repository.NewRedisLocker(redisStorage, 0)

		return gameRepo, locker, redisStorage.Close, nil
	default:
		return nil, nil, nil, fmt.Errorf("%w: %s", ErrUnknownStorage, conf.Storage)
	}
}
