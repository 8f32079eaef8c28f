package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/resheikhi/samdash/config"
	predictionHttp "github.com/resheikhi/samdash/http"
	"github.com/resheikhi/samdash/predictor/client/rabbit"
)

const shutdownTimeout = 10 * time.Second

// ExecuteServer serves the prediction pages and API until ctx is done.
func ExecuteServer(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	handler := predictionHttp.PredictionHandler{
		Logger:      logger,
		DefaultDays: cfg.Prediction.HorizonDays,
		MaxDays:     cfg.Prediction.MaxHorizonDays,
		TableRows:   cfg.Prediction.TableRows,
		ChartRows:   cfg.Prediction.ChartRows,
		FileName:    cfg.Prediction.FileName,
	}

	if cfg.AsyncEnabled() {
		conn, err := amqp.Dial(cfg.Rabbit.URL)
		if err != nil {
			return fmt.Errorf("connect to rabbitmq: %w", err)
		}
		defer conn.Close()

		ch, err := conn.Channel()
		if err != nil {
			return fmt.Errorf("open channel: %w", err)
		}
		defer ch.Close()

		if err := rabbit.DeclareQueues(ch, cfg.Rabbit.RequestQueue, cfg.Rabbit.ReplyQueue); err != nil {
			return err
		}

		client := rabbit.NewPredictionClient(ch, cfg.Rabbit.RequestQueue, cfg.Rabbit.ReplyQueue, cfg.Rabbit.ReplyTimeout, logger)
		go func() {
			if err := client.Listen(ctx); err != nil {
				logger.Error(fmt.Errorf("listen for replies: %w", err).Error())
			}
		}()
		handler.Async = client
		logger.Info("async prediction enabled", zap.String("queue", cfg.Rabbit.RequestQueue))
	}

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: predictionHttp.NewRouter(handler, cfg.Server.RequestTimeout),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server is starting", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("server is shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	return nil
}
