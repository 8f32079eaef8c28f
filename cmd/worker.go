package cmd

import (
	"context"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/resheikhi/samdash/config"
	"github.com/resheikhi/samdash/predictor/client/rabbit"
	"github.com/resheikhi/samdash/predictor/worker"
)

// ExecuteWorker consumes prediction requests until ctx is done.
func ExecuteWorker(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if !cfg.AsyncEnabled() {
		return errors.New("rabbit url is empty")
	}

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

	msgs, err := ch.Consume(
		cfg.Rabbit.RequestQueue, // queue
		"",                      // consumer
		false,                   // auto-ack
		false,                   // exclusive
		false,                   // no-local
		false,                   // no-wait
		nil,                     // args
	)
	if err != nil {
		return fmt.Errorf("consume requests: %w", err)
	}

	logger.Info("worker is starting", zap.String("queue", cfg.Rabbit.RequestQueue))
	worker.New(ch, cfg.Prediction.HorizonDays, cfg.Prediction.MaxHorizonDays, logger).Run(ctx, msgs)
	logger.Info("worker stopped")

	return nil
}
