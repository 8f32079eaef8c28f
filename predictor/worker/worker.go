package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/resheikhi/samdash/entities"
	"github.com/resheikhi/samdash/predictor"
)

type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Worker answers prediction requests read from a queue.
type Worker struct {
	publisher   Publisher
	defaultDays int
	maxDays     int
	logger      *zap.Logger
	wg          sync.WaitGroup
}

func New(publisher Publisher, defaultDays, maxDays int, logger *zap.Logger) *Worker {
	return &Worker{
		publisher:   publisher,
		defaultDays: defaultDays,
		maxDays:     maxDays,
		logger:      logger.With(zap.String("caller", "PredictionWorker")),
	}
}

// Run handles every delivery in its own goroutine until msgs is closed or
// ctx is done, then waits for in-flight messages.
func (w *Worker) Run(ctx context.Context, msgs <-chan amqp.Delivery) {
	defer w.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			w.wg.Add(1)
			go func(msg amqp.Delivery) {
				defer w.wg.Done()
				w.Handle(ctx, msg)
			}(msg)
		}
	}
}

// Process decodes a request body and computes the prediction. Validation
// failures are returned in the reply, decode failures as an error.
func Process(body []byte, defaultDays, maxDays int) (entities.PredictionReply, error) {
	var req entities.PredictionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return entities.PredictionReply{}, fmt.Errorf("decode request: %w", err)
	}

	in, err := predictor.FromRequest(req, defaultDays, maxDays)
	if err != nil {
		return entities.PredictionReply{Error: err.Error()}, nil
	}

	p := predictor.Predict(in)
	return entities.PredictionReply{Prediction: &p}, nil
}

func (w *Worker) Handle(ctx context.Context, msg amqp.Delivery) {
	var (
		start  = time.Now()
		cid    = msg.CorrelationId
		logger = w.logger.With(zap.String("cid", cid))
	)

	logger.Info("start processing of request")

	if msg.ReplyTo == "" {
		logger.Error("request has no reply queue")
		if err := msg.Reject(false); err != nil {
			logger.Error(fmt.Errorf("reject request: %w", err).Error())
		}
		return
	}

	reply, err := Process(msg.Body, w.defaultDays, w.maxDays)
	if err != nil {
		logger.Error(err.Error())
		w.respond(ctx, logger, msg, entities.PredictionReply{Error: err.Error()})
		if err := msg.Reject(false); err != nil {
			logger.Error(fmt.Errorf("reject request: %w", err).Error())
		}
		return
	}

	if err := w.respond(ctx, logger, msg, reply); err != nil {
		if err := msg.Reject(true); err != nil {
			logger.Error(fmt.Errorf("reject request: %w", err).Error())
		}
		return
	}

	if err := msg.Ack(false); err != nil {
		logger.Error(fmt.Errorf("acknowledge request: %w", err).Error())
		return
	}

	logger.Info("finish processing of request", zap.Duration("duration", time.Since(start)))
}

func (w *Worker) respond(ctx context.Context, logger *zap.Logger, msg amqp.Delivery, reply entities.PredictionReply) error {
	body, err := json.Marshal(reply)
	if err != nil {
		logger.Error(fmt.Errorf("marshal reply: %w", err).Error())
		return err
	}

	err = w.publisher.PublishWithContext(ctx,
		"",          // exchange
		msg.ReplyTo, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:   "application/json",
			CorrelationId: msg.CorrelationId,
			Body:          body,
		})
	if err != nil {
		logger.Error(fmt.Errorf("publish reply: %w", err).Error())
		return err
	}
	return nil
}
