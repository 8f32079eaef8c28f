package rabbit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/resheikhi/samdash/entities"
)

var (
	ErrTimeout      = errors.New("prediction reply timed out")
	ErrWorker       = errors.New("prediction worker failed")
	ErrClientClosed = errors.New("reply consumer stopped")
)

// Channel is the part of *amqp.Channel used by the client and the worker.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
}

// DeclareQueues declares non-durable queues with the given names.
func DeclareQueues(ch Channel, names ...string) error {
	for _, name := range names {
		_, err := ch.QueueDeclare(
			name,  // name
			false, // durable
			false, // delete when unused
			false, // exclusive
			false, // noWait
			nil,   // arguments
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", name, err)
		}
	}
	return nil
}

// PredictionClient sends prediction requests to the worker queue and waits
// for the correlated reply.
type PredictionClient struct {
	channel      Channel
	requestQueue string
	replyQueue   string
	timeout      time.Duration
	logger       *zap.Logger

	mu      sync.Mutex
	pending map[string]chan amqp.Delivery
	closed  bool
}

func NewPredictionClient(channel Channel, requestQueue, replyQueue string, timeout time.Duration, logger *zap.Logger) *PredictionClient {
	return &PredictionClient{
		channel:      channel,
		requestQueue: requestQueue,
		replyQueue:   replyQueue,
		timeout:      timeout,
		logger:       logger.With(zap.String("caller", "PredictionClient")),
		pending:      make(map[string]chan amqp.Delivery),
	}
}

// Listen consumes the reply queue and hands every reply to the caller
// waiting on its correlation id. It blocks until ctx is done or the
// delivery channel is closed.
func (c *PredictionClient) Listen(ctx context.Context) error {
	msgs, err := c.channel.Consume(
		c.replyQueue, // queue
		"",           // consumer
		true,         // auto-ack
		false,        // exclusive
		false,        // no-local
		false,        // no-wait
		nil,          // args
	)
	if err != nil {
		return fmt.Errorf("consume replies: %w", err)
	}

	defer c.close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			c.dispatch(d)
		}
	}
}

func (c *PredictionClient) dispatch(d amqp.Delivery) {
	c.mu.Lock()
	waiter, ok := c.pending[d.CorrelationId]
	delete(c.pending, d.CorrelationId)
	c.mu.Unlock()

	if !ok {
		c.logger.Info(fmt.Sprintf("received a reply with unknown cid %s", d.CorrelationId))
		return
	}
	waiter <- d
}

func (c *PredictionClient) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	for cid, waiter := range c.pending {
		close(waiter)
		delete(c.pending, cid)
	}
}

func (c *PredictionClient) register(cid string) (chan amqp.Delivery, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClientClosed
	}
	waiter := make(chan amqp.Delivery, 1)
	c.pending[cid] = waiter
	return waiter, nil
}

func (c *PredictionClient) unregister(cid string) {
	c.mu.Lock()
	delete(c.pending, cid)
	c.mu.Unlock()
}

// Predict publishes req with correlation id cid and blocks until the reply
// arrives, ctx is done or the client timeout elapses.
func (c *PredictionClient) Predict(ctx context.Context, req entities.PredictionRequest, cid string) (entities.Prediction, error) {
	logger := c.logger.With(zap.String("method", "Predict"), zap.String("cid", cid))

	body, err := json.Marshal(req)
	if err != nil {
		return entities.Prediction{}, fmt.Errorf("marshal request: %w", err)
	}

	waiter, err := c.register(cid)
	if err != nil {
		return entities.Prediction{}, err
	}
	defer c.unregister(cid)

	start := time.Now()
	err = c.channel.PublishWithContext(ctx,
		"",             // exchange
		c.requestQueue, // routing key
		false,          // mandatory
		false,          // immediate
		amqp.Publishing{
			ContentType:   "application/json",
			CorrelationId: cid,
			ReplyTo:       c.replyQueue,
			Body:          body,
		})
	if err != nil {
		return entities.Prediction{}, fmt.Errorf("publish request: %w", err)
	}

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	var d amqp.Delivery
	select {
	case <-ctx.Done():
		return entities.Prediction{}, ctx.Err()
	case <-timer.C:
		return entities.Prediction{}, ErrTimeout
	case reply, ok := <-waiter:
		if !ok {
			return entities.Prediction{}, ErrClientClosed
		}
		d = reply
	}
	logger.Info("received reply", zap.Duration("duration", time.Since(start)))

	var reply entities.PredictionReply
	if err := json.Unmarshal(d.Body, &reply); err != nil {
		return entities.Prediction{}, fmt.Errorf("decode reply: %w", err)
	}
	if reply.Error != "" {
		return entities.Prediction{}, fmt.Errorf("%w: %s", ErrWorker, reply.Error)
	}
	if reply.Prediction == nil {
		return entities.Prediction{}, fmt.Errorf("%w: empty reply", ErrWorker)
	}

	return *reply.Prediction, nil
}
