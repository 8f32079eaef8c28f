package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/resheikhi/samdash/entities"
)

type fakeAcknowledger struct {
	mu       sync.Mutex
	acked    int
	rejected []bool
}

func (f *fakeAcknowledger) Ack(_ uint64, _ bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acked++
	return nil
}

func (f *fakeAcknowledger) Nack(_ uint64, _ bool, _ bool) error { return nil }

func (f *fakeAcknowledger) Reject(_ uint64, requeue bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rejected = append(f.rejected, requeue)
	return nil
}

type publishedMsg struct {
	key string
	msg amqp.Publishing
}

type fakePublisher struct {
	mu        sync.Mutex
	published []publishedMsg
	err       error
}

func (f *fakePublisher) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, publishedMsg{key: key, msg: msg})
	return nil
}

func delivery(t *testing.T, ack amqp.Acknowledger, cid string, body any) amqp.Delivery {
	raw, ok := body.([]byte)
	if !ok {
		var err error
		raw, err = json.Marshal(body)
		require.NoError(t, err)
	}
	return amqp.Delivery{
		Acknowledger:  ack,
		CorrelationId: cid,
		ReplyTo:       "prediction_resp",
		Body:          raw,
	}
}

func decodeReply(t *testing.T, msg amqp.Publishing) entities.PredictionReply {
	var reply entities.PredictionReply
	require.NoError(t, json.Unmarshal(msg.Body, &reply))
	return reply
}

func TestHandle_Success(t *testing.T) {
	pub := &fakePublisher{}
	ack := &fakeAcknowledger{}
	w := New(pub, 365, 3650, zap.NewNop())

	w.Handle(context.Background(), delivery(t, ack, "cid-1", entities.PredictionRequest{RatePercent: 10, PriceStart: 1000}))

	require.Len(t, pub.published, 1)
	assert.Equal(t, "prediction_resp", pub.published[0].key)
	assert.Equal(t, "cid-1", pub.published[0].msg.CorrelationId)

	reply := decodeReply(t, pub.published[0].msg)
	require.NotNil(t, reply.Prediction)
	assert.Empty(t, reply.Error)
	assert.Len(t, reply.Prediction.Days, 365)
	assert.InDelta(t, 1100.0, reply.Prediction.Days[364].Price, 1e-6)
	assert.Equal(t, 1, ack.acked)
	assert.Empty(t, ack.rejected)
}

func TestHandle_InvalidInputIsAnswered(t *testing.T) {
	pub := &fakePublisher{}
	ack := &fakeAcknowledger{}
	w := New(pub, 365, 3650, zap.NewNop())

	w.Handle(context.Background(), delivery(t, ack, "cid-2", entities.PredictionRequest{RatePercent: -1, PriceStart: 1000}))

	require.Len(t, pub.published, 1)
	reply := decodeReply(t, pub.published[0].msg)
	assert.Nil(t, reply.Prediction)
	assert.Contains(t, reply.Error, "annual rate must not be negative")
	assert.Equal(t, 1, ack.acked)
}

func TestHandle_MalformedBody(t *testing.T) {
	pub := &fakePublisher{}
	ack := &fakeAcknowledger{}
	w := New(pub, 365, 3650, zap.NewNop())

	w.Handle(context.Background(), delivery(t, ack, "cid-3", []byte("{not json")))

	require.Len(t, pub.published, 1)
	assert.Contains(t, decodeReply(t, pub.published[0].msg).Error, "decode request")
	assert.Equal(t, 0, ack.acked)
	assert.Equal(t, []bool{false}, ack.rejected)
}

func TestHandle_MissingReplyTo(t *testing.T) {
	pub := &fakePublisher{}
	ack := &fakeAcknowledger{}
	w := New(pub, 365, 3650, zap.NewNop())

	msg := delivery(t, ack, "cid-4", entities.PredictionRequest{})
	msg.ReplyTo = ""
	w.Handle(context.Background(), msg)

	assert.Empty(t, pub.published)
	assert.Equal(t, []bool{false}, ack.rejected)
}

func TestHandle_PublishFailureRequeues(t *testing.T) {
	pub := &fakePublisher{err: errors.New("channel closed")}
	ack := &fakeAcknowledger{}
	w := New(pub, 365, 3650, zap.NewNop())

	w.Handle(context.Background(), delivery(t, ack, "cid-5", entities.PredictionRequest{RatePercent: 1}))

	assert.Equal(t, 0, ack.acked)
	assert.Equal(t, []bool{true}, ack.rejected)
}

func TestRun(t *testing.T) {
	pub := &fakePublisher{}
	ack := &fakeAcknowledger{}
	w := New(pub, 30, 3650, zap.NewNop())

	msgs := make(chan amqp.Delivery, 3)
	for _, cid := range []string{"a", "b", "c"} {
		msgs <- delivery(t, ack, cid, entities.PredictionRequest{RatePercent: 5, PriceStart: 10})
	}
	close(msgs)

	w.Run(context.Background(), msgs)

	assert.Len(t, pub.published, 3)
	assert.Equal(t, 3, ack.acked)
	for _, p := range pub.published {
		assert.Len(t, decodeReply(t, p.msg).Prediction.Days, 30)
	}
}

func TestProcess(t *testing.T) {
	days := 0
	body, err := json.Marshal(entities.PredictionRequest{RatePercent: 10, PriceStart: 1000, HorizonDays: &days})
	require.NoError(t, err)

	reply, err := Process(body, 365, 3650)
	require.NoError(t, err)
	require.NotNil(t, reply.Prediction)
	assert.Empty(t, reply.Prediction.Days)
}
