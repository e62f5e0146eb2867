package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/domain/booking"
	"staybook/internal/infra/obs"
)

func submitted() booking.Submitted {
	return booking.Submitted{
		BookingID:  "b-1",
		PropertyID: "p-1",
		UserID:     "u-1",
		Guests:     2,
		TotalPrice: 375,
		At:         time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC),
	}
}

func TestNotifierPublishesEvent(t *testing.T) {
	cfg := mocks.NewTestConfig()
	cfg.Producer.Return.Successes = true
	sp := mocks.NewSyncProducer(t, cfg)
	sp.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "bookings.submitted" {
			return errors.New("unexpected topic " + msg.Topic)
		}
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != "b-1" {
			return errors.New("unexpected key " + string(key))
		}
		headers := map[string]string{}
		for _, h := range msg.Headers {
			headers[string(h.Key)] = string(h.Value)
		}
		if headers[HeaderEventName] != booking.EventSubmitted || headers[HeaderRequestID] != "req-1" {
			return errors.New("missing headers")
		}
		if string(msg.Headers[0].Key) != HeaderContentType {
			return errors.New("headers not sorted")
		}
		raw, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		var ev booking.Submitted
		if err := json.Unmarshal(raw, &ev); err != nil {
			return err
		}
		if ev.Guests != 2 {
			return errors.New("payload mismatch")
		}
		return nil
	})

	producer := NewProducerFrom(sp)
	defer producer.Close()
	n := Notifier{Producer: producer, Topic: "bookings.submitted"}

	ctx := obs.ContextWithRequestID(context.Background(), "req-1")
	require.NoError(t, n.Notify(ctx, submitted()))
}

func TestNotifierWrapsPublishError(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	sp.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	producer := NewProducerFrom(sp)
	defer producer.Close()
	err := Notifier{Producer: producer, Topic: "t"}.Notify(context.Background(), submitted())
	require.ErrorIs(t, err, sarama.ErrOutOfBrokers)
}

func TestNewProducerRequiresBrokers(t *testing.T) {
	_, err := NewProducer(ProducerConfig{})
	require.Error(t, err)
}

func TestSendHonoursCancelledContext(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	producer := NewProducerFrom(sp)
	defer producer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := producer.Send(ctx, Record{Topic: "t", Key: "k"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestNotifierWithoutProducer(t *testing.T) {
	err := Notifier{}.Notify(context.Background(), submitted())
	assert.Error(t, err)
}
