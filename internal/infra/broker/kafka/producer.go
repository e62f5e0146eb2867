package kafka

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/IBM/sarama"
)

// ProducerConfig selects the brokers and the client identity used for booking events.
type ProducerConfig struct {
	Brokers  []string
	ClientID string
	Timeout  time.Duration
}

// Record is one outgoing message. Headers are written sorted by key.
type Record struct {
	Topic   string
	Key     string
	Value   []byte
	Headers map[string]string
}

// Delivery reports where a record landed.
type Delivery struct {
	Partition int32
	Offset    int64
}

type Producer struct {
	sync sarama.SyncProducer
}

// NewProducer connects an idempotent, all-acks sync producer.
func NewProducer(cfg ProducerConfig) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}
	sc := sarama.NewConfig()
	sc.Version = sarama.V2_5_0_0
	sc.ClientID = cfg.ClientID
	if sc.ClientID == "" {
		sc.ClientID = "staybook"
	}
	if cfg.Timeout > 0 {
		sc.Producer.Timeout = cfg.Timeout
	}
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Idempotent = true
	sc.Producer.Return.Successes = true
	sc.Net.MaxOpenRequests = 1
	sync, err := sarama.NewSyncProducer(cfg.Brokers, sc)
	if err != nil {
		return nil, err
	}
	return &Producer{sync: sync}, nil
}

// NewProducerFrom wraps an existing sync producer.
func NewProducerFrom(sync sarama.SyncProducer) *Producer {
	return &Producer{sync: sync}
}

func (p *Producer) Send(ctx context.Context, r Record) (Delivery, error) {
	if err := ctx.Err(); err != nil {
		return Delivery{}, err
	}
	keys := make([]string, 0, len(r.Headers))
	for k := range r.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	hs := make([]sarama.RecordHeader, 0, len(keys))
	for _, k := range keys {
		hs = append(hs, sarama.RecordHeader{Key: []byte(k), Value: []byte(r.Headers[k])})
	}
	partition, offset, err := p.sync.SendMessage(&sarama.ProducerMessage{
		Topic:   r.Topic,
		Key:     sarama.StringEncoder(r.Key),
		Value:   sarama.ByteEncoder(r.Value),
		Headers: hs,
	})
	if err != nil {
		return Delivery{}, err
	}
	return Delivery{Partition: partition, Offset: offset}, nil
}

func (p *Producer) Close() error {
	if p.sync == nil {
		return nil
	}
	return p.sync.Close()
}
