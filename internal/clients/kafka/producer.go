package kafka

import (
	"context"
	"strconv"

	"github.com/Shopify/sarama"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"max.ks1230/advisor-bot/internal/logger"
	"max.ks1230/advisor-bot/internal/model/plan"
)

type producerConfig interface {
	Brokers() []string
	PlansTopic() string
}

// Producer publishes completed financial plans, keyed by session, so
// downstream sinks keep only the latest plan per session.
type Producer struct {
	producer sarama.SyncProducer
	topic    string
}

func NewProducer(cfg producerConfig) (*Producer, error) {
	config := sarama.NewConfig()
	config.Version = sarama.V2_5_0_0
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(cfg.Brokers(), config)
	return &Producer{
		producer: producer,
		topic:    cfg.PlansTopic(),
	}, err
}

func (p *Producer) PublishPlan(_ context.Context, export plan.Export) error {
	raw, err := export.Marshal()
	if err != nil {
		return err
	}
	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(strconv.FormatInt(export.SessionID, 10)),
		Value: sarama.ByteEncoder(raw),
	})
	return errors.Wrap(err, "produce plan")
}

func (p *Producer) Close() {
	err := p.producer.Close()
	if err != nil {
		logger.Error("failed to close producer", zap.Error(err))
	}
}
