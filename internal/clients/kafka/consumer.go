package kafka

import (
	"context"
	"fmt"

	"github.com/Shopify/sarama"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"max.ks1230/advisor-bot/internal/logger"
	"max.ks1230/advisor-bot/internal/model/plan"
)

type consumerConfig interface {
	producerConfig
	ConsumerGroup() string
}

type planArchiver interface {
	ArchivePlan(ctx context.Context, export plan.Export) error
}

type Consumer struct {
	consumerGroup sarama.ConsumerGroup
	topic         string
	archiver      planArchiver
}

func NewConsumer(cfg consumerConfig, archiver planArchiver) (*Consumer, error) {
	config := sarama.NewConfig()
	config.Version = sarama.V2_5_0_0
	config.Consumer.Offsets.Initial = sarama.OffsetOldest

	consumerGroup, err := sarama.NewConsumerGroup(cfg.Brokers(), cfg.ConsumerGroup(), config)
	return &Consumer{
		consumerGroup: consumerGroup,
		topic:         cfg.PlansTopic(),
		archiver:      archiver,
	}, err
}

func (c *Consumer) StartConsuming(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			err := c.consumerGroup.Consume(ctx, []string{c.topic}, c)
			if err != nil {
				return errors.Wrap(err, fmt.Sprintf("consume from %s", c.topic))
			}
		}
	}
}

func (c *Consumer) Setup(sarama.ConsumerGroupSession) error {
	logger.Info("consumer - setup")
	return nil
}

func (c *Consumer) Cleanup(sarama.ConsumerGroupSession) error {
	logger.Info("consumer - cleanup")
	return nil
}

func (c *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		export, err := plan.Unmarshal(message.Value)
		if err != nil {
			logger.Error("cannot unmarshal kafka message", zap.Error(err))
		} else {
			logger.Info(
				"received completed plan",
				zap.ByteString("key", message.Key),
				zap.Int64("sessionID", export.SessionID),
				zap.String("step", string(export.Record.Step)),
			)
			c.archivePlan(session.Context(), export)
		}
		session.MarkMessage(message, "")
	}

	return nil
}

func (c *Consumer) archivePlan(ctx context.Context, export plan.Export) {
	err := c.archiver.ArchivePlan(ctx, export)
	if err != nil {
		logger.Error("failed to archive plan", zap.Error(err))
	}
}
