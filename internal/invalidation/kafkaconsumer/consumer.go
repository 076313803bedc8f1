// Package kafkaconsumer applies fence update events from Kafka to the
// fence registry.
package kafkaconsumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"

	"github.com/anandthakker/turf-inside/internal/core/model"
	obs "github.com/anandthakker/turf-inside/internal/core/observability"
	"github.com/anandthakker/turf-inside/internal/fence"
	"github.com/anandthakker/turf-inside/internal/invalidation"
	"github.com/anandthakker/turf-inside/internal/logger"
)

// Applier receives decoded fence changes; satisfied by the locator.
type Applier interface {
	Upsert(ctx context.Context, f *model.Fence) bool
	Remove(ctx context.Context, id string) bool
}

type Consumer struct {
	cfg     Config
	logger  *slog.Logger
	applier Applier
	dedupe  *versionDedupe
}

func New(cfg Config, logger *slog.Logger, applier Applier) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{
		cfg:     cfg,
		logger:  logger,
		applier: applier,
		dedupe:  newVersionDedupe(cfg.DedupeSize),
	}
}

// Start consumes fence update events until ctx is canceled.
func (c *Consumer) Start(ctx context.Context) error {
	if c.applier == nil {
		return errors.New("kafkaconsumer: missing applier")
	}

	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_1_0_0
	cfg.Consumer.Group.Session.Timeout = c.cfg.SessionTimeout
	cfg.Consumer.Group.Heartbeat.Interval = c.cfg.Heartbeat
	cfg.Consumer.Group.Rebalance.Timeout = c.cfg.RebalanceTimeout
	if c.cfg.InitialOffsetOldest {
		cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		cfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	}
	cfg.Consumer.Offsets.AutoCommit.Enable = true

	group, err := sarama.NewConsumerGroup(c.cfg.Brokers, c.cfg.GroupID, cfg)
	if err != nil {
		return fmt.Errorf("create consumer group: %w", err)
	}
	defer func() { _ = group.Close() }()

	handler := &groupHandler{process: c.ProcessOne}

	c.logger.Info("fence update consumer starting",
		"brokers", c.cfg.Brokers, "topic", c.cfg.Topic, "group", c.cfg.GroupID)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("fence update consumer shutting down")
			return nil
		default:
			if err := group.Consume(ctx, []string{c.cfg.Topic}, handler); err != nil {
				c.logger.Error("consumer error", "err", err,
					"topic", c.cfg.Topic)
				time.Sleep(2 * time.Second)
			}
		}
	}
}

// ProcessOne decodes and applies a single fence update message.
func (c *Consumer) ProcessOne(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var ev invalidation.Event
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		obs.IncKafkaConsumerError("decode")
		c.logger.Error("fence event decode failed",
			"topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset, "err", err)
		// poison message, skip rather than stall the partition
		return nil
	}
	if err := ev.Validate(); err != nil {
		obs.IncKafkaConsumerError("validate")
		c.logger.Error("fence event invalid", "fence", ev.FenceID, "err", err)
		return nil
	}

	ctx = logger.WithFenceID(ctx, ev.FenceID)

	if !c.dedupe.shouldApply(ev.FenceID, ev.FenceVersion) {
		c.logger.Debug("fence event superseded, skipping",
			"fence", ev.FenceID, "fence_version", ev.FenceVersion)
		return nil
	}

	switch ev.Op {
	case "upsert":
		f, err := fence.Decode(ev.FenceID, ev.Name, string(ev.Geometry), ev.FenceVersion)
		if err != nil {
			obs.IncKafkaConsumerError("geometry")
			c.logger.Error("fence event geometry invalid", "fence", ev.FenceID, "err", err)
			return nil
		}
		if c.applier.Upsert(ctx, f) {
			c.logger.Info("fence upserted", "fence", ev.FenceID, "fence_version", ev.FenceVersion)
		}
	case "delete":
		if c.applier.Remove(ctx, ev.FenceID) {
			c.logger.Info("fence deleted", "fence", ev.FenceID)
		}
	}
	return nil
}
