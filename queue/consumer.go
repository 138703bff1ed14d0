// Package queue consumes article events from Kafka and turns each one
// into a narrated video, independent of the batch pipeline.
package queue

import (
	"context"
	"encoding/json"
	"log"

	"github.com/IBM/sarama"

	"newsreel/types"
)

// MessageHandler processes one consumed message. shouldMark=false leaves
// the offset unmarked so the message is retried after a rebalance.
type MessageHandler interface {
	HandleMessage(ctx context.Context, message []byte) (shouldMark bool, err error)
}

// Consumer wraps a sarama consumer group around a pluggable handler.
type Consumer struct {
	group   sarama.ConsumerGroup
	handler MessageHandler
	topic   string
	groupID string
	ready   chan bool
}

// ConsumerConfig holds the Kafka wiring for one consumer.
type ConsumerConfig struct {
	Brokers []string
	Topic   string
	GroupID string
	Handler MessageHandler
}

// NewConsumer builds a consumer group client; Start must be called to
// begin consuming.
func NewConsumer(cfg ConsumerConfig) (*Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_6_0_0
	saramaConfig.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaConfig.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.GroupID, saramaConfig)
	if err != nil {
		return nil, err
	}

	return &Consumer{
		group:   group,
		handler: cfg.Handler,
		topic:   cfg.Topic,
		groupID: cfg.GroupID,
		ready:   make(chan bool),
	}, nil
}

// Start begins the consume loop and returns once the group has joined.
func (c *Consumer) Start(ctx context.Context) error {
	handler := &groupHandler{handler: c.handler, ready: c.ready}

	go func() {
		for {
			if err := c.group.Consume(ctx, []string{c.topic}, handler); err != nil {
				if err == context.Canceled {
					log.Printf("[queue] consumer context canceled")
					return
				}
				log.Printf("[queue] consume error: %v", err)
			}
			if ctx.Err() != nil {
				return
			}
			handler.ready = make(chan bool)
		}
	}()

	<-c.ready
	log.Printf("[queue] consumer started (group=%s topic=%s)", c.groupID, c.topic)

	go func() {
		for err := range c.group.Errors() {
			log.Printf("[queue] consumer group error: %v", err)
		}
	}()

	return nil
}

func (c *Consumer) Close() error {
	log.Printf("[queue] closing consumer")
	return c.group.Close()
}

type groupHandler struct {
	handler MessageHandler
	ready   chan bool
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error {
	close(h.ready)
	return nil
}

func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message := <-claim.Messages():
			if message == nil {
				return nil
			}
			log.Printf("[queue] message partition=%d offset=%d", message.Partition, message.Offset)

			shouldMark, err := h.handler.HandleMessage(session.Context(), message.Value)
			if err != nil {
				log.Printf("[queue] handler failed: %v", err)
			}
			if shouldMark {
				session.MarkMessage(message, "")
			}

		case <-session.Context().Done():
			return nil
		}
	}
}

// Planner and Renderer mirror the batch pipeline's synthesis boundary.
type Planner interface {
	Plan(ctx context.Context, article types.Article) []types.NarrationSegment
}

type Renderer interface {
	Render(ctx context.Context, article types.Article, segments []types.NarrationSegment, index int) (types.VideoArtifact, error)
}

// ArticleHandler consumes article events and renders one video each.
// Malformed or URL-less payloads are marked and skipped; render failures
// are left unmarked for retry.
type ArticleHandler struct {
	Planner  Planner
	Renderer Renderer
}

func (h *ArticleHandler) HandleMessage(ctx context.Context, message []byte) (bool, error) {
	var article types.Article
	if err := json.Unmarshal(message, &article); err != nil {
		log.Printf("[queue] dropping malformed article event: %v", err)
		return true, nil
	}
	if article.URL == "" || article.Title == "" {
		log.Printf("[queue] dropping article event without url/title")
		return true, nil
	}

	segments := h.Planner.Plan(ctx, article)
	artifact, err := h.Renderer.Render(ctx, article, segments, 0)
	if err != nil {
		return false, err
	}
	log.Printf("[queue] video ready for %s: %s", article.URL, artifact.Path)
	return true, nil
}
