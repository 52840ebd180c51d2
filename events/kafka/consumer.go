package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/segmentio/kafka-go"
)

// Command types accepted on the name command topic.
const (
	CommandReplaceNames = "names.replace"
)

// Command is the envelope of a remote command.
type Command struct {
	Type      string                 `json:"type"`
	ReelCode  string                 `json:"reel_code"`
	Payload   map[string]interface{} `json:"payload"`
	Timestamp time.Time              `json:"timestamp"`
}

// ReplaceNames is the payload of a names.replace command.
type ReplaceNames struct {
	Names      []string `mapstructure:"names"`
	OperatorID string   `mapstructure:"operator_id"`
}

// NameHandler applies a decoded names.replace command.
type NameHandler func(ctx context.Context, reelCode string, cmd ReplaceNames) error

// ReelFilter reports whether a reel code is served by this process.
type ReelFilter func(reelCode string) bool

// MessageReader is the part of kafka.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads name commands and hands them to a NameHandler.
type Consumer struct {
	reader  MessageReader
	handler NameHandler
	logger  zerolog.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu     sync.RWMutex
	filter ReelFilter
}

// ConsumerConfig holds Kafka consumer configuration
type ConsumerConfig struct {
	Brokers       []string
	Topic         string
	ConsumerGroup string
	Logger        zerolog.Logger
	// Reader overrides the kafka.Reader built from the fields above.
	Reader MessageReader
}

// NewConsumer creates a new Kafka consumer
func NewConsumer(config ConsumerConfig, handler NameHandler) *Consumer {
	ctx, cancel := context.WithCancel(context.Background())

	reader := config.Reader
	if reader == nil {
		reader = kafka.NewReader(kafka.ReaderConfig{
			Brokers:        config.Brokers,
			Topic:          config.Topic,
			GroupID:        config.ConsumerGroup,
			MinBytes:       1,
			MaxBytes:       1e6, // 1MB
			CommitInterval: time.Second,
			StartOffset:    kafka.LastOffset,
		})
	}

	return &Consumer{
		reader:  reader,
		handler: handler,
		logger:  config.Logger.With().Str("component", "kafka-consumer").Logger(),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start begins consuming messages
func (c *Consumer) Start() error {
	c.wg.Add(1)
	go c.consume()
	c.logger.Info().Msg("Kafka consumer started")
	return nil
}

// Stop gracefully stops the consumer
func (c *Consumer) Stop() error {
	c.logger.Info().Msg("Stopping Kafka consumer...")
	c.cancel()
	c.wg.Wait()

	if err := c.reader.Close(); err != nil {
		c.logger.Error().Err(err).Msg("Error closing Kafka reader")
		return err
	}

	c.logger.Info().Msg("Kafka consumer stopped")
	return nil
}

// SetReelFilter limits the reels commands are applied to. Nil accepts all.
func (c *Consumer) SetReelFilter(filter ReelFilter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter = filter
}

func (c *Consumer) consume() {
	defer c.wg.Done()

	for {
		msg, err := c.reader.FetchMessage(c.ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || c.ctx.Err() != nil {
				return
			}
			c.logger.Error().Err(err).Msg("Error fetching message from Kafka")
			select {
			case <-c.ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		if err := c.handleMessage(msg); err != nil {
			c.logger.Error().
				Err(err).
				Str("topic", msg.Topic).
				Int("partition", msg.Partition).
				Int64("offset", msg.Offset).
				Msg("Error handling message")
		}

		if err := c.reader.CommitMessages(c.ctx, msg); err != nil && c.ctx.Err() == nil {
			c.logger.Error().Err(err).Msg("Error committing message")
		}
	}
}

func (c *Consumer) handleMessage(msg kafka.Message) error {
	var cmd Command
	if err := json.Unmarshal(msg.Value, &cmd); err != nil {
		return fmt.Errorf("failed to decode command: %w", err)
	}
	if cmd.ReelCode == "" {
		cmd.ReelCode = string(msg.Key)
	}

	c.mu.RLock()
	accept := c.filter == nil || c.filter(cmd.ReelCode)
	c.mu.RUnlock()
	if !accept {
		c.logger.Debug().
			Str("reel_code", cmd.ReelCode).
			Msg("Skipping command (reel not served here)")
		return nil
	}

	switch cmd.Type {
	case CommandReplaceNames:
		payload, err := DecodeReplaceNames(cmd.Payload)
		if err != nil {
			return err
		}
		return c.handler(c.ctx, cmd.ReelCode, payload)
	default:
		c.logger.Warn().Str("type", cmd.Type).Msg("Unknown command type")
		return nil
	}
}

// DecodeReplaceNames decodes a names.replace payload. Names may be a list or
// a comma separated string; blank entries are dropped.
func DecodeReplaceNames(payload map[string]interface{}) (ReplaceNames, error) {
	var out ReplaceNames
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToSliceHookFunc(","),
		WeaklyTypedInput: true,
		Result:           &out,
	})
	if err != nil {
		return out, err
	}
	if err := decoder.Decode(payload); err != nil {
		return out, fmt.Errorf("invalid %s payload: %w", CommandReplaceNames, err)
	}
	out.Names = lo.Compact(lo.Map(out.Names, func(n string, _ int) string {
		return strings.TrimSpace(n)
	}))
	return out, nil
}
