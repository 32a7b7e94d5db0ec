package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/ringg-play/ringgrank/config"
	"github.com/ringg-play/ringgrank/internal/logging"
	"github.com/ringg-play/ringgrank/internal/models"
)

// Archiver persists batches of raw submissions for offline analysis.
type Archiver interface {
	SaveScoreBatch(entries []models.ScoreEntry) error
}

// KafkaConsumer drains the scores topic in batches into the analytics
// archive.
type KafkaConsumer struct {
	reader        *kafka.Reader
	archive       Archiver
	batchSize     int
	timeout       time.Duration
	brokers       []string
	topic         string
	consumerGroup string
}

func NewKafkaConsumer(cfg *config.AppConfig, archive Archiver) (*KafkaConsumer, error) {
	consumer := &KafkaConsumer{
		archive:       archive,
		batchSize:     cfg.Kafka.BatchSize,
		timeout:       time.Duration(cfg.Kafka.BatchTimeout) * time.Second,
		brokers:       cfg.Kafka.Brokers,
		topic:         cfg.Kafka.ScoresTopic,
		consumerGroup: cfg.Kafka.ConsumerGroup,
	}

	maxRetries := 5
	var err error
	for i := 0; i < maxRetries; i++ {
		if err = consumer.connect(); err == nil {
			break
		}
		logging.Error("Failed to connect consumer to Kafka", "attempt", i+1, "max", maxRetries, "error", err)
		time.Sleep(time.Duration(i+1) * time.Second)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect consumer to Kafka after %d attempts: %v", maxRetries, err)
	}

	return consumer, nil
}

func (c *KafkaConsumer) connect() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := kafka.DialContext(ctx, "tcp", c.brokers[0])
	if err != nil {
		return fmt.Errorf("failed to connect to Kafka broker: %v", err)
	}
	defer conn.Close()

	partitions, err := conn.ReadPartitions()
	if err != nil {
		return fmt.Errorf("failed to read topics: %v", err)
	}

	topicExists := false
	for _, partition := range partitions {
		if partition.Topic == c.topic {
			topicExists = true
			break
		}
	}
	if !topicExists {
		logging.Error("Topic does not exist, consumer may not function correctly", "topic", c.topic)
	}

	c.reader = kafka.NewReader(kafka.ReaderConfig{
		Brokers:         c.brokers,
		Topic:           c.topic,
		GroupID:         c.consumerGroup,
		MinBytes:        10e3, // 10KB
		MaxBytes:        10e6, // 10MB
		CommitInterval:  time.Second,
		ReadLagInterval: time.Second * 5,
		MaxWait:         time.Second * 3,
		StartOffset:     kafka.FirstOffset,
		SessionTimeout:  time.Second * 10,
	})

	logging.Info("Created Kafka consumer", "topic", c.topic, "group", c.consumerGroup)
	return nil
}

// StartConsumer launches the batch drain loop.
func (c *KafkaConsumer) StartConsumer(ctx context.Context) {
	logging.Info("Starting Kafka consumer", "topic", c.topic)

	go func() {
		defer c.reader.Close()

		for {
			select {
			case <-ctx.Done():
				logging.Info("Kafka consumer shutting down")
				return
			default:
				if err := c.processBatch(ctx); err != nil {
					logging.Error("Error processing batch", "error", err)
					time.Sleep(time.Second * 2)
				}
			}
		}
	}()
}

func (c *KafkaConsumer) processBatch(ctx context.Context) error {
	batch := make([]models.ScoreEntry, 0, c.batchSize)
	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	batchCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	for len(batch) < c.batchSize {
		select {
		case <-timer.C:
			if len(batch) > 0 {
				return c.saveBatch(batch)
			}
			return nil
		case <-ctx.Done():
			if len(batch) > 0 {
				return c.saveBatch(batch)
			}
			return ctx.Err()
		default:
			fetchCtx, fetchCancel := context.WithTimeout(batchCtx, 100*time.Millisecond)
			message, err := c.reader.FetchMessage(fetchCtx)
			fetchCancel()

			if err != nil {
				if err == context.DeadlineExceeded {
					continue
				}
				return fmt.Errorf("error fetching message from Kafka: %v", err)
			}

			var entry models.ScoreEntry
			if err := json.Unmarshal(message.Value, &entry); err != nil {
				logging.Error("Error unmarshaling score entry", "error", err)
				if commitErr := c.reader.CommitMessages(ctx, message); commitErr != nil {
					logging.Error("Error committing invalid message", "error", commitErr)
				}
				continue
			}

			batch = append(batch, entry)

			if err := c.reader.CommitMessages(ctx, message); err != nil {
				return fmt.Errorf("error committing message: %v", err)
			}
		}
	}

	return c.saveBatch(batch)
}

func (c *KafkaConsumer) saveBatch(batch []models.ScoreEntry) error {
	if len(batch) == 0 {
		return nil
	}

	if err := c.archive.SaveScoreBatch(batch); err != nil {
		return fmt.Errorf("failed to archive batch: %v", err)
	}
	logging.Info("Archived batch of scores", "count", len(batch))
	return nil
}

func (c *KafkaConsumer) Close() error {
	if c.reader != nil {
		return c.reader.Close()
	}
	return nil
}
