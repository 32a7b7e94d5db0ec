package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/ringg-play/ringgrank/config"
	"github.com/ringg-play/ringgrank/internal/logging"
	"github.com/ringg-play/ringgrank/internal/models"
)

// KafkaProducer fans accepted score entries out to Kafka for the analytics
// archive. Entries are buffered on a channel and written in batches.
type KafkaProducer struct {
	writer        *kafka.Writer
	topic         string
	connected     bool
	brokers       []string
	entryChan     chan models.ScoreEntry
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	batchSize     int
	flushInterval time.Duration
	mu            sync.RWMutex
	metrics       *ProducerMetrics
}

// ProducerMetrics tracks producer performance
type ProducerMetrics struct {
	TotalSent     int64
	TotalErrors   int64
	BatchesSent   int64
	LastFlushTime time.Time
	mu            sync.RWMutex
}

// NewKafkaProducer creates a producer connected to the configured brokers.
func NewKafkaProducer(cfg *config.AppConfig) (*KafkaProducer, error) {
	ctx, cancel := context.WithCancel(context.Background())

	producer := &KafkaProducer{
		topic:         cfg.Kafka.ScoresTopic,
		brokers:       cfg.Kafka.Brokers,
		entryChan:     make(chan models.ScoreEntry, 10000),
		ctx:           ctx,
		cancel:        cancel,
		batchSize:     500,
		flushInterval: 10 * time.Millisecond,
		metrics:       &ProducerMetrics{},
	}

	maxRetries := 5
	var err error
	for i := 0; i < maxRetries; i++ {
		if err = producer.connect(); err == nil {
			break
		}
		logging.Error("Failed to connect to Kafka", "attempt", i+1, "max", maxRetries, "error", err)
		time.Sleep(time.Duration(i+1) * time.Second)
	}

	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to connect to Kafka after %d attempts: %v", maxRetries, err)
	}

	if err := producer.ensureTopicExists(cfg.Kafka.ScoresTopic); err != nil {
		logging.Error("Could not verify topic exists", "error", err)
	}

	producer.startBatchProcessor()
	go producer.logMetrics()

	return producer, nil
}

func (p *KafkaProducer) connect() error {
	p.writer = &kafka.Writer{
		Addr:     kafka.TCP(p.brokers...),
		Topic:    p.topic,
		Balancer: &kafka.Hash{},

		BatchSize:    500,
		BatchBytes:   1024 * 1024,
		BatchTimeout: 10 * time.Millisecond,

		RequiredAcks: kafka.RequireOne,
		Async:        true,

		WriteTimeout: 30 * time.Second,
		ReadTimeout:  10 * time.Second,

		Compression: kafka.Snappy,

		MaxAttempts: 3,
	}
	p.connected = true

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := kafka.DialContext(ctx, "tcp", p.brokers[0])
	if err != nil {
		return fmt.Errorf("failed to connect to Kafka broker: %v", err)
	}
	defer conn.Close()

	logging.Info("Connected to Kafka cluster", "brokers", p.brokers)
	return nil
}

func (p *KafkaProducer) startBatchProcessor() {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		batch := make([]models.ScoreEntry, 0, p.batchSize)
		ticker := time.NewTicker(p.flushInterval)
		defer ticker.Stop()

		for {
			select {
			case entry := <-p.entryChan:
				batch = append(batch, entry)
				if len(batch) >= p.batchSize {
					p.flushBatch(batch)
					batch = batch[:0]
				}

			case <-ticker.C:
				if len(batch) > 0 {
					p.flushBatch(batch)
					batch = batch[:0]
				}

			case <-p.ctx.Done():
				if len(batch) > 0 {
					p.flushBatch(batch)
				}
				return
			}
		}
	}()
}

func (p *KafkaProducer) flushBatch(entries []models.ScoreEntry) {
	if len(entries) == 0 {
		return
	}

	messages := make([]kafka.Message, 0, len(entries))
	for _, entry := range entries {
		payload, err := json.Marshal(entry)
		if err != nil {
			logging.Error("Error marshaling score entry", "error", err)
			p.updateMetrics(0, 1, 0)
			continue
		}

		messages = append(messages, kafka.Message{
			Key:   fmt.Appendf(nil, "%d-%d", entry.GameID, entry.UserID),
			Value: payload,
			Time:  time.Now(),
		})
	}

	ctx, cancel := context.WithTimeout(p.ctx, 5*time.Second)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, messages...); err != nil {
		logging.Error("Error sending score batch to Kafka", "count", len(messages), "error", err)
		p.updateMetrics(0, int64(len(messages)), 0)
	} else {
		p.updateMetrics(int64(len(messages)), 0, 1)
	}
}

func (p *KafkaProducer) updateMetrics(sent, errors, batches int64) {
	p.metrics.mu.Lock()
	defer p.metrics.mu.Unlock()

	p.metrics.TotalSent += sent
	p.metrics.TotalErrors += errors
	p.metrics.BatchesSent += batches
	p.metrics.LastFlushTime = time.Now()
}

func (p *KafkaProducer) logMetrics() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.metrics.mu.RLock()
			logging.Info("Kafka producer metrics",
				"sent", p.metrics.TotalSent,
				"errors", p.metrics.TotalErrors,
				"batches", p.metrics.BatchesSent,
				"queued", len(p.entryChan))
			p.metrics.mu.RUnlock()

		case <-p.ctx.Done():
			return
		}
	}
}

func (p *KafkaProducer) ensureTopicExists(topic string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := kafka.DialContext(ctx, "tcp", p.brokers[0])
	if err != nil {
		return fmt.Errorf("failed to connect to broker: %v", err)
	}
	defer conn.Close()

	partitions, err := conn.ReadPartitions()
	if err != nil {
		return fmt.Errorf("failed to read topics: %v", err)
	}

	for _, partition := range partitions {
		if partition.Topic == topic {
			return nil
		}
	}

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("failed to get controller: %v", err)
	}

	controllerConn, err := kafka.DialContext(ctx, "tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	if err != nil {
		return fmt.Errorf("failed to connect to controller: %v", err)
	}
	defer controllerConn.Close()

	err = controllerConn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     8,
		ReplicationFactor: 1,
	})
	if err != nil {
		return fmt.Errorf("failed to create topic: %v", err)
	}
	logging.Info("Created Kafka topic", "topic", topic)
	return nil
}

// Publish enqueues one accepted entry for asynchronous delivery.
func (p *KafkaProducer) Publish(entry models.ScoreEntry) error {
	p.mu.RLock()
	connected := p.connected
	p.mu.RUnlock()

	if !connected {
		return fmt.Errorf("producer not connected")
	}

	select {
	case p.entryChan <- entry:
		return nil
	default:
		return fmt.Errorf("producer queue full - too many concurrent writes")
	}
}

// GetMetrics returns current producer metrics
func (p *KafkaProducer) GetMetrics() (int64, int64, int64, int) {
	p.metrics.mu.RLock()
	defer p.metrics.mu.RUnlock()

	return p.metrics.TotalSent, p.metrics.TotalErrors, p.metrics.BatchesSent, len(p.entryChan)
}

// Close drains pending batches and shuts the producer down.
func (p *KafkaProducer) Close() error {
	logging.Info("Shutting down Kafka producer")

	p.mu.Lock()
	p.connected = false
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()

	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
