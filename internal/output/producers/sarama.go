// Package producers publishes plan events to Kafka.
package producers

import (
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"github.com/chrisdamba/grocerplan/internal/models"
	"go.uber.org/zap"
)

type SaramaProducer struct {
	producer sarama.SyncProducer
	logger   *zap.Logger
}

func NewSaramaProducer(config *models.Config, logger *zap.Logger) (*SaramaProducer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 5
	saramaConfig.Producer.Retry.Backoff = 100 * time.Millisecond
	saramaConfig.Producer.Return.Successes = true // Must be true for SyncProducer
	saramaConfig.Producer.Compression = sarama.CompressionSnappy
	saramaConfig.Net.DialTimeout = 30 * time.Second
	saramaConfig.Net.ReadTimeout = 30 * time.Second
	saramaConfig.Net.WriteTimeout = 30 * time.Second

	brokerList := strings.Split(config.KafkaBrokerList, ",")

	producer, err := sarama.NewSyncProducer(brokerList, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Sarama producer: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("sarama producer created", zap.Strings("brokers", brokerList))
	return NewSaramaProducerFrom(producer, logger), nil
}

// NewSaramaProducerFrom wraps an existing producer, such as a mock.
func NewSaramaProducerFrom(producer sarama.SyncProducer, logger *zap.Logger) *SaramaProducer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SaramaProducer{producer: producer, logger: logger}
}

// WriteMessage sends msg keyed by key, so every event of one household lands
// on the same partition.
func (s *SaramaProducer) WriteMessage(topic, key string, msg []byte) error {
	if s.producer == nil {
		return fmt.Errorf("Sarama producer is not initialized")
	}

	pm := &sarama.ProducerMessage{
		Topic: topic,
		Value: sarama.ByteEncoder(msg),
	}
	if key != "" {
		pm.Key = sarama.StringEncoder(key)
	}
	partition, offset, err := s.producer.SendMessage(pm)
	if err != nil {
		s.logger.Error("failed to send message", zap.String("topic", topic), zap.Error(err))
		return fmt.Errorf("failed to send message to topic %s: %w", topic, err)
	}
	s.logger.Debug("message sent", zap.String("topic", topic), zap.Int32("partition", partition), zap.Int64("offset", offset))
	return nil
}

func (s *SaramaProducer) Close() error {
	if s.producer != nil {
		return s.producer.Close()
	}
	return nil
}
