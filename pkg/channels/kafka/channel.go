// Package kafka provides the broker-backed event bus transport.
package kafka

import (
	"errors"
	"strings"

	"github.com/IBM/sarama"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v3/pkg/kafka"
)

var ErrNoBrokers = errors.New("no Kafka brokers configured")

// Config describes the connection of one service to the brokers.
type Config struct {
	Brokers []string
	// ServiceName names the consumer group ("cg-<name>") and the client id.
	ServiceName string
	// FromNewest skips the backlog when a consumer group starts for the
	// first time. By default every retained trigger event is processed.
	FromNewest bool
}

// ParseBrokers splits a comma separated broker list, dropping blanks.
func ParseBrokers(list string) []string {
	brokers := make([]string, 0)

	for _, broker := range strings.Split(list, ",") {
		if broker = strings.TrimSpace(broker); broker != "" {
			brokers = append(brokers, broker)
		}
	}

	return brokers
}

// ConsumerGroup returns the consumer group of cfg's service.
func (cfg Config) ConsumerGroup() string {
	return "cg-" + cfg.ServiceName
}

func (cfg Config) subscriberSarama() *sarama.Config {
	sc := kafka.DefaultSaramaSubscriberConfig()
	sc.ClientID = cfg.ServiceName
	sc.Consumer.Offsets.Initial = sarama.OffsetOldest

	if cfg.FromNewest {
		sc.Consumer.Offsets.Initial = sarama.OffsetNewest
	}

	return sc
}

func (cfg Config) publisherSarama() *sarama.Config {
	pc := kafka.DefaultSaramaSyncPublisherConfig()
	pc.ClientID = cfg.ServiceName
	pc.Producer.RequiredAcks = sarama.WaitForAll

	return pc
}

// NewChannel connects a publisher and a subscriber to the brokers of cfg.
func NewChannel(logger watermill.LoggerAdapter, cfg Config) (*kafka.Publisher, *kafka.Subscriber, error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil, ErrNoBrokers
	}

	subscriber, err := kafka.NewSubscriber(kafka.SubscriberConfig{
		Brokers:               cfg.Brokers,
		Unmarshaler:           kafka.DefaultMarshaler{},
		OverwriteSaramaConfig: cfg.subscriberSarama(),
		ConsumerGroup:         cfg.ConsumerGroup(),
		OTELEnabled:           true,
	}, logger)
	if err != nil {
		return nil, nil, err
	}

	publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:               cfg.Brokers,
		Marshaler:             kafka.DefaultMarshaler{},
		OverwriteSaramaConfig: cfg.publisherSarama(),
		OTELEnabled:           true,
	}, logger)
	if err != nil {
		_ = subscriber.Close()

		return nil, nil, err
	}

	return publisher, subscriber, nil
}

func CreateChannel(logger watermill.LoggerAdapter, brokers []string, serviceName string) (*kafka.Publisher, *kafka.Subscriber, error) {
	return NewChannel(logger, Config{Brokers: brokers, ServiceName: serviceName})
}
