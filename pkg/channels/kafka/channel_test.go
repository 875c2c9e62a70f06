package kafka

import (
	"testing"

	"github.com/IBM/sarama"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBrokers(t *testing.T) {
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, ParseBrokers(" kafka-1:9092, ,kafka-2:9092,"))
	assert.Empty(t, ParseBrokers(""))
}

func TestCreateChannel_RequiresBrokers(t *testing.T) {
	pub, sub, err := CreateChannel(watermill.NopLogger{}, nil, "autoflow")
	require.ErrorIs(t, err, ErrNoBrokers)
	assert.Nil(t, pub)
	assert.Nil(t, sub)
}

func TestConfig_Sarama(t *testing.T) {
	cfg := Config{Brokers: []string{"kafka:9092"}, ServiceName: "autoflow-trigger"}

	assert.Equal(t, "cg-autoflow-trigger", cfg.ConsumerGroup())

	sub := cfg.subscriberSarama()
	assert.Equal(t, "autoflow-trigger", sub.ClientID)
	assert.Equal(t, sarama.OffsetOldest, sub.Consumer.Offsets.Initial)

	cfg.FromNewest = true
	assert.Equal(t, sarama.OffsetNewest, cfg.subscriberSarama().Consumer.Offsets.Initial)

	pub := cfg.publisherSarama()
	assert.True(t, pub.Producer.Return.Successes)
	assert.Equal(t, sarama.WaitForAll, pub.Producer.RequiredAcks)
	assert.NoError(t, pub.Validate())
}
