// Package gochannel provides the in-process event bus transport used by the
// single-binary deployment and by tests.
package gochannel

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const defaultBuffer = 1000

// Config tunes the in-process channel.
type Config struct {
	// Buffer is the per-subscriber output buffer.
	Buffer int64
	// BlockUntilAck makes Publish wait for the subscriber to ack.
	BlockUntilAck bool
}

// New returns one GoChannel that serves as both publisher and subscriber.
// Messages published before anyone subscribes are dropped.
func New(logger watermill.LoggerAdapter, cfg Config) *gochannel.GoChannel {
	if cfg.Buffer <= 0 {
		cfg.Buffer = defaultBuffer
	}

	return gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer:            cfg.Buffer,
		BlockPublishUntilSubscriberAck: cfg.BlockUntilAck,
	}, logger)
}

// CreateChannel returns the default channel twice, as publisher and subscriber.
func CreateChannel(logger watermill.LoggerAdapter) (*gochannel.GoChannel, *gochannel.GoChannel) {
	pubSub := New(logger, Config{})

	return pubSub, pubSub
}
