package datachannel

import "github.com/pion/logging"

// Default table sizes, per the establishment protocol's CHANNEL_CAP/STREAM_CAP.
const (
	DefaultChannelCap = 100
	DefaultStreamCap  = 100
)

// Config configures a PeerConnection. The zero value is valid: every field
// falls back to its default when unset.
type Config struct {
	// ChannelCap is the size of the channel table. Defaults to DefaultChannelCap.
	ChannelCap int

	// StreamCap is the size of the inbound/outbound stream index arrays.
	// Defaults to DefaultStreamCap.
	StreamCap int

	// LoggerFactory hands out the LeveledLogger PeerConnection logs through.
	// Defaults to logging.NewDefaultLoggerFactory().
	LoggerFactory logging.LoggerFactory
}

func (c *Config) fillDefaults() {
	if c.ChannelCap <= 0 {
		c.ChannelCap = DefaultChannelCap
	}
	if c.StreamCap <= 0 {
		c.StreamCap = DefaultStreamCap
	}
	if c.LoggerFactory == nil {
		c.LoggerFactory = logging.NewDefaultLoggerFactory()
	}
}
