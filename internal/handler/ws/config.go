package ws

import "time"

// Config holds websocket stream settings
type Config struct {
	// KeepAliveInterval is how often the server pings an idle client
	KeepAliveInterval time.Duration

	// SendBuffer is how many events may queue per client before it is dropped
	SendBuffer int

	// WriteTimeout bounds a single event write
	WriteTimeout time.Duration

	// OriginPatterns are the cross-origin hosts allowed to connect
	OriginPatterns []string
}

// DefaultConfig returns the default stream configuration
func DefaultConfig() *Config {
	return &Config{
		KeepAliveInterval: 15 * time.Second,
		SendBuffer:        64,
		WriteTimeout:      5 * time.Second,
	}
}
