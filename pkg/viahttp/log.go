package viahttp

import "go.uber.org/zap"

// NewLogger returns a development zap.Logger when development is true and a
// production zap.Logger otherwise, or a no-op logger if construction fails.
// Grounded on packetd-packetd's pervasive zap usage for structured
// logging; this package's core state machines take a *zap.Logger only at
// the Connection/Server/Client boundary and never log from inside a
// parser itself, keeping the hot parse path allocation-free.
func NewLogger(development bool) *zap.Logger {
	var log *zap.Logger
	var err error
	if development {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return log
}

// ConnectionFields returns the standard zap fields logged alongside every
// connection-scoped log line.
func ConnectionFields(c *Connection) []zap.Field {
	return []zap.Field{
		zap.String("connection_id", c.ID.String()),
		zap.String("state", c.State().String()),
	}
}
