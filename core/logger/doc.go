// Package logger builds the zap logger shared by the commands, the engine and the HTTP
// handlers.
//
// Level "debug" starts from zap's development config; every other level starts from the
// production config. Format selects the encoder: "console" prints colored levels with
// ISO8601 timestamps for terminals, "json" suits log collectors.
//
// Handlers derive a request logger with WithRayID, which adds the ray_id set by the rayid
// middleware:
//
//	l := logger.WithRayID(h.logger, c)
//	l.Warn("Export failed", zap.Error(err))
package logger
