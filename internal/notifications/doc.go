// Package notifications delivers workflow events via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when notifications are
// disabled. Per-event toggles let users silence routine import/transfer
// notices while keeping error alerts.
//
// Extend this package if you need alternative transports; command code
// depends only on the Service interface.
package notifications
