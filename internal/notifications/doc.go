// Package notifications sends ntfy push notifications for run outcomes.
// When no topic is configured a noop implementation is used, so callers
// never branch on whether notifications are enabled.
package notifications
