// Package amqp publishes reminder notifications to a RabbitMQ exchange.
//
// Files:
//   - connection.go: connection lifecycle with automatic reconnect
//   - topology.go:   exchange, queue and binding declarations
//   - publisher.go:  JSON message publishing
//
// The broker is an optional delivery channel. Consumers bind their own
// queues to the notifications exchange; the default reminders queue exists
// so that messages are retained before any consumer has started.
package amqp
