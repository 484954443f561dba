package amqp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/taskpulse-api/internal/redact"
	amqp "github.com/rabbitmq/amqp091-go"
)

// maxReconnectDelay caps the exponential delay between reconnect attempts.
const maxReconnectDelay = 30 * time.Second

// ErrNoChannel is returned when no AMQP channel is open, typically while a
// reconnect is in progress.
var ErrNoChannel = errors.New("amqp: no channel available")

// Channel is the subset of *amqp.Channel used by this package.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
}

// Connection wraps an AMQP connection and reconnects when the broker drops it.
type Connection struct {
	url    string
	logger *slog.Logger

	mu      sync.RWMutex
	conn    *amqp.Connection
	channel *amqp.Channel

	closed   bool
	closedCh chan struct{}
}

// Dial connects to the broker at url and starts watching the connection.
func Dial(url string, logger *slog.Logger) (*Connection, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Connection{
		url:      url,
		logger:   logger.With("component", "amqp_connection"),
		closedCh: make(chan struct{}),
	}

	if err := c.connect(); err != nil {
		return nil, err
	}

	go c.watch()
	return c, nil
}

func (c *Connection) connect() error {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial amqp %s: %w", redact.URL(c.url), err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.channel = ch
	c.mu.Unlock()

	c.logger.Info("connected to broker", "endpoint", redact.URL(c.url))
	return nil
}

// watch waits for the connection to close and reconnects until Close is called.
func (c *Connection) watch() {
	for {
		c.mu.RLock()
		conn := c.conn
		closed := c.closed
		c.mu.RUnlock()
		if closed {
			return
		}

		notify := conn.NotifyClose(make(chan *amqp.Error, 1))
		select {
		case <-c.closedCh:
			return
		case err := <-notify:
			if err != nil {
				c.logger.Warn("broker connection lost", "error", err)
			}
			c.mu.Lock()
			c.channel = nil
			c.mu.Unlock()
			if !c.reconnect() {
				return
			}
		}
	}
}

// reconnect retries with exponential delay. It returns false when the
// connection was closed while waiting.
func (c *Connection) reconnect() bool {
	delay := time.Second
	for {
		c.logger.Info("attempting to reconnect", "delay", delay)
		select {
		case <-c.closedCh:
			return false
		case <-time.After(delay):
		}

		if err := c.connect(); err != nil {
			c.logger.Warn("reconnect failed", "error", err)
			delay = min(delay*2, maxReconnectDelay)
			continue
		}

		c.logger.Info("reconnected to broker")
		return true
	}
}

// WithChannel runs fn with the current channel.
func (c *Connection) WithChannel(ctx context.Context, fn func(ch Channel) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.RLock()
	ch := c.channel
	c.mu.RUnlock()

	if ch == nil {
		return ErrNoChannel
	}
	return fn(ch)
}

// IsConnected reports whether the underlying connection is open.
func (c *Connection) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn != nil && !c.conn.IsClosed()
}

// Close closes the channel and the connection. Closing twice is a no-op.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	close(c.closedCh)

	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close connection: %w", err))
		}
	}

	c.logger.Info("broker connection closed")
	return errors.Join(errs...)
}
