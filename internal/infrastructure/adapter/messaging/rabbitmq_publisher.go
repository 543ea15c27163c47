package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	coreport "github.com/amirhossein-jamali/plutus-backend/internal/domain/port/core"
)

// DefaultExchange is the topic exchange domain events are published to
const DefaultExchange = "plutus.events"

// Config configures event publishing
type Config struct {
	Enabled     bool          `mapstructure:"enabled"`
	AMQPURL     string        `mapstructure:"amqpUrl"`
	Exchange    string        `mapstructure:"exchange"`
	DialTimeout time.Duration `mapstructure:"dialTimeout"`
}

// RabbitMQPublisher publishes domain events to a durable topic exchange, routed by event type
type RabbitMQPublisher struct {
	exchange string
	logger   coreport.Logger

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

var _ coreport.EventPublisher = (*RabbitMQPublisher)(nil)

// NewRabbitMQPublisher dials the broker and declares the exchange
func NewRabbitMQPublisher(cfg Config, logger coreport.Logger) (*RabbitMQPublisher, error) {
	cleanURL, err := sanitizeAMQPURL(cfg.AMQPURL)
	if err != nil {
		return nil, err
	}
	if cfg.Exchange == "" {
		cfg.Exchange = DefaultExchange
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 10 * time.Second
	}

	// bounded dial so startup does not hang on an unreachable broker
	conn, err := amqp.DialConfig(cleanURL, amqp.Config{Dial: amqp.DefaultDial(cfg.DialTimeout)})
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	p := &RabbitMQPublisher{exchange: cfg.Exchange, logger: logger, conn: conn}
	if err := p.openChannel(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	logger.Info("Connected to RabbitMQ", map[string]any{"exchange": cfg.Exchange})
	return p, nil
}

// openChannel opens a fresh channel and declares the exchange on it; callers hold mu or own p
func (p *RabbitMQPublisher) openChannel() error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(
		p.exchange, // name
		"topic",    // type
		true,       // durable
		false,      // autoDelete
		false,      // internal
		false,      // noWait
		nil,        // args
	); err != nil {
		_ = ch.Close()
		return fmt.Errorf("declare exchange %s: %w", p.exchange, err)
	}
	p.channel = ch
	return nil
}

// Publish sends the event with its type as routing key, reopening the channel once on failure
func (p *RabbitMQPublisher) Publish(ctx context.Context, event coreport.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.Type, err)
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID,
		Timestamp:    event.OccurredAt,
		Type:         string(event.Type),
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel == nil {
		return errors.New("rabbitmq publisher is closed")
	}

	err = p.channel.PublishWithContext(ctx, p.exchange, string(event.Type), false, false, msg)
	if err == nil {
		return nil
	}

	p.logger.Warn("Publish failed, reopening channel", map[string]any{
		"exchange":    p.exchange,
		"routing_key": string(event.Type),
		"error":       err.Error(),
	})
	if p.conn == nil || p.conn.IsClosed() {
		return err
	}
	if chErr := p.openChannel(); chErr != nil {
		return errors.Join(err, chErr)
	}
	return p.channel.PublishWithContext(ctx, p.exchange, string(event.Type), false, false, msg)
}

// Close closes the channel and the connection
func (p *RabbitMQPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errList []error
	if p.channel != nil {
		if err := p.channel.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errList = append(errList, err)
		}
		p.channel = nil
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errList = append(errList, err)
		}
		p.conn = nil
	}
	return errors.Join(errList...)
}

// sanitizeAMQPURL strips quotes and stray characters that env files tend to leave around the URL
func sanitizeAMQPURL(raw string) (string, error) {
	clean := strings.Trim(strings.TrimSpace(raw), "\"'")
	if idx := strings.Index(strings.ToLower(clean), "amqp"); idx > 0 {
		clean = clean[idx:]
	}
	u, err := url.Parse(clean)
	if err != nil {
		return "", err
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return "", errors.New("AMQP scheme must be either 'amqp://' or 'amqps://'")
	}
	return clean, nil
}
