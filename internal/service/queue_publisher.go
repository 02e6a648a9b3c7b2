// Package service provides the fire-and-forget publisher for film
// lifecycle events. Errors are logged and returned so callers can ignore
// failures without interrupting the request flow.
package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"onlyfilms/internal/queue"
)

// EventPublisher is the capability handlers hold; tests substitute fakes.
type EventPublisher interface {
	PublishFilmEvent(ctx context.Context, ev queue.FilmEvent) error
}

// Publisher publishes to RabbitMQ. An empty URL disables publishing.
type Publisher struct{ URL string }

func NewPublisher(url string) *Publisher { return &Publisher{URL: url} }

// PublishFilmEvent writes a persistent message to the film.events queue.
// It never panics; any error is logged and returned for the caller to
// ignore.
func (p *Publisher) PublishFilmEvent(ctx context.Context, ev queue.FilmEvent) error {
	if p == nil || p.URL == "" {
		return nil
	}
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queue.FilmEventsQueue, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue.FilmEventsQueue, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}
