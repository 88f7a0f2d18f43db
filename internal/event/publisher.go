package event

import (
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/mstore/shop-backend/internal/order"
)

const (
	OrderCreatedQueue   = "order.created"
	OrderPaidQueue      = "order.paid"
	OrderCancelledQueue = "order.cancelled"
)

// OrderEvent is the wire form of an order lifecycle event.
type OrderEvent struct {
	OrderID    int         `json:"orderID"`
	UserID     int         `json:"userId"`
	TotalCents int64       `json:"totalCents"`
	Status     string      `json:"status"`
	Items      []ItemEvent `json:"items"`
}

type ItemEvent struct {
	ProductID int `json:"productID"`
	Quantity  int `json:"quantity"`
}

// Publisher emits order events to RabbitMQ queues.
type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// Dial connects and declares the order queues.
func Dial(url string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	p := &Publisher{conn: conn, channel: channel}
	for _, queue := range []string{OrderCreatedQueue, OrderPaidQueue, OrderCancelledQueue} {
		if _, err := channel.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			p.Close()
			return nil, fmt.Errorf("failed to declare queue %s: %w", queue, err)
		}
	}
	return p, nil
}

func (p *Publisher) OrderCreated(o order.Order) error {
	return p.publish(OrderCreatedQueue, o)
}

func (p *Publisher) OrderPaid(o order.Order) error {
	return p.publish(OrderPaidQueue, o)
}

func (p *Publisher) OrderCancelled(o order.Order) error {
	return p.publish(OrderCancelledQueue, o)
}

func (p *Publisher) publish(queue string, o order.Order) error {
	evt := OrderEvent{
		OrderID:    o.ID,
		UserID:     o.UserID,
		TotalCents: o.TotalCents,
		Status:     string(o.Status),
	}
	for _, it := range o.Items {
		evt.Items = append(evt.Items, ItemEvent{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	return p.channel.Publish("", queue, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        data,
	})
}

func (p *Publisher) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}

var _ order.EventPublisher = (*Publisher)(nil)
