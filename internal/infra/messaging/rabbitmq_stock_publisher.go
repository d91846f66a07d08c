package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"inventory/internal/domain/model"
	repo "inventory/internal/repository"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeName = "inventory_stock"
	ExchangeType = "topic"
)

// SetupConn handles the connection and exchange declaration.
func SetupConn(url string) (*amqp.Connection, *amqp.Channel, error) {
	var conn *amqp.Connection
	var err error

	//コンテナ起動直後はまだ繋がらないことがあるので数回リトライ
	for i := 0; i < 5; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, nil, fmt.Errorf("could not open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		ExchangeName, // name
		ExchangeType, // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		return nil, nil, fmt.Errorf("could not declare exchange: %w", err)
	}

	return conn, ch, nil
}

type stockRabbitPublisher struct {
	ch *amqp.Channel
}

// DI
func NewStockRabbitPublisher(ch *amqp.Channel) repo.StockEventPublisher {
	return &stockRabbitPublisher{ch: ch}
}

// Routing Key: stock.<transaction_type> (e.g. stock.sold)
func (p *stockRabbitPublisher) PublishStockChanged(ctx context.Context, ev model.StockEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("could not marshal stock event: %w", err)
	}

	routingKey := fmt.Sprintf("stock.%s", ev.TransactionType)

	return p.ch.PublishWithContext(ctx,
		ExchangeName, // exchange
		routingKey,   // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}
