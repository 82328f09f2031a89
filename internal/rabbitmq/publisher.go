package rabbitmq

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
)

// AppID tags every message published by this service.
const AppID = "finsave"

// PublishMessage marshals message to JSON and publishes it as a persistent
// delivery. The routing key doubles as the message type so consumers bound to
// a wildcard can dispatch without decoding the body.
func PublishMessage(ch *amqp.Channel, exchange, routingKey string, message any) error {
	const op = "rabbitmq.PublishMessage"

	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Type:         routingKey,
		AppId:        AppID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err = ch.Publish(exchange, routingKey, false, false, msg); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
