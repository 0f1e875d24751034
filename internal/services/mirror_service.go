package services

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// MirrorQueueName is the queue the mirror worker consumes from.
const MirrorQueueName = "sheet_mirror"

// MirrorService publishes canonical row updates for the external tracking
// sheet. The write itself happens in the mirror worker with its own retry;
// publishing here is best-effort and must never fail an evidence submission.
type MirrorService struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// MirrorRowMessage is one queued sheet write.
type MirrorRowMessage struct {
	CampaignID string   `json:"campaign_id"`
	SheetFile  string   `json:"sheet_file"`
	DriverID   string   `json:"driver_id"`
	Headers    []string `json:"headers"`
	Values     []string `json:"values"`
}

func NewMirrorService() (*MirrorService, error) {
	host := getEnv("RABBITMQ_HOST", "localhost")
	port := getEnv("RABBITMQ_PORT", "5672")
	user := getEnv("RABBITMQ_USER", "guest")
	pass := getEnv("RABBITMQ_PASS", "guest")

	url := fmt.Sprintf("amqp://%s:%s@%s:%s/", user, pass, host, port)

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = channel.QueueDeclare(
		MirrorQueueName, // name
		true,            // durable
		false,           // delete when unused
		false,           // exclusive
		false,           // no-wait
		nil,             // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	logrus.Info("Sheet mirror publisher initialized")
	return &MirrorService{conn: conn, channel: channel}, nil
}

// PublishRow queues one canonical row for the mirror worker.
func (s *MirrorService) PublishRow(msg MirrorRowMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal mirror message: %w", err)
	}

	err = s.channel.Publish(
		"",              // exchange
		MirrorQueueName, // routing key
		false,           // mandatory
		false,           // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
			Timestamp:   time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish mirror message: %w", err)
	}
	return nil
}

// Close closes the RabbitMQ connection
func (s *MirrorService) Close() error {
	if s.channel != nil {
		if err := s.channel.Close(); err != nil {
			logrus.Warnf("Error closing channel: %v", err)
		}
	}
	if s.conn != nil {
		if err := s.conn.Close(); err != nil {
			logrus.Warnf("Error closing connection: %v", err)
		}
	}
	return nil
}

// getEnv gets environment variable with fallback default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
