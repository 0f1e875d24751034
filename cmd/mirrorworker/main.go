package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/rodamidia/roda-campaign-services-backend/internal/services"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

const maxRetries = 3

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	mirrorDir := getEnv("SHEET_MIRROR_DIR", "./mirror")
	if err := os.MkdirAll(mirrorDir, 0o755); err != nil {
		logrus.Fatalf("Failed to create mirror directory: %v", err)
	}

	host := getEnv("RABBITMQ_HOST", "localhost")
	port := getEnv("RABBITMQ_PORT", "5672")
	user := getEnv("RABBITMQ_USER", "guest")
	pass := getEnv("RABBITMQ_PASS", "guest")

	conn, err := amqp.Dial(fmt.Sprintf("amqp://%s:%s@%s:%s/", user, pass, host, port))
	if err != nil {
		logrus.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logrus.Fatalf("Failed to open channel: %v", err)
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		services.MirrorQueueName, // name
		true,                     // durable
		false,                    // delete when unused
		false,                    // exclusive
		false,                    // no-wait
		nil,                      // arguments
	)
	if err != nil {
		logrus.Fatalf("Failed to declare queue: %v", err)
	}

	msgs, err := ch.Consume(
		q.Name,
		"",
		false, // manual ack so failed writes can be retried
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		logrus.Fatalf("Failed to register consumer: %v", err)
	}

	logrus.Infof("Mirror worker running, writing sheets under %s", mirrorDir)

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			var msg services.MirrorRowMessage
			if err := json.Unmarshal(d.Body, &msg); err != nil {
				logrus.Errorf("Invalid mirror message: %v", err)
				d.Ack(false)
				continue
			}

			if err := applyRow(mirrorDir, msg); err != nil {
				logrus.Errorf("Failed to mirror row for driver %s: %v", msg.DriverID, err)
				// A broker-side requeue (Nack) would redeliver the message
				// with its original headers and the retry count would never
				// advance. Republish a copy with the count incremented so a
				// poison message cannot loop forever.
				retries := deliveryRetryCount(d.Headers)
				if retries < maxRetries {
					if err := republish(ch, d, retries+1); err != nil {
						logrus.Errorf("Failed to requeue mirror update for driver %s: %v", msg.DriverID, err)
						d.Nack(false, true)
						continue
					}
					d.Ack(false)
					continue
				}
				logrus.Warnf("Dropping mirror update for driver %s after %d retries", msg.DriverID, maxRetries)
			}

			d.Ack(false)
		}
	}()

	<-forever
}

// deliveryRetryCount reads the retry header of a delivery. Only republished
// copies carry it; a first delivery (or a header of an unexpected type)
// counts as zero.
func deliveryRetryCount(headers amqp.Table) int32 {
	switch v := headers["x-retry-count"].(type) {
	case int32:
		return v
	case int64:
		return int32(v)
	}
	return 0
}

// republish queues a copy of a failed delivery with the retry count bumped.
func republish(ch *amqp.Channel, d amqp.Delivery, retries int32) error {
	return ch.Publish(
		"",                       // exchange
		services.MirrorQueueName, // routing key
		false,                    // mandatory
		false,                    // immediate
		amqp.Publishing{
			ContentType: d.ContentType,
			Body:        d.Body,
			Timestamp:   time.Now(),
			Headers:     amqp.Table{"x-retry-count": retries},
		},
	)
}

// applyRow writes one canonical row into the campaign's mirror workbook,
// replacing the existing row for the driver or appending a new one.
func applyRow(dir string, msg services.MirrorRowMessage) error {
	name := msg.SheetFile
	if name == "" {
		name = msg.CampaignID + ".xlsx"
	}
	path := filepath.Join(dir, filepath.Base(name))

	f, sheet, err := openWorkbook(path, msg.Headers)
	if err != nil {
		return err
	}
	defer f.Close()

	rowIndex, err := findDriverRow(f, sheet, msg)
	if err != nil {
		return err
	}

	cell, err := excelize.CoordinatesToCellName(1, rowIndex)
	if err != nil {
		return err
	}
	values := make([]interface{}, len(msg.Values))
	for i, v := range msg.Values {
		values[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return err
	}

	return f.SaveAs(path)
}

// openWorkbook opens the mirror file, creating it with a header row when it
// does not exist yet.
func openWorkbook(path string, headers []string) (*excelize.File, string, error) {
	if _, err := os.Stat(path); err == nil {
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, "", err
		}
		return f, f.GetSheetName(0), nil
	}

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	headerRow := make([]interface{}, len(headers))
	for i, h := range headers {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		f.Close()
		return nil, "", err
	}
	return f, sheet, nil
}

// findDriverRow locates the row whose ID column matches the driver, or the
// first empty row when the driver is not in the sheet yet.
func findDriverRow(f *excelize.File, sheet string, msg services.MirrorRowMessage) (int, error) {
	idCol := 0
	for i, h := range msg.Headers {
		if h == "ID" {
			idCol = i
			break
		}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return 0, err
	}

	for i, row := range rows {
		if i == 0 {
			continue // header row
		}
		if idCol < len(row) && row[idCol] == msg.DriverID {
			return i + 1, nil
		}
	}
	return len(rows) + 1, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
