// worker consumes platform events from Kafka and pushes them to Loki.
// Set KAFKA_BROKERS, EVENT_KAFKA_TOPIC, KAFKA_GROUP_ID, and LOKI_URL.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"

	"ppf-ops-platform/internal/config"
	"ppf-ops-platform/internal/telemetry/loki"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	brokers := cfg.EventKafkaBrokersList()
	if len(brokers) == 0 {
		log.Fatal("worker: KAFKA_BROKERS is required")
	}
	if cfg.LokiURL == "" {
		log.Fatal("worker: LOKI_URL is required")
	}

	topic := cfg.EventKafkaTopic
	if topic == "" {
		topic = "ppfops-events"
	}
	groupID := cfg.KafkaGroupID
	if groupID == "" {
		groupID = "ppfops-event-worker"
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		CommitInterval: time.Second,
	})
	defer reader.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("worker consuming %s from %v, pushing to %s", topic, brokers, cfg.LokiURL)
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Println("worker stopped")
				return
			}
			log.Printf("worker: read message: %v", err)
			continue
		}
		if err := loki.PushEventJSON(ctx, cfg.LokiURL, msg.Value); err != nil {
			log.Printf("worker: push to loki: %v", err)
		}
	}
}
