package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/covid-dashboard-service/internal/config"
	"github.com/couchcryptid/covid-dashboard-service/internal/domain"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafkago.Writer used here.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// SnapshotWriter publishes the latest snapshot to a Kafka topic, one message
// per country. It implements pipeline.Publisher.
type SnapshotWriter struct {
	writer messageWriter
	logger *slog.Logger
}

// NewSnapshotWriter creates a Kafka producer for the configured snapshot topic.
func NewSnapshotWriter(cfg *config.Config, logger *slog.Logger) *SnapshotWriter {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSnapshotTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &SnapshotWriter{writer: w, logger: logger}
}

// snapshotMessage is the JSON value of one published row.
type snapshotMessage struct {
	Country     string      `json:"country"`
	Code        *string     `json:"code"`
	DisplayName *string     `json:"display_name"`
	Confirmed   int64       `json:"confirmed"`
	Rank        int         `json:"rank"`
	LastUpdate  domain.Date `json:"last_update"`
	BuiltAt     time.Time   `json:"built_at"`
	PublishID   string      `json:"publish_id"`
}

// snapshotBatch carries the fields shared by every row of one publish.
type snapshotBatch struct {
	publishID  string
	lastUpdate domain.Date
	builtAt    time.Time
}

// PublishSnapshot writes every snapshot row in a single WriteMessages call.
// All rows of one call share a publish_id so consumers can tell snapshots apart.
func (w *SnapshotWriter) PublishSnapshot(ctx context.Context, d *domain.Dashboard) error {
	if len(d.Snapshot) == 0 {
		return nil
	}
	batch := snapshotBatch{
		publishID:  uuid.NewString(),
		lastUpdate: d.Summary.LastUpdate,
		builtAt:    d.BuiltAt,
	}
	msgs := make([]kafkago.Message, len(d.Snapshot))
	for i := range d.Snapshot {
		msg, err := serializeToMessage(d.Snapshot[i], i+1, batch)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	w.logger.Debug("publishing snapshot",
		"rows", len(msgs),
		"publish_id", batch.publishID,
		"last_update", batch.lastUpdate.String(),
	)
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *SnapshotWriter) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals one snapshot row into a Kafka message keyed by
// country so repeated publishes of the same country land on one partition.
func serializeToMessage(row domain.SnapshotRow, rank int, batch snapshotBatch) (kafkago.Message, error) {
	data, err := json.Marshal(snapshotMessage{
		Country:     row.Country,
		Code:        row.Code,
		DisplayName: row.DisplayName,
		Confirmed:   row.Confirmed,
		Rank:        rank,
		LastUpdate:  batch.lastUpdate,
		BuiltAt:     batch.builtAt,
		PublishID:   batch.publishID,
	})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize snapshot row: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(row.Country),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "category", Value: []byte(domain.Confirmed)},
			{Key: "last_update", Value: []byte(batch.lastUpdate.String())},
			{Key: "publish_id", Value: []byte(batch.publishID)},
		},
	}, nil
}
