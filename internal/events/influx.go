package events

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/craftmesh/proxysync/pkg/logger"
)

// InfluxConfig holds InfluxDB connection configuration
type InfluxConfig struct {
	URL    string
	Token  string
	Org    string
	Bucket string
}

// InfluxStorage persists events as time-series points in InfluxDB
type InfluxStorage struct {
	client   influxdb2.Client
	writeAPI api.WriteAPI
}

// NewInfluxStorage connects to InfluxDB and verifies it is healthy
func NewInfluxStorage(config InfluxConfig) (*InfluxStorage, error) {
	client := influxdb2.NewClient(config.URL, config.Token)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	health, err := client.Health(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to InfluxDB: %w", err)
	}
	if health.Status != "pass" {
		client.Close()
		return nil, fmt.Errorf("InfluxDB health check failed: %s", health.Status)
	}

	logger.Info("InfluxDB event storage connected", map[string]interface{}{
		"url":    config.URL,
		"org":    config.Org,
		"bucket": config.Bucket,
	})

	return &InfluxStorage{
		client:   client,
		writeAPI: client.WriteAPI(config.Org, config.Bucket),
	}, nil
}

// Store writes one event as a point. Tags hold the indexed dimensions;
// the event payload lands in fields. Writes are batched by the client.
func (s *InfluxStorage) Store(event Event) error {
	fields := map[string]interface{}{
		"event_id": event.ID,
	}
	for k, v := range event.Data {
		fields[k] = v
	}

	point := influxdb2.NewPoint(
		"topology_events",
		map[string]string{
			"event_type": string(event.Type),
			"source":     event.Source,
			"server":     event.Server,
		},
		fields,
		event.Timestamp,
	)

	s.writeAPI.WritePoint(point)
	return nil
}

// Close flushes pending writes and shuts the client down
func (s *InfluxStorage) Close() {
	s.writeAPI.Flush()
	s.client.Close()
}
