//go:build integration

package containers

import (
	"context"
	"testing"

	tcredpanda "github.com/testcontainers/testcontainers-go/modules/redpanda"
)

// KafkaContainer is a running Redpanda broker, Kafka-compatible on the wire.
type KafkaContainer struct {
	Broker string
}

// StartKafka runs a single-node Redpanda container and returns its seed
// broker address.
func StartKafka(t *testing.T) *KafkaContainer {
	t.Helper()
	ctx := context.Background()

	container, err := tcredpanda.Run(ctx, "redpandadata/redpanda:v24.1.2")
	if err != nil {
		t.Fatalf("start redpanda container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	broker, err := container.KafkaSeedBroker(ctx)
	if err != nil {
		t.Fatalf("redpanda seed broker: %v", err)
	}

	return &KafkaContainer{Broker: broker}
}
