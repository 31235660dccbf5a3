//go:build integration

package mongo

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"insighthub/internal/storage"
	"insighthub/internal/storage/storagetest"
)

// setupMongo starts a MongoDB container and returns its connection URI.
func setupMongo(t *testing.T) string {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mongo:7",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForLog("Waiting for connections"),
	}

	mongoC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "start mongo container")
	t.Cleanup(func() {
		if err := mongoC.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate mongo container: %v", err)
		}
	})

	host, err := mongoC.Host(ctx)
	require.NoError(t, err)
	port, err := mongoC.MappedPort(ctx, "27017")
	require.NoError(t, err)

	return fmt.Sprintf("mongodb://%s:%s", host, port.Port())
}

func TestStoreContract(t *testing.T) {
	uri := setupMongo(t)

	storagetest.Run(t, func(t *testing.T) storage.Store {
		database := "insighthub_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
		s, err := Open(context.Background(), uri, database, nil)
		require.NoError(t, err)
		t.Cleanup(func() {
			_ = s.client.Database(database).Drop(context.Background())
			_ = s.Close()
		})
		return s
	})
}
