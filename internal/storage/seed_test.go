package storage_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insighthub/internal/storage"
	"insighthub/internal/storage/memory"
)

func TestSampleProjectsAreValid(t *testing.T) {
	n := 0
	newID := func() string { n++; return fmt.Sprintf("id-%d", n) }

	projects := storage.SampleProjects(newID, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	require.Len(t, projects, 7)
	for _, p := range projects {
		assert.NoError(t, p.Validate(), p.Title)
	}
	assert.Equal(t, "Website Redesign", projects[0].Title)
	assert.Len(t, projects[4].TaskDetails.Done, 2)
}

func TestSeedOnlyWhenEmpty(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	n, err := storage.Seed(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	n, err = storage.Seed(ctx, s)
	require.NoError(t, err)
	assert.Zero(t, n)

	list, err := s.ListProjects(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 7)
}
