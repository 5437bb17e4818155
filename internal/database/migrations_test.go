package database

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRunCommand_UnknownCommand(t *testing.T) {
	err := RunCommand(context.Background(), zap.NewNop(), nil, "sideways")
	assert.ErrorContains(t, err, `unknown migrate command "sideways"`)
}

func TestMigrationsAreEmbeddedInPairs(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)

	ups, downs := 0, 0
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			ups++
		case strings.HasSuffix(e.Name(), ".down.sql"):
			downs++
		}
	}
	assert.Equal(t, 4, ups)
	assert.Equal(t, ups, downs)
}
