package platform_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/lattice/internal/platform"
)

func TestConfigWatcher_ReportsChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), platform.ConfigFile)
	cfg, err := platform.LoadConfig(path)
	require.NoError(t, err)

	changes := make(chan platform.Config, 4)
	w := platform.NewConfigWatcher(path, cfg, nil, func(c platform.Config) { changes <- c })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop(context.Background())

	require.NoError(t, os.WriteFile(path, []byte("port: 4100\n"), 0644))

	select {
	case got := <-changes:
		assert.Equal(t, 4100, got.Port)
	case <-time.After(5 * time.Second):
		t.Fatal("config change not reported")
	}

	assert.Error(t, w.Start(ctx), "a running watcher cannot be started twice")
}
