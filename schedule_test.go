package pubfeed

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRebuildSchedulerWritesArtifacts(t *testing.T) {
	dir := t.TempDir()
	gen := newTestGenerator(StaticSource(scenarioPosts()))

	s, err := NewRebuildScheduler(gen, dir, time.Hour)
	require.NoError(t, err)
	s.Start()
	t.Cleanup(func() { _ = s.Stop() })

	assert.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(dir, ArtifactSitemapIndex))
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)
}

func TestRebuildSchedulerRejectsZeroInterval(t *testing.T) {
	_, err := NewRebuildScheduler(newTestGenerator(StaticSource(nil)), t.TempDir(), 0)
	assert.Error(t, err)
}
