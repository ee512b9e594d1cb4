package observability

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteTextfile(t *testing.T) {
	t.Parallel()

	m, err := NewMetrics()
	require.NoError(t, err)
	m.Downloader.RecordDownload(2048, 300*time.Millisecond)
	m.Downloader.RecordMetadataRequest("success", 100*time.Millisecond)

	path := filepath.Join(t.TempDir(), "textfile", "pokeart.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "pokeart_downloads_total 1")
	assert.Contains(t, out, "pokeart_download_bytes_total 2048")
	assert.Contains(t, out, `pokeart_metadata_requests_total{result="success"} 1`)
}

func TestWriteTextfileEmptyPathIsNoop(t *testing.T) {
	t.Parallel()

	m, err := NewMetrics()
	require.NoError(t, err)
	assert.NoError(t, m.WriteTextfile(""))
}

func TestMetricsInstancesAreIndependent(t *testing.T) {
	t.Parallel()

	a, err := NewMetrics()
	require.NoError(t, err)
	b, err := NewMetrics()
	require.NoError(t, err)
	assert.NotSame(t, a.Registry(), b.Registry())
}
