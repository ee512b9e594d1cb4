package app

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pokeart/pokeart-go/internal/buildinfo"
	"github.com/pokeart/pokeart-go/internal/conf"
	"github.com/pokeart/pokeart-go/internal/logger"
)

const pikachuJSON = `{
	"id": 25,
	"name": "pikachu",
	"sprites": {"other": {"official-artwork": {"front_default": "https://img.example.com/25.png"}}}
}`

// isolate resets global state touched by Initialize.
func isolate(t *testing.T) string {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	t.Chdir(dir)
	t.Cleanup(func() { logger.SetGlobal(nil) })
	return dir
}

func TestInitializeWiresDownloadPipeline(t *testing.T) {
	dir := isolate(t)
	metricsFile := filepath.Join(dir, "metrics", "pokeart.prom")
	t.Setenv("POKEART_METRICS_FILE", metricsFile)
	t.Setenv("POKEART_OUTPUT_DIR", "art")

	transport := httpmock.NewMockTransport()
	transport.RegisterResponder(http.MethodGet, conf.DefaultEndpoint+"/25",
		httpmock.NewStringResponder(http.StatusOK, pikachuJSON))
	transport.RegisterResponder(http.MethodGet, "https://img.example.com/25.png",
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "pokeart-go/1.2.3", req.Header.Get("User-Agent"))
			return httpmock.NewBytesResponse(http.StatusOK, []byte("png-bytes")), nil
		})

	appCtx := NewContext(buildinfo.NewContext("1.2.3", ""))
	appCtx.SetTransport(transport)
	require.NoError(t, appCtx.Initialize(""))
	assert.Equal(t, "1.2.3", appCtx.Settings.Version)

	pic, err := appCtx.Downloader.DownloadPicture(t.Context(), 25)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("art", "pikachu-25.png"), pic.Path)

	data, err := os.ReadFile(pic.Path)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
	assert.Equal(t, 2, transport.GetTotalCallCount())

	require.NoError(t, appCtx.Close())

	metrics, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "pokeart_downloads_total 1")
	assert.Contains(t, string(metrics), `pokeart_metadata_requests_total{result="success"} 1`)
}

func TestInitializeInvalidConfig(t *testing.T) {
	isolate(t)
	t.Setenv("POKEART_OUTPUT_EXTENSION", "p/ng")

	appCtx := NewContext(nil)
	err := appCtx.Initialize("")
	require.Error(t, err)
	assert.Nil(t, appCtx.Downloader)
	assert.NoError(t, appCtx.Close())
}

func TestInitializeMissingExplicitConfig(t *testing.T) {
	dir := isolate(t)

	appCtx := NewContext(nil)
	err := appCtx.Initialize(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}

func TestCloseWithoutInitialize(t *testing.T) {
	appCtx := NewContext(nil)
	assert.Equal(t, buildinfo.UnknownValue, appCtx.Build.Version())
	assert.NoError(t, appCtx.Close())
}

func TestLoggingConfig(t *testing.T) {
	tests := []struct {
		name     string
		settings conf.Settings
		want     string
		wantFile bool
	}{
		{
			name:     "configured level",
			settings: conf.Settings{Log: conf.LogSettings{Level: "info"}},
			want:     "info",
		},
		{
			name:     "debug flag lowers level",
			settings: conf.Settings{Debug: true, Log: conf.LogSettings{Level: "warn"}},
			want:     "debug",
		},
		{
			name:     "debug flag keeps trace",
			settings: conf.Settings{Debug: true, Log: conf.LogSettings{Level: "trace"}},
			want:     "trace",
		},
		{
			name:     "file output",
			settings: conf.Settings{Log: conf.LogSettings{Level: "error", File: "logs/pokeart.log"}},
			want:     "error",
			wantFile: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := loggingConfig(&tt.settings)
			assert.Equal(t, tt.want, cfg.DefaultLevel)
			require.NotNil(t, cfg.Console)
			assert.Equal(t, tt.want, cfg.Console.Level)
			if tt.wantFile {
				require.NotNil(t, cfg.FileOutput)
				assert.Equal(t, tt.settings.Log.File, cfg.FileOutput.Path)
			} else {
				assert.Nil(t, cfg.FileOutput)
			}
		})
	}
}
