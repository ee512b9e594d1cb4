package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingReporter struct {
	enabled bool
	errs    []*EnhancedError
}

func (r *recordingReporter) ReportError(ee *EnhancedError) {
	r.errs = append(r.errs, ee)
	ee.MarkReported()
}

func (r *recordingReporter) IsEnabled() bool { return r.enabled }

func TestBuildDefaults(t *testing.T) {
	ee := New(fmt.Errorf("test error")).Build()

	assert.Equal(t, "test error", ee.Error())
	assert.Equal(t, ComponentUnknown, ee.GetComponent())
	assert.Equal(t, CategoryGeneric, ee.Category)
	assert.False(t, ee.Timestamp.IsZero())
}

func TestBuildInheritsWrappedCategory(t *testing.T) {
	inner := Newf("record missing").Category(CategoryNotFound).Build()
	outer := Newf("lookup failed: %w", inner).Build()

	assert.Equal(t, CategoryNotFound, outer.Category)
	assert.True(t, IsNotFound(outer))
}

func TestCategoryPredicates(t *testing.T) {
	tests := []struct {
		category ErrorCategory
		check    func(error) bool
	}{
		{CategoryNetwork, IsNetwork},
		{CategoryNotFound, IsNotFound},
		{CategoryInvalidResponse, IsInvalidResponse},
		{CategoryImageFetch, IsDownload},
		{CategoryFileIO, IsWrite},
		{CategoryValidation, IsValidation},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			err := Newf("boom").Category(tt.category).Build()
			assert.True(t, tt.check(err))
			assert.True(t, tt.check(fmt.Errorf("wrapped: %w", err)))
			assert.False(t, tt.check(fmt.Errorf("plain")))
		})
	}
}

func TestEnhancedErrorIs(t *testing.T) {
	sentinel := NewStd("sentinel")
	err := New(fmt.Errorf("outer: %w", sentinel)).Category(CategoryFileIO).Build()

	assert.ErrorIs(t, err, sentinel)
	assert.ErrorIs(t, err, &EnhancedError{Category: CategoryFileIO})
	assert.NotErrorIs(t, err, &EnhancedError{Category: CategoryNetwork})
}

func TestContextIsCopied(t *testing.T) {
	ee := Newf("boom").
		Context("identifier", 25).
		NetworkContext("https://pokeapi.co/api/v2/pokemon/25").
		FileContext("storage/pikachu-25.png").
		Build()

	ctx := ee.GetContext()
	require.NotNil(t, ctx)
	assert.Equal(t, 25, ctx["identifier"])
	assert.Equal(t, "https-endpoint", ctx["url_category"])
	assert.Equal(t, "nested-path", ctx["file_type"])
	assert.Equal(t, "png", ctx["file_extension"])

	ctx["identifier"] = 1
	assert.Equal(t, 25, ee.GetContext()["identifier"])
}

func TestTelemetryReporterReceivesErrors(t *testing.T) {
	reporter := &recordingReporter{enabled: true}
	SetTelemetryReporter(reporter)
	t.Cleanup(func() { SetTelemetryReporter(nil) })

	ee := Newf("download failed").Category(CategoryImageFetch).Component("imagesaver").Build()

	require.Len(t, reporter.errs, 1)
	assert.Same(t, ee, reporter.errs[0])
	assert.True(t, ee.IsReported())
}

func TestDisabledReporterIsSkipped(t *testing.T) {
	reporter := &recordingReporter{enabled: false}
	SetTelemetryReporter(reporter)
	t.Cleanup(func() { SetTelemetryReporter(nil) })

	_ = Newf("boom").Build()

	assert.Empty(t, reporter.errs)
}

func TestGenerateErrorTitle(t *testing.T) {
	ee := Newf("boom").
		Component("pokeapi").
		Category(CategoryNotFound).
		Context("operation", "fetch_record").
		Build()

	assert.Equal(t, "Pokeapi Not Found Fetch Record", generateErrorTitle(ee))
}

func TestScrubMessageForPrivacy(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains string
		absent   string
	}{
		{"query string", "GET https://example.com/a.png?token=abc failed", "https://example.com/a.png?[REDACTED]", "abc"},
		{"home directory", "open /home/alice/storage/x.png: permission denied", "/home/[USER]/storage", "alice"},
		{"api key", "config api_key=secret123 rejected", "[API_KEY_REDACTED]", "secret123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scrubMessageForPrivacy(tt.input)
			assert.Contains(t, got, tt.contains)
			assert.NotContains(t, got, tt.absent)
		})
	}
}
