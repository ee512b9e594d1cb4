// Package downloader ties metadata resolution and image persistence together:
// pick an identifier, resolve its record once, and save the artwork as
// {name}-{identifier}.{ext}.
package downloader

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/pokeart/pokeart-go/internal/errors"
	"github.com/pokeart/pokeart-go/internal/logger"
	"github.com/pokeart/pokeart-go/internal/pokeapi"
)

const (
	// MinIdentifier and MaxIdentifier bound the identifiers PokeAPI serves artwork for.
	MinIdentifier = 1
	MaxIdentifier = 1010

	// DefaultOutputDir is where images are saved when no directory is configured.
	DefaultOutputDir = "storage"
	// DefaultExtension is appended to generated file names.
	DefaultExtension = "png"
)

// Resolver fetches metadata records.
type Resolver interface {
	FetchRecord(ctx context.Context, id int) (*pokeapi.Record, error)
}

// ImageSaver persists an image URL to dir/filename.
type ImageSaver interface {
	SaveImage(ctx context.Context, url, filename, dir string) (string, int64, error)
}

// Recorder receives download outcomes.
type Recorder interface {
	RecordDownload(bytes int64, duration time.Duration)
	RecordDownloadError(category string)
}

// Config controls where and how pictures are written.
type Config struct {
	OutputDir string
	Extension string
}

// Picture describes a saved image.
type Picture struct {
	Identifier int
	Name       string
	SourceURL  string
	Path       string
	Bytes      int64
}

// Downloader orchestrates a single download end to end.
type Downloader struct {
	resolver Resolver
	saver    ImageSaver
	config   Config
	logger   logger.Logger
	recorder Recorder
}

// New creates a Downloader. Empty config values fall back to the defaults.
func New(resolver Resolver, saver ImageSaver, config Config, log logger.Logger) *Downloader {
	if config.OutputDir == "" {
		config.OutputDir = DefaultOutputDir
	}
	if config.Extension == "" {
		config.Extension = DefaultExtension
	}
	if log == nil {
		log = logger.Global().Module("downloader")
	}
	return &Downloader{
		resolver: resolver,
		saver:    saver,
		config:   config,
		logger:   log,
	}
}

// SetRecorder registers a metrics recorder.
func (d *Downloader) SetRecorder(r Recorder) {
	d.recorder = r
}

// RandomIdentifier returns an identifier uniformly distributed in
// [MinIdentifier, MaxIdentifier].
func RandomIdentifier() int {
	return rand.IntN(MaxIdentifier-MinIdentifier+1) + MinIdentifier
}

// ValidateIdentifier rejects identifiers outside the served range.
func ValidateIdentifier(id int) error {
	if id < MinIdentifier || id > MaxIdentifier {
		return errors.Newf("identifier %d is out of range [%d, %d]", id, MinIdentifier, MaxIdentifier).
			Component("downloader").
			Category(errors.CategoryValidation).
			Context("identifier", id).
			Build()
	}
	return nil
}

// FileName builds the saved file name for a record.
func (d *Downloader) FileName(name string, id int) string {
	return fmt.Sprintf("%s-%d.%s", name, id, d.config.Extension)
}

// DownloadPicture resolves the record for id once and saves its artwork.
// Errors from the resolver and the saver are returned unchanged.
func (d *Downloader) DownloadPicture(ctx context.Context, id int) (*Picture, error) {
	start := time.Now()
	log := d.logger.WithContext(ctx).With(logger.Int("identifier", id))

	pic, err := d.download(ctx, id)
	if err != nil {
		d.recordError(err)
		log.Warn("download failed", logger.Error(err))
		return nil, err
	}

	elapsed := time.Since(start)
	if d.recorder != nil {
		d.recorder.RecordDownload(pic.Bytes, elapsed)
	}
	log.Info("picture saved",
		logger.String("name", pic.Name),
		logger.String("path", pic.Path),
		logger.Int64("bytes", pic.Bytes),
		logger.Duration("elapsed", elapsed))

	return pic, nil
}

func (d *Downloader) download(ctx context.Context, id int) (*Picture, error) {
	if err := ValidateIdentifier(id); err != nil {
		return nil, err
	}

	rec, err := d.resolver.FetchRecord(ctx, id)
	if err != nil {
		return nil, err
	}

	imageURL, err := rec.ImageURL()
	if err != nil {
		return nil, err
	}
	name, err := rec.DisplayName()
	if err != nil {
		return nil, err
	}

	path, written, err := d.saver.SaveImage(ctx, imageURL, d.FileName(name, id), d.config.OutputDir)
	if err != nil {
		return nil, err
	}

	return &Picture{
		Identifier: id,
		Name:       name,
		SourceURL:  imageURL,
		Path:       path,
		Bytes:      written,
	}, nil
}

// DownloadRandom downloads the picture for a random identifier.
func (d *Downloader) DownloadRandom(ctx context.Context) (*Picture, error) {
	id := RandomIdentifier()
	d.logger.Debug("picked random identifier", logger.Int("identifier", id))
	return d.DownloadPicture(ctx, id)
}

// Describe returns the metadata record for id without downloading anything.
func (d *Downloader) Describe(ctx context.Context, id int) (*pokeapi.Record, error) {
	if err := ValidateIdentifier(id); err != nil {
		return nil, err
	}
	return d.resolver.FetchRecord(ctx, id)
}

func (d *Downloader) recordError(err error) {
	if d.recorder == nil {
		return
	}
	category := string(errors.CategoryGeneric)
	var ee *errors.EnhancedError
	if errors.As(err, &ee) {
		category = string(ee.Category)
	}
	d.recorder.RecordDownloadError(category)
}
