// Package imagesaver downloads an image over HTTP and streams it to disk.
package imagesaver

import (
	"bufio"
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pokeart/pokeart-go/internal/errors"
	"github.com/pokeart/pokeart-go/internal/httpclient"
	"github.com/pokeart/pokeart-go/internal/logger"
)

const (
	defaultFileMode fs.FileMode = 0o644
	defaultDirMode  fs.FileMode = 0o755
	copyBufferSize              = 64 * 1024
	tempFilePattern             = ".pokeart-*.part"
)

// Options controls directory creation and permissions.
type Options struct {
	// Recursive creates missing parent directories. By default only the
	// leaf directory is created and a missing parent is a write error.
	Recursive bool
	FileMode  fs.FileMode // 0 means 0644
	DirMode   fs.FileMode // 0 means 0755
}

// Saver fetches images and persists them under a target directory.
type Saver struct {
	http   *httpclient.Client
	opts   Options
	logger logger.Logger
}

// New creates a Saver using the shared HTTP client.
func New(hc *httpclient.Client, opts Options, log logger.Logger) (*Saver, error) {
	if hc == nil {
		return nil, errors.Newf("HTTP client is required").
			Component("imagesaver").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if opts.FileMode == 0 {
		opts.FileMode = defaultFileMode
	}
	if opts.DirMode == 0 {
		opts.DirMode = defaultDirMode
	}
	if log == nil {
		log = logger.Global().Module("imagesaver")
	}

	return &Saver{
		http:   hc,
		opts:   opts,
		logger: log,
	}, nil
}

// SaveImage downloads url and writes it to filepath.Join(dir, filename),
// returning that path and the number of bytes written. An empty dir means
// the current directory. The payload is streamed, never held in memory, and
// is renamed into place only once completely written.
func (s *Saver) SaveImage(ctx context.Context, url, filename, dir string) (string, int64, error) {
	if dir == "" {
		dir = "."
	}
	if err := validateFilename(filename); err != nil {
		return "", 0, err
	}

	dest := filepath.Join(dir, filename)
	start := time.Now()
	log := s.logger.WithContext(ctx).With(logger.String("url", url), logger.String("path", dest))

	resp, err := s.http.Get(ctx, url)
	if err != nil {
		log.Warn("image request failed", logger.Error(err))
		return "", 0, errors.Newf("Image failed to download: %w", err).
			Component("imagesaver").
			Category(errors.CategoryImageFetch).
			Context("operation", "fetch_image").
			NetworkContext(url).
			Build()
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Debug("failed to close response body", logger.Error(err))
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn("image request returned unexpected status", logger.Int("status_code", resp.StatusCode))
		return "", 0, errors.Newf("Image failed to download: unexpected status %d", resp.StatusCode).
			Component("imagesaver").
			Category(errors.CategoryImageFetch).
			Context("operation", "fetch_image").
			Context("status_code", resp.StatusCode).
			NetworkContext(url).
			Build()
	}

	if err := s.ensureDir(dir); err != nil {
		log.Warn("failed to create output directory", logger.Error(err))
		return "", 0, err
	}

	written, err := s.writeAtomic(ctx, dest, resp.Body)
	if err != nil {
		log.Warn("failed to save image", logger.Error(err), logger.Int64("bytes_written", written))
		return "", 0, err
	}

	log.Debug("image saved",
		logger.Int64("bytes", written),
		logger.Duration("elapsed", time.Since(start)))

	return dest, written, nil
}

// ensureDir creates dir when absent. A concurrent creator winning the race
// is not an error.
func (s *Saver) ensureDir(dir string) error {
	if _, err := os.Stat(dir); err == nil {
		return nil
	}

	mkdir := os.Mkdir
	if s.opts.Recursive {
		mkdir = os.MkdirAll
	}

	if err := mkdir(dir, s.opts.DirMode); err != nil && !errors.Is(err, fs.ErrExist) {
		return errors.Newf("Failed to create directory: %w", err).
			Component("imagesaver").
			Category(errors.CategoryFileIO).
			Context("operation", "create_directory").
			Context("recursive", s.opts.Recursive).
			FileContext(dir).
			Build()
	}
	return nil
}

// writeAtomic streams r into a temp file next to dest and renames it into
// place. The temp file is removed on any failure.
func (s *Saver) writeAtomic(ctx context.Context, dest string, r io.Reader) (int64, error) {
	writeErr := func(op string, err error) error {
		return errors.Newf("Failed to save content to disk: %w", err).
			Component("imagesaver").
			Category(errors.CategoryFileIO).
			Context("operation", op).
			FileContext(dest).
			Build()
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), tempFilePattern)
	if err != nil {
		return 0, writeErr("create_file", err)
	}
	tmpPath := tmp.Name()

	cleanup := func() {
		_ = tmp.Close()
		if rmErr := os.Remove(tmpPath); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			s.logger.Warn("failed to remove temporary file",
				logger.String("path", tmpPath),
				logger.Error(rmErr))
		}
	}

	bw := bufio.NewWriterSize(tmp, copyBufferSize)
	written, err := io.Copy(bw, &ctxReader{ctx: ctx, r: r})
	if err == nil {
		err = bw.Flush()
	}
	if err != nil {
		cleanup()
		return written, writeErr("stream", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return written, writeErr("sync", err)
	}
	if err := tmp.Chmod(s.opts.FileMode); err != nil {
		cleanup()
		return written, writeErr("chmod", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return written, writeErr("close", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		cleanup()
		return written, writeErr("rename", err)
	}

	return written, nil
}

// validateFilename rejects names that would land outside the target dir.
func validateFilename(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return errors.Newf("invalid file name %q", name).
			Component("imagesaver").
			Category(errors.CategoryValidation).
			Context("operation", "validate_filename").
			Build()
	}
	return nil
}

// ctxReader checks for cancellation before every Read.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr *ctxReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}
	return cr.r.Read(p)
}
