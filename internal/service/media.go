package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/sapphiretrails/backoffice/pkg/config"
	"github.com/sapphiretrails/backoffice/pkg/logger"
)

const (
	maxImageWidth  = 1920
	maxImageHeight = 1080
	thumbWidth     = 400
	jpegQuality    = 85
	maxPixels      = 40_000_000
)

// ErrImageTooLarge is returned for images whose header declares more than
// maxPixels pixels.
var ErrImageTooLarge = errors.New("image dimensions too large")

// StoredImage is the public location of a processed upload.
type StoredImage struct {
	URL      string `json:"url"`
	ThumbURL string `json:"thumb_url"`
}

type MediaService interface {
	// SaveImage decodes r, fits it into 1920x1080, stores it as JPEG with a
	// 400px wide thumbnail and returns both URLs.
	SaveImage(ctx context.Context, r io.Reader) (*StoredImage, error)
	// Remove deletes a file previously returned by SaveImage. Unknown URLs
	// are ignored.
	Remove(ctx context.Context, url string) error
}

type mediaService struct {
	dir       string
	urlPrefix string
}

func NewMediaService(cfg config.MediaConfig) (MediaService, error) {
	if err := os.MkdirAll(filepath.Join(cfg.Dir, "thumb"), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}
	return &mediaService{dir: cfg.Dir, urlPrefix: strings.TrimRight(cfg.URLPrefix, "/")}, nil
}

func (s *mediaService) SaveImage(ctx context.Context, r io.Reader) (*StoredImage, error) {
	var head bytes.Buffer
	cfg, _, err := image.DecodeConfig(io.TeeReader(r, &head))
	if err != nil {
		return nil, &ImageError{Err: err}
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxPixels {
		return nil, &ImageError{Err: fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)}
	}
	img, err := imaging.Decode(io.MultiReader(&head, r), imaging.AutoOrientation(true))
	if err != nil {
		return nil, &ImageError{Err: err}
	}

	name := uuid.NewString() + ".jpg"
	fitted := imaging.Fit(img, maxImageWidth, maxImageHeight, imaging.Lanczos)
	if err := imaging.Save(fitted, filepath.Join(s.dir, name), imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("failed to save image: %w", err)
	}

	thumb := img
	if img.Bounds().Dx() > thumbWidth {
		thumb = imaging.Resize(img, thumbWidth, 0, imaging.Lanczos)
	}
	if err := imaging.Save(thumb, filepath.Join(s.dir, "thumb", name), imaging.JPEGQuality(jpegQuality)); err != nil {
		logger.ErrorContext(ctx, "Failed to save thumbnail", "error", err, "file", name)
	}

	b := img.Bounds()
	logger.InfoContext(ctx, "Image stored", "file", name, "width", b.Dx(), "height", b.Dy())
	return &StoredImage{
		URL:      path.Join(s.urlPrefix, name),
		ThumbURL: path.Join(s.urlPrefix, "thumb", name),
	}, nil
}

func (s *mediaService) Remove(ctx context.Context, url string) error {
	if !strings.HasPrefix(url, s.urlPrefix+"/") {
		return nil
	}
	name := path.Base(url)
	if name == "." || name == "/" || strings.Contains(name, "..") {
		return nil
	}
	for _, p := range []string{filepath.Join(s.dir, name), filepath.Join(s.dir, "thumb", name)} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", name, err)
		}
	}
	logger.InfoContext(ctx, "Image removed", "file", name)
	return nil
}

// ImageError reports an upload that is not a decodable image.
type ImageError struct{ Err error }

func (e *ImageError) Error() string { return "unsupported image: " + e.Err.Error() }
func (e *ImageError) Unwrap() error { return e.Err }
