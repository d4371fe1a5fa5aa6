// Package imaging turns uploaded pictures into avatar thumbnails.
package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"os"
	"path/filepath"

	// Registered decoders for image.Decode.
	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"golang.org/x/image/draw"

	"github.com/phonebook/phonebook-api/internal/core/ports"
)

const (
	AvatarSize    = 250
	AvatarQuality = 60
	// MaxSourceSide bounds each side of an upload. Larger images are refused
	// before their pixels are decoded.
	MaxSourceSide = 4096
)

var (
	ErrEmptyImage    = errors.New("image has no pixels")
	ErrImageTooLarge = errors.New("image dimensions exceed the limit")
)

// AvatarNormalizer crops an image to a centred square, scales it to
// Size×Size and re-encodes it as JPEG, replacing the file it was read from.
type AvatarNormalizer struct {
	Size    int
	Quality int
	MaxSide int
	Scaler  draw.Scaler
}

func NewAvatarNormalizer() *AvatarNormalizer {
	return &AvatarNormalizer{
		Size:    AvatarSize,
		Quality: AvatarQuality,
		MaxSide: MaxSourceSide,
		Scaler:  draw.ApproxBiLinear,
	}
}

var _ ports.ImageNormalizer = (*AvatarNormalizer)(nil)

// Normalize rewrites path in place. The new content is written to a sibling
// file first and renamed over the original, so a failure leaves path as it was.
func (n *AvatarNormalizer) Normalize(path string) error {
	src, err := decodeFile(path, n.MaxSide)
	if err != nil {
		return err
	}
	bounds := src.Bounds()
	if bounds.Empty() {
		return ErrEmptyImage
	}

	dst := image.NewRGBA(image.Rect(0, 0, n.Size, n.Size))
	n.Scaler.Scale(dst, dst.Bounds(), src, squareCrop(bounds), draw.Src, nil)

	tmp, err := os.CreateTemp(filepath.Dir(path), ".avatar-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if err := jpeg.Encode(tmp, dst, &jpeg.Options{Quality: n.Quality}); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("encode jpeg: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace image: %w", err)
	}
	return nil
}

// decodeFile reads the header first and only decodes images whose sides are
// within maxSide.
func decodeFile(path string, maxSide int) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("decode image header: %w", err)
	}
	if maxSide > 0 && (cfg.Width > maxSide || cfg.Height > maxSide) {
		return nil, fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind image: %w", err)
	}

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// squareCrop returns the largest square centred in r.
func squareCrop(r image.Rectangle) image.Rectangle {
	w, h := r.Dx(), r.Dy()
	if w == h {
		return r
	}
	if w > h {
		off := (w - h) / 2
		return image.Rect(r.Min.X+off, r.Min.Y, r.Min.X+off+h, r.Max.Y)
	}
	off := (h - w) / 2
	return image.Rect(r.Min.X, r.Min.Y+off, r.Max.X, r.Min.Y+off+w)
}
