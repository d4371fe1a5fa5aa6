package imaging

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	path := filepath.Join(t.TempDir(), "upload")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return path
}

func TestAvatarNormalizer_ResizesToJPEG(t *testing.T) {
	path := writePNG(t, 640, 480)

	if err := NewAvatarNormalizer().Normalize(path); err != nil {
		t.Fatalf("normalize: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	img, err := jpeg.Decode(f)
	if err != nil {
		t.Fatalf("result is not a jpeg: %v", err)
	}
	if b := img.Bounds(); b.Dx() != AvatarSize || b.Dy() != AvatarSize {
		t.Fatalf("expected %dx%d, got %dx%d", AvatarSize, AvatarSize, b.Dx(), b.Dy())
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Fatalf("temporary files left behind: %v", entries)
	}
}

func TestAvatarNormalizer_RejectsNonImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "upload")
	if err := os.WriteFile(path, []byte("definitely not an image"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := NewAvatarNormalizer().Normalize(path); err == nil {
		t.Fatalf("expected decode error")
	}
	data, _ := os.ReadFile(path)
	if string(data) != "definitely not an image" {
		t.Fatalf("original file must be left untouched on failure")
	}
}

// writeHugePNG writes a tiny PNG whose header declares side×side pixels.
// Decoding its pixels would need gigabytes; only the header is valid.
func writeHugePNG(t *testing.T, side uint32) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 1, 1))); err != nil {
		t.Fatalf("encode: %v", err)
	}
	data := buf.Bytes()
	// IHDR data starts after the 8-byte signature, 4-byte length and 4-byte type.
	binary.BigEndian.PutUint32(data[16:20], side)
	binary.BigEndian.PutUint32(data[20:24], side)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))

	path := filepath.Join(t.TempDir(), "upload")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestAvatarNormalizer_RejectsOversizedDimensions(t *testing.T) {
	path := writeHugePNG(t, 100000)

	err := NewAvatarNormalizer().Normalize(path)
	if !errors.Is(err, ErrImageTooLarge) {
		t.Fatalf("expected ErrImageTooLarge, got %v", err)
	}
}

func TestAvatarNormalizer_MaxSideIsInclusive(t *testing.T) {
	n := NewAvatarNormalizer()
	n.MaxSide = 64

	if err := n.Normalize(writePNG(t, 64, 32)); err != nil {
		t.Fatalf("image at the limit rejected: %v", err)
	}
	if err := n.Normalize(writePNG(t, 65, 32)); !errors.Is(err, ErrImageTooLarge) {
		t.Fatalf("expected ErrImageTooLarge, got %v", err)
	}
}

func TestSquareCrop(t *testing.T) {
	cases := []struct {
		in, want image.Rectangle
	}{
		{image.Rect(0, 0, 100, 100), image.Rect(0, 0, 100, 100)},
		{image.Rect(0, 0, 200, 100), image.Rect(50, 0, 150, 100)},
		{image.Rect(0, 0, 100, 300), image.Rect(0, 100, 100, 200)},
	}
	for _, tc := range cases {
		if got := squareCrop(tc.in); got != tc.want {
			t.Fatalf("squareCrop(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
