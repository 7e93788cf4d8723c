package media

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chai2010/webp"
)

func pngOf(t *testing.T, w, h int) *bytes.Buffer {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return &buf
}

func TestProcessAvatarDownscales(t *testing.T) {
	out, err := ProcessAvatar(pngOf(t, 1024, 256))
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	cfg, err := webp.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not webp: %v", err)
	}
	if cfg.Width != MaxAvatarSide || cfg.Height != 128 {
		t.Fatalf("got %dx%d, want %dx128", cfg.Width, cfg.Height, MaxAvatarSide)
	}
}

func TestProcessAvatarKeepsSmallImages(t *testing.T) {
	out, err := ProcessAvatar(pngOf(t, 40, 30))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	cfg, err := webp.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.Width != 40 || cfg.Height != 30 {
		t.Fatalf("got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestProcessAvatarRejectsGarbage(t *testing.T) {
	if _, err := ProcessAvatar(strings.NewReader("definitely not an image")); err == nil {
		t.Fatal("expected error")
	}
	if _, err := ProcessAvatar(strings.NewReader("")); err != ErrEmptyUpload {
		t.Fatalf("got %v, want ErrEmptyUpload", err)
	}
}

// pngHeader is a bare PNG signature plus IHDR chunk: enough for
// image.DecodeConfig, while a full decode would allocate w*h pixels.
func pngHeader(w, h uint32) []byte {
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], w)
	binary.BigEndian.PutUint32(ihdr[4:8], h)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 0 // grayscale

	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	chunk := append([]byte("IHDR"), ihdr...)
	buf.Write(chunk)
	binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

func TestProcessAvatarRejectsHugeDimensions(t *testing.T) {
	tests := []struct {
		name string
		w, h uint32
	}{
		{"square", 16000, 16000},
		{"wide", MaxSourceSide + 1, 10},
		{"tall", 10, MaxSourceSide + 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := pngHeader(tt.w, tt.h)
			if len(raw) > MaxUploadBytes {
				t.Fatal("fixture must fit the byte limit")
			}
			_, err := ProcessAvatar(bytes.NewReader(raw))
			if !errors.Is(err, ErrTooLarge) {
				t.Fatalf("expected ErrTooLarge, got %v", err)
			}
		})
	}
}

func TestLocalStoragePut(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStorage(dir)

	url, err := s.Put(context.Background(), "avatars/1/x.webp", []byte("data"), AvatarMIME)
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if url != "/media/avatars/1/x.webp" {
		t.Fatalf("url = %q", url)
	}
	b, err := os.ReadFile(filepath.Join(dir, "avatars", "1", "x.webp"))
	if err != nil || string(b) != "data" {
		t.Fatalf("file content %q, err %v", b, err)
	}

	// traversal stays inside the directory
	url, err = s.Put(context.Background(), "../../escape.webp", []byte("x"), AvatarMIME)
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if url != "/media/escape.webp" {
		t.Fatalf("url = %q", url)
	}
}

func TestAvatarKeyIsUnique(t *testing.T) {
	a, b := AvatarKey(3), AvatarKey(3)
	if a == b || !strings.HasPrefix(a, "avatars/3/") || !strings.HasSuffix(a, ".webp") {
		t.Fatalf("keys %q %q", a, b)
	}
}
