// fixit/utils/storage_test.go
package utils

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalStorage(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	ls, err := NewLocalStorage(dir)
	if err != nil {
		t.Fatalf("NewLocalStorage returned error: %v", err)
	}
	ctx := context.Background()

	url, err := ls.SaveFile(ctx, "abc.jpg", []byte("data"), "image/jpeg")
	if err != nil {
		t.Fatalf("SaveFile returned error: %v", err)
	}
	if url != "/uploads/abc.jpg" {
		t.Errorf("Expected URL /uploads/abc.jpg, got %s", url)
	}
	if content, err := os.ReadFile(filepath.Join(dir, "abc.jpg")); err != nil || string(content) != "data" {
		t.Fatalf("Expected file on disk with content 'data', got %q (err %v)", content, err)
	}

	if err := ls.DeleteFile(ctx, url); err != nil {
		t.Fatalf("DeleteFile returned error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "abc.jpg")); !os.IsNotExist(err) {
		t.Error("Expected file to be removed")
	}
	if err := ls.DeleteFile(ctx, url); err != nil {
		t.Errorf("Deleting a missing file should not fail, got %v", err)
	}
}

func TestImageExtension(t *testing.T) {
	cases := map[string]string{
		"photo.JPG":      "jpg",
		"scan.png":       "png",
		"archive.tar.gz": "gz",
		"noext":          "jpg",
		"":               "jpg",
		"weird.p$g":      "jpg",
	}
	for name, want := range cases {
		if got := ImageExtension(name, "jpg"); got != want {
			t.Errorf("ImageExtension(%q) = %q, want %q", name, got, want)
		}
	}
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestSanitizeImage(t *testing.T) {
	t.Run("Undecodable data passes through", func(t *testing.T) {
		data := []byte("not really an image")
		out, err := SanitizeImage(data, 100, 100)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !bytes.Equal(out, data) {
			t.Error("Expected undecodable data to be stored unchanged")
		}
	})

	t.Run("PNG is re-encoded", func(t *testing.T) {
		out, err := SanitizeImage(encodePNG(t, 4, 3), 100, 100)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
		if err != nil {
			t.Fatalf("Output is not a valid image: %v", err)
		}
		if format != "png" || cfg.Width != 4 || cfg.Height != 3 {
			t.Errorf("Expected 4x3 png, got %dx%d %s", cfg.Width, cfg.Height, format)
		}
	})

	t.Run("Oversized image is rejected", func(t *testing.T) {
		_, err := SanitizeImage(encodePNG(t, 20, 5), 10, 10)
		if err == nil {
			t.Fatal("Expected an error for oversized image")
		}
	})
}
