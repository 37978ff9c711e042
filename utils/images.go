// fixit/utils/images.go
package utils

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// ErrImageTooLarge is returned for decodable images beyond the allowed dimensions.
var ErrImageTooLarge = errors.New("image dimensions exceed the maximum")

var extPattern = regexp.MustCompile(`^[a-z0-9]{1,10}$`)

// ImageExtension returns the lower-cased extension of filename without the
// dot, or fallback when there is none or it contains unexpected characters.
func ImageExtension(filename, fallback string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if !extPattern.MatchString(ext) {
		return fallback
	}
	return ext
}

// SanitizeImage applies EXIF orientation and re-encodes JPEG and PNG uploads,
// which drops embedded metadata such as GPS tags. GIF and WebP only get the
// dimension check; data that cannot be decoded is returned unchanged.
func SanitizeImage(data []byte, maxWidth, maxHeight int) ([]byte, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return data, nil
	}
	if cfg.Width > maxWidth || cfg.Height > maxHeight {
		return nil, fmt.Errorf("%w: %dx%d (max %dx%d)", ErrImageTooLarge, cfg.Width, cfg.Height, maxWidth, maxHeight)
	}

	var outFormat imaging.Format
	switch format {
	case "jpeg":
		outFormat = imaging.JPEG
	case "png":
		outFormat = imaging.PNG
	default:
		return data, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return data, nil
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, outFormat, imaging.JPEGQuality(90)); err != nil {
		return nil, fmt.Errorf("re-encode %s image: %w", format, err)
	}
	return buf.Bytes(), nil
}
