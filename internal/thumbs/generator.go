package thumbs

import (
	"fmt"
	"image/jpeg"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"asset-browser/internal/logging"
)

// Generator produces a cached thumbnail for a source file. The thumbnail
// worker treats it as an external collaborator: any error is terminal for
// the item and degrades to the placeholder image.
type Generator interface {
	Generate(sourcePath, destPath string, size int) error
}

// imageGenerator decodes the source, fits it into size x size and writes a
// JPEG to the destination path, preferring libvips when available.
type imageGenerator struct{}

// NewGenerator returns the default thumbnail generator.
func NewGenerator() Generator {
	return imageGenerator{}
}

func (imageGenerator) Generate(sourcePath, destPath string, size int) error {
	if _, err := os.Stat(sourcePath); err != nil {
		return fmt.Errorf("source not accessible: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("failed to create cache dir: %w", err)
	}

	if IsVipsAvailable() {
		if err := generateWithVips(sourcePath, destPath, size); err == nil {
			return nil
		} else {
			logging.Debug("vips generation failed for %s: %v, falling back", sourcePath, err)
		}
	}

	img, err := imaging.Open(sourcePath, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("failed to decode source: %w", err)
	}

	thumb := imaging.Fit(img, size, size, imaging.Lanczos)

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create thumbnail: %w", err)
	}
	defer out.Close()

	if err := jpeg.Encode(out, thumb, &jpeg.Options{Quality: 80}); err != nil {
		// Leave no partial file behind.
		os.Remove(destPath)
		return fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return nil
}

func generateWithVips(sourcePath, destPath string, size int) error {
	img, err := loadWithVips(sourcePath, size)
	if err != nil {
		return err
	}
	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create thumbnail: %w", err)
	}
	defer out.Close()
	if err := jpeg.Encode(out, img, &jpeg.Options{Quality: 80}); err != nil {
		os.Remove(destPath)
		return fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return nil
}
