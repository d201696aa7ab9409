package imaging

import (
	"bufio"
	"fmt"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder

	"github.com/ironsheep/image-bandpass/internal/ppm"
)

// ImageCache provides thread-safe caching of decoded images to avoid redundant disk reads.
//
// The cache stores decoded *Image values keyed by their file path. Once an image
// is loaded, subsequent Load() calls for the same path return the cached copy without
// disk I/O. Cached images are shared; callers must treat them as read-only.
//
// ImageCache is safe for concurrent use by multiple goroutines.
//
// # Memory Management
//
// Cached images remain in memory until explicitly removed via Evict() or Clear().
// For long-running processes handling many images, consider periodic cleanup to
// prevent unbounded memory growth.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]*Image
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]*Image),
	}
}

// Load retrieves an image from the cache or loads it from disk if not cached.
//
// The image is cached using the exact path string provided. Different paths to the
// same file (e.g., relative vs absolute) will result in separate cache entries.
func (c *ImageCache) Load(path string) (*Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	img, err := Load(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// Clear removes all images from the cache, freeing the associated memory.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]*Image)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path.
//
// If the path is not in the cache, this method does nothing.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// Load opens and decodes the image file at path.
//
// PPM files are recognized by their magic number regardless of extension;
// everything else is handed to the registered image decoders (PNG, JPEG,
// GIF, BMP, TIFF, WebP).
func Load(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// Decode reads one image from r.
//
// Only as much of r as the decoder needs is consumed when r is a
// *bufio.Reader; otherwise r is wrapped in a new buffered reader.
func Decode(r io.Reader) (*Image, error) {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}

	magic, _ := br.Peek(2)
	if ppm.IsMagic(magic) {
		p, err := ppm.Decode(br)
		if err != nil {
			return nil, fmt.Errorf("failed to decode image: %w", err)
		}
		return FromPacked(p)
	}

	img, err := imaging.Decode(br, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return FromImage(img)
}

// FromPacked converts a decoded pixmap into an Image.
func FromPacked(p *ppm.Image) (*Image, error) {
	img, err := NewImage(p.Width, p.Height)
	if err != nil {
		return nil, err
	}
	for i := range img.Pix {
		img.Pix[i] = RGB{R: p.Pix[i*3], G: p.Pix[i*3+1], B: p.Pix[i*3+2]}
	}
	return img, nil
}

// Packed returns the image as a pixmap for the PPM encoder.
func (img *Image) Packed() *ppm.Image {
	pix := make([]byte, len(img.Pix)*3)
	for i, c := range img.Pix {
		pix[i*3], pix[i*3+1], pix[i*3+2] = c.R, c.G, c.B
	}
	return &ppm.Image{Width: img.Width, Height: img.Height, Pix: pix}
}

// Encode writes img to w in the named format.
//
// format is a file extension with or without the leading dot: "ppm" and
// "pnm" select the PPM encoder, anything else must be an extension known to
// disintegration/imaging ("png", "jpg", "gif", "tif", "bmp", ...).
func Encode(w io.Writer, img *Image, format string) error {
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	if format == "ppm" || format == "pnm" {
		if err := ppm.Encode(w, img.Packed()); err != nil {
			return fmt.Errorf("failed to encode image: %w", err)
		}
		return nil
	}

	f, err := imaging.FormatFromExtension(format)
	if err != nil {
		return fmt.Errorf("unsupported output format %q: %w", format, err)
	}
	if err := imaging.Encode(w, img.NRGBA(), f); err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}
	return nil
}

// Save writes img to path, choosing the encoder from the file extension.
func Save(img *Image, path string) (err error) {
	format := filepath.Ext(path)
	if format == "" {
		return fmt.Errorf("cannot determine output format of %q", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create image: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close image: %w", cerr)
		}
	}()

	bw := bufio.NewWriter(f)
	if err := Encode(bw, img, format); err != nil {
		return err
	}
	return bw.Flush()
}

// ImageInfo contains metadata about an image file.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the detected image format: "ppm", "png", "jpeg", "gif", "bmp",
	// "tiff", "webp", or "unknown". Detection is based on file extension.
	Format string `json:"format"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads an image through the cache and returns its metadata.
//
// # Format Detection
//
// The format is determined by file extension:
//   - ".ppm", ".pnm" -> "ppm"
//   - ".png" -> "png"
//   - ".jpg", ".jpeg" -> "jpeg"
//   - ".gif" -> "gif"
//   - ".bmp" -> "bmp"
//   - ".tif", ".tiff" -> "tiff"
//   - ".webp" -> "webp"
//   - Other extensions -> "unknown"
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	format := "unknown"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ppm", ".pnm":
		format = "ppm"
	case ".png":
		format = "png"
	case ".jpg", ".jpeg":
		format = "jpeg"
	case ".gif":
		format = "gif"
	case ".bmp":
		format = "bmp"
	case ".tif", ".tiff":
		format = "tiff"
	case ".webp":
		format = "webp"
	}

	return &ImageInfo{
		Width:         img.Width,
		Height:        img.Height,
		Format:        format,
		FileSizeBytes: stat.Size(),
	}, nil
}

// DimensionsResult contains the width and height of an image.
type DimensionsResult struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// GetDimensions returns the dimensions of an image loaded through the cache.
func GetDimensions(cache *ImageCache, path string) (*DimensionsResult, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}
	return &DimensionsResult{Width: img.Width, Height: img.Height}, nil
}
