// Package imaging fetches generated images and re-encodes them as WebP.
package imaging

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"

	"github.com/chai2010/webp"
	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	ContentTypeWebP = "image/webp"

	// Quality is the lossy WebP quality used for every encode.
	Quality = 80

	maxImageBytes = 20 << 20

	// MaxPixels bounds width*height of a decoded image.
	MaxPixels = 40_000_000
)

// FetchError reports that an image could not be retrieved.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to fetch generated image: status %d", e.StatusCode)
	}
	return fmt.Sprintf("failed to fetch generated image: %v", e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// DecodeError reports bytes that are not a decodable image.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode generated image: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Processor turns image URLs into WebP bytes. It is safe for concurrent use.
type Processor struct {
	client   *http.Client
	maxWidth uint
}

// NewProcessor creates a Processor. A maxWidth of zero keeps the original size.
func NewProcessor(client *http.Client, maxWidth uint) *Processor {
	if client == nil {
		client = http.DefaultClient
	}
	return &Processor{client: client, maxWidth: maxWidth}
}

// FetchWebP downloads the image at url and returns it encoded as WebP along
// with its content type.
func (p *Processor) FetchWebP(ctx context.Context, url string) ([]byte, string, error) {
	data, err := p.fetch(ctx, url)
	if err != nil {
		return nil, "", err
	}
	out, err := p.Transcode(data)
	if err != nil {
		return nil, "", err
	}
	return out, ContentTypeWebP, nil
}

func (p *Processor) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	if len(data) > maxImageBytes {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("image exceeds %d bytes", maxImageBytes)}
	}
	return data, nil
}

// Transcode decodes data, flattens it onto an opaque white RGBA canvas and
// encodes it as lossy WebP. Images declaring more than MaxPixels are rejected
// before any pixel data is decoded.
func (p *Processor) Transcode(data []byte) ([]byte, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, &DecodeError{Err: fmt.Errorf("image dimensions %dx%d exceed %d pixels", cfg.Width, cfg.Height, MaxPixels)}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}

	if p.maxWidth > 0 && uint(img.Bounds().Dx()) > p.maxWidth {
		img = resize.Resize(p.maxWidth, 0, img, resize.Lanczos3)
	}

	b := img.Bounds()
	canvas := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(canvas, canvas.Bounds(), img, b.Min, draw.Over)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, canvas, &webp.Options{Quality: Quality}); err != nil {
		return nil, fmt.Errorf("failed to encode webp: %w", err)
	}
	return buf.Bytes(), nil
}
