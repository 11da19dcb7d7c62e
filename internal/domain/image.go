package domain

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	_ "golang.org/x/image/webp"
)

// ImagePayload is one decoded image attached to a generation request.
// Index is 1-based and follows the order the caller sent.
type ImagePayload struct {
	Index  int
	Data   []byte
	Format string // jpg, png, gif, webp; empty when undetectable
	Width  int
	Height int
}

// DecodeImagePayload decodes a base64 image string into an ImagePayload.
// A "data:image/...;base64," prefix is tolerated and stripped. Dimensions
// and format are sniffed from the bytes; a payload that cannot be decoded
// as an image is still accepted (format stays empty) since the vision model
// is the final judge of what it can read.
func DecodeImagePayload(index int, encoded string) (*ImagePayload, error) {
	if idx := strings.Index(encoded, ","); idx != -1 && strings.HasPrefix(encoded, "data:") {
		encoded = encoded[idx+1:]
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, fmt.Errorf("invalid base64 image data: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image payload")
	}

	p := &ImagePayload{Index: index, Data: data}
	if cfg, format, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		p.Width = cfg.Width
		p.Height = cfg.Height
		p.Format = normalizeFormat(format)
	}
	return p, nil
}

// MIMEType returns the MIME type for the sniffed format, defaulting to JPEG.
func (p *ImagePayload) MIMEType() string {
	switch p.Format {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

// DataURL encodes the payload as a data URL for vision model requests.
func (p *ImagePayload) DataURL() string {
	return fmt.Sprintf("data:%s;base64,%s", p.MIMEType(), base64.StdEncoding.EncodeToString(p.Data))
}

// Base64 returns the raw base64 encoding used by the face service contract.
func (p *ImagePayload) Base64() string {
	return base64.StdEncoding.EncodeToString(p.Data)
}

func normalizeFormat(format string) string {
	if format == "jpeg" {
		return "jpg"
	}
	return format
}
