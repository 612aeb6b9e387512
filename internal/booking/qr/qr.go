// Package qr encodes ticket summaries as PNG QR codes delivered inline as
// data URIs, so clients can render them without another fetch.
package qr

import (
	"encoding/base64"
	"fmt"

	"github.com/skip2/go-qrcode"
)

type Generator struct {
	size int
}

func NewGenerator() *Generator {
	return &Generator{size: 256}
}

// DataURI renders text as a 256px PNG QR code and wraps it in a
// data:image/png;base64 URI.
func (g *Generator) DataURI(text string) (string, error) {
	png, err := qrcode.Encode(text, qrcode.Medium, g.size)
	if err != nil {
		return "", fmt.Errorf("encode qr: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
