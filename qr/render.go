package qr

import (
	"encoding/base64"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

type Style struct {
	Size       int
	Foreground string
	Background string
}

var DefaultStyle = Style{Size: 300, Foreground: "#000000", Background: "#FFFFFF"}

// Renderer turns a URL into a PNG image.
type Renderer interface {
	Render(url string, style Style) ([]byte, error)
}

type PNGRenderer struct{}

func (PNGRenderer) Render(url string, style Style) ([]byte, error) {
	q, err := qrcode.New(url, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("encoding qr: %w", err)
	}
	if c, ok := parseHex(style.Foreground); ok {
		q.ForegroundColor = c
	}
	if c, ok := parseHex(style.Background); ok {
		q.BackgroundColor = c
	}
	size := style.Size
	if size <= 0 {
		size = DefaultStyle.Size
	}
	return q.PNG(size)
}

// DataURL renders url and wraps the PNG as a data: URL.
func DataURL(r Renderer, url string, style Style) (string, error) {
	png, err := r.Render(url, style)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

func parseHex(s string) (color.Color, bool) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return nil, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return nil, false
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, true
}
