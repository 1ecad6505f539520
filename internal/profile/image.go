package profile

import (
	"bytes"
	"errors"
	"image"
	stddraw "image/draw"
	_ "image/jpeg"
	"image/png"
	"io"
	"net/http"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

const (
	// AvatarSize is the edge length of stored profile pictures.
	AvatarSize = 512

	// MaxAvatarPixels bounds width*height of an upload before it is decoded.
	MaxAvatarPixels = 4096 * 4096
)

var (
	errUnsupportedImage = errors.New("image must be png, jpeg or webp")
	errUndecodableImage = errors.New("unable to decode image")
	errOversizedImage   = errors.New("image dimensions too large")
)

// NormalizeAvatar centre-crops raw to a square, scales it to AvatarSize and
// re-encodes it as PNG.
func NormalizeAvatar(raw []byte) ([]byte, error) {
	var (
		decodeConfig func(io.Reader) (image.Config, error)
		decode       func(io.Reader) (image.Image, error)
	)
	switch http.DetectContentType(raw) {
	case "image/png", "image/jpeg":
		decodeConfig = func(r io.Reader) (image.Config, error) {
			cfg, _, err := image.DecodeConfig(r)
			return cfg, err
		}
		decode = func(r io.Reader) (image.Image, error) {
			img, _, err := image.Decode(r)
			return img, err
		}
	case "image/webp":
		decodeConfig, decode = webp.DecodeConfig, webp.Decode
	default:
		return nil, errUnsupportedImage
	}

	cfg, err := decodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, errUndecodableImage
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, errUndecodableImage
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxAvatarPixels {
		return nil, errOversizedImage
	}

	img, err := decode(bytes.NewReader(raw))
	if err != nil {
		return nil, errUndecodableImage
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, errUndecodableImage
	}

	side := width
	if height < side {
		side = height
	}
	offset := image.Point{X: bounds.Min.X + (width-side)/2, Y: bounds.Min.Y + (height-side)/2}

	square := image.NewRGBA(image.Rect(0, 0, side, side))
	stddraw.Draw(square, square.Bounds(), img, offset, stddraw.Src)

	out := image.NewRGBA(image.Rect(0, 0, AvatarSize, AvatarSize))
	xdraw.CatmullRom.Scale(out, out.Bounds(), square, square.Bounds(), xdraw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
