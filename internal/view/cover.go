package view

import (
	"fmt"
	"image/color"

	"github.com/bbrks/go-blurhash"

	"github.com/Cossomoj/booksmood/internal/errors"
)

// DefaultCoverColor fills in when a book carries no usable blurhash.
const DefaultCoverColor = "#2a2a3e"

// PlaceholderColor derives a single representative color from a cover's
// blurhash, rendered as a #rrggbb hex string. Decoding at 1x1 yields the
// hash's average color.
func PlaceholderColor(hash string) (string, error) {
	if hash == "" {
		return DefaultCoverColor, nil
	}

	img, err := blurhash.Decode(hash, 1, 1, 1)
	if err != nil {
		return DefaultCoverColor, errors.Wrap(err, errors.CodeValidation, "invalid cover blurhash")
	}

	c := color.RGBAModel.Convert(img.At(0, 0)).(color.RGBA)
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B), nil
}
