package capture

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Placeholder screenshot dimensions, matching a typical desktop capture.
const (
	placeholderWidth  = 1600
	placeholderHeight = 1000
)

// writePlaceholderPNG renders a white canvas with the caption centered,
// standing in for a real browser screenshot.
func writePlaceholderPNG(path, caption string) error {
	img := image.NewRGBA(image.Rect(0, 0, placeholderWidth, placeholderHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	gray := color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}
	face := basicfont.Face7x13
	textWidth := font.MeasureString(face, caption).Ceil()
	x := (placeholderWidth - textWidth) / 2
	if x < 0 {
		x = 0
	}
	y := (placeholderHeight + face.Height) / 2

	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(gray),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(caption)

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating placeholder file: %w", err)
	}
	defer out.Close()

	if err := png.Encode(out, img); err != nil {
		return fmt.Errorf("encoding placeholder png: %w", err)
	}
	return nil
}
