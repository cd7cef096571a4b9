package imaging

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// Flask composites a flask art sheet into its icon. Flask sources pack the
// empty glass in the left half of the sheet and the fill overlay in the
// right half; the icon is the glass with the fill drawn over it.
func (i *Image) Flask() error {
	bounds := i.pixels.Bounds()
	if bounds.Dx() < 2 {
		return fmt.Errorf("flask sheet too narrow to split: %d px", bounds.Dx())
	}

	half := bounds.Dx() / 2
	icon := image.NewNRGBA(image.Rect(0, 0, half, bounds.Dy()))
	draw.Draw(icon, icon.Bounds(), i.pixels, bounds.Min, draw.Src)
	draw.Draw(icon, icon.Bounds(), i.pixels, image.Pt(bounds.Min.X+half, bounds.Min.Y), draw.Over)

	i.pixels = icon
	return nil
}
