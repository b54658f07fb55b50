package image

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// Denoise applies an OpenCV median blur with an odd kernel size. It removes
// JPEG speckle and scanner noise that would otherwise win a per-column scan.
// A kernel of 1 returns img unchanged.
func Denoise(img image.Image, ksize int) (image.Image, error) {
	if ksize == 1 {
		return img, nil
	}
	if ksize < 3 || ksize%2 == 0 {
		return nil, fmt.Errorf("median kernel must be odd and >= 3, got %d", ksize)
	}

	src := ImageToMat(img)
	defer src.Close()
	if src.Empty() {
		return img, nil
	}

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.MedianBlur(src, &dst, ksize)

	out, err := dst.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to convert denoised image: %w", err)
	}
	return out, nil
}

// ImageToMat converts a Go image.Image to a gocv.Mat in BGR format.
func ImageToMat(img image.Image) gocv.Mat {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return gocv.NewMat()
	}

	mat := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			mat.SetUCharAt(y, x*3+0, uint8(b>>8))
			mat.SetUCharAt(y, x*3+1, uint8(g>>8))
			mat.SetUCharAt(y, x*3+2, uint8(r>>8))
		}
	}
	return mat
}
