package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestAverageColor(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 20, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 20; x++ {
			if x < 10 {
				img.Set(x, y, color.RGBA{255, 0, 0, 255})
			} else {
				img.Set(x, y, color.RGBA{0, 0, 255, 255})
			}
		}
	}

	tests := []struct {
		name string
		rect image.Rectangle
		want string
	}{
		{"left half red", image.Rect(0, 0, 10, 10), "#ff0000"},
		{"right half blue", image.Rect(10, 0, 20, 10), "#0000ff"},
		{"outside image", image.Rect(50, 50, 60, 60), "#ffffff"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AverageColor(img, tt.rect).Hex()
			if got != tt.want {
				t.Errorf("AverageColor = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestIsDark(t *testing.T) {
	black := AverageColor(solidImage(4, 4, color.Black), image.Rect(0, 0, 4, 4))
	white := AverageColor(solidImage(4, 4, color.White), image.Rect(0, 0, 4, 4))

	if !IsDark(black) {
		t.Error("black should be dark")
	}
	if IsDark(white) {
		t.Error("white should not be dark")
	}

	desc := DescribeColor(black)
	if desc.Hex != "#000000" || !desc.Dark {
		t.Errorf("DescribeColor(black) = %+v", desc)
	}
}
