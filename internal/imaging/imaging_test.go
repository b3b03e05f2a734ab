package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func createTestImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := range width {
		for y := range height {
			img.Set(x, y, c)
		}
	}
	return img
}

func encodeJPEG(img image.Image) []byte {
	var buf bytes.Buffer
	jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	return buf.Bytes()
}

func encodePNG(img image.Image) []byte {
	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}

func TestDimensions(t *testing.T) {
	data := encodePNG(createTestImage(120, 80, color.White))

	w, h, err := Dimensions(data)
	if err != nil {
		t.Fatalf("Dimensions failed: %v", err)
	}
	if w != 120 || h != 80 {
		t.Errorf("expected 120x80, got %dx%d", w, h)
	}
}

func TestDimensions_InvalidData(t *testing.T) {
	if _, _, err := Dimensions([]byte("not an image")); err == nil {
		t.Error("expected error for invalid image data")
	}
}

func TestResize_NoResizeNeeded(t *testing.T) {
	data := encodeJPEG(createTestImage(100, 100, color.White))

	resized, err := Resize(data, 200)
	if err != nil {
		t.Fatalf("Resize failed: %v", err)
	}

	// Within bounds: bytes returned unchanged.
	if !bytes.Equal(resized, data) {
		t.Error("expected unchanged data when image is within bounds")
	}
}

func TestResize_Landscape(t *testing.T) {
	data := encodeJPEG(createTestImage(2000, 1000, color.White))

	resized, err := Resize(data, 500)
	if err != nil {
		t.Fatalf("Resize failed: %v", err)
	}

	img, format, err := image.Decode(bytes.NewReader(resized))
	if err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("expected jpeg output, got %s", format)
	}
	if img.Bounds().Dx() != 500 || img.Bounds().Dy() != 250 {
		t.Errorf("expected 500x250, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestResize_Portrait(t *testing.T) {
	data := encodeJPEG(createTestImage(1000, 2000, color.White))

	resized, err := Resize(data, 500)
	if err != nil {
		t.Fatalf("Resize failed: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(resized))
	if err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
	if img.Bounds().Dx() != 250 || img.Bounds().Dy() != 500 {
		t.Errorf("expected 250x500, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestResize_InvalidData(t *testing.T) {
	if _, err := Resize([]byte("garbage"), 500); err == nil {
		t.Error("expected error for invalid image data")
	}
}
