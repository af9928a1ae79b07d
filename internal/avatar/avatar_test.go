package avatar_test

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/phrazzld/taskr-api/internal/avatar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	return img
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, gradient(w, h), &jpeg.Options{Quality: 80}))
	return buf.Bytes()
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, gradient(w, h)))
	return buf.Bytes()
}

func decodePNG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, format, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, "png", format)
	return img
}

func TestProcess_ResizesToSquarePNG(t *testing.T) {
	t.Parallel()
	p := avatar.NewProcessor()

	tests := []struct {
		name     string
		filename string
		data     []byte
	}{
		{"square jpg", "me.jpg", encodeJPEG(t, 500, 500)},
		{"wide jpeg upper case", "ME.JPEG", encodeJPEG(t, 640, 200)},
		{"tall png", "me.png", encodePNG(t, 60, 300)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := p.Process(tt.filename, tt.data)
			require.NoError(t, err)

			img := decodePNG(t, out)
			assert.Equal(t, avatar.Size, img.Bounds().Dx())
			assert.Equal(t, avatar.Size, img.Bounds().Dy())
		})
	}
}

func TestProcess_Rejections(t *testing.T) {
	t.Parallel()
	p := avatar.NewProcessor()

	oversized := make([]byte, 2_000_000)
	copy(oversized, encodePNG(t, 10, 10))

	tests := []struct {
		name     string
		filename string
		data     []byte
		reason   string
	}{
		{"gif extension", "me.gif", encodePNG(t, 10, 10), "File types are restricted to .jpg .jpeg or .png"},
		{"no extension", "avatar", encodePNG(t, 10, 10), "File types are restricted to .jpg .jpeg or .png"},
		{"two megabyte png", "big.png", oversized, "File too large"},
		{"not an image", "fake.png", []byte("definitely not a png"), "Unable to process image"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := p.Process(tt.filename, tt.data)
			assert.Nil(t, out)
			require.ErrorIs(t, err, avatar.ErrUnsupportedMedia)

			var mediaErr *avatar.MediaError
			require.True(t, errors.As(err, &mediaErr))
			assert.Equal(t, tt.reason, mediaErr.Reason)
		})
	}
}

func TestCheckFilename(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"a.jpg", "a.JPG", "b.jpeg", "c.png", "dir/d.Png"} {
		assert.NoError(t, avatar.CheckFilename(name), name)
	}
	for _, name := range []string{"a.gif", "a.jpg.exe", "", "png"} {
		assert.ErrorIs(t, avatar.CheckFilename(name), avatar.ErrUnsupportedMedia, name)
	}
}
