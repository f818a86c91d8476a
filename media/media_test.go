package media

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/webp"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestProcessGeneratesFittingSizes(t *testing.T) {
	res, err := Process(bytes.NewReader(pngBytes(t, 640, 480)), "field", Options{Quality: 80})
	require.NoError(t, err)
	assert.Equal(t, 640, res.Width)
	assert.Equal(t, "field.jpg", res.Full().Filename)

	names := map[string]Rendition{}
	for _, r := range res.Renditions {
		names[r.Size] = r
	}
	assert.Contains(t, names, "drakkar-thumbnail")
	assert.Contains(t, names, "drakkar-medium")
	assert.NotContains(t, names, "drakkar-large")
	assert.NotContains(t, names, "drakkar-hero")

	thumb := names["drakkar-thumbnail"]
	assert.Equal(t, 150, thumb.Width)
	assert.Equal(t, 150, thumb.Height)
	assert.Equal(t, "field-150x150.jpg", thumb.Filename)
	_, _, err = image.Decode(bytes.NewReader(thumb.Data))
	require.NoError(t, err)
}

func TestProcessRejectsGarbage(t *testing.T) {
	_, err := Process(strings.NewReader("not an image"), "x", Options{Quality: 80})
	assert.Error(t, err)
}

func TestSrcset(t *testing.T) {
	rs := []Rendition{
		{Filename: "a.jpg", Width: 640},
		{Filename: "a-150x150.jpg", Width: 150},
		{Filename: "a-300x200.jpg", Width: 300},
	}
	assert.Equal(t, "/public/uploads/a-150x150.jpg 150w, /public/uploads/a-300x200.jpg 300w, /public/uploads/a.jpg 640w",
		Srcset("/public/uploads/", rs))
}

func TestImgAttrs(t *testing.T) {
	rs := []Rendition{{Filename: "a.jpg", Width: 640, Height: 480}, {Size: "drakkar-small", Filename: "a-300x200.jpg", Width: 300, Height: 200}}
	attrs := ImgAttrs("/public/uploads", rs, "Trator", true)
	assert.Equal(t, "/public/uploads/a.jpg", attrs["src"])
	assert.Equal(t, "lazy", attrs["loading"])
	assert.Contains(t, attrs["srcset"], "300w")

	attrs = ImgAttrs("/public/uploads", rs[:1], "Trator", false)
	_, hasSrcset := attrs["srcset"]
	assert.False(t, hasSrcset)
	_, hasLoading := attrs["loading"]
	assert.False(t, hasLoading)
}

func TestPlaceholder(t *testing.T) {
	p := Placeholder(300, 200)
	assert.True(t, strings.HasPrefix(p, "data:image/svg+xml"))
	assert.Contains(t, p, "width='300'")
	assert.NotContains(t, p, "#")
}

func TestFit(t *testing.T) {
	w, h := fit(1000, 500, 300, 300)
	assert.Equal(t, 300, w)
	assert.Equal(t, 150, h)
	w, h = fit(100, 50, 300, 300)
	assert.Equal(t, 100, w)
	assert.Equal(t, 50, h)
	w, h = fit(9000, 3, 300, 300)
	assert.Equal(t, 300, w)
	assert.Equal(t, 1, h)
}

func TestFormatOf(t *testing.T) {
	assert.Equal(t, SVG, FormatOf("Logo.SVG"))
	assert.Equal(t, WebP, FormatOf("campo.webp"))
	assert.Equal(t, Raster, FormatOf("trator.jpeg"))
	assert.Equal(t, Raster, FormatOf("sem-extensao"))
}

func TestProcessSVG(t *testing.T) {
	doc := `<?xml version="1.0"?><svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 240 80"><path stroke-width="2" d="M0 0h10"/></svg>`
	res, err := ProcessSVG(strings.NewReader(doc), "logo")
	require.NoError(t, err)
	assert.Equal(t, 240, res.Width)
	assert.Equal(t, 80, res.Height)
	require.Len(t, res.Renditions, 1)
	assert.Equal(t, "logo.svg", res.Full().Filename)
	assert.Equal(t, doc, string(res.Full().Data))

	res, err = ProcessSVG(strings.NewReader(`<svg width="32" height="16"></svg>`), "icon")
	require.NoError(t, err)
	assert.Equal(t, 32, res.Width)
	assert.Equal(t, 16, res.Height)
}

func TestProcessSVGRejectsScripting(t *testing.T) {
	for _, doc := range []string{
		`<svg><script>alert(1)</script></svg>`,
		`<svg onload="alert(1)"></svg>`,
		`<svg><a href="javascript:alert(1)"><rect/></a></svg>`,
		`<html>not svg</html>`,
	} {
		_, err := ProcessSVG(strings.NewReader(doc), "x")
		assert.Error(t, err, doc)
	}
}

func TestProcessWritesWebPSiblings(t *testing.T) {
	res, err := Process(bytes.NewReader(pngBytes(t, 640, 480)), "field", Options{Quality: 80, WebP: true})
	require.NoError(t, err)

	for _, r := range res.Renditions {
		require.NotEmpty(t, r.WebPData, r.Filename)
		assert.Equal(t, strings.TrimSuffix(r.Filename, ".jpg")+".webp", r.WebP)
		assert.Equal(t, "RIFF", string(r.WebPData[:4]))
		assert.Equal(t, "WEBP", string(r.WebPData[8:12]))

		decoded, err := webp.Decode(bytes.NewReader(r.WebPData))
		require.NoError(t, err)
		assert.Equal(t, r.Width, decoded.Bounds().Dx())
		assert.Equal(t, r.Height, decoded.Bounds().Dy())
	}
	assert.Contains(t, WebPSrcset("/up", res.Renditions), "/up/field.webp 640w")
}

func TestProcessWithoutWebP(t *testing.T) {
	res, err := Process(bytes.NewReader(pngBytes(t, 320, 240)), "field", Options{Quality: 80})
	require.NoError(t, err)
	assert.Empty(t, res.Full().WebP)
	assert.Empty(t, WebPSrcset("/up", res.Renditions))
}

func TestProcessKeepsExtremeAspectRatios(t *testing.T) {
	res, err := Process(bytes.NewReader(pngBytes(t, 6000, 2)), "strip", Options{Quality: 80})
	require.NoError(t, err)
	assert.Equal(t, maxOriginalWidth, res.Width)
	assert.Equal(t, 1, res.Height)
	assert.NotEmpty(t, res.Full().Data)
}
