// Package media processes uploaded images into the theme's responsive
// sizes and builds the attributes used to display them.
package media

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	// MaxUploadSize bounds accepted uploads.
	MaxUploadSize  = 10 << 20 // 10MB
	DefaultQuality = 85
	// maxOriginalWidth caps the stored "full" rendition.
	maxOriginalWidth = 2560
)

// Size is a named rendition. Crop sizes are cut to the exact box; others
// keep the aspect ratio within it.
type Size struct {
	Name   string
	Width  int
	Height int
	Crop   bool
}

// Sizes are the theme's registered image sizes.
var Sizes = []Size{
	{Name: "drakkar-thumbnail", Width: 150, Height: 150, Crop: true},
	{Name: "drakkar-small", Width: 300, Height: 200, Crop: true},
	{Name: "drakkar-medium", Width: 600, Height: 400, Crop: true},
	{Name: "drakkar-large", Width: 1200, Height: 800, Crop: true},
	{Name: "drakkar-hero", Width: 1920, Height: 1080, Crop: true},
	{Name: "drakkar-square", Width: 500, Height: 500, Crop: true},
}

// LookupSize returns the registered size called name.
func LookupSize(name string) (Size, bool) {
	for _, s := range Sizes {
		if s.Name == name {
			return s, true
		}
	}
	return Size{}, false
}

// Rendition is one encoded variant of an upload.
type Rendition struct {
	Size     string // "" for the full image
	Filename string
	Width    int
	Height   int
	Data     []byte

	WebP     string // filename of the WebP sibling, "" when none
	WebPData []byte
}

// Result is the outcome of processing one upload.
type Result struct {
	Base       string // slug used for every rendition filename
	Width      int
	Height     int
	Renditions []Rendition
}

// Full returns the full-size rendition.
func (r Result) Full() Rendition {
	for _, rd := range r.Renditions {
		if rd.Size == "" {
			return rd
		}
	}
	return Rendition{}
}

// Options controls how an upload is processed.
type Options struct {
	Quality int  // JPEG quality, 1..100
	WebP    bool // also write a lossless WebP sibling of every rendition
}

// Process decodes src (JPEG, PNG, GIF or WebP), stores a full rendition no
// wider than maxOriginalWidth and one rendition per registered size that
// fits inside the original. Renditions are JPEG at opts.Quality; with
// opts.WebP each one also carries a WebP encoding.
func Process(src io.Reader, base string, opts Options) (Result, error) {
	if opts.Quality < 1 || opts.Quality > 100 {
		opts.Quality = DefaultQuality
	}
	img, _, err := image.Decode(src)
	if err != nil {
		return Result{}, fmt.Errorf("decode image: %w", err)
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > maxOriginalWidth {
		nh := max(h*maxOriginalWidth/w, 1)
		img = scale(img, b, maxOriginalWidth, nh)
		w, h = maxOriginalWidth, nh
	}

	res := Result{Base: base, Width: w, Height: h}
	full, err := encodeRendition(img, base, opts)
	if err != nil {
		return Result{}, err
	}
	res.Renditions = append(res.Renditions, full)

	for _, s := range Sizes {
		if s.Width > w || s.Height > h {
			continue
		}
		var out image.Image
		if s.Crop {
			out = cropScale(img, s.Width, s.Height)
		} else {
			nw, nh := fit(w, h, s.Width, s.Height)
			out = scale(img, img.Bounds(), nw, nh)
		}
		ob := out.Bounds()
		r, err := encodeRendition(out, fmt.Sprintf("%s-%dx%d", base, ob.Dx(), ob.Dy()), opts)
		if err != nil {
			return Result{}, err
		}
		r.Size = s.Name
		res.Renditions = append(res.Renditions, r)
	}
	return res, nil
}

// encodeRendition writes img as name.jpg and, when asked, name.webp.
func encodeRendition(img image.Image, name string, opts Options) (Rendition, error) {
	b := img.Bounds()
	r := Rendition{Filename: name + ".jpg", Width: b.Dx(), Height: b.Dy()}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: opts.Quality}); err != nil {
		return Rendition{}, fmt.Errorf("encode jpeg: %w", err)
	}
	r.Data = buf.Bytes()

	if opts.WebP {
		var wb bytes.Buffer
		if err := nativewebp.Encode(&wb, img, &nativewebp.Options{}); err != nil {
			return Rendition{}, fmt.Errorf("encode webp: %w", err)
		}
		r.WebP = name + ".webp"
		r.WebPData = wb.Bytes()
	}
	return r, nil
}

func scale(img image.Image, src image.Rectangle, w, h int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, src, draw.Over, nil)
	return dst
}

// cropScale crops the centre of img to the target aspect ratio, then scales.
func cropScale(img image.Image, w, h int) image.Image {
	b := img.Bounds()
	sw, sh := b.Dx(), b.Dy()
	cw, ch := sw, sw*h/w
	if ch > sh {
		cw, ch = sh*w/h, sh
	}
	x0 := b.Min.X + (sw-cw)/2
	y0 := b.Min.Y + (sh-ch)/2
	return scale(img, image.Rect(x0, y0, x0+cw, y0+ch), w, h)
}

func fit(w, h, maxW, maxH int) (int, int) {
	if w <= maxW && h <= maxH {
		return w, h
	}
	if w*maxH > h*maxW {
		return maxW, max(h*maxW/w, 1)
	}
	return max(w*maxH/h, 1), maxH
}

// Format is the kind of an upload, judged by its file extension.
type Format int

const (
	Raster Format = iota
	WebP
	SVG
)

// FormatOf returns the format of the uploaded file name.
func FormatOf(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".webp":
		return WebP
	case ".svg":
		return SVG
	}
	return Raster
}

var (
	svgUnsafe  = regexp.MustCompile(`(?i)<script|<foreignobject|\son[a-z]+\s*=|javascript:`)
	svgWidth   = regexp.MustCompile(`\swidth="(\d+)`)
	svgHeight  = regexp.MustCompile(`\sheight="(\d+)`)
	svgViewBox = regexp.MustCompile(`\sviewBox="[-\d.]+[\s,]+[-\d.]+[\s,]+([\d.]+)[\s,]+([\d.]+)"`)
)

// ProcessSVG stores an SVG upload unchanged as a single full rendition.
// Documents carrying scripts, event handlers or javascript: URLs are
// rejected. Dimensions come from the root width and height, or the viewBox.
func ProcessSVG(src io.Reader, base string) (Result, error) {
	data, err := io.ReadAll(io.LimitReader(src, MaxUploadSize+1))
	if err != nil {
		return Result{}, fmt.Errorf("read svg: %w", err)
	}
	if len(data) > MaxUploadSize {
		return Result{}, fmt.Errorf("svg larger than %d bytes", MaxUploadSize)
	}
	start := bytes.Index(data, []byte("<svg"))
	if start < 0 {
		return Result{}, fmt.Errorf("not an svg document")
	}
	if svgUnsafe.Match(data) {
		return Result{}, fmt.Errorf("svg contains scripting")
	}
	root := data[start:]
	if end := bytes.IndexByte(root, '>'); end >= 0 {
		root = root[:end]
	}

	var w, h int
	if m := svgWidth.FindSubmatch(root); m != nil {
		w, _ = strconv.Atoi(string(m[1]))
	}
	if m := svgHeight.FindSubmatch(root); m != nil {
		h, _ = strconv.Atoi(string(m[1]))
	}
	if w == 0 || h == 0 {
		if m := svgViewBox.FindSubmatch(root); m != nil {
			vw, _ := strconv.ParseFloat(string(m[1]), 64)
			vh, _ := strconv.ParseFloat(string(m[2]), 64)
			w, h = int(vw), int(vh)
		}
	}

	return Result{
		Base:       base,
		Width:      w,
		Height:     h,
		Renditions: []Rendition{{Filename: base + ".svg", Width: w, Height: h, Data: data}},
	}, nil
}

// Slug converts an upload filename to the base used for renditions.
func Slug(name string, slugify func(string) string) string {
	ext := filepath.Ext(name)
	s := slugify(strings.TrimSuffix(name, ext))
	if s == "" {
		s = "image"
	}
	return s
}

// Srcset builds a srcset attribute value from renditions, widest last.
func Srcset(baseURL string, rs []Rendition) string {
	sorted := append([]Rendition(nil), rs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Width < sorted[j].Width })
	seen := map[int]bool{}
	var parts []string
	for _, r := range sorted {
		if seen[r.Width] {
			continue
		}
		seen[r.Width] = true
		parts = append(parts, strings.TrimRight(baseURL, "/")+"/"+r.Filename+" "+strconv.Itoa(r.Width)+"w")
	}
	return strings.Join(parts, ", ")
}

// WebPSrcset is Srcset over the WebP siblings. It returns "" unless every
// rendition has one.
func WebPSrcset(baseURL string, rs []Rendition) string {
	if len(rs) == 0 {
		return ""
	}
	webp := make([]Rendition, len(rs))
	for i, r := range rs {
		if r.WebP == "" {
			return ""
		}
		webp[i] = Rendition{Filename: r.WebP, Width: r.Width, Height: r.Height}
	}
	return Srcset(baseURL, webp)
}

// Placeholder returns an SVG data URI of the given dimensions.
func Placeholder(width, height int) string {
	svg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d"><rect width="100%%" height="100%%" fill="#f0f0f0"/></svg>`,
		width, height, width, height)
	return "data:image/svg+xml;charset=utf-8," + strings.NewReplacer(
		"%", "%25", "<", "%3C", ">", "%3E", "#", "%23", `"`, "'", " ", "%20",
	).Replace(svg)
}

// ImgAttrs returns the attributes for an <img> of the given rendition set.
// Lazy adds loading and decoding hints.
func ImgAttrs(baseURL string, rs []Rendition, alt string, lazy bool) map[string]string {
	attrs := map[string]string{"alt": alt}
	var full Rendition
	for _, r := range rs {
		if r.Size == "" {
			full = r
		}
	}
	if full.Filename != "" {
		attrs["src"] = strings.TrimRight(baseURL, "/") + "/" + full.Filename
		attrs["width"] = strconv.Itoa(full.Width)
		attrs["height"] = strconv.Itoa(full.Height)
		attrs["sizes"] = fmt.Sprintf("(max-width: %dpx) 100vw, %dpx", full.Width, full.Width)
	}
	if len(rs) > 1 {
		attrs["srcset"] = Srcset(baseURL, rs)
	}
	if lazy {
		attrs["loading"] = "lazy"
		attrs["decoding"] = "async"
	}
	return attrs
}
