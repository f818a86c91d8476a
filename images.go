package drakkar

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/drakkar-agro/drakkar/media"
)

const uploadsSubdir = "uploads"

// UploadsURL is where uploaded renditions are served from.
const UploadsURL = "/public/" + uploadsSubdir

func (a *App) uploadsDir() string {
	return filepath.Join(a.Config.UploadsDir, uploadsSubdir)
}

// uniqueBase appends a counter to base until no stored image or file on
// disk uses base+ext.
func (a *App) uniqueBase(base, ext string) (string, error) {
	candidate := base
	for counter := 1; ; counter++ {
		if counter > 1 {
			candidate = fmt.Sprintf("%s-%d", base, counter)
		}
		if _, err := os.Stat(filepath.Join(a.uploadsDir(), candidate+ext)); err == nil {
			continue
		}
		exists, err := a.Store.ImageExists(candidate + ext)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
}

func (a *App) handleImageUpload(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}

	file, err := c.FormFile("image")
	if err != nil {
		return c.String(http.StatusBadRequest, "No image file provided")
	}
	if file.Size > media.MaxUploadSize {
		return c.String(http.StatusBadRequest, "File too large (max 10MB)")
	}

	flags := a.Flags()
	format := media.FormatOf(file.Filename)
	if format == media.SVG && !flags.Bool("enable_svg_uploads", false) {
		return c.String(http.StatusBadRequest, "SVG uploads are disabled")
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	ext := ".jpg"
	if format == media.SVG {
		ext = ".svg"
	}
	base, err := a.uniqueBase(media.Slug(file.Filename, Slugify), ext)
	if err != nil {
		return err
	}
	var res media.Result
	if format == media.SVG {
		res, err = media.ProcessSVG(src, base)
	} else {
		res, err = media.Process(src, base, media.Options{
			Quality: flags.Int("image_quality", media.DefaultQuality),
			WebP:    flags.Bool("enable_webp", true),
		})
	}
	if err != nil {
		return c.String(http.StatusBadRequest, "Invalid image: "+err.Error())
	}

	dir := a.uploadsDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create uploads dir: %w", err)
	}
	for _, r := range res.Renditions {
		if err := os.WriteFile(filepath.Join(dir, r.Filename), r.Data, 0o644); err != nil {
			return fmt.Errorf("write image: %w", err)
		}
		if r.WebP != "" {
			if err := os.WriteFile(filepath.Join(dir, r.WebP), r.WebPData, 0o644); err != nil {
				return fmt.Errorf("write webp: %w", err)
			}
		}
	}

	full := res.Full()
	if err := a.Store.SaveImage(Image{
		Filename:     full.Filename,
		OriginalName: file.Filename,
		Width:        res.Width,
		Height:       res.Height,
		Size:         len(full.Data),
		UploadedAt:   time.Now().UTC().Format(time.RFC3339),
		Renditions:   res.Renditions,
	}); err != nil {
		return err
	}
	c.Logger().Infof("uploaded %s (%d renditions)", full.Filename, len(res.Renditions))

	return a.renderImageList(c)
}

func (a *App) handleImageDelete(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}

	filename := filepath.Base(c.Param("filename"))
	if filename == "" || filename == "." || strings.HasPrefix(filename, "..") {
		return c.String(http.StatusBadRequest, "Filename required")
	}

	img, err := a.Store.GetImage(filename)
	if err == nil {
		for _, r := range img.Renditions {
			_ = os.Remove(filepath.Join(a.uploadsDir(), filepath.Base(r.Filename)))
			if r.WebP != "" {
				_ = os.Remove(filepath.Join(a.uploadsDir(), filepath.Base(r.WebP)))
			}
		}
	}
	_ = os.Remove(filepath.Join(a.uploadsDir(), filename))

	if err := a.Store.DeleteImage(filename); err != nil {
		return err
	}

	return a.renderImageList(c)
}

func (a *App) handleImageList(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	return a.renderImageList(c)
}

func (a *App) renderImageList(c echo.Context) error {
	images, err := a.Store.ListImages()
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminImages(images, CsrfToken(c)))
}
