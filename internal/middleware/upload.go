package middleware

import (
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"onlyfilms/internal/httperr"
	"onlyfilms/internal/model"
	"onlyfilms/internal/storage"
)

// FileUpload reads the multipart file sent under the given form field,
// stores it in object storage under a randomized key and attaches the
// resulting image metadata to the context under the field name. A request
// without the file is not acceptable for routes carrying this gate.
func FileUpload(store storage.Uploader, field string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			fh, err := c.FormFile(field)
			if err != nil {
				return httperr.NotAcceptable("no valid image file")
			}
			src, err := fh.Open()
			if err != nil {
				return err
			}
			defer src.Close()

			ext := path.Ext(fh.Filename)
			base := strings.TrimSuffix(path.Base(fh.Filename), ext)
			key := fmt.Sprintf("%s-%s%s", base, uuid.NewString(), ext)
			mimetype := fh.Header.Get("Content-Type")

			url, err := store.Upload(key, src, mimetype)
			if err != nil {
				return err
			}
			c.Set(field, model.Image{
				URLOriginal: fh.Filename,
				URL:         url,
				Mimetype:    mimetype,
				Size:        fh.Size,
			})
			return next(c)
		}
	}
}

// UploadedImage returns the image metadata attached by FileUpload.
func UploadedImage(c echo.Context, field string) (model.Image, bool) {
	img, ok := c.Get(field).(model.Image)
	return img, ok
}
