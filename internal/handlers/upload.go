package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"videohub/internal/apperr"
	"videohub/internal/media"
)

const maxMultipartMemory = 32 << 20

// Stager stages an uploaded file on local disk and returns its path.
type Stager interface {
	Stage(file *multipart.FileHeader) (string, error)
}

// stageFormFile stages the file in field. A missing file yields "" and no error.
func stageFormFile(c *gin.Context, stager Stager, field string) (string, error) {
	file, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", apperr.Validation("invalid multipart body", err.Error())
	}

	path, err := stager.Stage(file)
	if err != nil {
		if errors.Is(err, media.ErrMissingExtension) ||
			errors.Is(err, media.ErrUnsupportedType) ||
			errors.Is(err, media.ErrTooLarge) {
			return "", apperr.Validation(err.Error())
		}
		return "", apperr.Internal("Failed to store upload", err)
	}
	return path, nil
}

func parseMultipart(c *gin.Context) error {
	if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil {
		return apperr.Validation("invalid multipart body", err.Error())
	}
	return nil
}

func discardStaged(paths ...string) {
	for _, p := range paths {
		if p != "" {
			_ = os.Remove(p)
		}
	}
}
