package http

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/imagekeeper/internal/common"
	"github.com/dmitrijs2005/imagekeeper/internal/filex"
	"github.com/dmitrijs2005/imagekeeper/internal/server/services"
)

const (
	maxFieldBytes     = 64 << 10
	multipartOverhead = 1 << 20
)

type multipartForm struct {
	values map[string]string
	file   *services.Upload
}

// value returns nil for absent or blank fields.
func (f *multipartForm) value(name string) *string {
	v, ok := f.values[name]
	if !ok || v == "" {
		return nil
	}
	return &v
}

func isMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "multipart/form-data"
}

// readMultipart streams the request parts. The part named fileField is
// spooled to the upload dir; other parts are read as text fields. The caller
// owns the returned file.
func (h *handler) readMultipart(w http.ResponseWriter, r *http.Request, fileField string) (*multipartForm, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+multipartOverhead)

	mr, err := r.MultipartReader()
	if err != nil {
		return nil, common.NewValidationError("", "invalid multipart body")
	}

	form := &multipartForm{values: map[string]string{}}
	fail := func(err error) (*multipartForm, error) {
		form.file.Remove()
		return nil, err
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fail(common.NewValidationError("", "invalid multipart body"))
		}

		name := part.FormName()
		switch {
		case name == fileField && part.FileName() != "":
			if form.file != nil {
				_ = part.Close()
				return fail(common.NewValidationError(fileField, "only one file is allowed"))
			}
			tf, err := filex.Spool(h.uploadDir, "upload-*", part, h.maxUpload)
			if err != nil {
				if errors.Is(err, filex.ErrTooLarge) {
					return fail(common.NewValidationError(fileField, "file must be at most "+sizeLabel(h.maxUpload)))
				}
				return fail(fmt.Errorf("%w: %v", common.ErrorInternal, err))
			}
			form.file = &services.Upload{Filename: filepath.Base(part.FileName()), File: tf}
		case name != "":
			b, err := io.ReadAll(io.LimitReader(part, maxFieldBytes+1))
			if err != nil {
				return fail(common.NewValidationError(name, "could not read field"))
			}
			if len(b) > maxFieldBytes {
				_ = part.Close()
				return fail(common.NewValidationError(name, "value must be at most "+sizeLabel(maxFieldBytes)))
			}
			form.values[name] = strings.TrimSpace(string(b))
		}
		_ = part.Close()
	}

	return form, nil
}

func sizeLabel(n int64) string {
	if n >= 1<<20 && n%(1<<20) == 0 {
		return fmt.Sprintf("%d MB", n>>20)
	}
	return fmt.Sprintf("%d KB", n>>10)
}
