package services

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/imagekeeper/internal/common"
	"github.com/dmitrijs2005/imagekeeper/internal/filex"
)

// Upload is a file received from a client, already spooled to disk.
type Upload struct {
	Filename string
	File     *filex.TempFile
}

// Remove deletes the spooled file. Safe on a nil Upload.
func (u *Upload) Remove() {
	if u != nil {
		_ = u.File.Remove()
	}
}

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// detectFormat checks the extension and sniffs the image header. The reader
// is rewound before returning.
func detectFormat(filename string, r io.ReadSeeker) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return "", common.NewValidationError("image", "only jpg, jpeg, png and gif files are allowed")
	}

	_, format, err := image.DecodeConfig(r)
	if _, serr := r.Seek(0, io.SeekStart); serr != nil {
		return "", serr
	}
	if err != nil {
		return "", common.NewValidationError("image", "file is not a supported image")
	}
	return format, nil
}
