// Package validators contains validators found throughout the application
// that have been abstracted away from the main code
package validators

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/viper"
)

var (
	ErrNoFile              = errors.New("No video file uploaded")
	ErrNoImage             = errors.New("No image file uploaded")
	ErrFileTooLarge        = errors.New("File too large")
	ErrFileNameTooLong     = errors.New("File name is too long")
	ErrFileTypeUnsupported = errors.New("Unsupported file type")
	ErrImageUnsupported    = errors.New("Only image files are allowed")
)

const maxFileNameSize = 200

var avatarTypes = []string{"image/jpeg", "image/png", "image/gif"}

// Upload is a validated multipart file, rewound to the start
type Upload struct {
	File        multipart.File
	Size        int64
	ContentType string
	Name        string
}

// VideoValidator checks a video upload against upload.max_size and
// upload.allowed_types. On success the caller owns Upload.File.
func VideoValidator(fh *multipart.FileHeader) (int, *Upload, error) {
	if fh == nil {
		return http.StatusBadRequest, nil, ErrNoFile
	}

	allowed := viper.GetStringSlice("upload.allowed_types")
	return sniff(fh, viper.GetInt64("upload.max_size")<<20, func(m *mimetype.MIME) bool {
		if len(allowed) == 0 {
			return strings.HasPrefix(m.String(), "video/")
		}

		for _, t := range allowed {
			if m.Is(t) {
				return true
			}
		}

		return false
	}, ErrFileTypeUnsupported)
}

// AvatarValidator checks an avatar upload against avatar.max_size. Only
// JPEG, PNG and GIF images pass.
func AvatarValidator(fh *multipart.FileHeader) (int, *Upload, error) {
	if fh == nil {
		return http.StatusBadRequest, nil, ErrNoImage
	}

	return sniff(fh, viper.GetInt64("avatar.max_size")<<20, func(m *mimetype.MIME) bool {
		return mimetype.EqualsAny(m.String(), avatarTypes...)
	}, ErrImageUnsupported)
}

func sniff(fh *multipart.FileHeader, maxSize int64, ok func(*mimetype.MIME) bool, typeErr error) (int, *Upload, error) {
	if len(fh.Filename) > maxFileNameSize {
		return http.StatusBadRequest, nil, ErrFileNameTooLong
	}

	// Header size is easy to spoof, but it's a fast reject for legit clients
	if fh.Size > maxSize {
		return http.StatusRequestEntityTooLarge, nil, ErrFileTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return http.StatusInternalServerError, nil, err
	}

	// And now do the checks on the actual file to avoid malicious clients
	mime, err := mimetype.DetectReader(f)
	if err != nil {
		f.Close()
		return http.StatusInternalServerError, nil, err
	}

	if !ok(mime) {
		f.Close()
		return http.StatusBadRequest, nil, typeErr
	}

	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		f.Close()
		return http.StatusInternalServerError, nil, err
	}

	if size > maxSize {
		f.Close()
		return http.StatusRequestEntityTooLarge, nil, ErrFileTooLarge
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return http.StatusInternalServerError, nil, err
	}

	return http.StatusOK, &Upload{
		File:        f,
		Size:        size,
		ContentType: mime.String(),
		Name:        fh.Filename,
	}, nil
}
