package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// MaxImageSize caps uploads at 5 MB.
const MaxImageSize = 5 * 1024 * 1024

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

var (
	ErrImageTooLarge   = errors.New("image exceeds maximum size of 5MB")
	ErrInvalidImage    = errors.New("file must be a JPEG, PNG, GIF or WebP image")
	ErrUploadFailed    = errors.New("upload failed")
	ErrEmptyFile       = errors.New("file is empty")
	ErrInvalidFilename = errors.New("filename is invalid")
)

// Uploader stores blobs and returns their public URL.
type Uploader interface {
	Upload(ctx context.Context, folder, filename, contentType string, size int64, body io.Reader) (string, error)
}

// ValidateImage enforces the upload rules shared by banner and profile
// photo uploads.
func ValidateImage(filename, contentType string, size int64) error {
	if size <= 0 {
		return ErrEmptyFile
	}
	if size > MaxImageSize {
		return ErrImageTooLarge
	}
	if !allowedImageTypes[strings.ToLower(contentType)] {
		return ErrInvalidImage
	}
	if filename == "" || strings.ContainsAny(filename, "/\\") {
		return ErrInvalidFilename
	}
	return nil
}

// ObjectKey builds the storage key. The timestamp prefix keeps repeated
// uploads of the same filename from clobbering each other.
func ObjectKey(folder, filename string) string {
	return fmt.Sprintf("%s/%d_%s", folder, time.Now().Unix(), sanitizeFilename(filename))
}

func sanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
