// Package storage uploads images to the Cloud Storage bucket and hands
// back retrievable URIs; the bucket itself is an opaque collaborator.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// MaxImageSize is the maximum allowed upload size (5MB).
	MaxImageSize = 5 * 1024 * 1024
	// FolderBanners is the object prefix for event banners.
	FolderBanners = "event-banners"
	// FolderAvatars is the object prefix for profile avatars.
	FolderAvatars = "avatars"
)

// AllowedImageTypes maps accepted MIME types to canonical extensions.
var AllowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ValidateImageType reports whether the content type is an accepted image type.
func ValidateImageType(contentType string) bool {
	_, ok := AllowedImageTypes[strings.ToLower(contentType)]
	return ok
}

// BannerKey returns the object key for an event banner upload. A random
// prefix keeps concurrent uploads of identically named files distinct.
func BannerKey(filename string) string {
	return path.Join(FolderBanners, uuid.NewString()+"_"+path.Base(filename))
}

// AvatarKey returns the object key for a profile avatar; one object per
// identity, overwritten on every upload.
func AvatarKey(uid string) string {
	return path.Join(FolderAvatars, uid)
}

// Uploader writes objects to the configured bucket.
type Uploader struct {
	bucket     *gcs.BucketHandle
	bucketName string
	logger     *zap.Logger
}

// NewUploader creates an uploader for the given bucket.
func NewUploader(bucket *gcs.BucketHandle, bucketName string, logger *zap.Logger) *Uploader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Uploader{bucket: bucket, bucketName: bucketName, logger: logger}
}

// Upload streams r into the bucket under key and returns the media URI.
// The returned URI is the Firebase download endpoint for the object;
// serving it requires public read access on these prefixes, which the
// project's storage rules grant.
func (u *Uploader) Upload(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	w := u.bucket.Object(key).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, io.LimitReader(r, MaxImageSize+1)); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write object %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close object %s: %w", key, err)
	}

	u.logger.Info("object uploaded", zap.String("key", key), zap.String("content_type", contentType))
	return u.mediaURL(key), nil
}

func (u *Uploader) mediaURL(key string) string {
	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media",
		u.bucketName, url.PathEscape(key))
}
