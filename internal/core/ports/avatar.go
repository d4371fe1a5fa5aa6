package ports

import "context"

// AvatarUpload points at an uploaded file sitting in the staging directory.
type AvatarUpload struct {
	TempPath     string
	OriginalName string
}

// ImageNormalizer rewrites an image file in place to the avatar format.
type ImageNormalizer interface {
	Normalize(path string) error
}

// AvatarStore is the permanent home of avatar files.
type AvatarStore interface {
	// Save moves src into the store under name and returns the public relative URL.
	Save(ctx context.Context, src, name string) (string, error)
	// Remove deletes the file behind a URL previously returned by Save.
	Remove(ctx context.Context, url string) error
	// Owns reports whether url points into this store.
	Owns(url string) bool
}

// AvatarService runs the avatar upload pipeline.
type AvatarService interface {
	UpdateAvatar(ctx context.Context, userID string, upload AvatarUpload) (string, error)
}
