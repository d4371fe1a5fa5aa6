// Package storage keeps avatar files on local disk under the public directory.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/phonebook/phonebook-api/internal/core/ports"
)

// AvatarPrefix is the URL path avatars are served from, relative to the
// public directory.
const AvatarPrefix = "avatars"

var ErrForeignAvatar = errors.New("avatar url does not belong to this store")

// DiskAvatarStore moves staged files into <public>/avatars and hands back the
// relative URL "avatars/<name>".
type DiskAvatarStore struct {
	dir string
}

// NewDiskAvatarStore creates the avatars directory under publicDir if needed.
func NewDiskAvatarStore(publicDir string) (*DiskAvatarStore, error) {
	dir := filepath.Join(publicDir, AvatarPrefix)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create avatar dir: %w", err)
	}
	return &DiskAvatarStore{dir: dir}, nil
}

var _ ports.AvatarStore = (*DiskAvatarStore)(nil)

func (s *DiskAvatarStore) Save(_ context.Context, src, name string) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", fmt.Errorf("invalid avatar name %q", name)
	}
	dst := filepath.Join(s.dir, name)
	if err := moveFile(src, dst); err != nil {
		return "", err
	}
	return path.Join(AvatarPrefix, name), nil
}

// Remove deletes the file behind url. A file that is already gone is not an error.
func (s *DiskAvatarStore) Remove(_ context.Context, url string) error {
	if !s.Owns(url) {
		return ErrForeignAvatar
	}
	err := os.Remove(filepath.Join(s.dir, path.Base(url)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove avatar: %w", err)
	}
	return nil
}

// Owns reports whether url is a relative avatar URL naming a plain file.
func (s *DiskAvatarStore) Owns(url string) bool {
	name, ok := strings.CutPrefix(url, AvatarPrefix+"/")
	return ok && name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}

// moveFile renames src to dst, falling back to copy and delete when the two
// paths are on different filesystems.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open staged avatar: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create avatar: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return fmt.Errorf("copy avatar: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("close avatar: %w", err)
	}
	_ = os.Remove(src)
	return nil
}
