package profile

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// PublicPrefix is the URL path the upload directory is served under.
const PublicPrefix = "/uploads"

const profilesDir = "profiles"

// DiskStore keeps profile pictures under <root>/profiles.
type DiskStore struct {
	root string
}

func NewDiskStore(root string) (*DiskStore, error) {
	if err := os.MkdirAll(filepath.Join(root, profilesDir), 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{root: root}, nil
}

// Save writes a PNG under a fresh name and returns its public path.
func (s *DiskStore) Save(userID int64, data []byte) (string, error) {
	name := fmt.Sprintf("profile-%d-%s.png", userID, uuid.NewString())
	if err := os.WriteFile(filepath.Join(s.root, profilesDir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write profile picture: %w", err)
	}
	return path.Join(PublicPrefix, profilesDir, name), nil
}

// Remove deletes the file behind a public path. A missing file is not an
// error.
func (s *DiskStore) Remove(publicPath string) error {
	name := path.Base(publicPath)
	if name == "." || name == "/" || strings.Contains(name, "..") {
		return nil
	}
	err := os.Remove(filepath.Join(s.root, profilesDir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove profile picture: %w", err)
	}
	return nil
}
