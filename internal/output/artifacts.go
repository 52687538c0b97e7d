// internal/output/artifacts.go
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"
)

// ArtifactStore persists diagnostic artifacts (gate-timeout screenshots)
// and returns a reference the logs can point at.
type ArtifactStore interface {
	// Save writes the artifact and returns its location.
	Save(name string, data []byte) (string, error)
}

var artifactNameSanitizer = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// LocalArtifactStore writes artifacts into a directory on disk.
type LocalArtifactStore struct {
	dir string
	now func() time.Time
}

// NewLocalArtifactStore creates the directory if needed.
func NewLocalArtifactStore(dir string) (*LocalArtifactStore, error) {
	if dir == "" {
		dir = "artifacts"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}
	return &LocalArtifactStore{dir: dir, now: time.Now}, nil
}

// Save implements ArtifactStore. Names are sanitized and timestamped so two
// artifacts from the same page never collide.
func (s *LocalArtifactStore) Save(name string, data []byte) (string, error) {
	name = artifactNameSanitizer.ReplaceAllString(name, "_")
	if name == "" {
		name = "artifact"
	}
	path := filepath.Join(s.dir, fmt.Sprintf("%s_%d.png", name, s.now().UnixMilli()))

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}
	return path, nil
}
