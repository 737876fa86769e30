package dataset

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
)

// Artifact filenames within the cache directory, matching the published release.
const (
	CardsFile      = "cards.json"
	EmbeddingsFile = "embeddings_trimmed.npy"
)

// RequiredFiles lists every artifact the loader needs.
var RequiredFiles = []string{CardsFile, EmbeddingsFile}

// Fetch downloads missing dataset artifacts from baseURL into cacheDir.
// Existing files are kept unless force is set. When progress is true a progress
// bar is drawn to stderr (CLI mode); servers pass false and rely on logging.
// Files are written to a temp name and renamed so a partial download never
// shadows a valid artifact (and so the reload watcher sees a single event).
func Fetch(ctx context.Context, baseURL, cacheDir string, force, progress bool) error {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	for _, name := range RequiredFiles {
		local := filepath.Join(cacheDir, name)
		if !force {
			if _, err := os.Stat(local); err == nil {
				continue
			}
		}
		if err := downloadFile(ctx, baseURL+"/"+name, local, progress); err != nil {
			return fmt.Errorf("download %s: %w", name, err)
		}
	}
	return nil
}

// Missing returns the artifact names not yet present in cacheDir.
func Missing(cacheDir string) []string {
	var missing []string
	for _, name := range RequiredFiles {
		if _, err := os.Stat(filepath.Join(cacheDir, name)); err != nil {
			missing = append(missing, name)
		}
	}
	return missing
}

func downloadFile(ctx context.Context, url, local string, progress bool) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	tmp, err := os.CreateTemp(filepath.Dir(local), filepath.Base(local)+".download-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	var dst io.Writer = tmp
	if progress {
		bar := progressbar.DefaultBytes(resp.ContentLength, filepath.Base(local))
		dst = io.MultiWriter(tmp, bar)
	}
	if _, err := io.Copy(dst, resp.Body); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), local)
}
