package jetdata

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// ensureDownloaded fetches url into path unless the file already exists.
// The body is streamed to a temporary sibling file and renamed into place
// only after the copy (and, when wantSHA256 is non-empty, the checksum)
// succeeds, so a cached file is never left half-written.
func ensureDownloaded(client *http.Client, url, path, wantSHA256 string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: creating %s: %v", ErrRetrieval, filepath.Dir(path), err)
	}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("%w: fetching %s: %v", ErrRetrieval, url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: fetching %s: %s", ErrRetrieval, url, resp.Status)
	}

	tmp := path + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %v", ErrRetrieval, tmp, err)
	}

	hash := sha256.New()
	_, err = io.Copy(io.MultiWriter(out, hash), resp.Body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: writing %s: %v", ErrRetrieval, tmp, err)
	}

	if wantSHA256 != "" {
		got := hex.EncodeToString(hash.Sum(nil))
		if got != wantSHA256 {
			os.Remove(tmp)
			return fmt.Errorf("%w: %s checksum mismatch: got %s want %s", ErrRetrieval, url, got, wantSHA256)
		}
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: caching %s: %v", ErrRetrieval, path, err)
	}
	return nil
}
