package backendstore

import (
	"net/url"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const trashDir = ".trash"

// initFileStore creates the layout the file based tracking store expects.
func (i *Initializer) initFileStore(raw string) error {
	root, err := localPath(raw)
	if err != nil {
		return errors.Wrap(err, "parse file store uri")
	}

	if err := os.MkdirAll(filepath.Join(root, trashDir), 0o755); err != nil {
		return errors.Wrap(err, "create file store")
	}

	i.log.Infof("backend store file root %s is ready", root)
	return nil
}

// localPath turns "file:///x" or a bare path into a filesystem path.
func localPath(raw string) (string, error) {
	if uriScheme(raw) == "" {
		return filepath.Clean(raw), nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	p := u.Path
	if p == "" {
		// file:relative/dir
		p = u.Opaque
	}
	if p == "" {
		return "", errors.Errorf("empty path in %q", raw)
	}
	return filepath.Clean(p), nil
}
