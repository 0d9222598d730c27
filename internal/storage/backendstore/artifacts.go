package backendstore

import (
	"net/url"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Artifact repositories the tracking server can talk to on its own.
// We only check these for syntax: there is no cloud SDK in this process.
var remoteArtifactSchemes = map[string]struct{}{
	"s3":               {},
	"gs":               {},
	"wasbs":            {},
	"hdfs":             {},
	"viewfs":           {},
	"ftp":              {},
	"sftp":             {},
	"dbfs":             {},
	"http":             {},
	"https":            {},
	"runs":             {},
	"models":           {},
	"mlflow-artifacts": {},
}

func (i *Initializer) initArtifactRoot(raw string) error {
	scheme := uriScheme(raw)
	if scheme == "" || scheme == "file" {
		return i.initLocalArtifactRoot(raw)
	}
	if _, ok := remoteArtifactSchemes[scheme]; !ok {
		return &UnsupportedSchemeError{Kind: "artifact root", Scheme: scheme}
	}

	u, err := url.Parse(raw)
	if err != nil {
		return errors.Wrap(err, "parse artifact root")
	}

	i.log.Infof("artifact root %s is remote, access is checked by the server", u.Redacted())
	return nil
}

// initLocalArtifactRoot creates the directory and checks it is writable.
func (i *Initializer) initLocalArtifactRoot(raw string) error {
	dir, err := localPath(raw)
	if err != nil {
		return errors.Wrap(err, "parse artifact root")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create artifact root")
	}

	marker := filepath.Join(dir, ".write-check-"+uuid.NewString())
	if err := os.WriteFile(marker, nil, 0o600); err != nil {
		return errors.Wrap(err, "artifact root is not writable")
	}
	if err := os.Remove(marker); err != nil {
		return errors.Wrap(err, "remove artifact root write check")
	}

	i.log.Infof("artifact root %s is ready", dir)
	return nil
}
