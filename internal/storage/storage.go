package storage

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("service", "storage")

// Store writes uploaded files under a local directory and maps stored
// keys to public URLs. When a remote mirror is configured, saved files
// are additionally pushed there best-effort.
type Store struct {
	Dir     string
	CDNBase string
	Mirror  *Mirror
}

func New(dir, cdnBase string) *Store {
	s := &Store{Dir: dir, CDNBase: strings.TrimRight(cdnBase, "/")}
	if endpoint := os.Getenv("STORAGE_MIRROR_URL"); endpoint != "" {
		s.Mirror = &Mirror{Endpoint: endpoint, Token: os.Getenv("STORAGE_MIRROR_TOKEN")}
	}
	return s
}

// Path returns the local filesystem path for a key, creating the
// parent directory if needed.
func (s *Store) Path(key string) (string, error) {
	p := filepath.Join(s.Dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return "", err
	}
	return p, nil
}

// PublicURL maps a stored key to the URL clients fetch it from.
func (s *Store) PublicURL(key string) string {
	if s.CDNBase != "" {
		return s.CDNBase + "/" + key
	}
	return "/uploads/" + key
}

// Mirrored pushes a stored file to the remote mirror, if one is
// configured. Mirror failures are logged and never fail the upload.
func (s *Store) Mirrored(key string) {
	if s.Mirror == nil {
		return
	}
	p := filepath.Join(s.Dir, filepath.FromSlash(key))
	if err := s.Mirror.Put(p, path.Base(key)); err != nil {
		log.WithError(err).WithField("key", key).Warn("failed to mirror upload")
	}
}

// Mirror pushes files to a remote disk over plain HTTP PUT.
type Mirror struct {
	Endpoint string
	Token    string
}

func (m *Mirror) Put(filePath, fileName string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPut, m.Endpoint+"?path="+url.QueryEscape(fileName), strings.NewReader(string(data)))
	if err != nil {
		return err
	}
	if m.Token != "" {
		req.Header.Set("Authorization", "OAuth "+m.Token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("mirror upload failed: %s", resp.Status)
	}
	return nil
}
