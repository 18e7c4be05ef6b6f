package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/imagekeeper/internal/filex"
)

const tokenFileName = "token"

// session persists the bearer token between invocations.
type session struct {
	dir string
}

func newSession(dir string) *session {
	return &session{dir: dir}
}

func (s *session) path() string {
	return filepath.Join(s.dir, tokenFileName)
}

// load returns the saved token, or "" when there is none.
func (s *session) load() (string, error) {
	b, err := os.ReadFile(s.path())
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

func (s *session) save(token string) error {
	dir, err := filex.EnsureSubdDir(s.dir)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, tokenFileName), []byte(token), 0o600)
}

func (s *session) clear() error {
	err := os.Remove(s.path())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
