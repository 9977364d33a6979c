package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalDir keeps small public files, like avatars, on local disk. Its
// content is served as static files.
type LocalDir struct {
	Root string
	// URLPrefix is the public path Root is served under
	URLPrefix string
}

func NewLocalDir(root, urlPrefix string) (*LocalDir, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s, %w", root, err)
	}

	return &LocalDir{Root: root, URLPrefix: strings.TrimRight(urlPrefix, "/")}, nil
}

// Save writes r to name and returns the public path of the file
func (l *LocalDir) Save(name string, r io.Reader) (string, error) {
	name = filepath.Base(name)

	f, err := os.CreateTemp(l.Root, ".upload-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(f.Name())

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return "", err
	}

	if err := f.Close(); err != nil {
		return "", err
	}

	if err := os.Rename(f.Name(), filepath.Join(l.Root, name)); err != nil {
		return "", err
	}

	return l.URLPrefix + "/" + name, nil
}

// Remove deletes the file behind a public path returned by Save. Paths
// outside of URLPrefix are ignored.
func (l *LocalDir) Remove(publicPath string) error {
	name, ok := strings.CutPrefix(publicPath, l.URLPrefix+"/")
	if !ok || name == "" || strings.ContainsAny(name, `/\`) {
		return nil
	}

	err := os.Remove(filepath.Join(l.Root, name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	return nil
}
