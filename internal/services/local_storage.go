package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// PostsFolder is the folder journal images are written to, on disk and in Cloudinary.
const PostsFolder = "posts"

// LocalImageStore writes images below root/posts. References are relative
// paths ("posts/<name>") served by the /storage route.
type LocalImageStore struct {
	root string
}

func NewLocalImageStore(root string) (*LocalImageStore, error) {
	if err := os.MkdirAll(filepath.Join(root, PostsFolder), 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &LocalImageStore{root: root}, nil
}

// Root is the directory served under /storage.
func (s *LocalImageStore) Root() string {
	return s.root
}

func (s *LocalImageStore) Put(ctx context.Context, name string, body io.Reader) (string, bool, error) {
	if name == "" || name != filepath.Base(name) {
		return "", false, fmt.Errorf("invalid image name %q", name)
	}
	ref := path.Join(PostsFolder, name)
	target := filepath.Join(s.root, PostsFolder, name)

	// same name means same bytes
	if _, err := os.Stat(target); err == nil {
		return ref, false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", false, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return "", false, err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		return "", false, err
	}
	if err := tmp.Close(); err != nil {
		return "", false, err
	}
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	// link fails if a concurrent upload of the same bytes got there first,
	// which tells the two callers apart
	if err := os.Link(tmp.Name(), target); err != nil {
		if errors.Is(err, os.ErrExist) {
			return ref, false, nil
		}
		return "", false, err
	}
	return ref, true, nil
}

// Delete removes the file behind a "posts/<name>" reference.
func (s *LocalImageStore) Delete(ctx context.Context, ref string) error {
	name, ok := strings.CutPrefix(ref, PostsFolder+"/")
	if !ok || name == "" || name != filepath.Base(name) {
		return fmt.Errorf("invalid image reference %q", ref)
	}
	err := os.Remove(filepath.Join(s.root, PostsFolder, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
