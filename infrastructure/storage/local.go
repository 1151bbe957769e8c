package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"expoadmin/domain/shared"
)

// LocalStore 本地目录存储，API 通过静态路由对外提供文件
type LocalStore struct {
	dir     string
	baseURL string
}

func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("storage.local_dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStore{dir: dir, baseURL: baseURL}, nil
}

// Dir 根目录
func (s *LocalStore) Dir() string { return s.dir }

func (s *LocalStore) Upload(ctx context.Context, file File, folder string) (Object, error) {
	body, contentType, key, err := prepare(file, folder)
	if err != nil {
		return Object{}, err
	}

	target, err := s.resolve(key)
	if err != nil {
		return Object{}, err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return Object{}, shared.NewUploadError("failed to create folder", err)
	}

	f, err := os.Create(target)
	if err != nil {
		return Object{}, shared.NewUploadError("failed to create file", err)
	}
	n, copyErr := io.Copy(f, body)
	closeErr := f.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = os.Remove(target)
		return Object{}, shared.NewUploadError("failed to write file", err)
	}

	return Object{
		URL:      s.PublicURL(key),
		Path:     key,
		FileName: file.Name,
		Size:     n,
		MimeType: contentType,
	}, nil
}

func (s *LocalStore) Remove(ctx context.Context, path string) (bool, error) {
	target, err := s.resolve(path)
	if err != nil {
		return false, err
	}
	if err := os.Remove(target); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, shared.NewUploadError("failed to remove file", err)
	}
	return true, nil
}

func (s *LocalStore) PublicURL(path string) string { return joinURL(s.baseURL, path) }

func (s *LocalStore) PathFromURL(url string) (string, bool) { return trimBase(s.baseURL, url) }

// resolve 拒绝逃逸出根目录的路径
func (s *LocalStore) resolve(key string) (string, error) {
	root, err := filepath.Abs(s.dir)
	if err != nil {
		return "", shared.NewUploadError("invalid storage directory", err)
	}
	target := filepath.Join(root, filepath.FromSlash(key))
	if target != root && !strings.HasPrefix(target, root+string(filepath.Separator)) {
		return "", shared.NewUploadError("invalid object path", nil)
	}
	return target, nil
}
