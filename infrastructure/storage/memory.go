package storage

import (
	"bytes"
	"context"
	"io"
	"sync"

	"expoadmin/domain/shared"
)

type memoryObject struct {
	data        []byte
	contentType string
}

// MemoryStore 内存存储，用于开发与测试。FailUploads / FailRemoves 用于模拟故障。
type MemoryStore struct {
	mu          sync.Mutex
	baseURL     string
	objects     map[string]memoryObject
	failUploads error
	failRemoves error
}

func NewMemoryStore(baseURL string) *MemoryStore {
	if baseURL == "" {
		baseURL = "memory://objects"
	}
	return &MemoryStore{baseURL: baseURL, objects: make(map[string]memoryObject)}
}

func (s *MemoryStore) FailUploads(err error) {
	s.mu.Lock()
	s.failUploads = err
	s.mu.Unlock()
}

func (s *MemoryStore) FailRemoves(err error) {
	s.mu.Lock()
	s.failRemoves = err
	s.mu.Unlock()
}

func (s *MemoryStore) Upload(ctx context.Context, file File, folder string) (Object, error) {
	s.mu.Lock()
	failure := s.failUploads
	s.mu.Unlock()
	if failure != nil {
		return Object{}, shared.NewUploadError("upload failed", failure)
	}

	body, contentType, key, err := prepare(file, folder)
	if err != nil {
		return Object{}, err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return Object{}, shared.NewUploadError("failed to read file", err)
	}

	s.mu.Lock()
	s.objects[key] = memoryObject{data: buf.Bytes(), contentType: contentType}
	s.mu.Unlock()

	return Object{
		URL:      s.PublicURL(key),
		Path:     key,
		FileName: file.Name,
		Size:     int64(buf.Len()),
		MimeType: contentType,
	}, nil
}

func (s *MemoryStore) Remove(ctx context.Context, path string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failRemoves != nil {
		return false, shared.NewUploadError("remove failed", s.failRemoves)
	}
	if _, ok := s.objects[path]; !ok {
		return false, nil
	}
	delete(s.objects, path)
	return true, nil
}

func (s *MemoryStore) PublicURL(path string) string { return joinURL(s.baseURL, path) }

func (s *MemoryStore) PathFromURL(url string) (string, bool) { return trimBase(s.baseURL, url) }

// Has 对象是否存在
func (s *MemoryStore) Has(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[path]
	return ok
}

// Len 对象数量
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}
