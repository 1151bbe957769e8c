/*
Package storage 对象存储边界：上传、删除、公开 URL。

所有错误都包装为 shared.ErrUpload。MIME 类型未提供时按内容嗅探。
*/
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"expoadmin/config"
	"expoadmin/domain/shared"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// File 待上传文件
type File struct {
	Name        string
	ContentType string // 为空时嗅探
	Size        int64  // 未知时为 -1
	Reader      io.Reader
}

// Object 已上传对象
type Object struct {
	URL      string `json:"url"`
	Path     string `json:"path"`
	FileName string `json:"file_name"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
}

type ObjectStore interface {
	Upload(ctx context.Context, file File, folder string) (Object, error)
	// Remove 删除对象，对象不存在时返回 false
	Remove(ctx context.Context, path string) (bool, error)
	PublicURL(path string) string
	// PathFromURL 从本存储生成的 URL 反解路径，非本存储的 URL 返回 false
	PathFromURL(url string) (string, bool)
}

// New 根据 storage.driver 创建存储
func New(ctx context.Context, cfg config.StorageConfig) (ObjectStore, error) {
	switch cfg.Driver {
	case "s3":
		return NewS3Store(ctx, cfg)
	case "local":
		return NewLocalStore(cfg.LocalDir, cfg.PublicBaseURL)
	case "memory", "":
		return NewMemoryStore(cfg.PublicBaseURL), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}

var folderPattern = regexp.MustCompile(`[^a-z0-9/_-]+`)

// CleanFolder 规范化目录名：小写、去除 ..、首尾斜杠
func CleanFolder(folder, fallback string) string {
	folder = path.Clean("/" + strings.ToLower(strings.TrimSpace(folder)))
	folder = folderPattern.ReplaceAllString(folder, "-")
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return fallback
	}
	return folder
}

// ObjectKey folder/<uuid><ext>，扩展名取自原文件名，缺失时取 MIME 的扩展名
func ObjectKey(folder, fileName, mimeExt string) string {
	ext := strings.ToLower(path.Ext(fileName))
	if ext == "" || len(ext) > 10 {
		ext = mimeExt
	}
	return path.Join(folder, uuid.NewString()+ext)
}

// DetectContentType 嗅探前 3KB，返回可继续读取完整内容的 reader
func DetectContentType(r io.Reader) (io.Reader, *mimetype.MIME, error) {
	header := make([]byte, 3072)
	n, err := io.ReadFull(r, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, nil, err
	}
	header = header[:n]
	return io.MultiReader(bytes.NewReader(header), r), mimetype.Detect(header), nil
}

// prepare 嗅探类型并生成对象键
func prepare(file File, folder string) (io.Reader, string, string, error) {
	if file.Reader == nil {
		return nil, "", "", shared.NewUploadError("file is empty", nil)
	}
	body, mime, err := DetectContentType(file.Reader)
	if err != nil {
		return nil, "", "", shared.NewUploadError("failed to read file", err)
	}
	contentType := file.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = mime.String()
	}
	key := ObjectKey(CleanFolder(folder, "uploads"), file.Name, mime.Extension())
	return body, contentType, key, nil
}

func joinURL(base, key string) string {
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(key, "/")
}

func trimBase(base, url string) (string, bool) {
	prefix := strings.TrimSuffix(base, "/") + "/"
	if base == "" || !strings.HasPrefix(url, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(url, prefix)
	if key == "" {
		return "", false
	}
	return key, true
}
