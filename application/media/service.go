/*
Package media 应用层：图片与文件上传、按 URL 删除。
*/
package media

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"expoadmin/config"
	"expoadmin/domain/shared"
	"expoadmin/infrastructure/storage"
	"expoadmin/pkg/logger"

	"go.uber.org/zap"
)

const entityName = "media"

// ApplicationService 媒体应用服务
type ApplicationService struct {
	store         storage.ObjectStore
	maxBytes      int64
	defaultFolder string
}

func NewApplicationService(store storage.ObjectStore, cfg config.StorageConfig) *ApplicationService {
	folder := storage.CleanFolder(cfg.DefaultFolder, "images")
	return &ApplicationService{store: store, maxBytes: cfg.MaxUploadBytes, defaultFolder: folder}
}

// Upload 上传单个文件。超过大小限制返回 ValidationError，存储失败返回 UploadError。
func (s *ApplicationService) Upload(ctx context.Context, file storage.File, folder string) (storage.Object, error) {
	if file.Reader == nil {
		return storage.Object{}, shared.NewValidationError(entityName, "file", "file is required")
	}
	if s.maxBytes > 0 && file.Size > s.maxBytes {
		return storage.Object{}, s.tooLarge()
	}

	reader := file.Reader
	if s.maxBytes > 0 {
		data, err := io.ReadAll(io.LimitReader(file.Reader, s.maxBytes+1))
		if err != nil {
			return storage.Object{}, shared.NewUploadError("failed to read file", err)
		}
		if int64(len(data)) > s.maxBytes {
			return storage.Object{}, s.tooLarge()
		}
		reader = bytes.NewReader(data)
		file.Size = int64(len(data))
	}
	if file.Size == 0 {
		return storage.Object{}, shared.NewValidationError(entityName, "file", "file is empty")
	}
	file.Reader = reader

	obj, err := s.store.Upload(ctx, file, storage.CleanFolder(folder, s.defaultFolder))
	if err != nil {
		return storage.Object{}, err
	}
	logger.FromContext(ctx).Info("File uploaded",
		zap.String("path", obj.Path),
		zap.String("mime_type", obj.MimeType),
		zap.Int64("size", obj.Size),
	)
	return obj, nil
}

// DeleteByURL 删除本存储生成的 URL 对应的对象；对象不存在返回 false
func (s *ApplicationService) DeleteByURL(ctx context.Context, url string) (bool, error) {
	path, ok := s.store.PathFromURL(url)
	if !ok {
		return false, shared.NewValidationError(entityName, "url", "url is not managed by this storage")
	}
	return s.Remove(ctx, path)
}

func (s *ApplicationService) Remove(ctx context.Context, path string) (bool, error) {
	ok, err := s.store.Remove(ctx, path)
	if err != nil {
		logger.FromContext(ctx).Warn("Failed to remove object", zap.String("path", path), zap.Error(err))
		return false, err
	}
	return ok, nil
}

func (s *ApplicationService) tooLarge() error {
	return shared.NewValidationError(entityName, "file",
		fmt.Sprintf("file exceeds the %d byte limit", s.maxBytes))
}
