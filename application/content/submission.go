package content

import (
	"context"
	"errors"
	"fmt"

	"expoadmin/application/media"
	"expoadmin/domain/content"
	"expoadmin/domain/resource"
	"expoadmin/infrastructure/storage"
	"expoadmin/pkg/logger"

	"go.uber.org/zap"
)

// Attachment 随表单提交的文件，Field 为表单字段名
type Attachment struct {
	Field string
	File  storage.File
}

// SubmissionService 表单提交：附件先上传再写记录；删除时先删记录再删存储对象。
type SubmissionService struct {
	*Service[content.FormSubmission, *content.FormSubmission]
	media  *media.ApplicationService
	folder string
}

func NewSubmissionService(repo resource.Client[content.FormSubmission], deps Dependencies, mediaService *media.ApplicationService) *SubmissionService {
	return &SubmissionService{
		Service: NewService[content.FormSubmission](repo, deps),
		media:   mediaService,
		folder:  "documents",
	}
}

// Submit 公开表单入口。status 与 documents 由服务端决定，客户端提供的值被忽略。
// 记录写入失败时删除已上传的附件。
func (s *SubmissionService) Submit(ctx context.Context, fields resource.Fields, attachments []Attachment) (*content.FormSubmission, error) {
	fields = fields.Without("status", "documents")
	if _, err := resource.Build[content.FormSubmission](fields); err != nil {
		return nil, err
	}

	folder := s.folder
	if name, _ := fields["form_name"].(string); name != "" {
		folder = storage.CleanFolder(s.folder+"/"+name, s.folder)
	}

	docs := make([]content.DocumentMetadata, 0, len(attachments))
	for _, a := range attachments {
		obj, err := s.media.Upload(ctx, a.File, folder)
		if err != nil {
			s.cleanup(ctx, docs)
			return nil, err
		}
		docs = append(docs, content.DocumentMetadata{
			URL:      obj.URL,
			Path:     obj.Path,
			FileName: obj.FileName,
			Size:     obj.Size,
			MimeType: obj.MimeType,
			Field:    a.Field,
		})
	}

	fields["status"] = string(content.SubmissionNew)
	fields["documents"] = docs
	created, err := s.Service.Create(ctx, fields)
	if err != nil {
		s.cleanup(ctx, docs)
		return nil, err
	}
	return created, nil
}

// Delete 先删除记录，再删除附件。附件删除失败不回滚记录：
// 返回 Warning 并写入 media.remove 事件由 worker 重试。
func (s *SubmissionService) Delete(ctx context.Context, id string) (bool, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	ok, err := s.Service.Delete(ctx, id)
	if err != nil || !ok {
		return ok, err
	}

	var failed []string
	var errs []error
	for _, path := range current.DocumentPaths() {
		if _, err := s.media.Remove(ctx, path); err != nil {
			failed = append(failed, path)
			errs = append(errs, err)
		}
	}
	if len(failed) == 0 {
		return true, nil
	}

	logger.FromContext(ctx).Warn("Submission deleted but documents remain in storage",
		zap.String("id", id),
		zap.Strings("paths", failed),
		zap.Error(errors.Join(errs...)),
	)
	resource.Warn(ctx, resource.WarningMediaCleanup,
		fmt.Sprintf("submission deleted, but %d document(s) could not be removed from storage", len(failed)))

	if s.deps.Outbox != nil {
		event := content.NewMediaRemoveRequested(s.entity(), id, failed)
		if _, err := s.deps.Outbox.SaveEvent(ctx, event); err != nil {
			logger.FromContext(ctx).Error("Failed to schedule document cleanup",
				zap.String("id", id),
				zap.Error(err),
			)
		}
	}
	return true, nil
}

func (s *SubmissionService) cleanup(ctx context.Context, docs []content.DocumentMetadata) {
	for _, d := range docs {
		if _, err := s.media.Remove(ctx, d.Path); err != nil {
			logger.FromContext(ctx).Warn("Failed to remove orphaned upload",
				zap.String("path", d.Path),
				zap.Error(err),
			)
		}
	}
}
