package content

import (
	"expoadmin/domain/shared"

	"gorm.io/datatypes"
)

// DocumentMetadata 一个已上传文件。存储删除与记录删除不在同一事务内。
type DocumentMetadata struct {
	URL      string `json:"url"`
	Path     string `json:"path"`
	FileName string `json:"file_name"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
	Field    string `json:"field"`
}

type SubmissionStatus string

const (
	SubmissionNew      SubmissionStatus = "new"
	SubmissionRead     SubmissionStatus = "read"
	SubmissionArchived SubmissionStatus = "archived"
)

// FormSubmission 网站表单提交（报价请求等），可附带文件
type FormSubmission struct {
	shared.Base
	FormName  string                                `json:"form_name" gorm:"size:100;index" validate:"required,max=100"`
	Name      string                                `json:"name" gorm:"size:255" validate:"required,max=255"`
	Email     string                                `json:"email" gorm:"size:255" validate:"required,email"`
	Phone     string                                `json:"phone" gorm:"size:64" validate:"max=64"`
	Company   string                                `json:"company" gorm:"size:255" validate:"max=255"`
	Message   string                                `json:"message" gorm:"type:text" validate:"max=10000"`
	EventName string                                `json:"event_name" gorm:"size:255" validate:"max=255"`
	StandSize string                                `json:"stand_size" gorm:"size:64" validate:"max=64"`
	Budget    string                                `json:"budget" gorm:"size:64" validate:"max=64"`
	Status    SubmissionStatus                      `json:"status" gorm:"size:20;index" validate:"omitempty,oneof=new read archived"`
	Documents datatypes.JSONSlice[DocumentMetadata] `json:"documents"`
}

func (FormSubmission) TableName() string  { return "form_submissions" }
func (FormSubmission) EntityName() string { return "form_submission" }

func (s *FormSubmission) Validate() error {
	if s.Status == "" {
		s.Status = SubmissionNew
	}
	return shared.ValidateStruct(s.EntityName(), s)
}

// DocumentPaths 附件的存储路径
func (s *FormSubmission) DocumentPaths() []string {
	paths := make([]string, 0, len(s.Documents))
	for _, d := range s.Documents {
		if d.Path != "" {
			paths = append(paths, d.Path)
		}
	}
	return paths
}
