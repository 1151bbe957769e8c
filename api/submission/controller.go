package submission

import (
	"mime/multipart"
	"net/http"

	"expoadmin/api/ctxutil"
	"expoadmin/api/response"
	appcontent "expoadmin/application/content"
	"expoadmin/domain/resource"
	"expoadmin/infrastructure/storage"

	"github.com/gin-gonic/gin"
)

// Controller 网站公开表单入口，无需认证
type Controller struct {
	service *appcontent.SubmissionService
}

func NewController(service *appcontent.SubmissionService) *Controller {
	return &Controller{service: service}
}

func (ctrl *Controller) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/form-submissions", ctrl.Submit)
}

// Submit 接收 multipart 或 JSON。multipart 中的文本字段作为表单字段，文件字段作为附件。
func (ctrl *Controller) Submit(c *gin.Context) {
	fields := resource.Fields{}
	var attachments []appcontent.Attachment

	if c.ContentType() == gin.MIMEJSON {
		if err := c.ShouldBindJSON(&fields); err != nil {
			response.HandleError(c, err, "request body must be a JSON object", http.StatusBadRequest)
			return
		}
	} else {
		form, err := c.MultipartForm()
		if err != nil {
			response.HandleError(c, err, "request must be multipart/form-data", http.StatusBadRequest)
			return
		}
		for key, values := range form.Value {
			if len(values) > 0 {
				fields[key] = values[0]
			}
		}
		files, closeAll, err := openFiles(form)
		defer closeAll()
		if err != nil {
			response.HandleError(c, err, "failed to read uploaded files", http.StatusBadRequest)
			return
		}
		attachments = files
	}

	sub, err := ctrl.service.Submit(ctxutil.WithRequestID(c), fields, attachments)
	if err != nil {
		response.HandleAppError(c, err)
		return
	}
	response.HandleCreated(c, gin.H{"id": sub.ID}, "submission received")
}

func openFiles(form *multipart.Form) ([]appcontent.Attachment, func(), error) {
	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	var attachments []appcontent.Attachment
	for field, headers := range form.File {
		for _, h := range headers {
			f, err := h.Open()
			if err != nil {
				return nil, closeAll, err
			}
			opened = append(opened, f)
			attachments = append(attachments, appcontent.Attachment{
				Field: field,
				File: storage.File{
					Name:        h.Filename,
					ContentType: h.Header.Get("Content-Type"),
					Size:        h.Size,
					Reader:      f,
				},
			})
		}
	}
	return attachments, closeAll, nil
}
