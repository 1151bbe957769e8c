package media

import (
	"net/http"

	"expoadmin/api/ctxutil"
	"expoadmin/api/response"
	appmedia "expoadmin/application/media"
	"expoadmin/infrastructure/storage"

	"github.com/gin-gonic/gin"
)

// Controller 图片与文件上传
type Controller struct {
	service *appmedia.ApplicationService
}

func NewController(service *appmedia.ApplicationService) *Controller {
	return &Controller{service: service}
}

func (ctrl *Controller) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/media", ctrl.Upload)
	router.DELETE("/media", ctrl.Delete)
}

// Upload multipart: file, folder(可选)
func (ctrl *Controller) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		response.HandleError(c, err, "multipart field 'file' is required", http.StatusBadRequest)
		return
	}
	f, err := header.Open()
	if err != nil {
		response.HandleError(c, err, "failed to read uploaded file", http.StatusBadRequest)
		return
	}
	defer f.Close()

	obj, err := ctrl.service.Upload(ctxutil.WithRequestID(c), storage.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Reader:      f,
	}, c.PostForm("folder"))
	if err != nil {
		response.HandleAppError(c, err)
		return
	}
	response.HandleCreated(c, obj, "file uploaded")
}

type DeleteRequest struct {
	URL string `json:"url" binding:"required"`
}

func (ctrl *Controller) Delete(c *gin.Context) {
	var req DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.HandleError(c, err, "url is required", http.StatusBadRequest)
		return
	}
	ok, err := ctrl.service.DeleteByURL(ctxutil.WithRequestID(c), req.URL)
	if err != nil {
		response.HandleAppError(c, err)
		return
	}
	response.HandleSuccess(c, gin.H{"deleted": ok}, "ok")
}
