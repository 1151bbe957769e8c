package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"expoadmin/domain/shared"
	"expoadmin/infrastructure/storage"
)

const mediaEntity = "media"

// Media 远程上传边界，对应 POST/DELETE /media
type Media struct {
	c *Client
}

func (c *Client) Media() *Media {
	return &Media{c: c}
}

func (m *Media) Upload(ctx context.Context, file storage.File, folder string) (storage.Object, error) {
	if file.Reader == nil {
		return storage.Object{}, shared.NewValidationError(mediaEntity, "file", "file is required")
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if folder != "" {
		if err := w.WriteField("folder", folder); err != nil {
			return storage.Object{}, shared.NewUploadError("failed to encode upload", err)
		}
	}
	part, err := w.CreatePart(filePartHeader(file))
	if err != nil {
		return storage.Object{}, shared.NewUploadError("failed to encode upload", err)
	}
	if _, err := io.Copy(part, file.Reader); err != nil {
		return storage.Object{}, shared.NewUploadError("failed to read file", err)
	}
	if err := w.Close(); err != nil {
		return storage.Object{}, shared.NewUploadError("failed to encode upload", err)
	}

	var obj storage.Object
	if _, err := m.c.do(ctx, mediaEntity, http.MethodPost, "/media", &body, w.FormDataContentType(), &obj); err != nil {
		return storage.Object{}, err
	}
	return obj, nil
}

func (m *Media) DeleteByURL(ctx context.Context, url string) (bool, error) {
	var out struct {
		Deleted bool `json:"deleted"`
	}
	if _, err := m.c.doJSON(ctx, mediaEntity, http.MethodDelete, "/media", map[string]string{"url": url}, &out); err != nil {
		return false, err
	}
	return out.Deleted, nil
}

func filePartHeader(file storage.File) textproto.MIMEHeader {
	name := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(file.Name)
	if name == "" {
		name = "upload"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, name))
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)
	return h
}
