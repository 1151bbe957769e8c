package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"expoadmin/domain/resource"
	"expoadmin/domain/shared"
)

// Resource 一个后台资源路径上的 resource.Client[T]
type Resource[T any, P shared.Record[T]] struct {
	c      *Client
	path   string
	entity string
}

// NewResource path 不含 /api/v1 前缀，例如 "blog-posts"
func NewResource[T any, P shared.Record[T]](c *Client, path string) *Resource[T, P] {
	var zero T
	return &Resource[T, P]{c: c, path: "/" + path, entity: shared.EntityName(P(&zero))}
}

func (r *Resource[T, P]) List(ctx context.Context) ([]*T, error) {
	var out resource.PageResult[T]
	if _, err := r.c.doJSON(ctx, r.entity, http.MethodGet, r.path, nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (r *Resource[T, P]) ListPage(ctx context.Context, page, pageSize int) ([]*T, int64, error) {
	if err := resource.CheckPage(page, pageSize); err != nil {
		return nil, 0, err
	}
	var items []*T
	path := fmt.Sprintf("%s?page=%d&page_size=%d", r.path, page, pageSize)
	env, err := r.c.doJSON(ctx, r.entity, http.MethodGet, path, nil, &items)
	if err != nil {
		return nil, 0, err
	}
	if env.Pagination == nil {
		return nil, 0, shared.NewTransportError(r.entity, "paginated response without pagination", nil)
	}
	return items, env.Pagination.TotalItems, nil
}

func (r *Resource[T, P]) GetByID(ctx context.Context, id string) (*T, error) {
	if id == "" {
		return nil, shared.NewNotFoundError(r.entity)
	}
	var out T
	if _, err := r.c.doJSON(ctx, r.entity, http.MethodGet, r.itemPath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Resource[T, P]) Create(ctx context.Context, fields resource.Fields) (*T, error) {
	var out T
	if _, err := r.c.doJSON(ctx, r.entity, http.MethodPost, r.path, nonNilFields(fields), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Resource[T, P]) Update(ctx context.Context, id string, fields resource.Fields) (*T, error) {
	if id == "" {
		return nil, shared.NewNotFoundError(r.entity)
	}
	var out T
	if _, err := r.c.doJSON(ctx, r.entity, http.MethodPatch, r.itemPath(id), nonNilFields(fields), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Resource[T, P]) Delete(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, shared.NewNotFoundError(r.entity)
	}
	var out struct {
		Deleted bool `json:"deleted"`
	}
	if _, err := r.c.doJSON(ctx, r.entity, http.MethodDelete, r.itemPath(id), nil, &out); err != nil {
		return false, err
	}
	return out.Deleted, nil
}

func (r *Resource[T, P]) itemPath(id string) string {
	return r.path + "/" + url.PathEscape(id)
}

func nonNilFields(fields resource.Fields) resource.Fields {
	if fields == nil {
		return resource.Fields{}
	}
	return fields
}
