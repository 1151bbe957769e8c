package resource

import (
	"context"
	"slices"

	"expoadmin/domain/resource"
	"expoadmin/domain/shared"
	"expoadmin/infrastructure/storage"
)

// Collection 列表 store，以 (page, pageSize) 为键。0 表示未提供该参数。
type Collection[T any, P shared.Record[T]] struct {
	*core[resource.PageResult[T]]
	client   resource.Client[T]
	page     int
	pageSize int
	fetched  bool
}

func NewCollection[T any, P shared.Record[T]](client resource.Client[T], opts ...Option) *Collection[T, P] {
	return &Collection[T, P]{
		core:   newCore(copyPage[T], opts),
		client: client,
	}
}

func copyPage[T any](p resource.PageResult[T]) resource.PageResult[T] {
	var items []*T
	if p.Items != nil {
		items = make([]*T, len(p.Items))
		for i, it := range p.Items {
			items[i] = cloneItem(it)
		}
	}
	return resource.PageResult[T]{Items: items, Total: p.Total}
}

// Paginated 两个参数都提供时才分页；只提供一个按不分页处理
func Paginated(page, pageSize int) bool {
	return page > 0 && pageSize > 0
}

// FetchList 拉取列表并完整替换状态。被新请求取代或 Close 之后到达的结果不写入状态。
func (c *Collection[T, P]) FetchList(ctx context.Context, page, pageSize int) (resource.PageResult[T], error) {
	c.mu.Lock()
	c.page, c.pageSize, c.fetched = page, pageSize, true
	c.mu.Unlock()

	token, ok := c.begin()
	if !ok {
		return resource.PageResult[T]{}, nil
	}

	var result resource.PageResult[T]
	var err error
	if Paginated(page, pageSize) {
		result.Items, result.Total, err = c.client.ListPage(ctx, page, pageSize)
	} else {
		result.Items, err = c.client.List(ctx)
		result.Total = int64(len(result.Items))
	}

	c.finish(token, func(s *ViewState[resource.PageResult[T]]) {
		if err != nil {
			s.Data = resource.PageResult[T]{}
			s.Error = describe(err)
			return
		}
		s.Data = copyPage(result)
		s.Error = ""
		s.Warnings = nil
	})
	if err != nil {
		return resource.PageResult[T]{}, err
	}
	return result, nil
}

// SetPage 键变化时重新拉取
func (c *Collection[T, P]) SetPage(ctx context.Context, page, pageSize int) error {
	c.mu.Lock()
	same := c.fetched && c.page == page && c.pageSize == pageSize
	c.mu.Unlock()
	if same {
		return nil
	}
	_, err := c.FetchList(ctx, page, pageSize)
	return err
}

// Refetch 以上一次的键重新拉取
func (c *Collection[T, P]) Refetch(ctx context.Context) error {
	c.mu.Lock()
	page, pageSize := c.page, c.pageSize
	c.mu.Unlock()
	_, err := c.FetchList(ctx, page, pageSize)
	return err
}

// Create 后端确认后插入到列表头部（created_at DESC）
func (c *Collection[T, P]) Create(ctx context.Context, fields resource.Fields) (*T, error) {
	ctx, diag := resource.WithDiagnostics(ctx)
	item, err := c.client.Create(ctx, fields)
	if err != nil {
		c.fail(err)
		return nil, err
	}
	c.mutate(func(s *ViewState[resource.PageResult[T]]) {
		s.Data.Items = append([]*T{cloneItem(item)}, s.Data.Items...)
		s.Data.Total++
		s.Error = ""
		s.Warnings = diag.Warnings()
	})
	return item, nil
}

// Update 成功后按 id 替换列表中的对应项；失败时保留原数据
func (c *Collection[T, P]) Update(ctx context.Context, id string, fields resource.Fields) (*T, error) {
	ctx, diag := resource.WithDiagnostics(ctx)
	item, err := c.client.Update(ctx, id, fields)
	if err != nil {
		c.fail(err)
		return nil, err
	}
	c.mutate(func(s *ViewState[resource.PageResult[T]]) {
		items := slices.Clone(s.Data.Items)
		for i, it := range items {
			if P(it).Meta().ID == id {
				items[i] = cloneItem(item)
			}
		}
		s.Data.Items = items
		s.Error = ""
		s.Warnings = diag.Warnings()
	})
	return item, nil
}

// Delete 后端确认后从列表移除
func (c *Collection[T, P]) Delete(ctx context.Context, id string) (bool, error) {
	ctx, diag := resource.WithDiagnostics(ctx)
	ok, err := c.client.Delete(ctx, id)
	if err != nil {
		c.fail(err)
		return false, err
	}
	if !ok {
		return false, nil
	}
	c.mutate(func(s *ViewState[resource.PageResult[T]]) {
		before := len(s.Data.Items)
		s.Data.Items = slices.DeleteFunc(slices.Clone(s.Data.Items), func(it *T) bool {
			return P(it).Meta().ID == id
		})
		s.Data.Total -= int64(before - len(s.Data.Items))
		if s.Data.Total < 0 {
			s.Data.Total = 0
		}
		s.Error = ""
		s.Warnings = diag.Warnings()
	})
	return true, nil
}

// UploadImage 只上传，不修改持有的数据；调用方需通过 Update 保存 URL
func (c *Collection[T, P]) UploadImage(ctx context.Context, file storage.File, folder string) (string, error) {
	return c.uploadImage(ctx, file, folder)
}

// DeleteImage 尽力删除，失败不回滚已保存的字段
func (c *Collection[T, P]) DeleteImage(ctx context.Context, url string) (bool, error) {
	return c.deleteImage(ctx, url)
}
