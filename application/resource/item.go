package resource

import (
	"context"

	"expoadmin/domain/resource"
	"expoadmin/domain/shared"
	"expoadmin/infrastructure/storage"
)

// Item 单实体 store，以 id 为键，id 为空时不拉取
type Item[T any, P shared.Record[T]] struct {
	*core[*T]
	client resource.Client[T]
	id     string
	keyed  bool
}

func NewItem[T any, P shared.Record[T]](client resource.Client[T], opts ...Option) *Item[T, P] {
	return &Item[T, P]{
		core:   newCore(cloneItem[T], opts),
		client: client,
	}
}

// SetID id 变化时重新拉取。空 id 不发请求，只使在途请求失效。
func (it *Item[T, P]) SetID(ctx context.Context, id string) error {
	it.mu.Lock()
	same := it.keyed && it.id == id
	it.id, it.keyed = id, true
	it.mu.Unlock()
	if same {
		return nil
	}
	if id == "" {
		it.invalidate()
		return nil
	}
	_, err := it.FetchOne(ctx, id)
	return err
}

func (it *Item[T, P]) ID() string {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.id
}

// FetchOne 拉取并将 id 记为当前键，之后 Refetch 以该 id 重新拉取
func (it *Item[T, P]) FetchOne(ctx context.Context, id string) (*T, error) {
	it.mu.Lock()
	it.id, it.keyed = id, true
	it.mu.Unlock()

	token, ok := it.begin()
	if !ok {
		return nil, nil
	}
	item, err := it.client.GetByID(ctx, id)
	it.finish(token, func(s *ViewState[*T]) {
		if err != nil {
			s.Data = nil
			s.Error = describe(err)
			return
		}
		s.Data = cloneItem(item)
		s.Error = ""
		s.Warnings = nil
	})
	return item, err
}

// Refetch 以当前 id 重新拉取
func (it *Item[T, P]) Refetch(ctx context.Context) error {
	id := it.ID()
	if id == "" {
		return nil
	}
	_, err := it.FetchOne(ctx, id)
	return err
}

// Update 成功后替换持有的实体；失败时保留原数据并记录错误
func (it *Item[T, P]) Update(ctx context.Context, id string, fields resource.Fields) (*T, error) {
	ctx, diag := resource.WithDiagnostics(ctx)
	item, err := it.client.Update(ctx, id, fields)
	if err != nil {
		it.fail(err)
		return nil, err
	}
	it.mutate(func(s *ViewState[*T]) {
		if s.Data == nil || P(s.Data).Meta().ID == id {
			s.Data = cloneItem(item)
		}
		s.Error = ""
		it.settleLocked(s)
		s.Warnings = diag.Warnings()
	})
	return item, nil
}

func (it *Item[T, P]) UploadImage(ctx context.Context, file storage.File, folder string) (string, error) {
	return it.uploadImage(ctx, file, folder)
}

func (it *Item[T, P]) DeleteImage(ctx context.Context, url string) (bool, error) {
	return it.deleteImage(ctx, url)
}
