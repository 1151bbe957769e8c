package resource

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"expoadmin/application/media"
	"expoadmin/config"
	"expoadmin/domain/content"
	"expoadmin/domain/resource"
	"expoadmin/domain/shared"
	"expoadmin/infrastructure/persistence/memory"
	"expoadmin/infrastructure/storage"
)

func seed(t *testing.T, repo resource.Client[content.Testimonial], n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if _, err := repo.Create(context.Background(), resource.Fields{
			"name":  fmt.Sprintf("Client %d", i),
			"quote": "Great stand",
		}); err != nil {
			t.Fatal(err)
		}
	}
}

func TestNewStoreStartsLoading(t *testing.T) {
	c := NewCollection[content.Testimonial](memory.NewRepository[content.Testimonial]())
	s := c.State()
	if !s.Loading || s.Error != "" || s.Data.Items != nil || s.Data.Total != 0 {
		t.Errorf("initial state = %+v", s)
	}
	it := NewItem[content.Testimonial](memory.NewRepository[content.Testimonial]())
	if st := it.State(); !st.Loading || st.Data != nil {
		t.Errorf("initial item state = %+v", st)
	}
}

func TestFetchListPagination(t *testing.T) {
	repo := memory.NewRepository[content.Testimonial]()
	seed(t, repo, 15)
	c := NewCollection[content.Testimonial](repo)
	ctx := context.Background()

	first, err := c.FetchList(ctx, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.FetchList(ctx, 2, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(first.Items) != 10 || len(second.Items) != 5 {
		t.Errorf("page lengths = %d, %d", len(first.Items), len(second.Items))
	}
	if first.Total != 15 || second.Total != 15 {
		t.Errorf("totals = %d, %d", first.Total, second.Total)
	}

	seen := map[string]bool{}
	for _, it := range append(first.Items, second.Items...) {
		seen[it.ID] = true
	}
	if len(seen) != 15 {
		t.Errorf("pages overlap: %d distinct items", len(seen))
	}

	s := c.State()
	if s.Loading || s.Data.Total != 15 || len(s.Data.Items) != 5 {
		t.Errorf("state = loading:%v total:%d len:%d", s.Loading, s.Data.Total, len(s.Data.Items))
	}
}

func TestFetchListUnpaginated(t *testing.T) {
	repo := memory.NewRepository[content.Testimonial]()
	seed(t, repo, 3)
	c := NewCollection[content.Testimonial](repo)

	tests := []struct {
		name           string
		page, pageSize int
	}{
		{"both omitted", 0, 0},
		{"only page", 2, 0},
		{"only page size", 0, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := c.FetchList(context.Background(), tt.page, tt.pageSize)
			if err != nil {
				t.Fatal(err)
			}
			if len(res.Items) != 3 || res.Total != 3 {
				t.Errorf("got %d items, total %d", len(res.Items), res.Total)
			}
		})
	}
}

func TestCreateAndDeleteAfterConfirmation(t *testing.T) {
	repo := memory.NewRepository[content.Testimonial]()
	seed(t, repo, 2)
	c := NewCollection[content.Testimonial](repo)
	ctx := context.Background()
	if _, err := c.FetchList(ctx, 0, 0); err != nil {
		t.Fatal(err)
	}

	created, err := c.Create(ctx, resource.Fields{"name": "Jane", "quote": "Great service"})
	if err != nil {
		t.Fatal(err)
	}
	if created.ID == "" {
		t.Error("id should be assigned by the backend")
	}
	s := c.State()
	if len(s.Data.Items) != 3 || s.Data.Total != 3 || s.Data.Items[0].ID != created.ID {
		t.Errorf("after create: len=%d total=%d", len(s.Data.Items), s.Data.Total)
	}

	ok, err := c.Delete(ctx, created.ID)
	if err != nil || !ok {
		t.Fatalf("Delete = %v, %v", ok, err)
	}
	if s := c.State(); len(s.Data.Items) != 2 || s.Data.Total != 2 {
		t.Errorf("after delete: len=%d total=%d", len(s.Data.Items), s.Data.Total)
	}

	ok, err = c.Delete(ctx, created.ID)
	if ok || !errors.Is(err, shared.ErrNotFound) {
		t.Errorf("second delete = %v, %v", ok, err)
	}
	if s := c.State(); len(s.Data.Items) != 2 || s.Error == "" || s.Loading {
		t.Errorf("failed delete state = %+v", s)
	}
}

func TestCreateRejectedLeavesCollection(t *testing.T) {
	repo := memory.NewRepository[content.Testimonial]()
	seed(t, repo, 1)
	c := NewCollection[content.Testimonial](repo)
	_, _ = c.FetchList(context.Background(), 0, 0)

	if _, err := c.Create(context.Background(), resource.Fields{"name": "No quote"}); !errors.Is(err, shared.ErrInvalidInput) {
		t.Fatalf("err = %v", err)
	}
	s := c.State()
	if len(s.Data.Items) != 1 || s.Data.Total != 1 {
		t.Error("rejected create must not insert")
	}
	if s.Error == "" {
		t.Error("error should be visible")
	}
}

func TestUpdateFailureKeepsData(t *testing.T) {
	repo := memory.NewRepository[content.Testimonial]()
	seed(t, repo, 1)
	items, _ := repo.List(context.Background())
	id := items[0].ID

	it := NewItem[content.Testimonial](repo)
	ctx := context.Background()
	if err := it.SetID(ctx, id); err != nil {
		t.Fatal(err)
	}
	before := it.State().Data

	if _, err := it.Update(ctx, id, resource.Fields{"rating": 9}); err == nil {
		t.Fatal("expected validation error")
	}
	s := it.State()
	if s.Data == nil || s.Data.Rating != before.Rating || s.Data.Name != before.Name {
		t.Errorf("data changed after failed update: %+v", s.Data)
	}
	if s.Error == "" || s.Loading {
		t.Errorf("state = %+v", s)
	}

	updated, err := it.Update(ctx, id, resource.Fields{"rating": 5})
	if err != nil {
		t.Fatal(err)
	}
	again, err := it.FetchOne(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if again.Rating != 5 || updated.Rating != 5 {
		t.Errorf("write-then-read: %d", again.Rating)
	}
	if it.State().Error != "" {
		t.Error("successful fetch should clear the error")
	}
}

func TestCollectionUpdatePatchesByID(t *testing.T) {
	repo := memory.NewRepository[content.Testimonial]()
	seed(t, repo, 3)
	c := NewCollection[content.Testimonial](repo)
	res, _ := c.FetchList(context.Background(), 0, 0)
	target := res.Items[1]

	if _, err := c.Update(context.Background(), target.ID, resource.Fields{"company": "ACME"}); err != nil {
		t.Fatal(err)
	}
	s := c.State()
	if s.Data.Items[1].Company != "ACME" || s.Data.Items[0].Company == "ACME" {
		t.Error("only the matching item should be patched")
	}
	if res.Items[1].Company == "ACME" {
		t.Error("previous snapshots must not be mutated")
	}
}

func TestItemIdempotentRead(t *testing.T) {
	repo := memory.NewRepository[content.Testimonial]()
	seed(t, repo, 1)
	items, _ := repo.List(context.Background())
	it := NewItem[content.Testimonial](repo)

	a, err := it.FetchOne(context.Background(), items[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := it.FetchOne(context.Background(), items[0].ID)
	if a.ID != b.ID || a.Name != b.Name || !a.UpdatedAt.Equal(b.UpdatedAt) {
		t.Error("consecutive reads differ")
	}
}

func TestItemNotFound(t *testing.T) {
	it := NewItem[content.Testimonial](memory.NewRepository[content.Testimonial]())
	_, err := it.FetchOne(context.Background(), "missing")
	if !errors.Is(err, shared.ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
	s := it.State()
	if s.Data != nil || s.Error == "" || s.Loading {
		t.Errorf("state = %+v", s)
	}
}

type countingClient struct {
	resource.Client[content.Testimonial]
	mu    sync.Mutex
	gets  int
	lists int
}

func (c *countingClient) GetByID(ctx context.Context, id string) (*content.Testimonial, error) {
	c.mu.Lock()
	c.gets++
	c.mu.Unlock()
	return c.Client.GetByID(ctx, id)
}

func (c *countingClient) ListPage(ctx context.Context, page, pageSize int) ([]*content.Testimonial, int64, error) {
	c.mu.Lock()
	c.lists++
	c.mu.Unlock()
	return c.Client.ListPage(ctx, page, pageSize)
}

func TestKeyedRefetch(t *testing.T) {
	repo := memory.NewRepository[content.Testimonial]()
	seed(t, repo, 3)
	items, _ := repo.List(context.Background())
	client := &countingClient{Client: repo}
	ctx := context.Background()

	it := NewItem[content.Testimonial](client)
	_ = it.SetID(ctx, "")
	_ = it.SetID(ctx, items[0].ID)
	_ = it.SetID(ctx, items[0].ID)
	_ = it.SetID(ctx, items[1].ID)
	if client.gets != 2 {
		t.Errorf("gets = %d, want 2", client.gets)
	}
	_ = it.Refetch(ctx)
	if client.gets != 3 {
		t.Errorf("refetch should re-run: gets = %d", client.gets)
	}

	c := NewCollection[content.Testimonial](client)
	_ = c.SetPage(ctx, 1, 2)
	_ = c.SetPage(ctx, 1, 2)
	_ = c.SetPage(ctx, 2, 2)
	_ = c.SetPage(ctx, 2, 1)
	if client.lists != 3 {
		t.Errorf("lists = %d, want 3", client.lists)
	}
}

type gatedClient struct {
	resource.Client[content.Testimonial]
	started chan int
	release map[int]chan struct{}
}

func (g *gatedClient) ListPage(ctx context.Context, page, pageSize int) ([]*content.Testimonial, int64, error) {
	g.started <- page
	<-g.release[page]
	return g.Client.ListPage(ctx, page, pageSize)
}

func TestStaleResponseDiscarded(t *testing.T) {
	repo := memory.NewRepository[content.Testimonial]()
	seed(t, repo, 15)
	g := &gatedClient{
		Client:  repo,
		started: make(chan int, 2),
		release: map[int]chan struct{}{1: make(chan struct{}), 2: make(chan struct{})},
	}
	c := NewCollection[content.Testimonial](g)
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		_, _ = c.FetchList(ctx, 1, 10)
		close(done)
	}()
	<-g.started

	close(g.release[2])
	if _, err := c.FetchList(ctx, 2, 10); err != nil {
		t.Fatal(err)
	}
	<-g.started
	close(g.release[1])
	<-done

	s := c.State()
	if len(s.Data.Items) != 5 {
		t.Errorf("stale page 1 overwrote page 2: %d items", len(s.Data.Items))
	}
}

func TestClosedStoreDiscardsResults(t *testing.T) {
	repo := memory.NewRepository[content.Testimonial]()
	seed(t, repo, 2)
	g := &gatedClient{
		Client:  repo,
		started: make(chan int, 1),
		release: map[int]chan struct{}{1: make(chan struct{})},
	}
	c := NewCollection[content.Testimonial](g)

	var notified int
	c.Subscribe(func(ViewState[resource.PageResult[content.Testimonial]]) { notified++ })

	done := make(chan struct{})
	go func() {
		_, _ = c.FetchList(context.Background(), 1, 10)
		close(done)
	}()
	<-g.started
	c.Close()
	close(g.release[1])
	<-done

	if s := c.State(); !s.Loading || len(s.Data.Items) != 0 {
		t.Errorf("closed store should not change: %+v", s)
	}
	if notified != 1 {
		t.Errorf("notified = %d, want only the loading transition", notified)
	}
}

func TestSubscribe(t *testing.T) {
	repo := memory.NewRepository[content.Testimonial]()
	seed(t, repo, 1)
	c := NewCollection[content.Testimonial](repo)

	var states []ViewState[resource.PageResult[content.Testimonial]]
	unsubscribe := c.Subscribe(func(s ViewState[resource.PageResult[content.Testimonial]]) {
		states = append(states, s)
	})
	_, _ = c.FetchList(context.Background(), 0, 0)
	if len(states) != 2 || !states[0].Loading || states[1].Loading || len(states[1].Data.Items) != 1 {
		t.Errorf("states = %+v", states)
	}
	unsubscribe()
	_, _ = c.FetchList(context.Background(), 0, 0)
	if len(states) != 2 {
		t.Error("unsubscribed observer was notified")
	}
}

func TestImages(t *testing.T) {
	store := storage.NewMemoryStore("https://cdn.example.com")
	m := media.NewApplicationService(store, config.StorageConfig{MaxUploadBytes: 1 << 20})
	repo := memory.NewRepository[content.Testimonial]()
	seed(t, repo, 1)
	c := NewCollection[content.Testimonial](repo, WithMedia(m))
	_, _ = c.FetchList(context.Background(), 0, 0)
	before := c.State()

	url, err := c.UploadImage(context.Background(), storage.File{Name: "a.png", Size: -1, Reader: bytes.NewReader([]byte("\x89PNG\r\n\x1a\n0000"))}, "testimonials")
	if err != nil {
		t.Fatal(err)
	}
	if s := c.State(); s.Data.Items[0].Avatar != before.Data.Items[0].Avatar {
		t.Error("upload must not mutate held data")
	}

	ok, err := c.DeleteImage(context.Background(), url)
	if err != nil || !ok {
		t.Errorf("DeleteImage = %v, %v", ok, err)
	}

	store.FailRemoves(errors.New("denied"))
	url2, _ := c.UploadImage(context.Background(), storage.File{Name: "b.png", Size: -1, Reader: bytes.NewReader([]byte("\x89PNG\r\n\x1a\n0000"))}, "")
	if ok, err := c.DeleteImage(context.Background(), url2); ok || !errors.Is(err, shared.ErrUpload) {
		t.Errorf("DeleteImage = %v, %v", ok, err)
	}
	if s := c.State(); s.Error == "" || len(s.Data.Items) != 1 {
		t.Errorf("state = %+v", s)
	}

	bare := NewItem[content.Testimonial](repo)
	if _, err := bare.UploadImage(context.Background(), storage.File{Name: "x.png"}, ""); !errors.Is(err, shared.ErrUpload) {
		t.Errorf("err = %v", err)
	}
}

type warningClient struct {
	resource.Client[content.Testimonial]
}

func (w warningClient) Create(ctx context.Context, fields resource.Fields) (*content.Testimonial, error) {
	resource.Warn(ctx, resource.WarningRevalidation, "cache revalidation failed")
	return w.Client.Create(ctx, fields)
}

func TestWarningsSurface(t *testing.T) {
	c := NewCollection[content.Testimonial](warningClient{memory.NewRepository[content.Testimonial]()})
	if _, err := c.Create(context.Background(), resource.Fields{"name": "Jane", "quote": "Great"}); err != nil {
		t.Fatal(err)
	}
	s := c.State()
	if len(s.Warnings) != 1 || s.Warnings[0].Code != resource.WarningRevalidation {
		t.Errorf("warnings = %v", s.Warnings)
	}
}

func TestItemRefetchAfterFetchOne(t *testing.T) {
	repo := memory.NewRepository[content.Testimonial]()
	seed(t, repo, 1)
	items, _ := repo.List(context.Background())
	id := items[0].ID
	ctx := context.Background()

	it := NewItem[content.Testimonial](repo)
	if _, err := it.FetchOne(ctx, id); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Update(ctx, id, resource.Fields{"name": "Jane Doe"}); err != nil {
		t.Fatal(err)
	}
	if err := it.Refetch(ctx); err != nil {
		t.Fatal(err)
	}
	if it.ID() != id {
		t.Errorf("ID() = %q, want %q", it.ID(), id)
	}
	if s := it.State(); s.Data == nil || s.Data.Name != "Jane Doe" {
		t.Errorf("refetch kept stale data: %+v", s.Data)
	}
}

func TestStateDoesNotShareEntities(t *testing.T) {
	repo := memory.NewRepository[content.Testimonial]()
	seed(t, repo, 2)
	items, _ := repo.List(context.Background())
	ctx := context.Background()

	it := NewItem[content.Testimonial](repo)
	fetched, _ := it.FetchOne(ctx, items[0].ID)
	fetched.Name = "changed by caller"
	snapshot := it.State().Data
	snapshot.Quote = "changed by caller"
	if s := it.State(); s.Data.Name == "changed by caller" || s.Data.Quote == "changed by caller" {
		t.Errorf("held item mutated from outside: %+v", s.Data)
	}

	c := NewCollection[content.Testimonial](repo)
	res, _ := c.FetchList(ctx, 0, 0)
	res.Items[0].Name = "changed by caller"
	c.State().Data.Items[1].Name = "changed by caller"
	for _, item := range c.State().Data.Items {
		if item.Name == "changed by caller" {
			t.Errorf("held collection mutated from outside: %+v", item)
		}
	}
}

func TestFailedMutationKeepsFetchLoading(t *testing.T) {
	repo := memory.NewRepository[content.Testimonial]()
	seed(t, repo, 3)
	g := &gatedClient{
		Client:  repo,
		started: make(chan int, 1),
		release: map[int]chan struct{}{1: make(chan struct{})},
	}
	c := NewCollection[content.Testimonial](g)
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		_, _ = c.FetchList(ctx, 1, 10)
		close(done)
	}()
	<-g.started

	if _, err := c.Create(ctx, resource.Fields{"name": "No quote"}); err == nil {
		t.Fatal("expected validation error")
	}
	if s := c.State(); !s.Loading || s.Error == "" {
		t.Errorf("fetch still in flight, state = loading:%v error:%q", s.Loading, s.Error)
	}

	close(g.release[1])
	<-done
	if s := c.State(); s.Loading || len(s.Data.Items) != 3 || s.Error != "" {
		t.Errorf("after fetch: %+v", s)
	}
}
