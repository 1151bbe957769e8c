package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"expoadmin/domain/shared"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// 1x1 PNG
var pngBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89,
}

func pngFile(name string) File {
	return File{Name: name, Size: int64(len(pngBytes)), Reader: bytes.NewReader(pngBytes)}
}

func TestCleanFolder(t *testing.T) {
	tests := map[string]string{
		"":                "images",
		"Blog Posts":      "blog-posts",
		"../../etc":       "etc",
		"/cities/munich/": "cities/munich",
		"a/./b/../c":      "a/c",
	}
	for in, want := range tests {
		if got := CleanFolder(in, "images"); got != want {
			t.Errorf("CleanFolder(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDetectContentType(t *testing.T) {
	r, mime, err := DetectContentType(bytes.NewReader(pngBytes))
	if err != nil {
		t.Fatal(err)
	}
	if mime.String() != "image/png" || mime.Extension() != ".png" {
		t.Errorf("mime = %s ext = %s", mime.String(), mime.Extension())
	}
	all, _ := io.ReadAll(r)
	if !bytes.Equal(all, pngBytes) {
		t.Error("reader must replay sniffed bytes")
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore("https://cdn.example.com/media")

	obj, err := store.Upload(ctx, pngFile("Hero.PNG"), "home")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(obj.Path, "home/") || !strings.HasSuffix(obj.Path, ".png") {
		t.Errorf("path = %q", obj.Path)
	}
	if obj.MimeType != "image/png" || obj.Size != int64(len(pngBytes)) {
		t.Errorf("obj = %+v", obj)
	}
	if obj.URL != store.PublicURL(obj.Path) {
		t.Errorf("url = %q", obj.URL)
	}

	path, ok := store.PathFromURL(obj.URL)
	if !ok || path != obj.Path {
		t.Errorf("PathFromURL = %q, %v", path, ok)
	}
	if _, ok := store.PathFromURL("https://elsewhere.example.com/a.png"); ok {
		t.Error("foreign url should not resolve")
	}

	removed, err := store.Remove(ctx, obj.Path)
	if !removed || err != nil {
		t.Fatalf("Remove() = %v, %v", removed, err)
	}
	removed, err = store.Remove(ctx, obj.Path)
	if removed || err != nil {
		t.Errorf("second Remove() = %v, %v", removed, err)
	}

	store.FailUploads(errors.New("bucket offline"))
	if _, err := store.Upload(ctx, pngFile("a.png"), ""); !errors.Is(err, shared.ErrUpload) {
		t.Errorf("err = %v", err)
	}
}

func TestLocalStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "http://localhost:8080/uploads")
	if err != nil {
		t.Fatal(err)
	}

	obj, err := store.Upload(ctx, File{Name: "brochure", Size: -1, Reader: strings.NewReader("%PDF-1.4\n%âãÏÓ\n")}, "documents")
	if err != nil {
		t.Fatal(err)
	}
	if obj.MimeType != "application/pdf" || !strings.HasSuffix(obj.Path, ".pdf") {
		t.Errorf("obj = %+v", obj)
	}
	if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(obj.Path))); err != nil {
		t.Errorf("file not written: %v", err)
	}

	if _, err := store.Remove(ctx, "../../etc/passwd"); !errors.Is(err, shared.ErrUpload) {
		t.Errorf("path escape should be rejected, got %v", err)
	}
	if ok, err := store.Remove(ctx, obj.Path); !ok || err != nil {
		t.Errorf("Remove() = %v, %v", ok, err)
	}
}

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, _ := io.ReadAll(in.Body)
	f.mu.Lock()
	f.objects[aws.ToString(in.Key)] = data
	f.mu.Unlock()
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) HeadObject(ctx context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[aws.ToString(in.Key)]; !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	delete(f.objects, aws.ToString(in.Key))
	f.mu.Unlock()
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Store(t *testing.T) {
	ctx := context.Background()
	fake := &fakeS3{objects: map[string][]byte{}}
	store := NewS3StoreWithClient(fake, "expo", "/site/", "https://expo.s3.eu-central-1.amazonaws.com")

	obj, err := store.Upload(ctx, pngFile("stand.png"), "portfolio")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := fake.objects["site/"+obj.Path]; !ok {
		t.Fatalf("object key missing base path: %v", fake.objects)
	}
	if obj.URL != "https://expo.s3.eu-central-1.amazonaws.com/site/"+obj.Path {
		t.Errorf("url = %q", obj.URL)
	}
	if p, ok := store.PathFromURL(obj.URL); !ok || p != obj.Path {
		t.Errorf("PathFromURL = %q %v", p, ok)
	}

	if ok, err := store.Remove(ctx, obj.Path); !ok || err != nil {
		t.Errorf("Remove() = %v %v", ok, err)
	}
	if ok, err := store.Remove(ctx, obj.Path); ok || err != nil {
		t.Errorf("Remove() missing = %v %v", ok, err)
	}

	fake.putErr = errors.New("access denied")
	if _, err := store.Upload(ctx, pngFile("x.png"), ""); !errors.Is(err, shared.ErrUpload) {
		t.Errorf("err = %v", err)
	}
}
