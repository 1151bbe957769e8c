package resource_test

import (
	"errors"
	"testing"
	"time"

	"expoadmin/domain/content"
	"expoadmin/domain/resource"
	"expoadmin/domain/shared"
)

func TestBuild(t *testing.T) {
	item, err := resource.Build[content.Testimonial](resource.Fields{"name": "Jane", "quote": "Great service", "rating": 5})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if item.Name != "Jane" || item.Quote != "Great service" || item.Rating != 5 {
		t.Errorf("item = %+v", item)
	}
	if item.ID != "" {
		t.Error("Build must not assign an id")
	}

	_, err = resource.Build[content.Testimonial](resource.Fields{"id": "x", "name": "Jane", "quote": "q"})
	if !errors.Is(err, shared.ErrInvalidInput) {
		t.Errorf("client-supplied id should be rejected, got %v", err)
	}
}

func TestBuildValidation(t *testing.T) {
	tests := []struct {
		name      string
		fields    resource.Fields
		wantField string
	}{
		{"missing required", resource.Fields{"name": "Jane"}, "quote"},
		{"wrong type", resource.Fields{"name": "Jane", "quote": "q", "rating": "five"}, "rating"},
		{"unknown field", resource.Fields{"name": "Jane", "quote": "q", "stars": 3}, "stars"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resource.Build[content.Testimonial](tt.fields)
			var de *shared.DomainError
			if !errors.As(err, &de) {
				t.Fatalf("expected DomainError, got %v", err)
			}
			if de.Field != tt.wantField {
				t.Errorf("field = %q, want %q", de.Field, tt.wantField)
			}
		})
	}
}

func TestApplyPartialUpdate(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	current := &content.City{
		Base: shared.Base{ID: "city-1", CreatedAt: created, UpdatedAt: created},
		Name: "Dusseldorf", Slug: "dusseldorf", Featured: true,
		Images: []string{"a.png"},
	}

	next, err := resource.Apply(current, resource.Fields{"name": "Düsseldorf", "updated_at": "1999-01-01T00:00:00Z"})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if next.Name != "Düsseldorf" || next.Slug != "dusseldorf" || !next.Featured {
		t.Errorf("next = %+v", next)
	}
	if next.ID != "city-1" || !next.CreatedAt.Equal(created) || !next.UpdatedAt.Equal(created) {
		t.Errorf("meta changed: %+v", next.Base)
	}
	if len(next.Images) != 1 {
		t.Errorf("images lost: %v", next.Images)
	}
	if current.Name != "Dusseldorf" {
		t.Error("Apply must not mutate current")
	}
}

func TestApplyImmutableFields(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	current := &content.City{Base: shared.Base{ID: "city-1", CreatedAt: created}, Name: "Essen", Slug: "essen"}

	if _, err := resource.Apply(current, resource.Fields{"id": "city-2"}); !errors.Is(err, shared.ErrInvalidInput) {
		t.Errorf("changing id should fail, got %v", err)
	}
	if _, err := resource.Apply(current, resource.Fields{"created_at": "2020-01-01T00:00:00Z"}); !errors.Is(err, shared.ErrInvalidInput) {
		t.Errorf("changing created_at should fail, got %v", err)
	}
	if _, err := resource.Apply(current, resource.Fields{"id": "city-1", "created_at": created.Format(time.RFC3339Nano), "name": "Essen2"}); err != nil {
		t.Errorf("unchanged id/created_at should be accepted, got %v", err)
	}
}

func TestPaging(t *testing.T) {
	if err := resource.CheckPage(0, 10); err == nil {
		t.Error("page 0 should be rejected")
	}
	if err := resource.CheckPage(1, resource.MaxPageSize+1); err == nil {
		t.Error("oversized page should be rejected")
	}
	if resource.Offset(2, 10) != 10 {
		t.Error("offset")
	}
	if resource.TotalPages(15, 10) != 2 || resource.TotalPages(0, 10) != 0 {
		t.Error("total pages")
	}
}

func TestFieldsOf(t *testing.T) {
	f, err := resource.FieldsOf(content.Testimonial{Name: "Jane"})
	if err != nil {
		t.Fatal(err)
	}
	if f["name"] != "Jane" {
		t.Errorf("fields = %v", f)
	}
	if _, ok := f.Without("name")["name"]; ok {
		t.Error("Without should drop key")
	}
}
