package content

import (
	"expoadmin/domain/shared"

	"gorm.io/datatypes"
)

type BlogPost struct {
	shared.Base
	Title       string                      `json:"title" gorm:"size:255;not null" validate:"required,max=255"`
	Slug        string                      `json:"slug" gorm:"size:255;uniqueIndex" validate:"required,max=255"`
	Excerpt     string                      `json:"excerpt" gorm:"size:1000" validate:"max=1000"`
	Content     string                      `json:"content" gorm:"type:text"`
	CoverImage  string                      `json:"cover_image" gorm:"size:1024"`
	Author      string                      `json:"author" gorm:"size:255" validate:"max=255"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`
	Published   bool                        `json:"published"`
	PublishedAt string                      `json:"published_at" gorm:"size:10"`
}

func (BlogPost) TableName() string  { return "blog_posts" }
func (BlogPost) EntityName() string { return "blog_post" }

func (p *BlogPost) Validate() error {
	if err := shared.ValidateStruct(p.EntityName(), p); err != nil {
		return err
	}
	if err := checkSlug(p.EntityName(), p.Slug); err != nil {
		return err
	}
	return checkDate(p.EntityName(), "published_at", p.PublishedAt)
}

func (p *BlogPost) SanitizeRichText(sanitize func(string) string) {
	sanitizeAll(sanitize, &p.Content)
}

func (p *BlogPost) RevalidatePaths() []string {
	return []string{"/blog", "/blog/" + p.Slug}
}
