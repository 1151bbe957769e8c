package content

import (
	"expoadmin/domain/shared"

	"gorm.io/datatypes"
)

type Testimonial struct {
	shared.Base
	Name    string `json:"name" gorm:"size:255;not null" validate:"required,max=255"`
	Company string `json:"company" gorm:"size:255" validate:"max=255"`
	Role    string `json:"role" gorm:"size:255" validate:"max=255"`
	Quote   string `json:"quote" gorm:"type:text" validate:"required,max=2000"`
	Avatar  string `json:"avatar" gorm:"size:1024"`
	Rating  int    `json:"rating" validate:"gte=0,lte=5"`
}

func (Testimonial) TableName() string  { return "testimonials" }
func (Testimonial) EntityName() string { return "testimonial" }

func (t *Testimonial) Validate() error {
	return shared.ValidateStruct(t.EntityName(), t)
}

// ServiceItem 服务项目
type ServiceItem struct {
	shared.Base
	Title     string `json:"title" gorm:"size:255;not null" validate:"required,max=255"`
	Slug      string `json:"slug" gorm:"size:255;index" validate:"max=255"`
	Summary   string `json:"summary" gorm:"size:1000" validate:"max=1000"`
	Content   string `json:"content" gorm:"type:text"`
	Icon      string `json:"icon" gorm:"size:255"`
	Image     string `json:"image" gorm:"size:1024"`
	SortOrder int    `json:"sort_order"`
}

func (ServiceItem) TableName() string  { return "services" }
func (ServiceItem) EntityName() string { return "service" }

func (s *ServiceItem) Validate() error {
	if err := shared.ValidateStruct(s.EntityName(), s); err != nil {
		return err
	}
	return checkSlug(s.EntityName(), s.Slug)
}

func (s *ServiceItem) SanitizeRichText(sanitize func(string) string) {
	sanitizeAll(sanitize, &s.Content)
}

type PortfolioItem struct {
	shared.Base
	Title       string                      `json:"title" gorm:"size:255;not null" validate:"required,max=255"`
	Client      string                      `json:"client" gorm:"size:255" validate:"max=255"`
	TradeShowID string                      `json:"trade_show_id" gorm:"size:64;index"`
	Location    string                      `json:"location" gorm:"size:255" validate:"max=255"`
	Year        int                         `json:"year" validate:"omitempty,gte=1990,lte=2100"`
	StandSize   string                      `json:"stand_size" gorm:"size:64"`
	Description string                      `json:"description" gorm:"type:text"`
	CoverImage  string                      `json:"cover_image" gorm:"size:1024"`
	Images      datatypes.JSONSlice[string] `json:"images"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`
}

func (PortfolioItem) TableName() string  { return "portfolio_items" }
func (PortfolioItem) EntityName() string { return "portfolio_item" }

func (p *PortfolioItem) Validate() error {
	return shared.ValidateStruct(p.EntityName(), p)
}

func (p *PortfolioItem) SanitizeRichText(sanitize func(string) string) {
	sanitizeAll(sanitize, &p.Description)
}

func (p *PortfolioItem) RevalidatePaths() []string { return []string{"/portfolio"} }
