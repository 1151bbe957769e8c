package content

import (
	"expoadmin/domain/shared"

	"gorm.io/datatypes"
)

// HomePage 首页内容（单行表）
type HomePage struct {
	shared.Base
	HeroTitle       string                      `json:"hero_title" gorm:"size:255" validate:"required,max=255"`
	HeroSubtitle    string                      `json:"hero_subtitle" gorm:"size:500" validate:"max=500"`
	HeroImage       string                      `json:"hero_image" gorm:"size:1024"`
	HeroVideo       string                      `json:"hero_video" gorm:"size:1024"`
	AboutTitle      string                      `json:"about_title" gorm:"size:255" validate:"max=255"`
	AboutContent    string                      `json:"about_content" gorm:"type:text"`
	ServicesIntro   string                      `json:"services_intro" gorm:"type:text"`
	Stats           datatypes.JSONSlice[Stat]   `json:"stats"`
	Gallery         datatypes.JSONSlice[string] `json:"gallery"`
	MetaTitle       string                      `json:"meta_title" gorm:"size:255" validate:"max=255"`
	MetaDescription string                      `json:"meta_description" gorm:"size:500" validate:"max=500"`
}

// Stat 首页数字看板，例如 "850+ stands built"
type Stat struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

func (HomePage) TableName() string  { return "home_page" }
func (HomePage) EntityName() string { return "home_page" }

func (p *HomePage) Validate() error {
	return shared.ValidateStruct(p.EntityName(), p)
}

func (p *HomePage) SanitizeRichText(sanitize func(string) string) {
	sanitizeAll(sanitize, &p.AboutContent, &p.ServicesIntro)
}

func (p *HomePage) RevalidatePaths() []string { return []string{"/"} }

// MainCountriesPage "主要国家" 落地页
type MainCountriesPage struct {
	shared.Base
	Title             string                      `json:"title" gorm:"size:255" validate:"required,max=255"`
	Subtitle          string                      `json:"subtitle" gorm:"size:500" validate:"max=500"`
	Content           string                      `json:"content" gorm:"type:text"`
	HeroImage         string                      `json:"hero_image" gorm:"size:1024"`
	FeaturedCountries datatypes.JSONSlice[string] `json:"featured_countries"`
	MetaTitle         string                      `json:"meta_title" gorm:"size:255" validate:"max=255"`
	MetaDescription   string                      `json:"meta_description" gorm:"size:500" validate:"max=500"`
}

func (MainCountriesPage) TableName() string  { return "main_countries_page" }
func (MainCountriesPage) EntityName() string { return "main_countries_page" }

func (p *MainCountriesPage) Validate() error {
	return shared.ValidateStruct(p.EntityName(), p)
}

func (p *MainCountriesPage) SanitizeRichText(sanitize func(string) string) {
	sanitizeAll(sanitize, &p.Content)
}

func (p *MainCountriesPage) RevalidatePaths() []string {
	return []string{"/main-countries", "/"}
}
