package content

import (
	"expoadmin/domain/shared"

	"gorm.io/datatypes"
)

type Country struct {
	shared.Base
	Name        string                      `json:"name" gorm:"size:255;not null" validate:"required,max=255"`
	Slug        string                      `json:"slug" gorm:"size:255;uniqueIndex" validate:"required,max=255"`
	Code        string                      `json:"code" gorm:"size:2" validate:"omitempty,len=2,alpha"`
	Description string                      `json:"description" gorm:"type:text"`
	Flag        string                      `json:"flag" gorm:"size:1024"`
	HeroImage   string                      `json:"hero_image" gorm:"size:1024"`
	Images      datatypes.JSONSlice[string] `json:"images"`
	Featured    bool                        `json:"featured"`
}

func (Country) TableName() string  { return "countries" }
func (Country) EntityName() string { return "country" }

func (c *Country) Validate() error {
	if err := shared.ValidateStruct(c.EntityName(), c); err != nil {
		return err
	}
	return checkSlug(c.EntityName(), c.Slug)
}

func (c *Country) SanitizeRichText(sanitize func(string) string) {
	sanitizeAll(sanitize, &c.Description)
}

func (c *Country) RevalidatePaths() []string {
	return []string{"/main-countries", "/countries/" + c.Slug}
}

type City struct {
	shared.Base
	Name        string                      `json:"name" gorm:"size:255;not null" validate:"required,max=255"`
	Slug        string                      `json:"slug" gorm:"size:255;uniqueIndex" validate:"required,max=255"`
	CountryID   string                      `json:"country_id" gorm:"size:64;index"`
	Description string                      `json:"description" gorm:"type:text"`
	Image       string                      `json:"image" gorm:"size:1024"`
	Images      datatypes.JSONSlice[string] `json:"images"`
	Featured    bool                        `json:"featured"`
}

func (City) TableName() string  { return "cities" }
func (City) EntityName() string { return "city" }

func (c *City) Validate() error {
	if err := shared.ValidateStruct(c.EntityName(), c); err != nil {
		return err
	}
	return checkSlug(c.EntityName(), c.Slug)
}

func (c *City) SanitizeRichText(sanitize func(string) string) {
	sanitizeAll(sanitize, &c.Description)
}
