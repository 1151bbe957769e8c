package content

import (
	"expoadmin/domain/shared"
	"expoadmin/pkg/datepicker"
)

// TradeShow 展会，日期为 yyyy-MM-dd
type TradeShow struct {
	shared.Base
	Name        string `json:"name" gorm:"size:255;not null" validate:"required,max=255"`
	Slug        string `json:"slug" gorm:"size:255;index" validate:"max=255"`
	Venue       string `json:"venue" gorm:"size:255" validate:"max=255"`
	City        string `json:"city" gorm:"size:255" validate:"max=255"`
	Country     string `json:"country" gorm:"size:255" validate:"max=255"`
	StartDate   string `json:"start_date" gorm:"size:10;index" validate:"required"`
	EndDate     string `json:"end_date" gorm:"size:10" validate:"required"`
	Website     string `json:"website" gorm:"size:1024" validate:"omitempty,url"`
	Logo        string `json:"logo" gorm:"size:1024"`
	Description string `json:"description" gorm:"type:text"`
	Industry    string `json:"industry" gorm:"size:255" validate:"max=255"`
}

func (TradeShow) TableName() string  { return "trade_shows" }
func (TradeShow) EntityName() string { return "trade_show" }

func (s *TradeShow) Validate() error {
	name := s.EntityName()
	if err := shared.ValidateStruct(name, s); err != nil {
		return err
	}
	if err := checkSlug(name, s.Slug); err != nil {
		return err
	}
	if err := checkDate(name, "start_date", s.StartDate); err != nil {
		return err
	}
	if err := checkDate(name, "end_date", s.EndDate); err != nil {
		return err
	}

	start, _ := datepicker.ParseISODate(s.StartDate)
	end, _ := datepicker.ParseISODate(s.EndDate)
	if end.Before(start) {
		return shared.NewValidationError(name, "end_date", "end_date must not be before start_date")
	}
	return nil
}

func (s *TradeShow) SanitizeRichText(sanitize func(string) string) {
	sanitizeAll(sanitize, &s.Description)
}

func (s *TradeShow) RevalidatePaths() []string { return []string{"/trade-shows"} }
