package gormstore

import (
	"expoadmin/domain/content"

	"gorm.io/gorm"
)

// NewRepositories 全部内容实体的 gorm 仓储，共享同一连接池
func NewRepositories(db *gorm.DB) content.Repositories {
	return content.Repositories{
		HomePage:      NewRepository[content.HomePage](db),
		MainCountries: NewRepository[content.MainCountriesPage](db),
		BlogPosts:     NewRepository[content.BlogPost](db),
		TradeShows:    NewRepository[content.TradeShow](db),
		Cities:        NewRepository[content.City](db),
		Countries:     NewRepository[content.Country](db),
		Testimonials:  NewRepository[content.Testimonial](db),
		Services:      NewRepository[content.ServiceItem](db),
		Portfolio:     NewRepository[content.PortfolioItem](db),
		Submissions:   NewRepository[content.FormSubmission](db),
	}
}
