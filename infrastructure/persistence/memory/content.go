package memory

import "expoadmin/domain/content"

// NewRepositories 全部内容实体的内存仓储
func NewRepositories(opts ...Option) content.Repositories {
	return content.Repositories{
		HomePage:      NewRepository[content.HomePage](opts...),
		MainCountries: NewRepository[content.MainCountriesPage](opts...),
		BlogPosts:     NewRepository[content.BlogPost](opts...),
		TradeShows:    NewRepository[content.TradeShow](opts...),
		Cities:        NewRepository[content.City](opts...),
		Countries:     NewRepository[content.Country](opts...),
		Testimonials:  NewRepository[content.Testimonial](opts...),
		Services:      NewRepository[content.ServiceItem](opts...),
		Portfolio:     NewRepository[content.PortfolioItem](opts...),
		Submissions:   NewRepository[content.FormSubmission](opts...),
	}
}
