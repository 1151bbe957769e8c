package content

import (
	"expoadmin/application/media"
	"expoadmin/domain/content"
)

// Catalog 后台管理的全部资源服务
type Catalog struct {
	HomePage      *Service[content.HomePage, *content.HomePage]
	MainCountries *Service[content.MainCountriesPage, *content.MainCountriesPage]
	BlogPosts     *Service[content.BlogPost, *content.BlogPost]
	TradeShows    *Service[content.TradeShow, *content.TradeShow]
	Cities        *Service[content.City, *content.City]
	Countries     *Service[content.Country, *content.Country]
	Testimonials  *Service[content.Testimonial, *content.Testimonial]
	Services      *Service[content.ServiceItem, *content.ServiceItem]
	Portfolio     *Service[content.PortfolioItem, *content.PortfolioItem]
	Submissions   *SubmissionService
}

func NewCatalog(repos content.Repositories, deps Dependencies, mediaService *media.ApplicationService) *Catalog {
	return &Catalog{
		HomePage:      NewService[content.HomePage](repos.HomePage, deps),
		MainCountries: NewService[content.MainCountriesPage](repos.MainCountries, deps),
		BlogPosts:     NewService[content.BlogPost](repos.BlogPosts, deps),
		TradeShows:    NewService[content.TradeShow](repos.TradeShows, deps),
		Cities:        NewService[content.City](repos.Cities, deps),
		Countries:     NewService[content.Country](repos.Countries, deps),
		Testimonials:  NewService[content.Testimonial](repos.Testimonials, deps),
		Services:      NewService[content.ServiceItem](repos.Services, deps),
		Portfolio:     NewService[content.PortfolioItem](repos.Portfolio, deps),
		Submissions:   NewSubmissionService(repos.Submissions, deps, mediaService),
	}
}
