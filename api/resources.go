package api

import (
	apicontent "expoadmin/api/content"
	appcontent "expoadmin/application/content"
	"expoadmin/domain/content"
)

// Resource paths under /api/v1
const (
	PathHomePage      = "pages/home"
	PathMainCountries = "pages/main-countries"
	PathBlogPosts     = "blog-posts"
	PathTradeShows    = "trade-shows"
	PathCities        = "cities"
	PathCountries     = "countries"
	PathTestimonials  = "testimonials"
	PathServices      = "services"
	PathPortfolio     = "portfolio"
	PathSubmissions   = "form-submissions"
)

// ContentControllers 每个资源一个通用 CRUD 控制器
func ContentControllers(cat *appcontent.Catalog) []Registrar {
	return []Registrar{
		apicontent.NewController[content.HomePage](PathHomePage, cat.HomePage),
		apicontent.NewController[content.MainCountriesPage](PathMainCountries, cat.MainCountries),
		apicontent.NewController[content.BlogPost](PathBlogPosts, cat.BlogPosts),
		apicontent.NewController[content.TradeShow](PathTradeShows, cat.TradeShows),
		apicontent.NewController[content.City](PathCities, cat.Cities),
		apicontent.NewController[content.Country](PathCountries, cat.Countries),
		apicontent.NewController[content.Testimonial](PathTestimonials, cat.Testimonials),
		apicontent.NewController[content.ServiceItem](PathServices, cat.Services),
		apicontent.NewController[content.PortfolioItem](PathPortfolio, cat.Portfolio),
		apicontent.NewController[content.FormSubmission](PathSubmissions, cat.Submissions),
	}
}
