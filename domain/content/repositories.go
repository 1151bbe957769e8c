package content

import "expoadmin/domain/resource"

// Repositories 每个实体一个 Client，由 memory / gormstore 分别构造
type Repositories struct {
	HomePage      resource.Client[HomePage]
	MainCountries resource.Client[MainCountriesPage]
	BlogPosts     resource.Client[BlogPost]
	TradeShows    resource.Client[TradeShow]
	Cities        resource.Client[City]
	Countries     resource.Client[Country]
	Testimonials  resource.Client[Testimonial]
	Services      resource.Client[ServiceItem]
	Portfolio     resource.Client[PortfolioItem]
	Submissions   resource.Client[FormSubmission]
}

// Models gorm AutoMigrate 使用的表模型
func Models() []any {
	return []any{
		&HomePage{},
		&MainCountriesPage{},
		&BlogPost{},
		&TradeShow{},
		&City{},
		&Country{},
		&Testimonial{},
		&ServiceItem{},
		&PortfolioItem{},
		&FormSubmission{},
	}
}
