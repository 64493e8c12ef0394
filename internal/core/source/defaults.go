package source

// Defaults returns the built-in job board descriptors. They are used when no
// sources file is configured and serve as a reference for authoring new ones.
func Defaults() []Descriptor {
	return []Descriptor{
		{
			Name:              "linkedin",
			BaseURL:           "https://www.linkedin.com",
			SearchURLTemplate: "https://www.linkedin.com/jobs/search/?keywords={query}&location={location}&start={page}",
			ListingSelector:   ".job-card-container",
			FieldSelectors: map[string]string{
				"title":       ".job-card-list__title",
				"company":     ".job-card-container__company-name",
				"location":    ".job-card-container__metadata-item",
				"posted_date": ".job-card-container__posted-date",
				"detail_link": ".job-card-list__title a@href",
			},
		},
		{
			Name:              "indeed",
			BaseURL:           "https://www.indeed.com",
			SearchURLTemplate: "https://www.indeed.com/jobs?q={query}&l={location}&start={page}",
			ListingSelector:   ".jobsearch-ResultsList > li",
			FieldSelectors: map[string]string{
				"title":       ".jobTitle span",
				"company":     ".companyName",
				"location":    ".companyLocation",
				"salary":      ".salary-snippet-container",
				"detail_link": ".jobTitle a@href",
			},
		},
	}
}
