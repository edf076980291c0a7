package nasa

// assetsResponse is the raw body of the Earth assets endpoint.
// URL is nil when the provider has no image for the query.
type assetsResponse struct {
	Date *string `json:"date"`
	ID   *string `json:"id"`
	URL  *string `json:"url"`
}

func (r assetsResponse) imageURL() string {
	if r.URL == nil {
		return ""
	}
	return *r.URL
}
