package model

// ImageQueryResult is either a resolved image URL or "not found".
type ImageQueryResult struct {
	URL string
}

// NotFound is the result for a query the provider had no image for.
var NotFound = ImageQueryResult{}

// Found returns an ImageQueryResult holding url.
func Found(url string) ImageQueryResult {
	return ImageQueryResult{URL: url}
}

// Found reports whether the result carries an image URL.
func (r ImageQueryResult) Found() bool {
	return r.URL != ""
}
