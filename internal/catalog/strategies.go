package catalog

import (
	"net/url"
	"strconv"
	"strings"
)

// DefaultPageSize is the number of listings the site shows per results page,
// offset based strategies skip this many listings per page.
const DefaultPageSize = 30

// URLStrategy builds the url of results page n (n >= 2) from the url of the
// first page.
type URLStrategy struct {
	Name  string
	Build func(search url.URL, page int) string
}

// PageParam sets `param=page`.
func PageParam(param string) URLStrategy {
	return URLStrategy{
		Name: param,
		Build: func(search url.URL, page int) string {
			return withParam(search, param, page)
		},
	}
}

// OffsetParam sets `param=(page-1)*pageSize`.
func OffsetParam(param string, pageSize int) URLStrategy {
	return URLStrategy{
		Name: param,
		Build: func(search url.URL, page int) string {
			return withParam(search, param, (page-1)*pageSize)
		},
	}
}

// DefaultStrategies are the pagination schemes tried, in order, for every page
// after the first.
func DefaultStrategies() []URLStrategy {
	return []URLStrategy{
		PageParam("page"),
		PageParam("p"),
		OffsetParam("start", DefaultPageSize),
		OffsetParam("offset", DefaultPageSize),
	}
}

func encodeQuery(values url.Values) string {
	// spaces in search terms are sent as %20, not +
	return strings.ReplaceAll(values.Encode(), "+", "%20")
}

func withParam(search url.URL, param string, value int) string {
	query := search.Query()
	query.Set(param, strconv.Itoa(value))
	search.RawQuery = encodeQuery(query)
	return search.String()
}

// SearchURL returns the first results page for `term` under `searchPath`
// (ex. https://www.lojamaeto.com/search/).
func SearchURL(searchPath url.URL, term string) string {
	searchPath.RawQuery = encodeQuery(url.Values{"q": {term}})
	return searchPath.String()
}
