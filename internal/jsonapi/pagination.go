package jsonapi

import (
	"errors"
	"math"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPageSize = 30
	MaxPageSize     = 500
)

// maxPageNumber keeps (number-1)*MaxPageSize within int.
const maxPageNumber = math.MaxInt32 / MaxPageSize

// ErrInvalidPage reports a non-numeric or negative page parameter.
var ErrInvalidPage = errors.New("invalid page parameter")

// Page is a requested window of a collection. Size 0 means the whole collection.
type Page struct {
	Number int
	Size   int
}

// Limit returns the SQL limit, or 0 for no limit.
func (p Page) Limit() int {
	return p.Size
}

// Offset returns the SQL offset.
func (p Page) Offset() int {
	if p.Size == 0 {
		return 0
	}
	return (p.Number - 1) * p.Size
}

// ParsePage reads page[number] and page[size] from the query string.
func ParsePage(query url.Values) (Page, error) {
	page := Page{Number: 1, Size: DefaultPageSize}
	if raw := strings.TrimSpace(query.Get("page[number]")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxPageNumber {
			return Page{}, ErrInvalidPage
		}
		page.Number = n
	}
	if raw := strings.TrimSpace(query.Get("page[size]")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return Page{}, ErrInvalidPage
		}
		if n > MaxPageSize {
			n = MaxPageSize
		}
		page.Size = n
	}
	if page.Size == 0 {
		page.Number = 1
	}
	return page, nil
}

// PageMeta is the meta member of a paginated collection.
func PageMeta(total int) map[string]interface{} {
	return map[string]interface{}{"count": total}
}

// PageLinks builds self/first/last/prev/next links for a collection at path.
func PageLinks(path string, query url.Values, page Page, total int) map[string]string {
	links := map[string]string{"self": withPage(path, query, page.Number, page.Size)}
	if page.Size == 0 {
		return links
	}
	last := 1
	if total > 0 {
		last = (total + page.Size - 1) / page.Size
	}
	links["first"] = withPage(path, query, 1, page.Size)
	links["last"] = withPage(path, query, last, page.Size)
	if page.Number > 1 {
		links["prev"] = withPage(path, query, page.Number-1, page.Size)
	}
	if page.Number < last {
		links["next"] = withPage(path, query, page.Number+1, page.Size)
	}
	return links
}

func withPage(path string, query url.Values, number, size int) string {
	q := url.Values{}
	for k, v := range query {
		q[k] = append([]string(nil), v...)
	}
	q.Set("page[number]", strconv.Itoa(number))
	q.Set("page[size]", strconv.Itoa(size))
	return path + "?" + q.Encode()
}
