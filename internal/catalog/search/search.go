// Package search is the catalog query engine: text filter, tag filter, sort
// and paginate, in that order, over an in-memory product list.
package search

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/tair/ministore/internal/catalog/domain"
)

// PageSize is the fixed number of products per page.
const PageSize = 10

// AllTags disables the tag filter.
const AllTags = "all"

// SortKey selects the ordering applied after filtering.
type SortKey string

const (
	SortDefault   SortKey = "default"
	SortPriceAsc  SortKey = "price-asc"
	SortPriceDesc SortKey = "price-desc"
	SortNameAsc   SortKey = "name-asc"
)

// ParseSortKey maps user input to a SortKey; anything unknown is SortDefault.
func ParseSortKey(s string) SortKey {
	switch k := SortKey(strings.TrimSpace(s)); k {
	case SortPriceAsc, SortPriceDesc, SortNameAsc:
		return k
	default:
		return SortDefault
	}
}

// Params are the transient query inputs of the product list view.
type Params struct {
	SearchText string
	ActiveTag  string
	Sort       SortKey
	Page       int
}

// DefaultParams is the unfiltered first page in catalog order.
func DefaultParams() Params {
	return Params{ActiveTag: AllTags, Sort: SortDefault, Page: 1}
}

// WithSearch changes the search text and goes back to page 1.
func (p Params) WithSearch(text string) Params {
	p.SearchText = text
	p.Page = 1
	return p
}

// WithTag changes the active tag and goes back to page 1.
func (p Params) WithTag(tag string) Params {
	if tag == "" {
		tag = AllTags
	}
	p.ActiveTag = tag
	p.Page = 1
	return p
}

// WithSort changes the ordering and goes back to page 1.
func (p Params) WithSort(k SortKey) Params {
	p.Sort = k
	p.Page = 1
	return p
}

// WithPage moves to another page. Clamping happens in Run.
func (p Params) WithPage(page int) Params {
	p.Page = page
	return p
}

// Result is one page of matches.
type Result struct {
	Items        []domain.Product `json:"items"`
	TotalMatched int              `json:"totalMatched"`
	TotalPages   int              `json:"totalPages"`
	Page         int              `json:"page"`
}

// Engine runs queries. The zero value is not usable; see NewEngine.
type Engine struct {
	locale language.Tag
}

// NewEngine creates an engine whose name-asc ordering follows locale.
func NewEngine(locale language.Tag) *Engine {
	return &Engine{locale: locale}
}

var defaultEngine = NewEngine(language.Indonesian)

// Run queries products with the default (Indonesian) collation.
func Run(products []domain.Product, params Params) Result {
	return defaultEngine.Run(products, params)
}

// Run filters, sorts and paginates products. The input slice is not modified.
func (e *Engine) Run(products []domain.Product, params Params) Result {
	list := filterText(products, params.SearchText)
	list = filterTag(list, params.ActiveTag)
	e.sort(list, params.Sort)
	return paginate(list, params.Page)
}

func filterText(products []domain.Product, text string) []domain.Product {
	q := strings.ToLower(strings.TrimSpace(text))

	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if q == "" || strings.Contains(haystack(p), q) {
			out = append(out, p)
		}
	}
	return out
}

func haystack(p domain.Product) string {
	parts := make([]string, 0, 2+len(p.Tags))
	parts = append(parts, p.Name, p.Description)
	parts = append(parts, p.Tags...)
	return strings.ToLower(strings.Join(parts, " "))
}

func filterTag(products []domain.Product, tag string) []domain.Product {
	if tag == "" || tag == AllTags {
		return products
	}
	out := products[:0]
	for _, p := range products {
		if p.HasTag(tag) {
			out = append(out, p)
		}
	}
	return out
}

func (e *Engine) sort(products []domain.Product, key SortKey) {
	switch key {
	case SortPriceAsc:
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			return cmp.Compare(a.Price, b.Price)
		})
	case SortPriceDesc:
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			return cmp.Compare(b.Price, a.Price)
		})
	case SortNameAsc:
		// Collator keeps scratch buffers, so one per call.
		c := collate.New(e.locale)
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			return c.CompareString(a.Name, b.Name)
		})
	}
}

// TotalPages returns max(1, ceil(matched / PageSize)).
func TotalPages(matched int) int {
	return max(1, (matched+PageSize-1)/PageSize)
}

func paginate(products []domain.Product, page int) Result {
	total := len(products)
	pages := TotalPages(total)
	page = min(max(page, 1), pages)

	start := (page - 1) * PageSize
	end := min(start+PageSize, total)

	items := make([]domain.Product, 0, end-start)
	for _, p := range products[start:end] {
		items = append(items, p.Clone())
	}

	return Result{
		Items:        items,
		TotalMatched: total,
		TotalPages:   pages,
		Page:         page,
	}
}

// Tags lists every distinct tag in products, sorted ascending.
func Tags(products []domain.Product) []string {
	seen := make(map[string]struct{})
	var tags []string
	for _, p := range products {
		for _, t := range p.Tags {
			if _, ok := seen[t]; !ok {
				seen[t] = struct{}{}
				tags = append(tags, t)
			}
		}
	}
	slices.Sort(tags)
	return tags
}
