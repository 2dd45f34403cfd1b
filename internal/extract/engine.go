package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/samber/lo"
)

// Strategy resolves one candidate value from a DOM context. Strategies are
// pure: they either yield a non-empty value or report a miss, never an error.
type Strategy func(*goquery.Selection) (string, bool)

// FromSelector yields the trimmed text (or attribute when attr is non-empty)
// of the first element the selector matches inside the context.
func FromSelector(selector, attr string) Strategy {
	return func(ctx *goquery.Selection) (string, bool) {
		found := ctx.Find(selector).First()
		if found.Length() == 0 {
			return "", false
		}
		value := valueOf(found, attr)
		return value, value != ""
	}
}

// SelfText yields the trimmed text of the context element itself. Used as a
// last resort when no dedicated child element carries the value.
func SelfText() Strategy {
	return func(ctx *goquery.Selection) (string, bool) {
		value := strings.TrimSpace(ctx.Text())
		return value, value != ""
	}
}

// First folds over strategies in order and short-circuits on the first hit.
func First(ctx *goquery.Selection, strategies []Strategy) (string, bool) {
	for _, strategy := range strategies {
		if value, ok := strategy(ctx); ok {
			return value, true
		}
	}
	return "", false
}

// Field describes one logical record field as an ordered list of selector
// candidates. The order encodes trust: earlier selectors are the markup
// variants seen most recently on the site.
type Field struct {
	Name      string
	Selectors []string
	Attr      string
}

func (f Field) strategies() []Strategy {
	strategies := make([]Strategy, 0, len(f.Selectors))
	for _, selector := range f.Selectors {
		strategies = append(strategies, FromSelector(selector, f.Attr))
	}
	return strategies
}

// Resolve walks the field's selector waterfall and returns the first
// non-empty match. An exhausted waterfall yields ("", false), meaning the
// field is absent, so callers apply defaults instead of handling errors.
func Resolve(ctx *goquery.Selection, field Field) (string, bool) {
	return First(ctx, field.strategies())
}

// ResolveOrSelf behaves like Resolve but falls back to the context element's
// own text when every selector misses.
func ResolveOrSelf(ctx *goquery.Selection, field Field) (string, bool) {
	return First(ctx, append(field.strategies(), SelfText()))
}

// ResolveAll returns every non-empty value under the first selector that
// matches at least one element. Used for list-valued fields such as tags and
// attachment links.
func ResolveAll(ctx *goquery.Selection, field Field) []string {
	for _, selector := range field.Selectors {
		matches := ctx.Find(selector)
		if matches.Length() == 0 {
			continue
		}

		var values []string
		matches.Each(func(_ int, element *goquery.Selection) {
			if value := valueOf(element, field.Attr); value != "" {
				values = append(values, value)
			}
		})
		if len(values) > 0 {
			return values
		}
	}
	return nil
}

// CollectAll gathers the non-empty values of every selector in the field and
// deduplicates them. Used when the candidates are complementary rather than
// alternatives, such as attachment links spread across markup variants.
func CollectAll(ctx *goquery.Selection, field Field) []string {
	var values []string
	for _, selector := range field.Selectors {
		ctx.Find(selector).Each(func(_ int, element *goquery.Selection) {
			if value := valueOf(element, field.Attr); value != "" {
				values = append(values, value)
			}
		})
	}
	return lo.Uniq(values)
}

// FirstMatch returns the selection of the first selector that matches at
// least one node, used to locate record containers (cards, messages).
func FirstMatch(ctx *goquery.Selection, selectors ...string) (*goquery.Selection, bool) {
	for _, selector := range selectors {
		matches := ctx.Find(selector)
		if matches.Length() > 0 {
			return matches, true
		}
	}
	return nil, false
}

// Document parses a page snapshot for waterfall resolution.
func Document(html string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

func valueOf(sel *goquery.Selection, attr string) string {
	if attr != "" {
		return strings.TrimSpace(sel.AttrOr(attr, ""))
	}
	return strings.TrimSpace(sel.Text())
}
