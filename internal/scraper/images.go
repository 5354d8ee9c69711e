package scraper

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// chromeKeywords mark decorative site assets that are reliably not photos
// of the animal.
var chromeKeywords = []string{
	"logo", "icon", "arrow", "button", "banner", "nav", "sprite", "spacer",
}

// lazyAttrs are the attributes checked on each image element, in order.
var lazyAttrs = []string{"src", "data-src", "data-lazy-src", "data-original"}

// SelectImages harvests candidate photo URLs from markup: every image
// element's source and lazy-load attributes, minus site chrome, resolved
// against baseURL and deduplicated in first-seen order. When nothing
// survives filtering, a placeholder derived from the identifier is
// returned so repeated extraction stays stable.
func SelectImages(markup []byte, baseURL, identifier string, max int) []string {
	base, baseErr := url.Parse(baseURL)

	seen := make(map[string]bool)
	var images []string

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err == nil {
		doc.Find("img, source").Each(func(_ int, sel *goquery.Selection) {
			if len(images) >= max {
				return
			}
			for _, attr := range lazyAttrs {
				raw, ok := sel.Attr(attr)
				if !ok || raw == "" {
					continue
				}
				if isChromeAsset(raw) {
					continue
				}

				resolved := raw
				if baseErr == nil {
					if ref, err := url.Parse(raw); err == nil {
						resolved = base.ResolveReference(ref).String()
					}
				}

				if !seen[resolved] {
					seen[resolved] = true
					images = append(images, resolved)
				}
				break
			}
		})
	}

	if len(images) == 0 {
		return []string{PlaceholderImage(identifier)}
	}
	if len(images) > max {
		images = images[:max]
	}
	return images
}

// PlaceholderImage returns a deterministic stand-in photo URL for an
// identifier.
func PlaceholderImage(identifier string) string {
	return fmt.Sprintf("https://placepets.example.org/seed/%s/600/400", identifier)
}

func isChromeAsset(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, kw := range chromeKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
