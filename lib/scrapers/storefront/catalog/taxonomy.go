package catalog

import (
	"context"
	"net/url"
	"strings"

	"catalogsync/lib/htmlutil"
	"catalogsync/lib/scrapers/storefront/core"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/storefront/catalog")

// resolveHref normalizes a scraped href against the storefront origin.
// Absolute urls are kept only when they contain the origin, everything
// else on the web is someone else's catalog.
func resolveHref(site, href string) (string, bool) {
	if strings.HasPrefix(href, "http") {
		if !strings.Contains(href, site) {
			return "", false
		}
		return href, true
	}
	base, err := url.Parse(site)
	if err != nil {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	return base.ResolveReference(ref).String(), true
}

// absoluteHref makes a scraped href absolute. Unlike navigation anchors,
// product links may legitimately point off-origin (CDN detail hosts), so
// absolute urls are kept as-is and only relative ones resolve against the
// storefront.
func absoluteHref(site, href string) (string, bool) {
	if strings.HasPrefix(href, "http") {
		return href, true
	}
	base, err := url.Parse(site)
	if err != nil {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	return base.ResolveReference(ref).String(), true
}

// Categories reads the top-level navigation of a landing page into a
// category name -> absolute listing url mapping. Duplicate names are
// last-wins. An empty mapping means no navigation region was found.
func Categories(doc *goquery.Document, site string) map[string]string {
	categories := map[string]string{}

	nav := doc.Find("nav.navigation")
	if nav.Length() == 0 {
		return categories
	}

	for _, a := range htmlutil.GetAnchors(nav.Find("a.level-top")) {
		if a.Name == "" || a.Href == "" {
			continue
		}
		link, ok := resolveHref(site, a.Href)
		if !ok {
			continue
		}
		categories[a.Name] = link
	}
	return categories
}

// DiscoverCategories fetches the landing page and extracts the taxonomy.
func DiscoverCategories(ctx context.Context, client *core.Client, site string) (map[string]string, error) {
	ctx, span := tracer.Start(ctx, "DiscoverCategories")
	defer span.End()

	doc, err := client.GetDocument(ctx, site)
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch landing page")
		return nil, err
	}
	return Categories(doc, site), nil
}
