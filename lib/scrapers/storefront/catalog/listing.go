package catalog

import (
	"context"
	"log/slog"

	"catalogsync/lib/htmlutil"
	"catalogsync/lib/scrapers/storefront/core"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// DefaultMaxListingPages bounds pagination when the caller doesn't. A
// next-page control that never disappears (site bug, redirect loop) stops
// here instead of spinning forever.
const DefaultMaxListingPages = 200

// productsOnPage extracts identifier -> absolute product url for every
// complete entry on one listing page. Entries missing either the sku or
// the link are dropped.
func productsOnPage(doc *goquery.Document, site string) map[string]string {
	products := map[string]string{}

	doc.Find("ol.products li.product").Each(func(_ int, item *goquery.Selection) {
		sku := htmlutil.CleanText(item.Find(".product.sku .sku > span").First().Text())
		href := item.Find("a.product-item-link").First().AttrOr("href", "")
		if sku == "" || href == "" {
			return
		}
		link, ok := absoluteHref(site, href)
		if !ok {
			return
		}
		products[sku] = link
	})
	return products
}

// nextPageHref returns the href of the next-page control, if any. Absence
// is the normal termination of pagination.
func nextPageHref(doc *goquery.Document) (string, bool) {
	href := doc.Find("a.action.next").First().AttrOr("href", "")
	if href == "" {
		return "", false
	}
	return href, true
}

// PaginateListing walks every page of a category listing starting from
// its first page, merging each page's products into one mapping
// (last-wins on identifier collisions across pages). maxPages <= 0 uses
// DefaultMaxListingPages.
func PaginateListing(ctx context.Context, client *core.Client, firstPage, site string, maxPages int) (map[string]string, error) {
	ctx, span := tracer.Start(ctx, "PaginateListing")
	defer span.End()
	span.SetAttributes(attribute.String("url", firstPage))

	if maxPages <= 0 {
		maxPages = DefaultMaxListingPages
	}

	doc, err := client.GetDocument(ctx, firstPage)
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch first listing page")
		return nil, err
	}

	all := map[string]string{}
	pageIdx := 0
	for {
		pageIdx++
		products := productsOnPage(doc, site)
		slog.InfoContext(ctx, "listing page scraped", "page", pageIdx, "products", len(products))
		for sku, link := range products {
			all[sku] = link
		}

		next, ok := nextPageHref(doc)
		if !ok {
			break
		}
		if pageIdx >= maxPages {
			slog.WarnContext(
				ctx, "listing pagination exceeded page bound",
				"pages", pageIdx, "max", maxPages, "next", next,
			)
			span.SetStatus(codes.Error, "pagination exceeded page bound")
			break
		}

		doc, err = client.GetDocument(ctx, next)
		if err != nil {
			span.SetStatus(codes.Error, "failed to fetch next listing page")
			return all, err
		}
	}

	return all, nil
}
