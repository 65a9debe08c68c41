package catalog

import (
	"context"
	"strings"

	"catalogsync/lib/htmlutil"
	"catalogsync/lib/scrapers/storefront/core"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

func textFirst(doc *goquery.Document, selector string) string {
	sel := doc.Find(selector)
	if sel.Length() == 0 {
		return ""
	}
	return htmlutil.CleanText(sel.First().Text())
}

func attrFirst(doc *goquery.Document, selector, attr string) string {
	sel := doc.Find(selector)
	if sel.Length() == 0 {
		return ""
	}
	return strings.TrimSpace(sel.First().AttrOr(attr, ""))
}

// specTable reads the label/value "More Information" table. Rows with an
// empty label or value are ignored. Label matching downstream is
// case-sensitive against the site's fixed label set.
func specTable(doc *goquery.Document) map[string]string {
	data := map[string]string{}
	doc.Find("#product-attribute-specs-table tbody tr").Each(func(_ int, row *goquery.Selection) {
		label := htmlutil.CleanText(row.Find("th").First().Text())
		value := htmlutil.CleanText(row.Find("td").First().Text())
		if label == "" || value == "" {
			return
		}
		data[label] = value
	})
	return data
}

// packInfo reads the small two-row table under .product-pack-info.
// Label matching is case-insensitive substring matching.
func packInfo(doc *goquery.Document) (salesPerBox, boxesPerCase string) {
	doc.Find(".product-pack-info table tbody tr").Each(func(_ int, row *goquery.Selection) {
		label := strings.ToUpper(htmlutil.CleanText(row.Find("th").First().Text()))
		value := htmlutil.CleanText(row.Find("td").First().Text())
		if value == "" {
			return
		}
		switch {
		case strings.Contains(label, "SALES PER BOX"):
			salesPerBox = value
		case strings.Contains(label, "BOXES PER CASE"):
			boxesPerCase = value
		}
	})
	return salesPerBox, boxesPerCase
}

// ScrapeProduct fetches one product detail page and extracts the fixed
// field set. Every field read is individually fault-tolerant, only a
// failed fetch or unparseable body is an error. Category is left for the
// caller to fill in.
func ScrapeProduct(ctx context.Context, client *core.Client, productUrl string) (ProductRecord, error) {
	ctx, span := tracer.Start(ctx, "ScrapeProduct")
	defer span.End()
	span.SetAttributes(attribute.String("url", productUrl))

	doc, err := client.GetDocument(ctx, productUrl)
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch product page")
		return ProductRecord{}, err
	}

	record := ProductRecord{
		Url:         productUrl,
		Title:       textFirst(doc, "h1.page-title .base, h1[itemprop='name'], h1.product-title"),
		Sku:         textFirst(doc, ".product.attribute.sku .value, [itemprop='sku']"),
		Description: textFirst(doc, ".product.attribute.overview .value"),
		ImageUrl:    attrFirst(doc, ".gallery-placeholder img, .fotorama__stage__frame img", "src"),
	}
	if record.ImageUrl == "" {
		record.ImageUrl = attrFirst(doc, "meta[property='og:image']", "content")
	}

	specs := specTable(doc)
	record.Brand = specs["Brand"]
	record.Upc = specs["UPC"]
	record.UpcInner = specs["UPC (inner)"]
	record.GtinCase = specs["GTIN (case)"]
	if record.GtinCase == "" {
		record.GtinCase = specs["GTIN"]
	}
	record.Country = specs["Country of Manufacture"]
	record.PalletPattern = specs["Pallet Pattern"]

	// only rendered for an authenticated session, "" otherwise
	record.PriceMeasure = textFirst(doc, ".nassau.api-prices .nassau.price-measure")
	record.CaseDescription = textFirst(doc, "label[for='qty-case']")
	record.InnersDescription = textFirst(doc, "label[for='qty-inner']")
	record.StockStatusText = textFirst(doc, ".stock-status.stock-status--ready, .stock-status.stock-status--limited, .stock-status")

	record.SalesPerBox, record.BoxesPerCase = packInfo(doc)

	return record, nil
}
