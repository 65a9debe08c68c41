package catalog

// ProductRecord is one scraped product. Sku, Url and Category are always
// populated by the pipeline, everything else is best-effort: a field the
// page doesn't render stays "".
type ProductRecord struct {
	Sku               string
	Title             string
	Description       string
	Brand             string
	Upc               string
	UpcInner          string
	GtinCase          string
	Country           string
	PalletPattern     string
	ImageUrl          string
	PriceMeasure      string
	CaseDescription   string
	InnersDescription string
	SalesPerBox       string
	BoxesPerCase      string
	StockStatusText   string
	Url               string
	Category          string
}

var fieldNames = []string{
	"sku", "title", "description", "brand", "upc", "upc_inner",
	"gtin_case", "country", "pallet_pattern", "image_url",
	"price_measure", "case_description", "inners_description",
	"sales_per_box", "boxes_per_case", "stock_status_text",
	"url", "category",
}

// FieldNames is the canonical column order for the sync table and the
// backup export.
func FieldNames() []string {
	return append([]string(nil), fieldNames...)
}

// Get maps a column name to the record's value for it. Unknown columns
// (manually added to the sync table) render as "".
func (r ProductRecord) Get(field string) string {
	switch field {
	case "sku":
		return r.Sku
	case "title":
		return r.Title
	case "description":
		return r.Description
	case "brand":
		return r.Brand
	case "upc":
		return r.Upc
	case "upc_inner":
		return r.UpcInner
	case "gtin_case":
		return r.GtinCase
	case "country":
		return r.Country
	case "pallet_pattern":
		return r.PalletPattern
	case "image_url":
		return r.ImageUrl
	case "price_measure":
		return r.PriceMeasure
	case "case_description":
		return r.CaseDescription
	case "inners_description":
		return r.InnersDescription
	case "sales_per_box":
		return r.SalesPerBox
	case "boxes_per_case":
		return r.BoxesPerCase
	case "stock_status_text":
		return r.StockStatusText
	case "url":
		return r.Url
	case "category":
		return r.Category
	}
	return ""
}

// Values renders the record in the given column order.
func (r ProductRecord) Values(header []string) []string {
	out := make([]string, len(header))
	for i, field := range header {
		out[i] = r.Get(field)
	}
	return out
}
