// Package pipeline sequences the full crawl: authenticate once, discover
// the category taxonomy, paginate each selected category, extract every
// product and upsert it into the sync table, with an unconditional local
// backup export on the way out.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"catalogsync/lib/backup"
	"catalogsync/lib/scrapers/storefront/catalog"
	"catalogsync/lib/scrapers/storefront/core"
	"catalogsync/lib/sheetsync"

	"github.com/antzucaro/matchr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/pipeline")

// ErrNoCategories aborts the run before any crawling, no categories
// means no work.
var ErrNoCategories = fmt.Errorf("no categories discovered")

type Options struct {
	// Site is the storefront origin, also used to normalize scraped hrefs.
	Site     string
	LoginUrl string
	Username string
	Password string
	// MaxListingPages bounds pagination per category, <= 0 for the
	// package default.
	MaxListingPages int
	// BackupDir receives the dated export written at the end of every
	// run, success or failure.
	BackupDir string
}

type Service struct {
	client *core.Client
	store  *sheetsync.Store
	opts   Options
}

func NewService(client *core.Client, store *sheetsync.Store, opts Options) Service {
	return Service{
		client: client,
		store:  store,
		opts:   opts,
	}
}

// CategoryTally is the per-category outcome of one run.
type CategoryTally struct {
	Category string
	Products int
	Inserted int
	Updated  int
	Skipped  int
	Failed   int
}

type Summary struct {
	Authenticated bool
	Tallies       []CategoryTally
	Records       int
	BackupPath    string
}

// closestCategory names the discovered category most similar to an
// unknown requested name, for the error message only.
func closestCategory(name string, categories map[string]string) string {
	best := ""
	bestDistance := -1
	for candidate := range categories {
		d := matchr.Levenshtein(name, candidate)
		if bestDistance < 0 || d < bestDistance {
			best = candidate
			bestDistance = d
		}
	}
	return best
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// selectCategories filters the taxonomy to the requested subset, keeping
// the requested order. No request means everything, in sorted name
// order. Unknown names are logged and skipped, the rest of the run
// proceeds.
func selectCategories(categories map[string]string, requested []string) []string {
	if len(requested) == 0 {
		return sortedKeys(categories)
	}

	var selected []string
	for _, name := range requested {
		if _, ok := categories[name]; !ok {
			slog.Error(
				"requested category is not a valid category and will be skipped",
				"name", name,
				"closest", closestCategory(name, categories),
			)
			continue
		}
		selected = append(selected, name)
	}
	return selected
}

// Run executes the pipeline over the requested categories (all
// discovered ones when none are named). The backup export runs
// unconditionally over whatever was collected, even when the run errors
// out halfway.
func (s Service) Run(ctx context.Context, requested []string) (summary Summary, err error) {
	ctx, span := tracer.Start(ctx, "pipeline:Run")
	defer span.End()

	var collected []catalog.ProductRecord
	defer func() {
		path, backupErr := backup.Write(s.opts.BackupDir, time.Now(), collected)
		if backupErr != nil {
			slog.Error("failed to write backup export", "err", backupErr)
		}
		summary.BackupPath = path
		summary.Records = len(collected)
	}()

	// soft signal only: some pages render (at least partially) without a
	// session, so a failed or ambiguous login doesn't stop the crawl
	authenticated, loginErr := s.client.Login(ctx, s.opts.LoginUrl, s.opts.Username, s.opts.Password)
	switch {
	case loginErr != nil:
		slog.Error("login exchange failed, continuing unauthenticated", "err", loginErr)
	case authenticated:
		slog.Info("login appears successful")
	default:
		slog.Error("login failed, continuing unauthenticated")
	}
	summary.Authenticated = authenticated
	span.SetAttributes(attribute.Bool("authenticated", authenticated))

	categories, err := catalog.DiscoverCategories(ctx, s.client, s.opts.Site)
	if err != nil {
		span.SetStatus(codes.Error, "failed to discover categories")
		return summary, err
	}
	if len(categories) == 0 {
		span.SetStatus(codes.Error, ErrNoCategories.Error())
		return summary, ErrNoCategories
	}
	slog.Info("discovered categories", "count", len(categories))

	for _, name := range selectCategories(categories, requested) {
		tally, records, err := s.runCategory(ctx, name, categories[name])
		collected = append(collected, records...)
		summary.Tallies = append(summary.Tallies, tally)
		if err != nil {
			slog.Error("category crawl aborted", "category", name, "err", err)
		}
	}

	return summary, nil
}

// runCategory paginates one category and extracts + upserts every
// product found. A product that fails to scrape is logged and skipped,
// everything already collected stays intact.
func (s Service) runCategory(ctx context.Context, name, listingUrl string) (CategoryTally, []catalog.ProductRecord, error) {
	ctx, span := tracer.Start(ctx, "pipeline:runCategory")
	defer span.End()
	span.SetAttributes(attribute.String("category", name))

	tally := CategoryTally{Category: name}

	products, err := catalog.PaginateListing(ctx, s.client, listingUrl, s.opts.Site, s.opts.MaxListingPages)
	if err != nil && len(products) == 0 {
		span.SetStatus(codes.Error, "failed to paginate listing")
		return tally, nil, err
	}
	if err != nil {
		slog.Warn("pagination stopped early, continuing with partial listing",
			"category", name, "err", err)
	}
	tally.Products = len(products)
	slog.Info("category listing complete", "category", name, "products", len(products))

	var records []catalog.ProductRecord
	total := len(products)
	done := 0
	for _, sku := range sortedKeys(products) {
		record, err := catalog.ScrapeProduct(ctx, s.client, products[sku])
		if err != nil {
			tally.Failed++
			slog.Warn("failed to scrape product", "sku", sku, "url", products[sku], "err", err)
			continue
		}
		record.Category = name
		records = append(records, record)

		result, err := s.store.Upsert(ctx, record)
		if err != nil {
			tally.Failed++
			slog.Warn("failed to upsert product", "sku", sku, "err", err)
			continue
		}
		switch result {
		case sheetsync.Inserted:
			tally.Inserted++
		case sheetsync.Updated:
			tally.Updated++
		case sheetsync.Skipped:
			tally.Skipped++
		}

		done++
		key := record.Sku
		if key == "" {
			key = record.Url
		}
		slog.Info("product synced",
			"done", done, "total", total, "key", key, "result", string(result))
	}

	return tally, records, nil
}
