package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"catalogsync/lib/scrapers/storefront/core"
	"catalogsync/lib/telemetry"

	"github.com/stretchr/testify/require"
)

func listingEntry(sku, href string) string {
	skuHtml := ""
	if sku != "" {
		skuHtml = fmt.Sprintf(`<div class="product sku"><span class="sku"><span>%s</span></span></div>`, sku)
	}
	linkHtml := ""
	if href != "" {
		linkHtml = fmt.Sprintf(`<a class="product-item-link" href="%s">item</a>`, href)
	}
	return fmt.Sprintf(`<li class="product">%s%s</li>`, skuHtml, linkHtml)
}

func listingPage(entries []string, next string) string {
	nextHtml := ""
	if next != "" {
		nextHtml = fmt.Sprintf(`<a class="action next" href="%s">Next</a>`, next)
	}
	return fmt.Sprintf(
		`<html><body><ol class="products">%s</ol>%s</body></html>`,
		strings.Join(entries, ""), nextHtml,
	)
}

// serveListing serves /page/{1..n} with two products per page and a next
// control everywhere but the last page, counting requests.
func serveListing(t *testing.T, pages int, requests *atomic.Int64) *httptest.Server {
	mux := http.NewServeMux()
	for i := 1; i <= pages; i++ {
		i := i
		mux.HandleFunc(fmt.Sprintf("/page/%d", i), func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			next := ""
			if i < pages {
				next = fmt.Sprintf("/page/%d", i+1)
			}
			fmt.Fprint(w, listingPage([]string{
				listingEntry(fmt.Sprintf("A%d00", i), fmt.Sprintf("/p/a%d00", i)),
				listingEntry(fmt.Sprintf("B%d00", i), fmt.Sprintf("/p/b%d00", i)),
			}, next))
		})
	}
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestClient(t *testing.T, baseUrl string) *core.Client {
	client, err := core.NewClient(context.Background(), core.ClientOptions{BaseUrl: baseUrl})
	require.NoError(t, err)
	return client
}

func TestPaginateListing(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/storefront/catalog")
	defer cleanup()

	var requests atomic.Int64
	server := serveListing(t, 3, &requests)
	client := newTestClient(t, server.URL)

	products, err := PaginateListing(context.Background(), client, "/page/1", server.URL, 0)
	require.NoError(t, err)

	require.Len(t, products, 6)
	require.Equal(t, server.URL+"/p/a100", products["A100"])
	require.Equal(t, server.URL+"/p/b300", products["B300"])
	// 1 first page + exactly N-1 next transitions
	require.Equal(t, int64(3), requests.Load())
}

func TestPaginateListingDropsIncompleteEntries(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/storefront/catalog")
	defer cleanup()

	mux := http.NewServeMux()
	mux.HandleFunc("/page/1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, listingPage([]string{
			listingEntry("A100", "/p/a100"),
			listingEntry("", "/p/no-sku"),
			listingEntry("NOLINK", ""),
		}, ""))
	})
	server := httptest.NewServer(mux)
	defer server.Close()
	client := newTestClient(t, server.URL)

	products, err := PaginateListing(context.Background(), client, "/page/1", server.URL, 0)
	require.NoError(t, err)
	require.Equal(t, map[string]string{"A100": server.URL + "/p/a100"}, products)
}

func TestPaginateListingKeepsOffOriginLinks(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/storefront/catalog")
	defer cleanup()

	mux := http.NewServeMux()
	mux.HandleFunc("/page/1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, listingPage([]string{
			listingEntry("A100", "/p/a100"),
			listingEntry("X900", "https://cdn.partner-shop.example.net/p/x900"),
		}, ""))
	})
	server := httptest.NewServer(mux)
	defer server.Close()
	client := newTestClient(t, server.URL)

	products, err := PaginateListing(context.Background(), client, "/page/1", server.URL, 0)
	require.NoError(t, err)
	require.Equal(t, map[string]string{
		"A100": server.URL + "/p/a100",
		"X900": "https://cdn.partner-shop.example.net/p/x900",
	}, products)
}

func TestPaginateListingPageBound(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/storefront/catalog")
	defer cleanup()

	var requests atomic.Int64
	mux := http.NewServeMux()
	// a next control that never goes away
	mux.HandleFunc("/page/1", func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		fmt.Fprint(w, listingPage([]string{listingEntry("A100", "/p/a100")}, "/page/1"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()
	client := newTestClient(t, server.URL)

	products, err := PaginateListing(context.Background(), client, "/page/1", server.URL, 5)
	require.NoError(t, err)
	require.Len(t, products, 1)
	require.Equal(t, int64(5), requests.Load())
}
