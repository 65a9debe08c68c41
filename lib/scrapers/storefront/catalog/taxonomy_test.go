package catalog

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

const site = "https://shop.example.com"

func parseDoc(t *testing.T, html string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestCategories(t *testing.T) {
	doc := parseDoc(t, `
		<nav class="navigation">
			<a class="level-top" href="https://shop.example.com/snacks">Snacks</a>
			<a class="level-top" href="/drinks.html"> Drinks </a>
			<a class="level-top" href="https://other.example.org/spam">Spam</a>
			<a class="level-top" href="">Empty Href</a>
			<a class="level-top" href="/blank.html">   </a>
		</nav>
	`)

	categories := Categories(doc, site)
	require.Equal(t, map[string]string{
		"Snacks": "https://shop.example.com/snacks",
		"Drinks": "https://shop.example.com/drinks.html",
	}, categories)
}

func TestCategoriesLastWins(t *testing.T) {
	doc := parseDoc(t, `
		<nav class="navigation">
			<a class="level-top" href="/snacks-old.html">Snacks</a>
			<a class="level-top" href="/snacks-new.html">Snacks</a>
		</nav>
	`)

	categories := Categories(doc, site)
	require.Equal(t, map[string]string{
		"Snacks": "https://shop.example.com/snacks-new.html",
	}, categories)
}

func TestCategoriesNoNav(t *testing.T) {
	doc := parseDoc(t, `<div class="content"><a href="/x">X</a></div>`)
	require.Empty(t, Categories(doc, site))
}

func TestResolveHref(t *testing.T) {
	link, ok := resolveHref(site, "https://shop.example.com/a/b")
	require.True(t, ok)
	require.Equal(t, "https://shop.example.com/a/b", link)

	_, ok = resolveHref(site, "https://elsewhere.example.net/a")
	require.False(t, ok)

	link, ok = resolveHref(site, "/p/a100")
	require.True(t, ok)
	require.Equal(t, "https://shop.example.com/p/a100", link)
}
