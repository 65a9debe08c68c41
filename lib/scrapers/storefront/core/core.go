package core

import (
	"bytes"
	"context"
	"fmt"
	"net/http/cookiejar"
	"net/url"
	"time"

	"catalogsync/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/storefront/core")

// loginTimeout bounds the whole login exchange, probe included.
const loginTimeout = time.Second * 15

// Client is the shared browsing context for one storefront. Cookies set
// during login flow into every later request.
type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client
}

type ClientOptions struct {
	BaseUrl string
}

func NewClient(ctx context.Context, opts ClientOptions) (*Client, error) {
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	client.SetTimeout(time.Second * 30)

	telemetry.InstrumentResty(client, "scrapers/storefront/http")

	return &Client{
		BaseUrl: baseUrl,
		Http:    client,
	}, nil
}

// GetDocument fetches a page and parses it. The href may be relative to
// the storefront base url.
func (c *Client) GetDocument(ctx context.Context, href string) (*goquery.Document, error) {
	res, err := c.Http.R().
		SetContext(ctx).
		Get(href)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", href, err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", href, err)
	}
	return doc, nil
}

// Login submits the storefront login form. The returned bool is the
// result of the authentication probe, it is a soft signal: some pages
// render (at least partially) without a session, so callers log the
// outcome and continue either way. Only a transport or parse failure is
// an error.
func (c *Client) Login(ctx context.Context, loginUrl, username, password string) (bool, error) {
	ctx, span := tracer.Start(ctx, "client:Login")
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, loginTimeout)
	defer cancel()

	doc, err := c.GetDocument(ctx, loginUrl)
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch login page")
		return false, err
	}

	form := doc.Find("form.form-login").First()
	action := form.AttrOr("action", "")
	if action == "" {
		action = loginUrl
	}
	formKey := doc.Find("input[name=form_key]").AttrOr("value", "")

	values := url.Values{
		"login[username]": {username},
		"login[password]": {password},
	}
	if formKey != "" {
		values.Set("form_key", formKey)
	}

	_, err = c.Http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetBody(values.Encode()).
		Post(action)
	if err != nil {
		span.SetStatus(codes.Error, "failed to post login form")
		return false, fmt.Errorf("post login form: %w", err)
	}

	ok, err := c.IsAuthenticated(ctx)
	if err != nil {
		span.SetStatus(codes.Error, "failed to probe session")
		return false, err
	}
	return ok, nil
}

// IsAuthenticated probes for an authenticated-only element on the account
// dashboard instead of pattern-matching the post-login url.
func (c *Client) IsAuthenticated(ctx context.Context) (bool, error) {
	ctx, span := tracer.Start(ctx, "client:IsAuthenticated")
	defer span.End()

	doc, err := c.GetDocument(ctx, "/customer/account")
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch account page")
		return false, err
	}

	signedIn := doc.Find("a[href*='customer/account/logout']").Length() > 0 ||
		doc.Find(".block-dashboard-info").Length() > 0
	return signedIn, nil
}
