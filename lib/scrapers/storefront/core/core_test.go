package core

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"catalogsync/lib/telemetry"

	"github.com/stretchr/testify/require"
)

const loginPage = `
<html><body>
<form class="form-login" action="%s/customer/account/loginPost" method="post">
	<input name="form_key" type="hidden" value="k3yk3y">
	<input name="login[username]" type="email">
	<input name="login[password]" type="password">
	<button id="send2" type="submit">Sign In</button>
</form>
</body></html>`

func newFakeStorefront(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	var server *httptest.Server

	mux.HandleFunc("/customer/account/login", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, loginPage, server.URL)
	})
	mux.HandleFunc("/customer/account/loginPost", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if r.PostForm.Get("login[username]") == "buyer@example.com" &&
			r.PostForm.Get("login[password]") == "hunter2" &&
			r.PostForm.Get("form_key") == "k3yk3y" {
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "ok", Path: "/"})
		}
		http.Redirect(w, r, "/customer/account", http.StatusFound)
	})
	mux.HandleFunc("/customer/account", func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("session")
		if err == nil && cookie.Value == "ok" {
			fmt.Fprint(w, `<html><body class="account">
				<a href="/customer/account/logout">Sign Out</a>
				<div class="block-dashboard-info">Welcome</div>
			</body></html>`)
			return
		}
		fmt.Fprint(w, `<html><body><a href="/customer/account/login">Sign In</a></body></html>`)
	})

	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestLogin(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/storefront/core")
	defer cleanup()

	server := newFakeStorefront(t)
	client, err := NewClient(context.Background(), ClientOptions{BaseUrl: server.URL})
	require.NoError(t, err)

	ok, err := client.Login(context.Background(), "/customer/account/login", "buyer@example.com", "hunter2")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestLoginEmptyFormAction(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/storefront/core")
	defer cleanup()

	// action="" must fall back to posting at the login url, not the site root
	mux := http.NewServeMux()
	mux.HandleFunc("/customer/account/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			fmt.Fprint(w, `<html><body>
				<form class="form-login" action="" method="post">
					<input name="form_key" type="hidden" value="k3yk3y">
				</form>
			</body></html>`)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if r.PostForm.Get("login[username]") == "buyer@example.com" &&
			r.PostForm.Get("login[password]") == "hunter2" {
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "ok", Path: "/"})
		}
		http.Redirect(w, r, "/customer/account", http.StatusFound)
	})
	mux.HandleFunc("/customer/account", func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("session")
		if err == nil && cookie.Value == "ok" {
			fmt.Fprint(w, `<html><body><a href="/customer/account/logout">Sign Out</a></body></html>`)
			return
		}
		fmt.Fprint(w, `<html><body><a href="/customer/account/login">Sign In</a></body></html>`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client, err := NewClient(context.Background(), ClientOptions{BaseUrl: server.URL})
	require.NoError(t, err)

	ok, err := client.Login(context.Background(), "/customer/account/login", "buyer@example.com", "hunter2")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestLoginBadCredentials(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/storefront/core")
	defer cleanup()

	server := newFakeStorefront(t)
	client, err := NewClient(context.Background(), ClientOptions{BaseUrl: server.URL})
	require.NoError(t, err)

	ok, err := client.Login(context.Background(), "/customer/account/login", "buyer@example.com", "wrong")
	require.NoError(t, err)
	require.False(t, ok)
}
