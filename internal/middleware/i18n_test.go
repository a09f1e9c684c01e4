package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/text/language"
)

type assertError string

func (e assertError) Error() string { return string(e) }

func TestLocalesDetect(t *testing.T) {
	locales := NewLocales([]string{"en", "de", "es", "fr"}, "en")
	tests := []struct {
		name   string
		setup  func(r *http.Request)
		region string
		want   string
	}{
		{
			name: "x-locale overrides",
			setup: func(r *http.Request) {
				r.Header.Set("X-Locale", "DE")
				r.Header.Set("Accept-Language", "fr-FR")
			},
			want: "de",
		},
		{
			name: "accept-language skips unsupported",
			setup: func(r *http.Request) {
				r.Header.Set("Accept-Language", "ja,es-MX;q=0.8")
			},
			want: "es",
		},
		{
			name: "unsupported x-locale falls through",
			setup: func(r *http.Request) {
				r.Header.Set("X-Locale", "ja")
				r.Header.Set("Accept-Language", "de-AT")
			},
			want: "de",
		},
		{
			name:   "region language",
			region: "FR",
			want:   "fr",
		},
		{
			name:   "unsupported region falls back",
			region: "JP",
			want:   "en",
		},
		{
			name: "default",
			want: "en",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.setup != nil {
				tc.setup(req)
			}
			var region language.Region
			if tc.region != "" {
				region = language.MustParseRegion(tc.region)
			}
			if got := locales.Detect(req, region); got != tc.want {
				t.Fatalf("Detect() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestResolveRegion(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(r *http.Request)
		lookup RegionLookup
		want   string
	}{
		{
			name: "header precedence",
			setup: func(r *http.Request) {
				r.Header.Set("X-Country-Code", "us")
				r.Header.Set("CF-IPCountry", "de")
			},
			want: "US",
		},
		{
			name: "locale region fallback",
			setup: func(r *http.Request) {
				r.Header.Set("X-Locale", "en-AU")
			},
			want: "AU",
		},
		{
			name: "accept-language region",
			setup: func(r *http.Request) {
				r.Header.Set("Accept-Language", "en-GB,en;q=0.9")
			},
			want: "GB",
		},
		{
			name: "lookup fallback",
			lookup: func(ip string) (language.Region, error) {
				if ip != "203.0.113.4" {
					t.Fatalf("unexpected ip: %s", ip)
				}
				return language.MustParseRegion("MY"), nil
			},
			want: "MY",
		},
		{
			name: "lookup error returns zero",
			lookup: func(ip string) (language.Region, error) {
				return language.Region{}, assertError("boom")
			},
			want: "ZZ",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "203.0.113.4:80"
			if tc.setup != nil {
				tc.setup(req)
			}
			if got := ResolveRegion(req, tc.lookup).String(); got != tc.want {
				t.Fatalf("ResolveRegion() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestI18NStoresLocale(t *testing.T) {
	locales := NewLocales([]string{"en", "de"}, "en")
	var gotLocale, gotCountry string
	h := I18N(locales, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLocale = LocaleFromContext(r.Context())
		gotCountry = CountryFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "de-CH")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if gotLocale != "de" || gotCountry != "CH" {
		t.Fatalf("locale=%q country=%q", gotLocale, gotCountry)
	}
	if rr.Header().Get("Content-Language") != "de" {
		t.Fatalf("Content-Language = %q", rr.Header().Get("Content-Language"))
	}
}

func TestLocaleFromContext(t *testing.T) {
	ctx := context.Background()
	if got := LocaleFromContext(ctx); got != "en" {
		t.Fatalf("LocaleFromContext() default = %q, want %q", got, "en")
	}
	ctx = context.WithValue(ctx, LocaleKey, "de")
	if got := LocaleFromContext(ctx); got != "de" {
		t.Fatalf("LocaleFromContext() with value = %q, want %q", got, "de")
	}
}
