package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

type localeContextKey struct{}
type countryContextKey struct{}

var (
	LocaleKey  = localeContextKey{}
	CountryKey = countryContextKey{}
)

// RegionLookup resolves the region for an IP address.
type RegionLookup func(ip string) (language.Region, error)

// Locales negotiates a request locale against the supported set.
type Locales struct {
	supported []string
	matcher   language.Matcher
	fallback  string
}

// NewLocales builds a matcher over supported. The fallback is always supported
// and wins ties because it is listed first.
func NewLocales(supported []string, fallback string) *Locales {
	fallback = strings.TrimSpace(fallback)
	if fallback == "" {
		fallback = "en"
	}
	names := []string{fallback}
	tags := []language.Tag{language.Make(fallback)}
	for _, s := range supported {
		s = strings.TrimSpace(s)
		if s == "" || s == fallback {
			continue
		}
		tag, err := language.Parse(s)
		if err != nil {
			continue
		}
		names = append(names, s)
		tags = append(tags, tag)
	}
	return &Locales{supported: names, matcher: language.NewMatcher(tags), fallback: fallback}
}

// Fallback returns the locale used when nothing matches.
func (l *Locales) Fallback() string {
	return l.fallback
}

// Match returns the best supported locale for the given tags, or "" when no
// candidate is a confident match.
func (l *Locales) Match(tags ...language.Tag) string {
	if len(tags) == 0 {
		return ""
	}
	_, idx, conf := l.matcher.Match(tags...)
	if conf == language.No {
		return ""
	}
	return l.supported[idx]
}

// Detect picks a locale from X-Locale, then Accept-Language, then the
// region's dominant language.
func (l *Locales) Detect(r *http.Request, region language.Region) string {
	if v := strings.TrimSpace(r.Header.Get("X-Locale")); v != "" {
		if tag, err := language.Parse(v); err == nil {
			if m := l.Match(tag); m != "" {
				return m
			}
		}
	}
	if v := r.Header.Get("Accept-Language"); v != "" {
		if tags, _, err := language.ParseAcceptLanguage(v); err == nil {
			if m := l.Match(tags...); m != "" {
				return m
			}
		}
	}
	if region != (language.Region{}) {
		if tag, err := language.Compose(region); err == nil {
			if m := l.Match(tag); m != "" {
				return m
			}
		}
	}
	return l.fallback
}

func I18N(locales *Locales, lookup RegionLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			region := ResolveRegion(r, lookup)
			ctx := r.Context()
			if _, ok := ctx.Value(LocaleKey).(string); !ok {
				ctx = context.WithValue(ctx, LocaleKey, locales.Detect(r, region))
			}
			if region != (language.Region{}) {
				ctx = context.WithValue(ctx, CountryKey, region.String())
			}
			w.Header().Set("Content-Language", LocaleFromContext(ctx))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClientIP returns the best-effort client IP address for the request.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		parts := strings.Split(xf, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func LocaleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(LocaleKey).(string); ok {
		return v
	}
	return "en"
}

// CountryFromContext returns the ISO country code stored in the request context.
func CountryFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CountryKey).(string); ok {
		return v
	}
	return ""
}

// ResolveRegion prefers proxy country headers, then the region subtag of the
// requested locale, then an IP lookup.
func ResolveRegion(r *http.Request, lookup RegionLookup) language.Region {
	if r == nil {
		return language.Region{}
	}
	for _, key := range []string{"X-Country-Code", "CF-IPCountry", "X-Appengine-Country"} {
		if val := strings.TrimSpace(r.Header.Get(key)); val != "" {
			if region, err := language.ParseRegion(val); err == nil && region.IsCountry() {
				return region
			}
		}
	}
	for _, header := range []string{r.Header.Get("X-Locale"), r.Header.Get("Accept-Language")} {
		if region, ok := localeRegion(header); ok {
			return region
		}
	}
	if lookup != nil {
		if ip := ClientIP(r); ip != "" {
			if region, err := lookup(ip); err == nil && region.IsCountry() {
				return region
			}
		}
	}
	return language.Region{}
}

// localeRegion returns an explicit region subtag from the first usable tag.
func localeRegion(header string) (language.Region, bool) {
	if strings.TrimSpace(header) == "" {
		return language.Region{}, false
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil {
		return language.Region{}, false
	}
	for _, tag := range tags {
		if region, conf := tag.Region(); conf == language.Exact && region.IsCountry() {
			return region, true
		}
	}
	return language.Region{}, false
}
