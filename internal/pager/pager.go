// Package pager assembles complete result sets from the stats API's
// cursor- or page-based list endpoints.
package pager

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/fortuna/courtside/internal/balldontlie"
)

const (
	DefaultPerPage  = 100
	DefaultMaxPages = 500
)

// Getter performs a single read. *balldontlie.Client satisfies it.
type Getter interface {
	Get(ctx context.Context, resource string, params url.Values) (*balldontlie.Envelope, error)
}

// PaginationExhaustionError reports a list endpoint whose pagination never
// terminated: a repeated cursor, a page number that did not advance, or more
// pages than the configured limit. It unwraps to a *balldontlie.RemoteError.
type PaginationExhaustionError struct {
	Resource string
	Pages    int
	Reason   string
}

func (e *PaginationExhaustionError) Error() string {
	return fmt.Sprintf("%s: pagination did not terminate after %d pages: %s", e.Resource, e.Pages, e.Reason)
}

func (e *PaginationExhaustionError) Unwrap() error {
	return &balldontlie.RemoteError{Status: http.StatusOK, Resource: e.Resource, Detail: e.Reason}
}

// Pager walks list endpoints page by page.
type Pager struct {
	getter   Getter
	perPage  int
	maxPages int
	logger   *slog.Logger
}

// Option configures a Pager.
type Option func(*Pager)

// WithPerPage sets the page size requested when the caller did not set one.
func WithPerPage(n int) Option {
	return func(p *Pager) {
		if n > 0 {
			p.perPage = n
		}
	}
}

// WithMaxPages bounds how many pages one walk may request.
func WithMaxPages(n int) Option {
	return func(p *Pager) {
		if n > 0 {
			p.maxPages = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Pager) { p.logger = logger }
}

// New creates a Pager reading through getter.
func New(getter Getter, opts ...Option) *Pager {
	p := &Pager{
		getter:   getter,
		perPage:  DefaultPerPage,
		maxPages: DefaultMaxPages,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "pager")
	return p
}

// Getter returns the underlying single-read gateway.
func (p *Pager) Getter() Getter { return p.getter }

// Each requests resource repeatedly, handing every page to fn in API order,
// until the API reports no further pages. The first error from the gateway
// or from fn ends the walk and is returned unchanged.
func (p *Pager) Each(ctx context.Context, resource string, params url.Values, fn func(*balldontlie.Envelope) error) error {
	query := p.baseQuery(params)

	seen := make(map[balldontlie.Cursor]struct{})
	requested := 1
	if n, err := strconv.Atoi(query.Get("page")); err == nil && n > 0 {
		requested = n
	}

	for pages := 1; ; pages++ {
		if pages > p.maxPages {
			return p.exhausted(resource, pages-1, fmt.Sprintf("exceeded %d pages", p.maxPages))
		}

		env, err := p.getter.Get(ctx, resource, query)
		if err != nil {
			return err
		}
		if err := fn(env); err != nil {
			return err
		}

		meta := env.Meta
		if meta == nil {
			return nil
		}

		if cursor := meta.NextCursor; cursor != "" {
			if _, dup := seen[cursor]; dup {
				return p.exhausted(resource, pages, fmt.Sprintf("cursor %q repeated", cursor))
			}
			seen[cursor] = struct{}{}
			query.Set("cursor", cursor.String())
			query.Del("page")
			continue
		}

		next := meta.Page()
		if next == 0 {
			return nil
		}
		if next <= requested {
			return p.exhausted(resource, pages, fmt.Sprintf("page %d did not advance past %d", next, requested))
		}
		requested = next
		query.Set("page", strconv.Itoa(next))
	}
}

// baseQuery copies params so the caller's values are never mutated.
func (p *Pager) baseQuery(params url.Values) url.Values {
	query := url.Values{}
	for k, v := range params {
		query[k] = append([]string(nil), v...)
	}
	if query.Get("per_page") == "" {
		query.Set("per_page", strconv.Itoa(p.perPage))
	}
	return query
}

func (p *Pager) exhausted(resource string, pages int, reason string) error {
	p.logger.Error("pagination exhausted", "resource", resource, "pages", pages, "reason", reason)
	return &PaginationExhaustionError{Resource: resource, Pages: pages, Reason: reason}
}

// FetchAll collects every record of resource across all pages.
// Records are concatenated in API order and are not de-duplicated.
func FetchAll[T any](ctx context.Context, p *Pager, resource string, params url.Values) ([]T, error) {
	var all []T
	pages := 0
	err := p.Each(ctx, resource, params, func(env *balldontlie.Envelope) error {
		page, err := balldontlie.DecodeList[T](env, resource)
		if err != nil {
			return err
		}
		pages++
		all = append(all, page...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	p.logger.Debug("fetched all pages", "resource", resource, "pages", pages, "records", len(all))
	return all, nil
}

// FetchPage decodes only the first page of resource.
func FetchPage[T any](ctx context.Context, p *Pager, resource string, params url.Values) ([]T, error) {
	query := p.baseQuery(params)
	env, err := p.getter.Get(ctx, resource, query)
	if err != nil {
		return nil, err
	}
	return balldontlie.DecodeList[T](env, resource)
}
