package humastar

import (
	"fmt"
	"sort"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// Links holds RFC 8288 link headers keyed by operation path.
type Links map[string][]string

// EntryLinks builds the links served from the /health entry point: one per
// collection path found in the OpenAPI document plus the spec and docs.
// Call after all routes are registered.
func EntryLinks(api huma.API) Links {
	links := Links{}
	paths := make([]string, 0, len(api.OpenAPI().Paths))
	for p := range api.OpenAPI().Paths {
		if p == "/health" || strings.Contains(p, "{") {
			continue
		}
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		links.add("/health", p, relFor(p))
	}
	links.add("/health", "/openapi.json", "service-desc")
	links.add("/health", "/docs", "service-doc")
	return links
}

func (l Links) add(from, to, rel string) {
	val := fmt.Sprintf(`<%s>; rel="%s"`, to, rel)
	for _, existing := range l[from] {
		if existing == val {
			return
		}
	}
	l[from] = append(l[from], val)
}

// relFor names a link after the path below /api/v1, e.g. "editor-pending".
func relFor(p string) string {
	p = strings.TrimPrefix(strings.Trim(p, "/"), "api/v1/")
	return strings.ReplaceAll(p, "/", "-")
}

// LinkTransformer returns a Huma Transformer that injects link headers at
// runtime: static links for the operation path, a self link on item
// endpoints, pagination links and state-dependent action links.
func LinkTransformer(links func() Links) huma.Transformer {
	return func(ctx huma.Context, status string, v any) (any, error) {
		op := ctx.Operation()
		if op == nil {
			return v, nil
		}

		if links != nil {
			for _, link := range links()[op.Path] {
				ctx.AppendHeader("Link", link)
			}
		}

		if strings.Contains(op.Path, "{") {
			ctx.AppendHeader("Link", fmt.Sprintf(`<%s>; rel="self"`, ctx.URL().Path))
		}

		if p, ok := v.(Pager); ok {
			for _, link := range p.PaginationLinks(ctx.URL().Path) {
				ctx.AppendHeader("Link", link)
			}
		}

		if a, ok := v.(Actor); ok {
			for _, action := range a.Actions() {
				ctx.AppendHeader("Link", action.LinkHeader())
			}
		}

		return v, nil
	}
}
