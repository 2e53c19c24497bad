package api

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-tours/internal/humastar"
)

// links maps operation paths to their RFC 8288 Link header values.
// Enables restish hypermedia navigation via `restish links <url>`.
var links = humastar.Links{
	"/api/v1/info": {
		`</health>; rel="health"`,
		`</api/v1/view>; rel="view"`,
	},
	"/api/v1/view": {
		`</api/v1/view/geojson>; rel="geojson"`,
		`</api/v1/couriers>; rel="couriers"`,
	},
	"/api/v1/couriers": {
		`</api/v1/scope>; rel="scope"`,
		`</api/v1/view>; rel="view"`,
	},
	"/api/v1/editor/pending": {
		`</api/v1/requests>; rel="commit-request"`,
		`</api/v1/reorder>; rel="commit-reorder"`,
		`</api/v1/notification>; rel="notification"`,
	},
	"/api/v1/requests/{id}": {
		`</api/v1/view>; rel="view"`,
	},
	"/api/v1/warehouses/{courier}": {
		`</api/v1/couriers>; rel="collection"`,
	},
	"/api/v1/journal": {
		`</api/v1/journal/stats>; rel="stats"`,
	},
	"/api/v1/files/{action}": {
		`</api/v1/files>; rel="collection"`,
	},
}

// Links merges the static links with the entry-point links discovered from
// the registered operations. Call after all routes are registered.
func Links(api huma.API) humastar.Links {
	out := humastar.EntryLinks(api)
	for path, vals := range links {
		out[path] = append(out[path], vals...)
	}
	return out
}
