package handlers

import (
	"net/http"
	"strings"

	"github.com/xcono/bread/resource"
	"github.com/zeromicro/go-zero/rest"
)

// KeyParam is the path variable holding the primary key.
const KeyParam = "id"

// Routes returns one route per enabled operation of res, mounted at prefix.
// Disabled operations have no route, so the router answers them itself.
func Routes(res *resource.Resource, prefix string) []rest.Route {
	h := NewHandler(res)
	name := res.Name()
	base := "/" + strings.Trim(prefix, "/")
	item := strings.TrimSuffix(base, "/") + "/:" + KeyParam

	var routes []rest.Route
	for _, op := range res.Operations() {
		switch op {
		case resource.Browse:
			routes = append(routes, rest.Route{Method: http.MethodGet, Path: base, Handler: instrument(name, resource.Browse, h.Browse)})
		case resource.Retrieve:
			routes = append(routes, rest.Route{Method: http.MethodGet, Path: item, Handler: instrument(name, resource.Retrieve, h.Retrieve)})
		case resource.Add:
			routes = append(routes, rest.Route{Method: http.MethodPost, Path: base, Handler: instrument(name, resource.Add, h.Add)})
		case resource.Edit:
			routes = append(routes,
				rest.Route{Method: http.MethodPatch, Path: item, Handler: instrument(name, resource.Edit, h.Patch)},
				rest.Route{Method: http.MethodPut, Path: item, Handler: instrument(name, resource.Edit, h.Put)},
			)
		case resource.Delete:
			routes = append(routes, rest.Route{Method: http.MethodDelete, Path: item, Handler: instrument(name, resource.Delete, h.Delete)})
		}
	}
	return routes
}
