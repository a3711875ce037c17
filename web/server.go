package web

import (
	"fmt"
	"strings"

	"github.com/xcono/bread/resource"
	"github.com/xcono/bread/schema"
	"github.com/xcono/bread/web/database"
	"github.com/xcono/bread/web/handlers"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/rest"
)

// Mount is a resource served under a URL prefix.
type Mount struct {
	Prefix   string
	Resource *resource.Resource
}

// Mounts builds every declared resource on store. Prefixes must be unique.
func Mounts(decls []schema.Resource, store resource.Store) ([]Mount, error) {
	mounts := make([]Mount, 0, len(decls))
	seen := make(map[string]string, len(decls))

	for _, decl := range decls {
		prefix := "/" + strings.Trim(decl.ResourcePrefix(), "/")
		if other, ok := seen[prefix]; ok {
			return nil, fmt.Errorf("resources %s and %s share prefix %s", other, decl.Name, prefix)
		}
		seen[prefix] = decl.Name

		res, err := resource.FromDeclaration(decl, store)
		if err != nil {
			return nil, err
		}
		mounts = append(mounts, Mount{Prefix: prefix, Resource: res})
	}

	return mounts, nil
}

// Routes returns the routes of every mount.
func Routes(mounts []Mount) []rest.Route {
	var routes []rest.Route
	for _, m := range mounts {
		routes = append(routes, handlers.Routes(m.Resource, m.Prefix)...)
	}
	return routes
}

// StartServer serves the configured resources. It blocks until the server stops.
func StartServer(c schema.Config) {
	logx.MustSetup(c.Log)

	db, flavor, err := schema.OpenDB(c.DSN)
	if err != nil {
		logx.Must(err)
	}
	defer db.Close()

	store := database.NewStore(database.NewExecutor(db), flavor)
	mounts, err := Mounts(c.Resources, store)
	if err != nil {
		logx.Must(err)
	}

	server := rest.MustNewServer(c.RestConf, rest.WithCors())
	defer server.Stop()

	routes := Routes(mounts)
	server.AddRoutes(routes)

	for _, r := range routes {
		logx.Infof("route %s %s", r.Method, r.Path)
	}
	logx.Infof("Starting server at %s:%d", c.Host, c.Port)
	server.Start()
}
