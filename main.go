package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"github.com/xcono/bread/schema"
	"github.com/xcono/bread/web"
	"github.com/xcono/bread/web/database"
	"github.com/zeromicro/go-zero/core/conf"

	// database drivers
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

func main() {
	var c schema.Config

	if err := newApp(&c).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newApp builds the CLI. The config is loaded into c before any command runs.
func newApp(c *schema.Config) *cli.App {
	app := &cli.App{
		Name:  "bread",
		Usage: "Browse, read, edit, add and delete SQL tables over REST",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "f",
				Aliases: []string{"config"},
				Value:   "etc/bread.yaml",
				Usage:   "the config file",
			},
		},
		Before: func(cmd *cli.Context) error {
			return loadConfig(cmd.String("f"), c)
		},
		Commands: []*cli.Command{
			{
				Name:  "start",
				Usage: "Start serving resources",
				Action: func(cmd *cli.Context) error {
					web.StartServer(*c) // blocking call
					return nil
				},
			},
			{
				Name:  "routes",
				Usage: "List the generated routes",
				Action: func(cmd *cli.Context) error {
					db, flavor, err := schema.OpenDB(c.DSN)
					if err != nil {
						return err
					}
					defer db.Close()

					// no statement runs, the store only needs the dialect
					mounts, err := web.Mounts(c.Resources, database.NewStore(nil, flavor))
					if err != nil {
						return err
					}

					w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
					for _, m := range mounts {
						for _, r := range web.Routes([]web.Mount{m}) {
							fmt.Fprintf(w, "%s\t%s\t%s\n", m.Resource.Name(), r.Method, r.Path)
						}
					}
					return w.Flush()
				},
			},
			{
				Name:      "migrate",
				Usage:     "Create missing tables for resources",
				ArgsUsage: "[resource...]",
				Action: func(cmd *cli.Context) error {
					decls, err := selectResources(*c, cmd.Args().Slice())
					if err != nil {
						return err
					}

					db, flavor, err := schema.OpenDB(c.DSN)
					if err != nil {
						return err
					}
					defer db.Close()

					for _, decl := range decls {
						s, err := schema.New(decl.Fields...)
						if err != nil {
							return fmt.Errorf("resource %s: %w", decl.Name, err)
						}

						ddl, args := schema.CreateTable(flavor, decl.ResourceTable(), decl.PrimaryKey, decl.KeyStrategy, s)
						if _, err := db.ExecContext(cmd.Context, ddl, args...); err != nil {
							return fmt.Errorf("resource %s: %w", decl.Name, err)
						}
						fmt.Println(ddl)
					}
					return nil
				},
			},
			{
				Name:      "inspect",
				Usage:     "Compare resources with their live tables",
				ArgsUsage: "[resource...]",
				Action: func(cmd *cli.Context) error {
					decls, err := selectResources(*c, cmd.Args().Slice())
					if err != nil {
						return err
					}

					tablenames := make([]string, 0, len(decls))
					for _, decl := range decls {
						tablenames = append(tablenames, decl.ResourceTable())
					}

					// open db
					db, flavor, err := schema.OpenDB(c.DSN)
					if err != nil {
						return err
					}
					defer db.Close()

					inspector, err := schema.NewDatabase(db, flavor)
					if err != nil {
						return err
					}

					// get tables
					tables, err := inspector.Tables(cmd.Context, tablenames...)
					if err != nil {
						return err
					}

					type report struct {
						Resource   string            `json:"resource"`
						Table      schema.Table      `json:"table"`
						Mismatches []schema.Mismatch `json:"mismatches"`
					}

					reports := make([]report, len(decls))
					for i, decl := range decls {
						s, err := schema.New(decl.Fields...)
						if err != nil {
							return fmt.Errorf("resource %s: %w", decl.Name, err)
						}
						mismatches := schema.Diff(tables[i], decl.PrimaryKey, s)
						if mismatches == nil {
							mismatches = []schema.Mismatch{}
						}
						reports[i] = report{Resource: decl.Name, Table: tables[i], Mismatches: mismatches}
					}

					// pretty print reports as json
					jsonData, err := json.MarshalIndent(reports, "", "  ")
					if err != nil {
						return err
					}
					fmt.Println(string(jsonData))

					return nil
				},
			},
		},
	}

	sort.Sort(cli.FlagsByName(app.Flags))
	sort.Sort(cli.CommandsByName(app.Commands))

	return app
}

// loadConfig reads path into c. Variables from a .env file in the working
// directory are exported first, then ${VAR} references in the config expand.
func loadConfig(path string, c *schema.Config) error {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return conf.Load(path, c, conf.UseEnv())
}

// selectResources returns the named resources, or all of them when names is empty.
func selectResources(c schema.Config, names []string) ([]schema.Resource, error) {
	if len(names) == 0 {
		return c.Resources, nil
	}

	byName := make(map[string]schema.Resource, len(c.Resources))
	for _, r := range c.Resources {
		byName[r.Name] = r
	}

	selected := make([]schema.Resource, 0, len(names))
	for _, name := range names {
		r, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown resource %q", name)
		}
		selected = append(selected, r)
	}
	return selected, nil
}
