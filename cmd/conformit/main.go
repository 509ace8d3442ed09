// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/poiesic/conformit"
	"github.com/poiesic/conformit/batch"
	"github.com/poiesic/conformit/config"
	"github.com/poiesic/conformit/ecl"
	"github.com/poiesic/conformit/logical"
	"github.com/poiesic/conformit/search"
	"github.com/poiesic/conformit/templates"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	searchFlags := []cli.Flag{
		&cli.StringFlag{
			Name:    "branch",
			Aliases: []string{"b"},
			Usage:   "Terminology branch path",
			Value:   "MAIN",
		},
		&cli.BoolFlag{
			Name:  "mismatch",
			Usage: "Find concepts that do not conform to the template",
		},
		&cli.StringFlag{
			Name:  "lexical",
			Usage: "Filter conforming concepts by term templates (match, mismatch)",
		},
		&cli.BoolFlag{
			Name:  "stated",
			Usage: "Evaluate stated rather than inferred relationships",
			Value: true,
		},
	}

	return &cli.App{
		Name:  "conformit",
		Usage: "Find concepts that conform to SNOMED CT concept templates",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB template database directory",
			},
			&cli.StringFlag{
				Name:  "terminology-url",
				Usage: "Snowstorm base URL",
			},
			&cli.StringFlag{
				Name:  "templates-dir",
				Usage: "Directory of template JSON files imported at startup",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "compile",
				Usage:     "Print the queries for a logical template read from the argument or stdin",
				ArgsUsage: "[logical-template]",
				Action:    compileCommand,
			},
			{
				Name:      "import",
				Usage:     "Import template JSON files from a directory",
				ArgsUsage: "<dir>",
				Action:    importCommand,
			},
			{
				Name:  "templates",
				Usage: "Manage stored templates",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List stored template names",
						Action: listTemplatesCommand,
					},
					{
						Name:      "show",
						Usage:     "Print a stored template as JSON",
						ArgsUsage: "<name>",
						Action:    showTemplateCommand,
					},
					{
						Name:      "delete",
						Usage:     "Delete stored templates",
						ArgsUsage: "<name>...",
						Action:    deleteTemplatesCommand,
					},
				},
			},
			{
				Name:   "search",
				Usage:  "Search for concepts against one template",
				Action: searchCommand,
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "template",
						Aliases:  []string{"t"},
						Usage:    "Template name",
						Required: true,
					},
				}, searchFlags...),
			},
			{
				Name:   "search-all",
				Usage:  "Search every stored template and print the number of results",
				Action: searchAllCommand,
				Flags: append([]cli.Flag{
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N searches",
						Value: 10,
					},
				}, searchFlags...),
			},
			{
				Name:   "serve",
				Usage:  "Serve the HTTP API",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Usage: "Listen address",
					},
					&cli.BoolFlag{
						Name:  "watch",
						Usage: "Re-import the templates directory when it changes",
					},
				},
			},
		},
	}
}

// loadConfig reads the config file, when given, and applies flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = config.LoadFromFile(path); err != nil {
			return nil, err
		}
	}
	if c.IsSet("db") {
		cfg.DBPath = c.String("db")
	}
	if c.IsSet("terminology-url") {
		cfg.TerminologyURL = c.String("terminology-url")
	}
	if c.IsSet("templates-dir") {
		cfg.TemplatesDir = c.String("templates-dir")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openService(c *cli.Context) (*conformit.Service, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	svc, err := conformit.Open(c.Context, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open template database: %w", err)
	}
	return svc, nil
}

func compileCommand(c *cli.Context) error {
	text := strings.Join(c.Args().Slice(), " ")
	if text == "" || text == "-" {
		data, err := io.ReadAll(c.App.Reader)
		if err != nil {
			return fmt.Errorf("failed to read logical template: %w", err)
		}
		text = string(data)
	}

	lt, err := logical.Parse(text)
	if err != nil {
		return err
	}
	queries, err := ecl.CompileQueries(lt)
	if err != nil {
		return err
	}

	out := c.App.Writer
	fmt.Fprintf(out, "domain:   %s\n", queries.Domain)
	fmt.Fprintf(out, "logical:  %s\n", queries.Logical)
	fmt.Fprintf(out, "match:    %s\n", queries.Match)
	fmt.Fprintf(out, "mismatch: %s\n", queries.Mismatch)
	return nil
}

func importCommand(c *cli.Context) error {
	dir := c.Args().First()
	if dir == "" {
		return fmt.Errorf("template directory is required")
	}

	svc, err := openService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	n, err := svc.Templates().Import(c.Context, dir)
	fmt.Fprintf(c.App.Writer, "Imported %d templates from %s\n", n, dir)
	if err != nil {
		return fmt.Errorf("some templates failed to import: %w", err)
	}
	return nil
}

func listTemplatesCommand(c *cli.Context) error {
	svc, err := openService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	all, err := svc.Templates().List(c.Context)
	if err != nil {
		return err
	}
	for _, t := range all {
		fmt.Fprintln(c.App.Writer, t.Name)
	}
	return nil
}

func showTemplateCommand(c *cli.Context) error {
	name := c.Args().First()
	if name == "" {
		return fmt.Errorf("template name is required")
	}

	svc, err := openService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	t, err := svc.Templates().LoadTemplate(c.Context, name)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(t)
}

func deleteTemplatesCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one template name is required")
	}

	svc, err := openService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	return svc.Templates().Delete(c.Context, c.Args().Slice()...)
}

func searchCommand(c *cli.Context) error {
	req, err := searchRequest(c, c.String("template"))
	if err != nil {
		return err
	}

	svc, err := openService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	searcher, err := svc.NewSearcher()
	if err != nil {
		return err
	}
	result, err := searcher.Search(c.Context, req)
	if err != nil {
		return err
	}
	if result.Truncated {
		slog.Warn("results truncated", "total", result.Total, "returned", len(result.ConceptIDs))
	}
	for _, id := range result.ConceptIDs {
		fmt.Fprintln(c.App.Writer, id)
	}
	return nil
}

func searchAllCommand(c *cli.Context) error {
	interval := c.Int("report-interval")
	if interval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}

	svc, err := openService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	all, err := svc.Templates().List(c.Context)
	if err != nil {
		return err
	}
	reqs := make([]search.Request, 0, len(all))
	for _, t := range all {
		req, err := searchRequest(c, t.Name)
		if err != nil {
			return err
		}
		reqs = append(reqs, req)
	}

	runner, err := svc.NewBatchRunner(batch.WithProgress(c.App.ErrWriter, interval))
	if err != nil {
		return err
	}
	defer runner.Release()

	outcomes, err := runner.Run(c.Context, reqs)
	if err != nil {
		return err
	}

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
			fmt.Fprintf(c.App.Writer, "%s\terror: %v\n", o.Request.TemplateName, o.Err)
			continue
		}
		fmt.Fprintf(c.App.Writer, "%s\t%d\n", o.Request.TemplateName, len(o.Result.ConceptIDs))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d searches failed", failed, len(outcomes))
	}
	return nil
}

func searchRequest(c *cli.Context, name string) (search.Request, error) {
	lexical, err := parseLexical(c.String("lexical"))
	if err != nil {
		return search.Request{}, err
	}
	logicalMatch := !c.Bool("mismatch")
	return search.Request{
		TemplateName: name,
		Branch:       c.String("branch"),
		LogicalMatch: &logicalMatch,
		LexicalMatch: lexical,
		Stated:       c.Bool("stated"),
	}, nil
}

func parseLexical(value string) (*bool, error) {
	var match bool
	switch strings.ToLower(value) {
	case "":
		return nil, nil
	case "match":
		match = true
	case "mismatch":
		match = false
	default:
		return nil, fmt.Errorf("invalid lexical filter %q: must be match or mismatch", value)
	}
	return &match, nil
}

func serveCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := openService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	cfg := svc.Config()
	if c.Bool("watch") || cfg.WatchTemplates {
		if cfg.TemplatesDir == "" {
			return fmt.Errorf("a templates directory is required to watch for changes")
		}
		w, err := svc.WatchTemplates(ctx, templates.OnReload(func(imported int, err error) {
			if err != nil {
				slog.Warn("template reload had failures", "imported", imported, "err", err)
				return
			}
			slog.Info("templates reloaded", "imported", imported)
		}))
		if err != nil {
			return err
		}
		defer w.Close()
	}

	srv, err := svc.NewServer()
	if err != nil {
		return err
	}
	addr := cfg.ListenAddr
	if c.IsSet("listen") {
		addr = c.String("listen")
	}
	return srv.ListenAndServe(ctx, addr)
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
