// cmd/cifp/main.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// cifp decodes FAA CIFP files and reports on, exports, or serves their
// contents.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mmp/cifp/aviation"
	"github.com/mmp/cifp/log"
	"github.com/mmp/cifp/server"
	"github.com/mmp/cifp/storage"
	"github.com/mmp/cifp/util"

	"github.com/apenwarr/fixconsole"
	"github.com/goforj/godump"
	"github.com/pkg/browser"
	"golang.org/x/sync/errgroup"
)

var (
	logLevel    = flag.String("loglevel", "info", "logging level: debug, info, warn, error")
	logDir      = flag.String("logdir", "", "log file directory")
	lint        = flag.Bool("lint", false, "report all decoding errors; exit with status 1 if there are any")
	dumpID      = flag.String("dump", "", "dump the entities with the given identifier")
	showRoutes  = flag.String("routes", "", "display the SIDs, STARs, and approaches known for the given airport")
	jsonOut     = flag.String("json", "", "write the decoded data as JSON to the given file (zstd-compressed if it ends in .zst)")
	sqliteOut   = flag.String("sqlite", "", "export the decoded data to the given SQLite database")
	postgresURL = flag.String("postgres", "", "export the decoded data to the PostgreSQL database with the given connection string")
	useCache    = flag.Bool("cache", false, "reuse snapshots of previously decoded files")
	cacheDir    = flag.String("cachedir", "", "directory for decoded snapshots")
	serveAddr   = flag.String("serve", "", "serve lookups over HTTP at the given address")
	lruSize     = flag.Int("lru", 1024, "maximum number of cached HTTP responses")
	lruTTL      = flag.Duration("lruttl", 10*time.Minute, "lifetime of cached HTTP responses")
	openBrowser = flag.Bool("open", false, "open the server's status page in a web browser")
	saveConfig  = flag.Bool("saveconfig", false, "save the effective settings to the config file")
)

// Snapshots are culled to keep the cache under this size.
const maxCacheBytes = 512 * 1024 * 1024

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: cifp [flags] file...\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := fixconsole.FixConsoleIfNeeded(); err != nil {
		fmt.Printf("FixConsole: %v\n", err)
	}

	config := defaultConfig()
	configPath, err := configFilePath()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	} else if config, err = loadConfig(configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	config.applyFlags(flag.CommandLine)

	lg := log.New(config.LogLevel, config.LogDir)

	if *saveConfig && configPath != "" {
		if err := config.Save(configPath); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", configPath, err)
			os.Exit(1)
		}
		fmt.Printf("Saved configuration to %s\n", configPath)
	}

	os.Exit(run(config, lg))
}

func flagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) { set = set || f.Name == name })
	return set
}

func run(config Config, lg *log.Logger) int {
	defer lg.CatchAndReportCrash()

	paths := flag.Args()
	if len(paths) == 0 {
		if *saveConfig {
			return 0
		}
		flag.Usage()
		return 2
	}

	serve := flagSet("serve")
	single := *dumpID != "" || *showRoutes != "" || *jsonOut != "" || *sqliteOut != "" || *postgresURL != "" || serve
	if single && len(paths) > 1 {
		fmt.Fprintln(os.Stderr, "-dump, -routes, -json, -sqlite, -postgres, and -serve require a single CIFP file")
		return 2
	}
	if *useCache && *lint {
		lg.Warn("ignoring -cache with -lint so that all errors are reported")
		*useCache = false
	}

	files, err := decodeFiles(paths, *useCache, config.CacheDir, lg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *useCache {
		if err := util.CacheCullObjects(config.CacheDir, maxCacheBytes); err != nil {
			lg.Warn("unable to cull cache", "error", err)
		}
	}

	if *lint {
		bad := util.FilterSlice(files, func(f *decodedFile) bool { return f.errors.HaveErrors() })
		nerrors := 0
		for _, f := range bad {
			f.errors.PrintErrors(os.Stdout, nil)
			nerrors += f.errors.Count()
		}
		if nerrors > 0 {
			fmt.Printf("%d errors in %d of %d files\n", nerrors, len(bad), len(files))
			return 1
		}
		return 0
	}

	if !single {
		for _, f := range files {
			printSummary(os.Stdout, f)
		}
		return 0
	}

	f := files[0]
	if *dumpID != "" {
		entities := findEntities(f.result, strings.ToUpper(*dumpID))
		if len(entities) == 0 {
			fmt.Fprintf(os.Stderr, "%s: not found\n", *dumpID)
			return 1
		}
		for _, e := range entities {
			godump.Fdump(os.Stdout, e)
		}
	}

	db, err := aviation.Link(f.result)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if *showRoutes != "" {
		if err := printRoutes(os.Stdout, db, strings.ToUpper(*showRoutes)); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}

	if *jsonOut != "" {
		if err := util.WriteCompressedFile(*jsonOut, db.WriteJSON); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", *jsonOut, err)
			return 1
		}
		lg.Info("wrote JSON", "path", *jsonOut)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if *sqliteOut != "" {
		if err := storage.Export(ctx, db, *sqliteOut, lg); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", *sqliteOut, err)
			return 1
		}
	}
	if *postgresURL != "" {
		if err := storage.ExportPostgres(ctx, db, *postgresURL, lg); err != nil {
			fmt.Fprintf(os.Stderr, "postgres: %v\n", err)
			return 1
		}
	}

	if serve {
		s, err := server.New(db, server.Config{
			CacheSize: config.CacheSize,
			CacheTTL:  time.Duration(config.CacheTTL),
			Ready: func(url string) {
				fmt.Printf("Serving %s at %s\n", f.path, url)
				if *openBrowser {
					if err := browser.OpenURL(url + "/status"); err != nil {
						lg.Warn("unable to open browser", "error", err)
					}
				}
			},
		}, lg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if err := s.ListenAndServe(ctx, config.ServerAddress); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}

	return 0
}

type decodedFile struct {
	path    string
	result  *aviation.Result
	errors  util.ErrorLogger
	elapsed time.Duration
}

// decodeFiles decodes each of the given files concurrently. Decoding
// errors are collected per file; the returned error is only for files
// that couldn't be read.
func decodeFiles(paths []string, useCache bool, cacheDir string, lg *log.Logger) ([]*decodedFile, error) {
	files := make([]*decodedFile, len(paths))

	var eg errgroup.Group
	eg.SetLimit(runtime.NumCPU())
	for i, path := range paths {
		eg.Go(func() error {
			f := &decodedFile{path: path}
			f.errors.Push(path)

			flg := lg.With("file", path)
			opts := aviation.Options{
				OnError: func(err error, line int) {
					if line == 0 {
						f.errors.ErrorString("aggregation: %v", err)
					} else {
						f.errors.Error(err)
					}
				},
				Progress: func(n int64) {
					flg.Debug("decoding", "bytes", n)
				},
				Logger: flg,
			}

			start := time.Now()
			var err error
			if useCache {
				f.result, err = aviation.DecodeFileCached(path, cacheDir, opts)
			} else {
				f.result, err = aviation.DecodeFile(path, opts)
			}
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			f.elapsed = time.Since(start)
			f.errors.Pop()
			flg.Info("decoded", "records", f.result.TotalRecords(), "errors", f.errors.Count(),
				"elapsed", f.elapsed)

			files[i] = f
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

func printSummary(w io.Writer, f *decodedFile) {
	cycle := "unknown"
	for _, h := range f.result.Headers {
		if h.Cycle != "" {
			cycle = h.Cycle
			break
		}
	}
	fmt.Fprintf(w, "%s: cycle %s, %d records, %d errors (%s)\n", f.path, cycle, f.result.TotalRecords(),
		f.errors.Count(), f.elapsed.Round(time.Millisecond))

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', tabwriter.AlignRight)
	for kind, n := range util.SortedMap(f.result.Stats()) {
		fmt.Fprintf(tw, "    %s\t%d\t\n", kind, n)
	}
	tw.Flush()
}

func printRoutes(w io.Writer, db *aviation.Database, icao string) error {
	sids, stars, approaches, err := db.Procedures(icao)
	if err != nil {
		return err
	}

	list := func(kind string, idents []string) error {
		fmt.Fprintf(w, "%s %s:\n", icao, kind)
		for _, id := range idents {
			procs, err := db.LookupProcedure(icao, id)
			if err != nil {
				return err
			}
			for _, p := range procs {
				fmt.Fprintf(w, "    %-24s %s\n", p.String(), strings.Join(p.Fixes(), " "))
			}
		}
		return nil
	}
	if err := list("SIDs", sids); err != nil {
		return err
	}
	if err := list("STARs", stars); err != nil {
		return err
	}
	return list("approaches", approaches)
}

func appendEntity[V any](found []any, m map[string]V, id string) []any {
	if v, ok := m[id]; ok {
		return append(found, v)
	}
	return found
}

// findEntities returns the entities in r with the given identifier.
// Airspace is matched against the components of its key.
func findEntities(r *aviation.Result, id string) []any {
	var found []any
	found = appendEntity(found, r.Airports, id)
	found = appendEntity(found, r.Heliports, id)
	found = appendEntity(found, r.VHFNavaids, id)
	found = appendEntity(found, r.NDBNavaids, id)
	found = appendEntity(found, r.EnrouteWaypoints, id)
	found = appendEntity(found, r.Airways, id)
	found = appendEntity(found, r.EnrouteHolds, id)

	inKey := func(key string) bool { return strings.Contains("/"+key+"/", "/"+id+"/") }
	for key, ca := range util.SortedMap(r.ControlledAirspace) {
		if inKey(key) {
			found = append(found, ca)
		}
	}
	for key, sua := range util.SortedMap(r.SpecialUseAirspace) {
		if inKey(key) {
			found = append(found, sua)
		}
	}
	return found
}
