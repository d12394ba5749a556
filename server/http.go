// server/http.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package server

import (
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/mmp/cifp/arinc424"
	"github.com/mmp/cifp/aviation"
	"github.com/mmp/cifp/math"
	"github.com/mmp/cifp/util"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		s.instrument,
		middleware.Recoverer,
	)

	r.Get("/airports/{id}", s.jsonHandler(s.getAirport))
	r.Get("/airports/{id}/procedures", s.jsonHandler(s.listProcedures))
	r.Get("/airports/{id}/procedures/{proc}", s.jsonHandler(s.getProcedure))
	r.Get("/fixes/{id}", s.jsonHandler(s.getFix))
	r.Get("/navaids/{id}", s.jsonHandler(s.getNavaid))
	r.Get("/airways/{id}", s.jsonHandler(s.getAirway))
	r.Get("/stats", s.jsonHandler(s.getStats))

	r.Get("/status", s.statusHandler)
	r.Handle("/metrics", s.metrics.Handler())

	r.Mount("/debug", middleware.Profiler())

	return r
}

// instrument records metrics for each request and logs it.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unknown"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := util.Select(ww.Status() == 0, http.StatusOK, ww.Status())
		elapsed := time.Since(start)

		s.metrics.Requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		s.metrics.Durations.WithLabelValues(route).Observe(elapsed.Seconds())
		s.lg.Debug("served request", slog.String("method", r.Method), slog.String("path", r.URL.Path),
			slog.Int("status", status), slog.Duration("elapsed", elapsed),
			slog.String("request_id", middleware.GetReqID(r.Context())))
	})
}

func writeJSON(w http.ResponseWriter, status int, b []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}

func writeError(w http.ResponseWriter, status int, err error) {
	b, _ := json.Marshal(map[string]string{"error": err.Error()})
	writeJSON(w, status, b)
}

// jsonHandler returns a handler that responds with fn's result encoded
// as JSON. Successful responses are cached by request URI.
func (s *Server) jsonHandler(fn func(r *http.Request) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.RequestURI()
		if s.cache != nil {
			b, ok := s.cache.Get(key)
			s.metrics.CacheLookup(ok)
			if ok {
				writeJSON(w, http.StatusOK, b)
				return
			}
		}

		v, err := fn(r)
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		b, err := json.Marshal(v)
		if err != nil {
			s.lg.Error("unable to encode response", "path", r.URL.Path, "error", err)
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		if s.cache != nil {
			s.cache.Add(key, b)
		}
		writeJSON(w, http.StatusOK, b)
	}
}

func pathID(r *http.Request, name string) string {
	return strings.ToUpper(chi.URLParam(r, name))
}

func (s *Server) getAirport(r *http.Request) (any, error) {
	ap, hp, err := s.db.LookupAirport(pathID(r, "id"))
	if err != nil {
		return nil, err
	} else if ap != nil {
		return ap, nil
	}
	return hp, nil
}

type procedureList struct {
	SIDs       []string `json:"sids"`
	STARs      []string `json:"stars"`
	Approaches []string `json:"approaches"`
}

func (s *Server) listProcedures(r *http.Request) (any, error) {
	sids, stars, approaches, err := s.db.Procedures(pathID(r, "id"))
	if err != nil {
		return nil, err
	}
	return procedureList{SIDs: sids, STARs: stars, Approaches: approaches}, nil
}

func (s *Server) getProcedure(r *http.Request) (any, error) {
	return s.db.LookupProcedure(pathID(r, "id"), pathID(r, "proc"))
}

// fixInfo is the response for fix and navaid lookups.
type fixInfo struct {
	Ident     string  `json:"ident"`
	Kind      string  `json:"kind"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	Airport   string  `json:"airport,omitempty"`
	Fix       any     `json:"fix"`
}

func newFixInfo(f aviation.Fix) fixInfo {
	fi := fixInfo{
		Ident:     f.FixIdent(),
		Latitude:  f.Position().Latitude(),
		Longitude: f.Position().Longitude(),
		Fix:       f,
	}
	switch f := f.(type) {
	case *aviation.VHFNavaid:
		fi.Kind, fi.Airport = "VHF navaid", f.Airport
	case *aviation.NDBNavaid:
		fi.Kind, fi.Airport = "NDB navaid", f.Airport
	case *aviation.Waypoint:
		fi.Kind = util.Select(f.IsTerminal(), "terminal waypoint", "enroute waypoint")
		fi.Airport = f.Airport
	}
	return fi
}

// getFix resolves a fix the same way procedure legs do; the optional
// "hint" query parameter gives the section code and "airport" the
// airport for terminal fixes.
func (s *Server) getFix(r *http.Request) (any, error) {
	q := r.URL.Query()
	hint := arinc424.SectionCode(strings.ToUpper(q.Get("hint")))
	if len(hint) == 1 {
		hint += " "
	}
	if !hint.IsBlank() && !arinc424.KnownSection(hint) {
		return nil, fmt.Errorf("%s: unknown section code: %w", hint, ErrInvalidQuery)
	}

	id := pathID(r, "id")
	f, ok := s.db.ResolveFix(id, hint, strings.ToUpper(q.Get("airport")))
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrUnknownFix)
	}
	return newFixInfo(f), nil
}

func (s *Server) getNavaid(r *http.Request) (any, error) {
	id, q := pathID(r, "id"), r.URL.Query()
	n, ok := s.db.ResolveNavaid(id, strings.ToUpper(q.Get("section")), strings.ToUpper(q.Get("airport")))
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrUnknownNavaid)
	}
	return newFixInfo(n), nil
}

// getAirway returns an airway or, if "from" and "to" are given, the
// fixes along the segment between them.
func (s *Server) getAirway(r *http.Request) (any, error) {
	id := pathID(r, "id")
	aw, ok := s.db.Airways[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrUnknownAirway)
	}

	q := r.URL.Query()
	from, to := strings.ToUpper(q.Get("from")), strings.ToUpper(q.Get("to"))
	if from == "" && to == "" {
		return aw, nil
	} else if from == "" || to == "" {
		return nil, fmt.Errorf("both \"from\" and \"to\" must be given: %w", ErrInvalidQuery)
	}
	seg, err := aw.Segment(from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}
	return seg, nil
}

type statsResponse struct {
	Cycle    string         `json:"cycle,omitempty"`
	Total    int            `json:"total"`
	Entities map[string]int `json:"entities"`
}

func (s *Server) getStats(r *http.Request) (any, error) {
	resp := statsResponse{
		Total:    s.db.TotalRecords(),
		Entities: s.db.Stats(),
	}
	for _, h := range s.db.Headers {
		if h.Cycle != "" {
			resp.Cycle = h.Cycle
			break
		}
	}
	return resp, nil
}

///////////////////////////////////////////////////////////////////////////
// Status page

type serverStats struct {
	Uptime           time.Duration
	AllocMemory      uint64
	TotalAllocMemory uint64
	SysMemory        uint64
	NumGC            uint32
	NumGoRoutines    int
	CPUUsage         int
	HostMemoryUsage  int
	Port             int
	CachedResponses  int

	Cycle    string
	Entities []entityCount
}

type entityCount struct {
	Kind  string
	Count int
}

var statusTemplate = template.Must(template.New("").Parse(`
<!DOCTYPE html>
<html>
<head>
<title>CIFP server status</title>
</head>
<style>
table {
  border-collapse: collapse;
  width: 50%;
}

th, td {
  border: 1px solid #dddddd;
  padding: 8px;
  text-align: left;
}

tr:nth-child(even) {
  background-color: #f2f2f2;
}
</style>
<body>
<h1>Server Status</h1>
<ul>
  <li>Uptime: {{.Uptime}}</li>
  <li>Port: {{.Port}}</li>
  <li>CPU usage: {{.CPUUsage}}%</li>
  <li>Host memory usage: {{.HostMemoryUsage}}%</li>
  <li>Allocated memory: {{.AllocMemory}} MB</li>
  <li>Total allocated memory: {{.TotalAllocMemory}} MB</li>
  <li>System memory: {{.SysMemory}} MB</li>
  <li>Garbage collection passes: {{.NumGC}}</li>
  <li>Running goroutines: {{.NumGoRoutines}}</li>
  <li>Cached responses: {{.CachedResponses}}</li>
</ul>

<h1>CIFP {{.Cycle}}</h1>
<table>
  <tr>
  <th>Kind</th>
  <th>Count</th>
  </tr>
{{range .Entities}}
  <tr>
  <td>{{.Kind}}</td>
  <td>{{.Count}}</td>
  </tr>
{{end}}
</table>

</body>
</html>
`))

func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	stats := serverStats{
		Uptime:           time.Since(s.startTime).Round(time.Second),
		AllocMemory:      m.Alloc / (1024 * 1024),
		TotalAllocMemory: m.TotalAlloc / (1024 * 1024),
		SysMemory:        m.Sys / (1024 * 1024),
		NumGC:            m.NumGC,
		NumGoRoutines:    runtime.NumGoroutine(),
		Port:             s.port,
	}
	// With a zero interval, usage is measured since the previous call.
	if usage, err := cpu.Percent(0, false); err == nil && len(usage) > 0 {
		stats.CPUUsage = int(math.Round(usage[0]))
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		stats.HostMemoryUsage = int(math.Round(vm.UsedPercent))
	}
	if s.cache != nil {
		stats.CachedResponses = s.cache.Len()
	}
	for _, h := range s.db.Headers {
		if h.Cycle != "" {
			stats.Cycle = h.Cycle
			break
		}
	}
	for kind, n := range util.SortedMap(s.db.Stats()) {
		stats.Entities = append(stats.Entities, entityCount{Kind: kind, Count: n})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := statusTemplate.Execute(w, stats); err != nil {
		s.lg.Warn("unable to render status page", "error", err)
	}
}
