// Package web serves one parsed dependency tree over HTTP.
package web

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"strconv"
	"strings"

	"nqtv/internal/model"
	"nqtv/internal/query"
	"nqtv/internal/tree"
)

//go:embed static/*
var staticFS embed.FS

// Server answers API requests about a single Result.
type Server struct {
	result *query.Result
}

func NewServer(res *query.Result) *Server {
	return &Server{result: res}
}

// Handler returns the routes of the web view.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	subFS, _ := fs.Sub(staticFS, "static")
	mux.Handle("/", http.FileServer(http.FS(subFS)))

	mux.HandleFunc("/api/tree", s.handleTree)
	mux.HandleFunc("/api/raw", s.handleRaw)
	mux.HandleFunc("/api/lookup", s.handleLookup)
	mux.HandleFunc("/api/first", s.handleFirst)
	mux.HandleFunc("/api/search", s.handleSearch)
	mux.HandleFunc("/api/line-context", s.handleLineContext)
	mux.HandleFunc("/api/report", s.handleReport)
	mux.HandleFunc("/api/help", handleHelp)
	return mux
}

// StartServer serves res on addr until the process exits.
func StartServer(addr string, res *query.Result) {
	fmt.Printf("Starting nqtv web server at http://%s\n", addr)
	fmt.Printf("Showing %s (%d entries)\n", res.Root().Path, res.Size())

	if err := http.ListenAndServe(addr, NewServer(res).Handler()); err != nil {
		log.Fatal(err)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("web: encode response: %v", err)
	}
}

// sorted applies the optional ?sort= parameter.
func (s *Server) sorted(r *http.Request) (*query.Result, error) {
	order, err := query.ParseSortOrder(r.URL.Query().Get("sort"))
	if err != nil {
		return nil, err
	}
	return s.result.Sorted(order), nil
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	res, err := s.sorted(r)
	if err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	writeJSON(w, query.NewDocument(res))
}

func (s *Server) handleRaw(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(s.result.Raw))
}

type occurrenceView struct {
	TreePath tree.Path       `json:"treePath"`
	Path     model.StorePath `json:"path"`
	Recurse  model.Recurse   `json:"recurse"`
	Line     int             `json:"line"`
}

func (s *Server) occurrence(res *query.Result, p tree.Path) occurrenceView {
	e, _ := res.LookupPath(p)
	line, _ := res.LineOf(p)
	return occurrenceView{TreePath: p, Path: e.Path, Recurse: e.Recurse, Line: line}
}

func (s *Server) occurrences(res *query.Result, paths []tree.Path) []occurrenceView {
	views := make([]occurrenceView, 0, len(paths))
	for _, p := range paths {
		views = append(views, s.occurrence(res, p))
	}
	return views
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	res, err := s.sorted(r)
	if err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	p, err := tree.ParsePath(r.URL.Query().Get("path"))
	if err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	node, ok := res.Tree.Node(p)
	if !ok {
		http.Error(w, fmt.Sprintf("no node at [%s]", p), 404)
		return
	}

	response := struct {
		occurrenceView
		Children    []occurrenceView `json:"children"`
		Occurrences []occurrenceView `json:"occurrences"`
	}{
		occurrenceView: s.occurrence(res, p),
		Occurrences:    s.occurrences(res, res.Occurrences(node.Item.Path)),
	}
	children := make([]tree.Path, len(node.Children))
	for i := range node.Children {
		children[i] = p.Push(i)
	}
	response.Children = s.occurrences(res, children)
	writeJSON(w, response)
}

func (s *Server) handleFirst(w http.ResponseWriter, r *http.Request) {
	res, err := s.sorted(r)
	if err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	drv := strings.TrimSpace(r.URL.Query().Get("drv"))
	if drv == "" {
		http.Error(w, "drv is required", 400)
		return
	}
	sp := model.StorePath(drv)
	first, ok := res.FirstOccurrence(sp)
	if !ok {
		http.Error(w, fmt.Sprintf("%s is not in the tree", drv), 404)
		return
	}
	full, _ := res.FullOccurrence(sp)
	writeJSON(w, struct {
		First       occurrenceView   `json:"first"`
		Full        occurrenceView   `json:"full"`
		Occurrences []occurrenceView `json:"occurrences"`
	}{
		First:       s.occurrence(res, first),
		Full:        s.occurrence(res, full),
		Occurrences: s.occurrences(res, res.Occurrences(sp)),
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	res, err := s.sorted(r)
	if err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	q := r.URL.Query().Get("q")
	if strings.TrimSpace(q) == "" {
		http.Error(w, "q is required", 400)
		return
	}
	writeJSON(w, s.occurrences(res, res.Search(q)))
}

func (s *Server) handleLineContext(w http.ResponseWriter, r *http.Request) {
	lineNumStr := r.URL.Query().Get("line")
	if lineNumStr == "" {
		http.Error(w, "line is required", 400)
		return
	}
	lineNum, err := strconv.Atoi(lineNumStr)
	if err != nil {
		http.Error(w, "invalid line number", 400)
		return
	}
	writeJSON(w, model.LineContextOf(s.result.Raw, lineNum))
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	res, err := s.sorted(r)
	if err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	verbose := r.URL.Query().Get("verbose") != ""
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(query.GenerateReport(res, verbose)))
}

func handleHelp(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/markdown")
	w.Write([]byte(model.Help()))
}
