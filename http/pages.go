// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package http

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"net/url"

	"github.com/molecula/qsarview"
	"github.com/molecula/qsarview/errors"
)

//go:embed templates/*.html
var templateFS embed.FS

// funcs are available to every page template. pathEscape makes a value safe
// as a single segment of a URL path.
var funcs = template.FuncMap{
	"pathEscape": url.PathEscape,
}

// pages holds one template set per page, each made of the layout and the
// page's "content" block.
type pages struct {
	byPage map[qsarview.Page]*template.Template
}

func newPages() (*pages, error) {
	p := &pages{byPage: map[qsarview.Page]*template.Template{}}
	for page, file := range map[qsarview.Page]string{
		qsarview.PageHome:  "templates/home.html",
		qsarview.PageAlpha: "templates/receptor.html",
		qsarview.PageBeta:  "templates/receptor.html",
		qsarview.PageAbout: "templates/about.html",
	} {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", file)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing %s", file)
		}
		p.byPage[page] = t
	}
	return p, nil
}

// pageData is the root object of every page template.
type pageData struct {
	Page    qsarview.Page
	Title   string
	Version string

	// Home
	Home []qsarview.ReceptorSummary

	// Receptor
	View        *qsarview.ReceptorPage
	Datasets    []qsarview.DatasetKind
	OpenEnabled bool

	// About
	DataDir string
	Layout  []qsarview.CatalogEntry
}

// render executes the page into a buffer first so that a template error
// still yields a clean 500.
func (h *Handler) render(w http.ResponseWriter, status int, data *pageData) {
	data.Version = h.api.Version()

	var buf bytes.Buffer
	if err := h.pages.byPage[data.Page].ExecuteTemplate(&buf, "layout", data); err != nil {
		h.logger.Errorf("rendering %s page: %v", data.Page, err)
		http.Error(w, "rendering page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Printf("write %s page error: %s", data.Page, err)
	}
}

func (h *Handler) handleHome(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, &pageData{
		Page:  qsarview.PageHome,
		Title: "Home",
		Home:  h.api.Home(),
	})
}

func (h *Handler) handleAbout(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, &pageData{
		Page:    qsarview.PageAbout,
		Title:   "About",
		DataDir: h.api.DataDir(),
		Layout:  qsarview.CatalogEntries(),
	})
}

// handleReceptor handles GET /receptor/{variant}. The dataset and ligand
// come from the query; everything the page shows is derived from them. A
// failure to find the ligand's file is a 404 but the page still renders
// with its selectors.
func (h *Handler) handleReceptor(w http.ResponseWriter, r *http.Request) {
	v, _, _, err := selection(r)
	if err != nil {
		http.Error(w, err.Error(), statusCode(err))
		return
	}
	q := r.URL.Query()
	var d qsarview.DatasetKind
	if s := q.Get("dataset"); s != "" {
		if d, err = qsarview.ParseDatasetKind(s); err != nil {
			http.Error(w, err.Error(), statusCode(err))
			return
		}
	}

	view, err := h.api.ReceptorPage(v, d, q.Get("ligand"))
	if err != nil {
		http.Error(w, err.Error(), statusCode(err))
		return
	}

	status := http.StatusOK
	if view.Err != nil && !errors.Is(view.Err, qsarview.ErrCatalogEmpty) {
		status = statusCode(view.Err)
	}
	h.render(w, status, &pageData{
		Page:        qsarview.PageOf(v),
		Title:       v.Name() + " Receptor",
		View:        view,
		Datasets:    qsarview.DatasetKinds,
		OpenEnabled: h.api.OpenEnabled(),
	})
}
