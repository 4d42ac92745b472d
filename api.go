// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package qsarview

import (
	"context"

	"github.com/molecula/qsarview/errors"
	"github.com/molecula/qsarview/logger"
	"github.com/ricochet2200/go-disk-usage/du"
	"golang.org/x/exp/slices"
)

// PreviewLines is the number of leading lines shown in the file preview.
const PreviewLines = 50

// Page names one of the pages of the viewer.
type Page string

const (
	PageHome  Page = "home"
	PageAlpha Page = "alpha"
	PageBeta  Page = "beta"
	PageAbout Page = "about"
)

// PageOf returns the page showing receptor v.
func PageOf(v ReceptorVariant) Page {
	if v == Beta {
		return PageBeta
	}
	return PageAlpha
}

// API builds the views served over HTTP and used by the CLI. Every call
// takes the full selection (receptor, dataset, ligand) as arguments and
// reads from disk; nothing is remembered between calls.
type API struct {
	catalog    *Catalog
	opener     Opener
	systemInfo SystemInfo
	logger     logger.Logger
}

// apiOption is a functional option type for API.
type apiOption func(*API) error

func OptAPICatalog(c *Catalog) apiOption {
	return func(a *API) error {
		a.catalog = c
		return nil
	}
}

func OptAPILogger(l logger.Logger) apiOption {
	return func(a *API) error {
		a.logger = l
		return nil
	}
}

// OptAPIOpener enables opening structure files on the host with o. Without
// it, Open always fails with ErrBadRequest.
func OptAPIOpener(o Opener) apiOption {
	return func(a *API) error {
		a.opener = o
		return nil
	}
}

// OptAPISystemInfo sets the source of the host details reported by Info.
func OptAPISystemInfo(si SystemInfo) apiOption {
	return func(a *API) error {
		a.systemInfo = si
		return nil
	}
}

// NewAPI returns a new API instance.
func NewAPI(opts ...apiOption) (*API, error) {
	api := &API{
		opener:     nopOpener{},
		systemInfo: NewNopSystemInfo(),
		logger:     logger.NopLogger,
	}

	for _, opt := range opts {
		if err := opt(api); err != nil {
			return nil, errors.Wrap(err, "applying option")
		}
	}

	if api.catalog == nil {
		return nil, errors.New(errors.ErrUncoded, "must pass OptAPICatalog")
	}
	if api.opener == nil {
		api.opener = nopOpener{}
	}
	if api.systemInfo == nil {
		api.systemInfo = NewNopSystemInfo()
	}
	return api, nil
}

// Version returns the version of the running binary.
func (api *API) Version() string {
	return Version
}

// DataDir returns the directory the catalog reads from.
func (api *API) DataDir() string {
	return api.catalog.Root()
}

// OpenEnabled reports whether Open may launch applications on this host.
func (api *API) OpenEnabled() bool {
	_, disabled := api.opener.(nopOpener)
	return !disabled
}

// ServerInfo describes the running server and its host.
type ServerInfo struct {
	Version     string    `json:"version"`
	DataDir     string    `json:"dataDir"`
	OpenEnabled bool      `json:"openEnabled"`
	Host        *HostInfo `json:"host"`

	// Disk space of the volume holding DataDir, in bytes. Zero when the
	// directory cannot be read.
	DataDirFree uint64 `json:"dataDirFree"`
	DataDirSize uint64 `json:"dataDirSize"`
}

// Info reports the server version, its configuration and details of the
// host.
func (api *API) Info() (*ServerInfo, error) {
	host, err := CollectHostInfo(api.systemInfo)
	if err != nil {
		return nil, errors.Wrap(err, "collecting host info")
	}
	usage := du.NewDiskUsage(api.DataDir())
	return &ServerInfo{
		Version:     api.Version(),
		DataDir:     api.DataDir(),
		OpenEnabled: api.OpenEnabled(),
		Host:        host,
		DataDirFree: usage.Free(),
		DataDirSize: usage.Size(),
	}, nil
}

// CatalogView is the list of ligands for one receptor and dataset.
type CatalogView struct {
	Receptor  ReceptorVariant `json:"receptor"`
	Dataset   DatasetKind     `json:"dataset"`
	Directory string          `json:"directory"`
	Pattern   string          `json:"pattern"`
	Ligands   []string        `json:"ligands"`

	// Empty is set when the directory is missing or has no matching files.
	Empty   bool   `json:"empty"`
	Message string `json:"message,omitempty"`
}

// Catalog lists the ligands for v and d. An empty catalog is not an error;
// the view carries the message to show instead.
func (api *API) Catalog(v ReceptorVariant, d DatasetKind) (*CatalogView, error) {
	entry, err := LookupEntry(v, d)
	if err != nil {
		return nil, err
	}
	ligands, err := api.catalog.ListLigands(v, d)
	if err != nil {
		return nil, errors.Wrap(err, "listing ligands")
	}

	view := &CatalogView{
		Receptor:  v,
		Dataset:   d,
		Directory: entry.Dir,
		Pattern:   entry.Pattern(),
		Ligands:   ligands,
	}
	if len(ligands) == 0 {
		CounterCatalogEmpty.WithLabelValues(string(v), string(d)).Inc()
		view.Empty = true
		view.Message = NewErrCatalogEmpty(entry.Dir).Error()
		api.logger.Warnf("catalog empty: %s", view.Message)
	}
	return view, nil
}

// StructureView is one structure file plus everything the viewer page shows
// about it.
type StructureView struct {
	Receptor ReceptorVariant `json:"receptor"`
	Dataset  DatasetKind     `json:"dataset"`
	Ligand   string          `json:"ligand"`
	Filename string          `json:"filename"`
	Title    string          `json:"title"`
	Size     int64           `json:"size"`
	SizeKB   string          `json:"sizeKB"`
	Digest   string          `json:"digest"`
	Content  string          `json:"content"` // base64
	Preview  string          `json:"preview"`

	File *StructureFile `json:"-"`
}

// Structure reads the file of ligand for v and d. A ligand missing from the
// listing is ErrNotFound; a listed ligand whose file is gone yields
// ErrFileIntegrityMismatch naming the expected path.
func (api *API) Structure(v ReceptorVariant, d DatasetKind, ligand string) (*StructureView, error) {
	f, err := api.openListed(v, d, ligand)
	if err != nil {
		return nil, err
	}
	CounterStructuresServed.WithLabelValues(string(v), string(d)).Inc()

	return &StructureView{
		Receptor: v,
		Dataset:  d,
		Ligand:   ligand,
		Filename: f.Name,
		Title:    v.Name() + " + " + ligand,
		Size:     f.Size(),
		SizeKB:   f.SizeKB(),
		Digest:   f.Digest(),
		Content:  f.Base64(),
		Preview:  f.Preview(PreviewLines),
		File:     f,
	}, nil
}

// openListed reads the file of ligand, which must be in the current listing
// for v and d. An unlisted ligand is NotFound; a listed ligand whose file is
// missing is a FileIntegrityMismatch.
func (api *API) openListed(v ReceptorVariant, d DatasetKind, ligand string) (*StructureFile, error) {
	if _, err := api.catalog.ResolveFilename(v, d, ligand); err != nil {
		return nil, err
	}
	ligands, err := api.catalog.ListLigands(v, d)
	if err != nil {
		return nil, errors.Wrap(err, "listing ligands")
	}
	if !slices.Contains(ligands, ligand) {
		entry, _ := LookupEntry(v, d)
		return nil, NewErrLigandNotListed(ligand, entry.Dir)
	}

	f, err := api.catalog.OpenStructure(v, d, ligand)
	if errors.Is(err, ErrFileIntegrityMismatch) {
		CounterFileIntegrityMismatches.Inc()
		api.logger.Errorf("%v", err)
	}
	return f, err
}

// ReceptorSummary is a card on the home page.
type ReceptorSummary struct {
	Receptor    ReceptorVariant `json:"receptor"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Counts      []DatasetCount  `json:"counts"`
}

type DatasetCount struct {
	Dataset DatasetKind `json:"dataset"`
	Name    string      `json:"name"`
	Ligands int         `json:"ligands"`
}

// Home summarizes every receptor with its ligand count per dataset. A
// dataset which cannot be listed counts as zero.
func (api *API) Home() []ReceptorSummary {
	out := make([]ReceptorSummary, 0, len(ReceptorVariants))
	for _, v := range ReceptorVariants {
		sum := ReceptorSummary{
			Receptor:    v,
			Name:        v.Name(),
			Description: v.Description(),
		}
		for _, d := range DatasetKinds {
			ligands, err := api.catalog.ListLigands(v, d)
			if err != nil {
				api.logger.Warnf("counting ligands for %s/%s: %v", v, d, err)
			}
			sum.Counts = append(sum.Counts, DatasetCount{Dataset: d, Name: d.Name(), Ligands: len(ligands)})
		}
		out = append(out, sum)
	}
	return out
}

// ReceptorPage is everything on a receptor page for one selection.
type ReceptorPage struct {
	Receptor ReceptorVariant
	Dataset  DatasetKind
	Catalog  *CatalogView
	// Ligand is the selected ligand; the first listed one when none was
	// requested.
	Ligand    string
	Structure *StructureView

	// Err is the user-visible failure, if any. The page stays usable.
	Err error
}

// ReceptorPage resolves a selection into a page. Only an invalid receptor or
// dataset is returned as an error; every other failure is carried in Err so
// the selectors can still be rendered.
func (api *API) ReceptorPage(v ReceptorVariant, d DatasetKind, ligand string) (*ReceptorPage, error) {
	if d == "" {
		d = DatasetKinds[0]
	}
	if _, err := LookupEntry(v, d); err != nil {
		return nil, err
	}

	page := &ReceptorPage{Receptor: v, Dataset: d}
	page.Catalog, page.Err = api.Catalog(v, d)
	if page.Err != nil {
		api.logger.Errorf("receptor page %s/%s: %v", v, d, page.Err)
		return page, nil
	}
	if page.Catalog.Empty {
		page.Err = NewErrCatalogEmpty(page.Catalog.Directory)
		return page, nil
	}

	if ligand == "" {
		ligand = page.Catalog.Ligands[0]
	}
	page.Ligand = ligand
	if !slices.Contains(page.Catalog.Ligands, ligand) {
		page.Err = NewErrLigandNotListed(ligand, page.Catalog.Directory)
		return page, nil
	}

	page.Structure, page.Err = api.Structure(v, d, ligand)
	return page, nil
}

// Open launches the host's default application for the ligand's file.
func (api *API) Open(ctx context.Context, v ReceptorVariant, d DatasetKind, ligand string) (string, error) {
	f, err := api.openListed(v, d, ligand)
	if err != nil {
		return "", err
	}
	if err := api.opener.Open(ctx, f.Path); err != nil {
		if errors.Is(err, ErrExternalOpenFailure) {
			CounterExternalOpenFailures.Inc()
			api.logger.Errorf("%v", err)
		}
		return "", err
	}
	api.logger.Infof("opened %s with the default application", f.Path)
	return f.Path, nil
}
