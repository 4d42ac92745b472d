// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package http

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/molecula/qsarview"
	"github.com/molecula/qsarview/errors"
)

func TestValidHeaderAcceptJSON(t *testing.T) {
	tests := []struct {
		accept []string
		exp    bool
	}{
		{nil, true},
		{[]string{"application/json"}, true},
		{[]string{"*/*"}, true},
		{[]string{"application/*"}, true},
		{[]string{"text/html, application/json;q=0.9"}, true},
		{[]string{"text/plain"}, false},
		{[]string{"text/html", "image/png"}, false},
	}
	for i, test := range tests {
		h := http.Header{}
		for _, a := range test.accept {
			h.Add("Accept", a)
		}
		if got := validHeaderAcceptJSON(h); got != test.exp {
			t.Errorf("test %d: expected %v for %v, got %v", i, test.exp, test.accept, got)
		}
	}
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err error
		exp int
	}{
		{qsarview.NewErrBadRequest("bad"), http.StatusBadRequest},
		{qsarview.NewErrStructureNotFound("/x"), http.StatusNotFound},
		{qsarview.NewErrFileIntegrityMismatch("/x"), http.StatusNotFound},
		{errors.Wrap(qsarview.NewErrFileIntegrityMismatch("/x"), "loading"), http.StatusNotFound},
		{qsarview.NewErrExternalOpenFailure("/x", fmt.Errorf("boom")), http.StatusInternalServerError},
		{qsarview.NewErrTooManyRequests("open"), http.StatusTooManyRequests},
		{fmt.Errorf("plain"), http.StatusInternalServerError},
	}
	for i, test := range tests {
		if got := statusCode(test.err); got != test.exp {
			t.Errorf("test %d: expected %d for %v, got %d", i, test.exp, test.err, got)
		}
	}
}

func TestQueryValidationSpec(t *testing.T) {
	spec := queryValidationSpecRequired().Optional("dataset", "ligand")
	if err := spec.validate(url.Values{"dataset": {"ce"}, "ligand": {"PFOA"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := spec.validate(url.Values{"page": {"home"}}); err == nil {
		t.Fatalf("expected error for unknown argument")
	}

	spec = queryValidationSpecRequired("dataset")
	if err := spec.validate(url.Values{}); err == nil || err.Error() != "dataset is required" {
		t.Fatalf("expected required error, got %v", err)
	}
}

func TestPagesParse(t *testing.T) {
	p, err := newPages()
	if err != nil {
		t.Fatal(err)
	}
	for _, page := range []qsarview.Page{qsarview.PageHome, qsarview.PageAlpha, qsarview.PageBeta, qsarview.PageAbout} {
		if p.byPage[page] == nil {
			t.Errorf("no template for %s", page)
		}
	}
}
