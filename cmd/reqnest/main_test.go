package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/davrell/reqnest/internal/engine"
	"github.com/davrell/reqnest/internal/store"
	"github.com/davrell/reqnest/internal/transfer"
)

func TestRunImportIntoFreshWorkspace(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	st, err := store.Open(filepath.Join(dir, "workspace.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer st.Close()
	if err := st.Init(ctx); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	eng, err := engine.New(ctx, st)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	src := filepath.Join(dir, "in.json")
	doc := `{"collections":[{"name":"ws","requests":[{"name":"ping","method":"GET","url":"https://example.com/ping"}]}]}`
	if err := os.WriteFile(src, []byte(doc), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if err := runImport(ctx, eng, st, src, "json"); err != nil {
		t.Fatalf("runImport failed on a one-request file: %v", err)
	}

	requests := eng.Model().Requests()
	if len(requests) != 1 || requests[0].Name != "ping" {
		t.Fatalf("imported requests = %+v, want one named ping", requests)
	}
	p, err := st.LoadPayload(requests[0].ID)
	if err != nil {
		t.Fatalf("LoadPayload failed: %v", err)
	}
	if p.Method != "GET" || p.URL != "https://example.com/ping" {
		t.Fatalf("persisted payload = %+v, want GET https://example.com/ping", p)
	}

	cols, _, persisted, err := st.LoadWorkspace(ctx)
	if err != nil {
		t.Fatalf("LoadWorkspace failed: %v", err)
	}
	if len(cols) != 1 || len(persisted) != 1 {
		t.Fatalf("persisted rows = %d collections, %d requests, want 1 and 1", len(cols), len(persisted))
	}
}

func TestResolveFormat(t *testing.T) {
	cases := []struct {
		flag     string
		path     string
		settings string
		want     transfer.Format
	}{
		{"yaml", "out.json", "json", transfer.FormatYAML},
		{"", "out.yml", "json", transfer.FormatYAML},
		{"", "out.json", "yaml", transfer.FormatJSON},
		{"", "out.txt", "yaml", transfer.FormatYAML},
		{"", "out.txt", "", transfer.FormatJSON},
	}
	for _, tc := range cases {
		got := resolveFormat(tc.flag, tc.path, tc.settings)
		if got != tc.want {
			t.Fatalf("resolveFormat(%q, %q, %q) = %q, want %q", tc.flag, tc.path, tc.settings, got, tc.want)
		}
	}
}
