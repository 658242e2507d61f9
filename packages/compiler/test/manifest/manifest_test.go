package manifest_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"bfc-go/packages/compiler/src/compiler"
	"bfc-go/packages/compiler/src/manifest"
	"bfc-go/packages/compiler/src/output"
)

const counterSrc = `"use client";
export function Counter({ label }: { label: string }) {
	const [count, setCount] = createSignal(0);
	return <button onClick={() => setCount(count() + 1)}>{count()}</button>;
}
`

func compileCounter(t *testing.T) *compiler.FileResult {
	t.Helper()
	loader := func(string) (string, error) { return counterSrc, nil }
	result, err := compiler.Compile(context.Background(), "counter.tsx", loader, compiler.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Files) != 1 {
		t.Fatalf("expected 1 compiled file, got %d", len(result.Files))
	}
	return result.Files[0]
}

func TestManifest(t *testing.T) {
	t.Run("should record artifacts, hashes and prop shapes per component", func(t *testing.T) {
		fr := compileCounter(t)
		m := manifest.Build([]*compiler.FileResult{fr})

		entry := m["Counter"]
		if entry == nil {
			t.Fatal("missing Counter entry")
		}
		if entry.Server != "counter.template.tsx" {
			t.Errorf("server = %q, want counter.template.tsx", entry.Server)
		}
		if entry.Client != "Counter.client.js" {
			t.Errorf("client = %q, want Counter.client.js", entry.Client)
		}
		if want := manifest.Hash([]byte(fr.ServerArtifact.Source)); entry.ServerHash != want {
			t.Errorf("serverHash = %q, want hash of the server template", entry.ServerHash)
		}
		if want := manifest.Hash([]byte(fr.ClientArtifacts[0].Source)); entry.ClientHash != want {
			t.Errorf("clientHash = %q, want hash of the client module", entry.ClientHash)
		}
		if diff := cmp.Diff([]manifest.Prop{{Name: "label", Type: "string"}}, entry.Props); diff != "" {
			t.Errorf("props mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should keep server and client hashes apart", func(t *testing.T) {
		fr := compileCounter(t)
		m := manifest.Build([]*compiler.FileResult{fr})
		entry := m["Counter"]
		if entry.ServerHash == entry.ClientHash {
			t.Error("server and client artifacts must hash independently")
		}
	})

	t.Run("should reserve a runtime entry", func(t *testing.T) {
		m := manifest.Build(nil)
		entry := m["__barefoot__"]
		if entry == nil {
			t.Fatal("missing runtime entry")
		}
		if entry.Client != output.RuntimeModuleName {
			t.Errorf("runtime client = %q, want %q", entry.Client, output.RuntimeModuleName)
		}
		if want := manifest.Hash([]byte(output.RuntimeJS)); entry.ClientHash != want {
			t.Errorf("runtime hash = %q, want hash of the embedded runtime", entry.ClientHash)
		}
		if entry.Server != "" || entry.ServerHash != "" {
			t.Error("runtime entry must not claim a server artifact")
		}
	})

	t.Run("should encode to stable JSON", func(t *testing.T) {
		fr := compileCounter(t)
		m := manifest.Build([]*compiler.FileResult{fr})
		first, err := m.Encode()
		if err != nil {
			t.Fatal(err)
		}
		second, err := manifest.Build([]*compiler.FileResult{fr}).Encode()
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(string(first), string(second)); diff != "" {
			t.Errorf("encoding not stable (-want +got):\n%s", diff)
		}
		var decoded map[string]*manifest.Entry
		if err := json.Unmarshal(first, &decoded); err != nil {
			t.Fatalf("encoded manifest is not valid JSON: %v", err)
		}
		if len(decoded) != 2 {
			t.Errorf("expected Counter and runtime entries, got %d", len(decoded))
		}
	})
}

func TestCache(t *testing.T) {
	t.Run("should round-trip compiled artifacts through disk", func(t *testing.T) {
		fr := compileCounter(t)
		hash := manifest.Hash([]byte(counterSrc))
		path := filepath.Join(t.TempDir(), manifest.CacheFileName)

		cache := manifest.OpenCache(path)
		if _, ok := cache.Lookup("counter.tsx", hash); ok {
			t.Fatal("fresh cache must miss")
		}
		cache.Store(hash, fr)
		if err := cache.Save(); err != nil {
			t.Fatal(err)
		}

		reopened := manifest.OpenCache(path)
		got, ok := reopened.Lookup("counter.tsx", hash)
		if !ok {
			t.Fatal("reopened cache must hit")
		}
		if diff := cmp.Diff(fr.ServerArtifact, got.ServerArtifact); diff != "" {
			t.Errorf("server artifact mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(fr.ClientArtifacts, got.ClientArtifacts); diff != "" {
			t.Errorf("client artifacts mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(fr.ComponentNames, got.ComponentNames); diff != "" {
			t.Errorf("component names mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(fr.ComponentProps, got.ComponentProps); diff != "" {
			t.Errorf("prop shapes mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should miss when the source hash changes", func(t *testing.T) {
		fr := compileCounter(t)
		path := filepath.Join(t.TempDir(), manifest.CacheFileName)
		cache := manifest.OpenCache(path)
		cache.Store(manifest.Hash([]byte(counterSrc)), fr)
		if _, ok := cache.Lookup("counter.tsx", manifest.Hash([]byte("edited"))); ok {
			t.Error("stale entry must not be served")
		}
	})

	t.Run("should start over from a corrupt cache file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), manifest.CacheFileName)
		if err := os.WriteFile(path, []byte("not msgpack"), 0o644); err != nil {
			t.Fatal(err)
		}
		cache := manifest.OpenCache(path)
		if _, ok := cache.Lookup("counter.tsx", "whatever"); ok {
			t.Error("corrupt cache must behave as empty")
		}
	})
}
