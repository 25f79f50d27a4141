package resources

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write resources file: %v", err)
	}
	return path
}

func TestLoadRegistryYAML(t *testing.T) {
	path := writeFile(t, "resources.yaml", `
models:
  - name: Widget
    resource: /widgets/
    description: things
  - name: Gadget
`)

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	m, ok := reg.ByName("widget")
	if !ok {
		t.Fatalf("expected widget model")
	}
	if m.RemoteResource() != "widgets" {
		t.Fatalf("RemoteResource = %q", m.RemoteResource())
	}
	g, _ := reg.ByName("Gadget")
	if g.Resource != "Gadget" {
		t.Fatalf("expected resource to default to name, got %q", g.Resource)
	}
	all := reg.All()
	if len(all) != 2 || all[0].Name != "Gadget" {
		t.Fatalf("unexpected All(): %#v", all)
	}
}

func TestLoadRegistryJSON(t *testing.T) {
	path := writeFile(t, "resources.json", `{"models":[{"name":"orders","resource":"shop/orders"}]}`)

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if m, _ := reg.ByName("orders"); m.Resource != "shop/orders" {
		t.Fatalf("unexpected model %+v", m)
	}
}

func TestLoadRegistryDuplicateName(t *testing.T) {
	path := writeFile(t, "resources.yaml", `
models:
  - name: dup
    resource: a
  - name: DUP
    resource: b
`)
	if _, err := LoadRegistry(path); err == nil {
		t.Fatalf("expected duplicate model error")
	}
}

func TestLoadRegistryRejectsQueryInResource(t *testing.T) {
	path := writeFile(t, "resources.yaml", `
models:
  - name: bad
    resource: widgets?x=1
`)
	if _, err := LoadRegistry(path); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestResolveFallsBackToName(t *testing.T) {
	var reg *Registry
	if m := reg.Resolve("widgets"); m.RemoteResource() != "widgets" {
		t.Fatalf("Resolve on nil registry = %+v", m)
	}
}
