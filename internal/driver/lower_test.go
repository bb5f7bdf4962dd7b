package driver_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"lumen/internal/diag"
	"lumen/internal/driver"
)

func writeUnits(t *testing.T, units map[string]string) []string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range units {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	files, err := driver.ListUnitFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	return files
}

var shapesProject = map[string]string{
	"core.toml": `namespace = "core"

[[class]]
name = "Named"
kind = "trait"

[[class]]
name = "Base"
supers = ["Named"]
`,
	"shapes.yaml": `namespace: shapes
imports: [core]
classes:
  - name: Circle
    supers: [core.Base]
    fields: ["radius", "origin: Point"]
  - name: Point
`,
}

func codes(bag *diag.Bag) []diag.Code {
	out := make([]diag.Code, 0, bag.Len())
	for _, d := range bag.Items() {
		out = append(out, d.Code)
	}
	return out
}

func hasCode(bag *diag.Bag, code diag.Code) bool {
	for _, d := range bag.Items() {
		if d.Code == code {
			return true
		}
	}
	return false
}

func TestLowerTwoNamespaces(t *testing.T) {
	files := writeUnits(t, shapesProject)
	res, err := driver.Lower(context.Background(), files, &driver.LowerOptions{Jobs: 2, MaxDiagnostics: 20})
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if res.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", res.Bag.Items())
	}
	if len(res.Order) != 2 || res.Order[0].Namespace != "core" || res.Order[1].Namespace != "shapes" {
		t.Fatalf("unexpected order: %+v", res.Order)
	}
	if len(res.Batches) != 2 {
		t.Fatalf("batches = %v", res.Batches)
	}

	core, _ := res.Unit("core")
	if got := core.Order; len(got) != 2 || got[0].Name != "Named" || got[1].Name != "Base" {
		t.Fatalf("core order = %v", got)
	}

	out := string(res.Link("// prelude\n"))
	for _, want := range []string{
		"// prelude\n",
		"var core$classes = (function () {",
		`var tmp$1 = $lumen.createClass("core.Base", null, [tmp$0], {}, {});`,
		`$lumen.defineNamespace("core", core$classes);`,
		`$lumen.createClass("shapes.Circle", core$classes.Base, [], {`,
		`return shapes$classes.Point;`,
		`$lumen.defineNamespace("shapes", shapes$classes);`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output does not contain %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "var core$classes") > strings.Index(out, "var shapes$classes") {
		t.Fatalf("core must be emitted before shapes:\n%s", out)
	}
}

func TestLowerReusesCachedArtifacts(t *testing.T) {
	files := writeUnits(t, shapesProject)
	disk, err := driver.OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	opts := &driver.LowerOptions{DiskCache: disk, Memory: driver.NewUnitCache(4)}

	first, err := driver.Lower(context.Background(), files, opts)
	if err != nil || first.HasErrors() {
		t.Fatalf("first build: %v %v", err, first.Bag.Items())
	}
	for _, u := range first.Order {
		if u.Cached {
			t.Fatalf("%s must not come from the cache on the first build", u.Namespace)
		}
	}

	// свежий процесс: только дисковый кеш
	opts.Memory = driver.NewUnitCache(4)
	second, err := driver.Lower(context.Background(), files, opts)
	if err != nil || second.HasErrors() {
		t.Fatalf("second build: %v %v", err, second.Bag.Items())
	}
	for _, u := range second.Order {
		if !u.Cached {
			t.Fatalf("%s must be restored from the cache", u.Namespace)
		}
	}
	if string(first.Link("")) != string(second.Link("")) {
		t.Fatalf("cached output differs:\n%s\n---\n%s", first.Link(""), second.Link(""))
	}
	shapes, _ := second.Unit("shapes")
	if entry, ok := shapes.Exports.Lookup("Circle"); !ok || entry.Class.QualifiedName() != "shapes.Circle" {
		t.Fatalf("restored exports = %+v", shapes.Exports.Entries)
	}
}

func TestLowerCacheMissWhenDependencyChanges(t *testing.T) {
	dir := t.TempDir()
	for name, body := range shapesProject {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	files, _ := driver.ListUnitFiles(dir)
	opts := &driver.LowerOptions{Memory: driver.NewUnitCache(4)}
	if _, err := driver.Lower(context.Background(), files, opts); err != nil {
		t.Fatal(err)
	}

	changed := shapesProject["core.toml"] + "\n[[class]]\nname = \"Extra\"\n"
	if err := os.WriteFile(filepath.Join(dir, "core.toml"), []byte(changed), 0o600); err != nil {
		t.Fatal(err)
	}
	res, err := driver.Lower(context.Background(), files, opts)
	if err != nil || res.HasErrors() {
		t.Fatalf("rebuild: %v", err)
	}
	for _, u := range res.Order {
		if u.Cached {
			t.Fatalf("%s must be lowered again after its dependency changed", u.Namespace)
		}
	}
}

func TestLowerPropagatesFailures(t *testing.T) {
	files := writeUnits(t, map[string]string{
		"core.toml": `namespace = "core"
[[class]]
name = "A"
supers = ["B"]
[[class]]
name = "B"
supers = ["A"]
`,
		"mid.toml": "namespace = \"mid\"\nimports = [\"core\"]\n",
		"top.toml": "namespace = \"top\"\nimports = [\"mid\"]\n",
		"free.toml": "namespace = \"free\"\n[[class]]\nname = \"Ok\"\n",
	})
	res, err := driver.Lower(context.Background(), files, nil)
	if err != nil {
		t.Fatal(err)
	}

	core, _ := res.Unit("core")
	mid, _ := res.Unit("mid")
	top, _ := res.Unit("top")
	free, _ := res.Unit("free")
	if !core.Broken || !hasCode(core.Bag, diag.LowerClassCycle) {
		t.Fatalf("core: broken=%v %v", core.Broken, codes(core.Bag))
	}
	if !mid.Broken || !hasCode(mid.Bag, diag.LowerDependencyFailed) {
		t.Fatalf("mid: broken=%v %v", mid.Broken, codes(mid.Bag))
	}
	if !top.Broken || !hasCode(top.Bag, diag.LowerDependencyFailed) {
		t.Fatalf("top: broken=%v %v", top.Broken, codes(top.Bag))
	}
	if free.Broken || len(res.Order) != 1 || res.Order[0] != free {
		t.Fatalf("free must still be lowered: %+v", res.Order)
	}
	out := string(res.Link(""))
	if strings.Contains(out, "core$classes") || !strings.Contains(out, "free$classes") {
		t.Fatalf("broken units must not be linked:\n%s", out)
	}
}

func TestLowerReportsGraphProblems(t *testing.T) {
	files := writeUnits(t, map[string]string{
		"a.toml":    "namespace = \"a\"\nimports = [\"b\"]\n",
		"b.toml":    "namespace = \"b\"\nimports = [\"a\"]\n",
		"c.toml":    "namespace = \"c\"\nimports = [\"ghost\"]\n",
		"d.toml":    "namespace = \"d\"\nimports = [\"c\"]\n",
		"dup1.toml": "namespace = \"dup\"\n",
		"dup2.toml": "namespace = \"dup\"\n",
	})
	res, err := driver.Lower(context.Background(), files, &driver.LowerOptions{Jobs: 1})
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]diag.Code{
		"a": diag.ProjImportCycle,
		"b": diag.ProjImportCycle,
		"c": diag.ProjMissingModule,
		"d": diag.ProjDependencyFailed,
	}
	for ns, code := range want {
		u, ok := res.Unit(ns)
		if !ok || !u.Broken || !hasCode(u.Bag, code) {
			t.Fatalf("%s: %v", ns, codes(u.Bag))
		}
	}
	if !hasCode(res.Bag, diag.ProjDuplicateModule) {
		t.Fatalf("duplicate namespace not reported: %v", codes(res.Bag))
	}
	d, _ := res.Unit("d")
	if hasCode(d.Bag, diag.LowerDependencyFailed) {
		t.Fatalf("d must be reported once, before lowering: %v", codes(d.Bag))
	}
}

func TestLowerObservers(t *testing.T) {
	files := writeUnits(t, shapesProject)
	var (
		mu     sync.Mutex
		phases []string
		units  = map[string]driver.UnitStatus{}
	)
	opts := &driver.LowerOptions{
		EnableTimings: true,
		PhaseObserver: func(ev driver.PhaseEvent) {
			if ev.Status == driver.PhaseEnd {
				phases = append(phases, ev.Name)
			}
		},
		UnitObserver: func(ev driver.UnitEvent) {
			mu.Lock()
			units[ev.Namespace] = ev.Status
			mu.Unlock()
		},
	}
	res, err := driver.Lower(context.Background(), files, opts)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(phases, ",") != "load,order,lower" {
		t.Fatalf("phases = %v", phases)
	}
	if units["core"] != driver.UnitLowered || units["shapes"] != driver.UnitLowered {
		t.Fatalf("unit events = %v", units)
	}
	if !hasCode(res.Bag, diag.ObsTimings) || len(res.TimingReport.Phases) != 3 {
		t.Fatalf("timings missing: %v", codes(res.Bag))
	}
	for _, d := range res.Bag.Items() {
		if d.Code != diag.ObsTimings {
			continue
		}
		if !strings.Contains(d.Message, "2 units (0 cached)") || !strings.Contains(d.Notes[0].Msg, `"namespace":"shapes"`) {
			t.Fatalf("timing diagnostic = %+v", d)
		}
	}
}

func TestLowerCancelled(t *testing.T) {
	files := writeUnits(t, shapesProject)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := driver.Lower(ctx, files, nil); err == nil {
		t.Fatal("cancelled context must stop Lower")
	}
}
