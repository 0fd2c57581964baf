package traj_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	_ "github.com/reflectometry/scattio/interpreters/ecmascript"
	"github.com/reflectometry/scattio/traj"
	. "github.com/reflectometry/scattio/util/testutil"

	"github.com/google/go-cmp/cmp"
)

func load(t *testing.T, filename string) *traj.Result {
	t.Helper()
	tr, err := traj.Load(filename)
	if err != nil {
		t.Fatal(err)
	}
	r, err := tr.Dryrun(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func field(t *testing.T, p traj.Point, name string) traj.Value {
	t.Helper()
	parts := strings.SplitN(name, ".", 2)
	v, have := p[parts[0]]
	if !have {
		t.Fatalf("no %s in %s", parts[0], JS(p))
	}
	if len(parts) == 1 {
		return v
	}
	o, is := v.Object()
	if !is {
		t.Fatalf("%s isn't an object: %s", parts[0], v)
	}
	x, have := o.Get(parts[1])
	if !have {
		t.Fatalf("no %s in %s", name, v)
	}
	return x
}

type expect map[string]interface{}

func check(t *testing.T, ps []traj.Point, i int, want expect) {
	t.Helper()
	for name, x := range want {
		w, err := traj.FromInterface(x)
		if err != nil {
			t.Fatal(err)
		}
		if got := field(t, ps[i], name); !got.Equal(w) {
			t.Fatalf("point %d: %s is %s, not %s", i, name, got, w)
		}
	}
}

func TestDryrunPolarizedReflectometry(t *testing.T) {
	r := load(t, "testdata/polrefl.trj")

	if len(r.Points) != 201*12*4 {
		t.Fatal(len(r.Points))
	}
	if r.TrajName != "polrefl" {
		t.Fatal(r.TrajName)
	}
	if diff := cmp.Diff([]string{"i"}, r.NeverWrite); diff != "" {
		t.Fatal(diff)
	}
	if diff := cmp.Diff([]string{"t1"}, r.AlwaysWrite); diff != "" {
		t.Fatal(diff)
	}

	check(t, r.Points, 0, expect{
		"detectorAngle":         0,
		"sampleAngle":           0,
		"slit1Aperture":         1,
		"slit2Aperture":         1,
		"i":                     0,
		"t0":                    200,
		"skip":                  false,
		"polarizationIn":        0,
		"polarizationOut":       0,
		"entryName":             "A",
		"fileGroup":             "",
		"filePrefix":            "polrefl",
		"fileName":              "polrefl43",
		"fileNum":               43,
		"instFileNum":           143,
		"pointNum":              0,
		"expPointNum":           1042,
		"counter.countAgainst":  "MONITOR",
		"counter.monitorPreset": 30000,
	})
	check(t, r.Points, 3, expect{"entryName": "D", "pointNum": 3})
	check(t, r.Points, 16, expect{"i": 4, "t0": 248, "skip": true})
	check(t, r.Points, 48, expect{
		"detectorAngle": 0.02,
		"sampleAngle":   0.01,
		"slit1Aperture": 2,
		"slit2Aperture": 2,
	})
	check(t, r.Points, 5*48, expect{"slit1Aperture": 5, "slit2Aperture": 2})
	check(t, r.Points, 4*48, expect{"slit1Aperture": 5, "slit2Aperture": 1})
	check(t, r.Points, len(r.Points)-1, expect{
		"detectorAngle": 4,
		"pointNum":      len(r.Points) - 1,
		"fileNum":       43,
	})

	tab, err := traj.Columnate(r.Points, r.Constants)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"detectorAngle", "entryName", "expPointNum", "fileGroup", "fileName",
		"fileNum", "filePrefix", "i", "instFileNum", "pointNum", "polarizationIn",
		"polarizationOut", "sampleAngle", "skip", "slit1Aperture", "slit2Aperture", "t0"}
	if diff := cmp.Diff(want, tab.Names); diff != "" {
		t.Fatal(diff)
	}

	var buf bytes.Buffer
	if err = traj.WriteCSV(&buf, tab); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(buf.String(), "\n")
	if lines[1] != `0,"A",1042,"","polrefl43",43,"polrefl",0,143,0,0,0,0,false,1,1,200` {
		t.Fatal(lines[1])
	}
	if len(lines) != len(r.Points)+2 {
		t.Fatal(len(lines))
	}
}

func TestDryrunSANS(t *testing.T) {
	r := load(t, "testdata/sans.trj")

	if len(r.Points) != 6*5*10 {
		t.Fatal(len(r.Points))
	}

	check(t, r.Points, 0, expect{
		"T":                       0,
		"sampleTemperature":       15,
		"CTR":                     0,
		"deviceConfig.wavelength": 6,
		"S":                       0,
		"SNAME":                   "empty cell",
		"INTENT":                  "EmptyCell",
		"COUNTER_VALUE":           300,
		"counter.countAgainst":    "TIME",
		"counter.timePreset":      300,
		"sample.mode":             "Chamber",
		"sample.aperture":         12.7,
		"sample.index":            0,
		"skip":                    false,
		"fileGroup":               0,
		"fileNum":                 43,
		"fileName":                "sans43",
	})
	check(t, r.Points, 1, expect{
		"SNAME":    "blocked beam",
		"INTENT":   "BlockedBeam",
		"fileNum":  44,
		"fileName": "sans44",
	})
	check(t, r.Points, 21, expect{
		"CTR":                2,
		"SNAME":              "blocked beam",
		"COUNTER_VALUE":      0,
		"counter.timePreset": 0,
		"skip":               true,
	})
	check(t, r.Points, 50, expect{"T": 1, "sampleTemperature": 20})

	// Earlier snapshots keep their own objects.
	check(t, r.Points, 0, expect{"counter.timePreset": 300, "sample.index": 0})

	if o, _ := r.Constants["sample"].Object(); o.Len() != 3 {
		t.Fatal(o.Names())
	}

	tab, err := traj.Columnate(r.Points, r.Constants)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range tab.Names {
		if strings.HasPrefix(name, "counter.") || strings.HasPrefix(name, "sample.") || name == "CONFIGS" {
			t.Fatalf("constant column %s", name)
		}
	}
	if _, have := tab.Columns["deviceConfig.wavelength"]; !have {
		t.Fatal(tab.Names)
	}
}

func TestDryrunDeterministic(t *testing.T) {
	render := func() string {
		r := load(t, "testdata/sans.trj")
		js, err := json.Marshal(r.Points)
		if err != nil {
			t.Fatal(err)
		}
		return string(js)
	}
	if diff := cmp.Diff(render(), render()); diff != "" {
		t.Fatal(diff)
	}
}

func TestDryrunYAML(t *testing.T) {
	r := load(t, "testdata/scan.yaml")
	if len(r.Points) != 5 {
		t.Fatal(len(r.Points))
	}
	if r.TrajName != "scan" || r.Descr != "A *specular* scan." {
		t.Fatal(r.TrajName, r.Descr)
	}
	check(t, r.Points, 0, expect{
		"Q":                    0.01,
		"counter.timePreset":   1,
		"counter.countAgainst": "TIME",
		"fileGroup":            "low",
		"fileNum":              43,
	})
	check(t, r.Points, 4, expect{
		"Q":                  0.05,
		"counter.timePreset": 10000,
		"fileGroup":          "high",
		"fileNum":            44,
		"fileName":           "scan44",
	})
	check(t, r.Points, 2, expect{"counter.timePreset": 100})
}

func TestDryrunUnbound(t *testing.T) {
	doc, err := traj.Parse([]byte(`{loops: [{vary: {x: [1, 2], a: "b + 1"}}]}`))
	if err != nil {
		t.Fatal(err)
	}
	tr, err := traj.Compile(doc, "")
	if err != nil {
		t.Fatal(err)
	}
	_, err = tr.Dryrun(context.Background(), nil)
	unbound, is := err.(*traj.UnboundVariable)
	if !is {
		t.Fatalf("%T %v", err, err)
	}
	if unbound.Name != "b" || unbound.Expr != "b + 1" {
		t.Fatal(unbound)
	}
}
