package merge

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/minios-linux/jlokit/store"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestRun_InitialMergeThenRetranslate(t *testing.T) {
	dir := t.TempDir()
	rawFile := filepath.Join(dir, "scenario_raw.json")
	transFile := filepath.Join(dir, "scenario_zh.json")
	target := filepath.Join(dir, "data", "stringliteral.json")

	writeFile(t, rawFile, `["こんにちは", "ありがとう"]`)
	writeFile(t, transFile, `["你好", "谢谢"]`)

	res, err := Run(Options{
		RawFile:    rawFile,
		TransFile:  transFile,
		TargetFile: target,
		Locale:     "zh-CN",
		Author:     "alice",
	})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if res.Added != 2 || res.Updated != 0 || res.Total != 2 {
		t.Fatalf("first merge: %+v, want added=2 updated=0 total=2", res)
	}

	f, err := store.ParseFile(target)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	for i, want := range []string{"你好", "谢谢"} {
		e, ok := f.Items[i].Entry("zh-CN")
		if !ok || e.Text != want || e.Author != "alice" {
			t.Fatalf("record %d entry = %#v, want text %q author alice", i, e, want)
		}
	}

	writeFile(t, transFile, `["你好呀", "谢谢"]`)
	res, err = Run(Options{
		RawFile:    rawFile,
		TransFile:  transFile,
		TargetFile: target,
		Locale:     "zh-CN",
		Author:     "alice",
	})
	if err != nil {
		t.Fatalf("second Run error: %v", err)
	}
	if res.Added != 0 || res.Updated != 2 || res.Total != 2 {
		t.Fatalf("second merge: %+v, want added=0 updated=2 total=2", res)
	}

	f, err = store.ParseFile(target)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if e, _ := f.Items[0].Entry("zh-CN"); e.Text != "你好呀" {
		t.Fatalf("first record text = %q, want 你好呀", e.Text)
	}
}

func TestRun_IsIdempotent(t *testing.T) {
	dir := t.TempDir()
	rawFile := filepath.Join(dir, "raw.json")
	transFile := filepath.Join(dir, "trans.json")
	target := filepath.Join(dir, "store.json")
	writeFile(t, rawFile, `["こんにちは"]`)
	writeFile(t, transFile, `["你好"]`)

	opts := Options{RawFile: rawFile, TransFile: transFile, TargetFile: target, Locale: "zh-CN", Author: "alice"}
	if _, err := Run(opts); err != nil {
		t.Fatalf("first Run error: %v", err)
	}
	first, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	if _, err := Run(opts); err != nil {
		t.Fatalf("second Run error: %v", err)
	}
	second, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(first) != string(second) {
		t.Fatalf("store changed on identical rerun:\n%s\nvs\n%s", first, second)
	}
}

func TestMerge_PreservesForeignLocales(t *testing.T) {
	target := store.New()
	rec := store.NewRecord("こんにちは")
	rec.SetEntry("en", store.Entry{Text: "hello", Author: "bob"})
	target.Append(rec)

	res := Merge(target, []string{"こんにちは"}, []string{"你好"}, "zh-CN", "alice")
	if res.Added != 0 || res.Updated != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}

	e, ok := target.Items[0].Entry("en")
	if !ok || e.Text != "hello" || e.Author != "bob" {
		t.Fatalf("en entry was not preserved: %#v", e)
	}
	if e, _ := target.Items[0].Entry("zh-CN"); e.Text != "你好" || e.Author != "alice" {
		t.Fatalf("zh-CN entry not written: %#v", e)
	}
}

func TestRun_CountMismatchIsOnlyAWarning(t *testing.T) {
	dir := t.TempDir()
	rawFile := filepath.Join(dir, "raw.json")
	transFile := filepath.Join(dir, "trans.json")
	target := filepath.Join(dir, "store.json")
	writeFile(t, rawFile, `["こんにちは", "ありがとう", "さようなら"]`)
	writeFile(t, transFile, `["你好"]`)

	var warned bool
	res, err := Run(Options{
		RawFile:    rawFile,
		TransFile:  transFile,
		TargetFile: target,
		Locale:     "zh-CN",
		Author:     "alice",
		OnLog: func(format string, args ...any) {
			if strings.Contains(format, "count mismatch") {
				warned = true
			}
		},
	})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if !warned {
		t.Fatal("expected a count mismatch warning")
	}
	if res.Added != 3 {
		t.Fatalf("Added = %d, want 3", res.Added)
	}

	f, err := store.ParseFile(target)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if e, _ := f.Items[1].Entry("zh-CN"); e.Text != "" || e.Author != "alice" {
		t.Fatalf("record past translation end = %#v, want empty text", e)
	}
}

func TestRun_RecoversCorruptTarget(t *testing.T) {
	dir := t.TempDir()
	rawFile := filepath.Join(dir, "raw.json")
	transFile := filepath.Join(dir, "trans.json")
	target := filepath.Join(dir, "store.json")
	writeFile(t, rawFile, `["こんにちは"]`)
	writeFile(t, transFile, `["你好"]`)
	writeFile(t, target, `[{"raw": broken`)

	var warned bool
	res, err := Run(Options{
		RawFile:    rawFile,
		TransFile:  transFile,
		TargetFile: target,
		Locale:     "zh-CN",
		OnLog: func(format string, args ...any) {
			if strings.Contains(format, "starting fresh") {
				warned = true
			}
		},
	})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if !warned {
		t.Fatal("expected a starting-fresh warning")
	}
	if res.Added != 1 || res.Total != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestRun_MissingInputs(t *testing.T) {
	dir := t.TempDir()
	rawFile := filepath.Join(dir, "raw.json")
	writeFile(t, rawFile, `["こんにちは"]`)

	_, err := Run(Options{
		RawFile:   filepath.Join(dir, "nope.json"),
		TransFile: rawFile,
	})
	if err == nil || !strings.Contains(err.Error(), "raw file") || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected raw-file not-found error, got %v", err)
	}

	notArray := filepath.Join(dir, "object.json")
	writeFile(t, notArray, `{"a": 1}`)
	_, err = Run(Options{RawFile: rawFile, TransFile: notArray})
	if err == nil || !strings.Contains(err.Error(), "JSON array") {
		t.Fatalf("expected not-an-array error, got %v", err)
	}
}

func TestMerge_LegacyStringsAreNotMatched(t *testing.T) {
	target, err := store.Parse([]byte(`["こんにちは"]`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	res := Merge(target, []string{"こんにちは"}, []string{"你好"}, "zh-CN", "alice")
	if res.Added != 1 || res.Updated != 0 || res.Total != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if !target.Items[0].Legacy() {
		t.Fatalf("legacy item should survive untouched: %#v", target.Items[0])
	}
	if e, _ := target.Items[1].Entry("zh-CN"); e.Text != "你好" {
		t.Fatalf("appended record missing translation: %#v", target.Items[1])
	}
}
