package extract

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func lgDoc(pairs ...string) string {
	var b strings.Builder
	b.WriteString("<Proj>")
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString("<TranslationSet><base>" + pairs[i] + "</base><tran>" + pairs[i+1] + "</tran></TranslationSet>")
	}
	b.WriteString("</Proj>")
	return b.String()
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestNormalizeExtensions(t *testing.T) {
	t.Parallel()

	if got := NormalizeExtensions(nil); !reflect.DeepEqual(got, []string{".lg"}) {
		t.Fatalf("NormalizeExtensions(nil) = %v", got)
	}
	got := NormalizeExtensions([]string{"lg", ".strings", " lg ", ""})
	if want := []string{".lg", ".strings"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("NormalizeExtensions() = %v, want %v", got, want)
	}
}

func TestFindSourcesSkipsDirs(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	a := writeFile(t, filepath.Join(tmp, "b", "fr.lg"), lgDoc())
	b := writeFile(t, filepath.Join(tmp, "a.lg"), lgDoc())
	writeFile(t, filepath.Join(tmp, ".git", "x.lg"), lgDoc())
	writeFile(t, filepath.Join(tmp, "Pods", "y.lg"), lgDoc())
	writeFile(t, filepath.Join(tmp, "readme.txt"), "")

	files, err := FindSources([]string{tmp, tmp}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{b, a}; !reflect.DeepEqual(files, want) {
		t.Fatalf("FindSources() = %v, want %v", files, want)
	}
}

func TestScanDirLastFileWins(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, "1.lg"), lgDoc("Hello", "Bonjour", "Quit", "Quitter"))
	writeFile(t, filepath.Join(tmp, "2.lg"), lgDoc("Hello", "Salut"))
	writeFile(t, filepath.Join(tmp, "3.strings"), "\"Open\" = \"Ouvrir\";\n")
	writeFile(t, filepath.Join(tmp, "broken.lg"), "<Proj>")

	m, err := ScanDir(tmp, []string{"lg", "strings"})
	if err != nil {
		t.Fatal(err)
	}
	if len(m) != 3 {
		t.Fatalf("ScanDir() = %+v, want 3 records", m)
	}
	if m["Hello"].Value != "Salut" {
		t.Errorf("Hello = %+v, want later file to win", m["Hello"])
	}
	if m["Open"].Value != "Ouvrir" {
		t.Errorf("Open = %+v", m["Open"])
	}
}

func TestScanDirsFirstDirWins(t *testing.T) {
	t.Parallel()

	first := t.TempDir()
	second := t.TempDir()
	writeFile(t, filepath.Join(first, "x.lg"), lgDoc("Hello", "Bonjour"))
	writeFile(t, filepath.Join(second, "x.lg"), lgDoc("Hello", "Salut", "Bye", "Ciao"))

	m, err := ScanDirs([]string{first, second}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if m["Hello"].Value != "Bonjour" || m["Bye"].Value != "Ciao" {
		t.Fatalf("ScanDirs() = %+v", m)
	}
}

func TestScanDirsRejectsFiles(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	file := writeFile(t, filepath.Join(tmp, "x.lg"), lgDoc())

	if _, err := ScanDirs([]string{file}, nil); err == nil {
		t.Fatal("ScanDirs(file) should fail")
	}
	if _, err := ScanDirs([]string{filepath.Join(tmp, "missing")}, nil); err == nil {
		t.Fatal("ScanDirs(missing) should fail")
	}
}

func TestScanFileUnsupported(t *testing.T) {
	t.Parallel()

	if _, err := ScanFile("notes.txt"); err == nil {
		t.Fatal("ScanFile(.txt) should fail")
	}
}

func TestDescribeFiles(t *testing.T) {
	t.Parallel()

	files := []string{"a/x.lg", "b/y.lg", "c/Localizable.strings"}
	if got, want := DescribeFiles(files), "2 .lg, 1 .strings"; got != want {
		t.Fatalf("DescribeFiles() = %q, want %q", got, want)
	}
}

func TestRunGenstringsMissingBinary(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	if _, err := RunGenstrings(context.Background(), []string{"main.m"}); err == nil {
		t.Fatal("RunGenstrings() without genstrings should fail")
	}
	m, err := RunGenstrings(context.Background(), nil)
	if err != nil || len(m) != 0 {
		t.Fatalf("RunGenstrings(nil) = %v, %v; want empty", m, err)
	}
}

func TestRunGenstringsReadsTables(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script stub")
	}

	bin := t.TempDir()
	script := "#!/bin/sh\n" +
		"printf '/* Greeting */\\n\"Hello\" = \"Hello\";\\n' > \"$2/Localizable.strings\"\n" +
		"printf '\"Menu\" = \"Menu\";\\n' > \"$2/Menus.strings\"\n"
	if err := os.WriteFile(filepath.Join(bin, "genstrings"), []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", bin)

	m, err := RunGenstrings(context.Background(), []string{"main.m"})
	if err != nil {
		t.Fatal(err)
	}
	if len(m) != 2 {
		t.Fatalf("RunGenstrings() = %+v, want 2 records", m)
	}
	if m["Hello"].Comment != "Greeting" {
		t.Errorf("Hello = %+v", m["Hello"])
	}
}

func TestScanDirsDescribesEachDirectoryOnce(t *testing.T) {
	var buf bytes.Buffer
	old := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = old })

	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, "a.lg"), lgDoc("Hello", "Bonjour"))
	writeFile(t, filepath.Join(tmp, "sub", "b.strings"), "\"Open\" = \"Ouvrir\";\n")

	if _, err := ScanDirs([]string{tmp}, []string{".lg", ".strings"}); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if n := strings.Count(out, `"message":"Scanning sources"`); n != 1 {
		t.Fatalf("logged %d scan lines, want 1:\n%s", n, out)
	}
	if !strings.Contains(out, `"files":"1 .lg, 1 .strings"`) {
		t.Fatalf("scan line does not describe the files:\n%s", out)
	}
}
