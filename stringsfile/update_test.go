package stringsfile

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestUpdate(t *testing.T) {
	lines := []string{
		"/* header */",
		`"A" = "old";`,
		`  "Stale" = "Stale";`,
		"",
		`"B" = "b";`,
		"not a record",
	}
	m := Mapping{
		"A": {Key: "A", Value: "new"},
		"B": {Key: "B", Value: "b2", Comment: "c"},
		"Z": {Key: "Z", Value: "Z"},
		"M": {Key: "M", Value: "Mm"},
	}

	want := []string{
		"/* header */",
		`"A" = "new";`,
		"",
		`"B" = "b2"; /* c */`,
		"not a record",
		"",
		"/* New strings */",
		`"M" = "Mm";`,
		`"Z" = "Z";`,
	}
	if got := Update(lines, m); !reflect.DeepEqual(got, want) {
		t.Fatalf("Update() =\n%q\nwant\n%q", got, want)
	}
}

func TestUpdateNothingNew(t *testing.T) {
	lines := []string{`"A" = "a";`}
	got := Update(lines, Mapping{"A": {Key: "A", Value: "b"}})
	if want := []string{`"A" = "b";`}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Update() = %q, want %q", got, want)
	}
}

func TestUpdateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Localizable.strings")
	if err := os.WriteFile(path, []byte("/* keep me */\n\"A\" = \"a\";\n\"Gone\" = \"x\";\n"), 0644); err != nil {
		t.Fatal(err)
	}

	m := Mapping{
		"A":   {Key: "A", Value: "Ah"},
		"New": {Key: "New", Value: "New"},
	}
	if err := UpdateFile(path, m, nil); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "/* keep me */\n\"A\" = \"Ah\";\n\n/* New strings */\n\"New\" = \"New\";\n"
	if string(data) != want {
		t.Fatalf("content = %q, want %q", data, want)
	}
}

func TestUpdateFileKeepsUTF16(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Localizable.strings")
	data, err := UTF16.Encode("\"A\" = \"a\";\n")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	if err := UpdateFile(path, Mapping{"A": {Key: "A", Value: "b"}}, nil); err != nil {
		t.Fatal(err)
	}

	f, err := ReadFile(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if f.Encoding.Name != "utf16" {
		t.Errorf("encoding = %s, want utf16", f.Encoding.Name)
	}
	if f.Strings["A"].Value != "b" {
		t.Errorf("A = %+v", f.Strings["A"])
	}
}

func TestUpdateFileMissing(t *testing.T) {
	err := UpdateFile(filepath.Join(t.TempDir(), "missing.strings"), Mapping{}, nil)
	if !errors.Is(err, ErrMissingFile) {
		t.Fatalf("error = %v, want ErrMissingFile", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("error = %v, want fs.ErrNotExist in chain", err)
	}
}

func TestUpdateFileUndecodableLeftAlone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.strings")
	orig := []byte{0xFF, 0x00, 0x41}
	if err := os.WriteFile(path, orig, 0644); err != nil {
		t.Fatal(err)
	}
	if err := UpdateFile(path, Mapping{"A": {Key: "A", Value: "A"}}, nil); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string(orig) {
		t.Fatalf("undecodable file was modified: % x", data)
	}
}

func TestUpdateFileTrailingBackslashIsStable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Localizable.strings")
	if err := os.WriteFile(path, []byte("\"Dir\" = \"Dir\";\n"), 0644); err != nil {
		t.Fatal(err)
	}
	m := Mapping{"Dir": {Key: "Dir", Value: `C:\`}}

	for i := 0; i < 2; i++ {
		if err := UpdateFile(path, m, nil); err != nil {
			t.Fatal(err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := `"Dir" = "C:\";` + "\n"; string(data) != want {
		t.Fatalf("content = %q, want %q", data, want)
	}
	got, err := ReadStrings(path)
	if err != nil {
		t.Fatal(err)
	}
	if got["Dir"].Value != `C:\` {
		t.Fatalf("re-read Dir = %+v", got["Dir"])
	}
}

func TestUpdateFileKeepsWindowsLineEndings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Localizable.strings")
	if err := os.WriteFile(path, []byte("/* keep */\r\n\"A\" = \"a\";\r\n"), 0644); err != nil {
		t.Fatal(err)
	}
	m := Mapping{
		"A": {Key: "A", Value: "b"},
		"N": {Key: "N", Value: "N"},
	}
	if err := UpdateFile(path, m, nil); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "/* keep */\r\n\"A\" = \"b\";\r\n\r\n/* New strings */\r\n\"N\" = \"N\";\r\n"
	if string(data) != want {
		t.Fatalf("content = %q, want %q", data, want)
	}
}
