package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"jstyle/internal/diag"
	"jstyle/internal/source"
)

func oneDiag(t *testing.T, path, content string, start, end uint32) (*diag.Bag, *source.FileSet, *diag.Diagnostic) {
	t.Helper()
	fs := source.NewFileSet()
	fileID := fs.AddVirtual(path, []byte(content))
	bag := diag.NewBag(10)
	d := diag.New(diag.SevWarning, diag.NamBooleanField, source.Span{File: fileID, Start: start, End: end},
		`boolean field "isActive" should not start with 'is'`)
	d.ID = "NAM1001-" + path + "-20-0"
	d.Rule = "boolean-naming"
	bag.Add(&d)
	return bag, fs, bag.Items()[0]
}

const account = "class Account {\n    private boolean isActive;\n}\n"

// TestPathModes проверяет различные режимы форматирования путей
func TestPathModes(t *testing.T) {
	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{"Absolute path", PathModeAbsolute, "/home/user/project/src/Account.java"},
		{"Relative path", PathModeRelative, "src/Account.java:2:21"},
		{"Basename only", PathModeBasename, "Account.java:2:21"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bag, fs, _ := oneDiag(t, "/home/user/project/src/Account.java", account, 36, 44)
			fs.SetBaseDir("/home/user/project")
			var buf bytes.Buffer
			if err := Pretty(&buf, bag, fs, PrettyOpts{PathMode: tt.mode}); err != nil {
				t.Fatal(err)
			}
			output := buf.String()
			if !strings.Contains(output, tt.contains) {
				t.Errorf("Expected output to contain %q, got:\n%s", tt.contains, output)
			}
			if !strings.Contains(output, "WARNING NAM1001 [boolean-naming]") {
				t.Errorf("Expected severity, code and rule in output:\n%s", output)
			}
		})
	}
}

func TestPrettySnippet(t *testing.T) {
	bag, fs, _ := oneDiag(t, "Account.java", account, 36, 44)
	var buf bytes.Buffer
	if err := Pretty(&buf, bag, fs, PrettyOpts{Context: 1}); err != nil {
		t.Fatal(err)
	}
	want := "Account.java:2:21: WARNING NAM1001 [boolean-naming]: boolean field \"isActive\" should not start with 'is'\n" +
		" 1 | class Account {\n" +
		" 2 |     private boolean isActive;\n" +
		"   |                     ^~~~~~~\n" +
		" 3 | }\n"
	if got := buf.String(); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestPrettyCaretAfterWideRunes(t *testing.T) {
	src := "class A {\n\tint 名字 = 1; int x;\n}\n"
	start := uint32(strings.Index(src, "x;"))
	bag, fs, _ := oneDiag(t, "A.java", src, start, start+1)
	var buf bytes.Buffer
	if err := Pretty(&buf, bag, fs, PrettyOpts{}); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(buf.String(), "\n")
	if len(lines) < 3 {
		t.Fatalf("short output:\n%s", buf.String())
	}
	// табуляция раскрывается до 4, иероглифы занимают по две колонки
	code, caret := lines[1], lines[2]
	if !strings.HasPrefix(code, " 2 |     int 名字 = 1; int x;") {
		t.Fatalf("code line = %q", code)
	}
	if want := " " + "  |" + " " + strings.Repeat(" ", 22) + "^"; caret != want {
		t.Errorf("caret line = %q, want %q", caret, want)
	}
}

func TestPrettyNotesAndFixes(t *testing.T) {
	bag, fs, d := oneDiag(t, "Account.java", account, 36, 44)
	d.Notes = append(d.Notes, diag.Note{Span: source.Span{File: d.Primary.File, Start: 0, End: 5}, Msg: "declared in this class"})
	d.Fixes = append(d.Fixes, &diag.Fix{
		ID:            d.ID + ".0",
		Title:         "rename to hasActive",
		Applicability: diag.FixApplicabilitySafeWithHeuristics,
		IsPreferred:   true,
	})

	var buf bytes.Buffer
	if err := Pretty(&buf, bag, fs, PrettyOpts{ShowNotes: true, ShowFixes: true}); err != nil {
		t.Fatal(err)
	}
	output := buf.String()
	if !strings.Contains(output, "note: Account.java:1:1: declared in this class") {
		t.Fatalf("expected note with location, got:\n%s", output)
	}
	if !strings.Contains(output, "fix #1: rename to hasActive (safe-with-heuristics, preferred) id="+d.ID+".0") {
		t.Fatalf("expected fix entry, got:\n%s", output)
	}
}

func TestPrettyColor(t *testing.T) {
	bag, fs, _ := oneDiag(t, "Account.java", account, 36, 44)
	var plain, colored bytes.Buffer
	if err := Pretty(&plain, bag, fs, PrettyOpts{}); err != nil {
		t.Fatal(err)
	}
	if err := Pretty(&colored, bag, fs, PrettyOpts{Color: true}); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(plain.String(), "\x1b[") {
		t.Errorf("plain output has escapes:\n%q", plain.String())
	}
	if !strings.Contains(colored.String(), "\x1b[") {
		t.Errorf("colored output has no escapes:\n%q", colored.String())
	}
}

func TestShort(t *testing.T) {
	bag, fs, _ := oneDiag(t, "Account.java", account, 36, 44)
	var buf bytes.Buffer
	if err := Short(&buf, bag, fs); err != nil {
		t.Fatal(err)
	}
	want := "warning NAM1001 Account.java:2:21 boolean field \"isActive\" should not start with 'is'\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestParseFormat(t *testing.T) {
	for _, f := range Formats {
		got, err := ParseFormat(strings.ToUpper(string(f)))
		if err != nil || got != f {
			t.Errorf("ParseFormat(%s) = %s, %v", f, got, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("expected error for xml")
	}
}
