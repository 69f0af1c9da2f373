package meta

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ValentinKolb/metasync/lib/record"
	"github.com/fatih/color"
)

func TestParseAssignments(t *testing.T) {
	a, err := parseAssignments([]string{"theme=dark", "pageSize=50", "compact=false", "tags=[\"a\"]", "theme=light", "note="})
	if err != nil {
		t.Fatalf("parseAssignments failed: %v", err)
	}

	if want := []string{"theme", "pageSize", "compact", "tags", "note"}; strings.Join(a.keys, ",") != strings.Join(want, ",") {
		t.Errorf("expected keys %v, got %v", want, a.keys)
	}
	if a.values["theme"] != "light" {
		t.Errorf("expected the last value to win, got %v", a.values["theme"])
	}
	if a.values["pageSize"] != float64(50) {
		t.Errorf("expected number 50, got %#v", a.values["pageSize"])
	}
	if a.values["compact"] != false {
		t.Errorf("expected false, got %#v", a.values["compact"])
	}
	if tags, ok := a.values["tags"].([]any); !ok || len(tags) != 1 {
		t.Errorf("expected a one element array, got %#v", a.values["tags"])
	}
	if a.values["note"] != "" {
		t.Errorf("expected the empty string, got %#v", a.values["note"])
	}
}

func TestParseAssignmentsRejectsMissingField(t *testing.T) {
	for _, arg := range []string{"theme", "=dark"} {
		if _, err := parseAssignments([]string{arg}); err == nil {
			t.Errorf("expected an error for %q", arg)
		}
	}
}

func TestPrintRecordSortsFields(t *testing.T) {
	color.NoColor = true

	var out bytes.Buffer
	printRecord(&out, "u1-organization-o1", record.Record{"b": 1, "a": "x"})

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %q", out.String())
	}
	if lines[0] != "u1-organization-o1" {
		t.Errorf("expected the key header, got %q", lines[0])
	}
	if !strings.HasPrefix(strings.TrimSpace(lines[1]), "a") || !strings.HasSuffix(lines[1], `"x"`) {
		t.Errorf("expected field a first, got %q", lines[1])
	}
	if !strings.HasSuffix(lines[2], "1") {
		t.Errorf("expected field b second, got %q", lines[2])
	}
}
