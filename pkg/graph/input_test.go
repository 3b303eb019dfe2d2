package graph

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/domgraph/pkg/errors"
)

func TestParseTagGroupsPreservesOrder(t *testing.T) {
	groups, err := ParseTagGroups([]byte(`{"z":[], "a":[], "m":[{"innerText":"x"}]}`))
	if err != nil {
		t.Fatalf("ParseTagGroups() error: %v", err)
	}
	want := []string{"z", "a", "m"}
	if len(groups) != len(want) {
		t.Fatalf("groups = %d, want %d", len(groups), len(want))
	}
	for i, tag := range want {
		if groups[i].Tag != tag {
			t.Errorf("groups[%d].Tag = %q, want %q", i, groups[i].Tag, tag)
		}
	}
	if got := groups[2].Elements[0].InnerText; got != "x" {
		t.Errorf("innerText = %q, want %q", got, "x")
	}
}

func TestParseTagGroupsMalformed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"EmptyBody", ``},
		{"Array", `[]`},
		{"String", `"div"`},
		{"TagNotArray", `{"div": {}}`},
		{"TagNumber", `{"div": 3}`},
		{"ElementNotObject", `{"div": ["x"]}`},
		{"AttributesNotObject", `{"div": [{"attributes": []}]}`},
		{"AttributeNotString", `{"div": [{"attributes": {"id": 1}}]}`},
		{"InnerTextNotString", `{"div": [{"innerText": 42}]}`},
		{"EmptyTagName", `{"": []}`},
		{"DuplicateTag", `{"div": [], "div": []}`},
		{"Truncated", `{"div": [`},
		{"TrailingData", `{} {}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTagGroups([]byte(tt.payload))
			if !errors.Is(err, errors.ErrCodeMalformedInput) {
				t.Errorf("ParseTagGroups(%q) error = %v, want %s", tt.payload, err, errors.ErrCodeMalformedInput)
			}
		})
	}
}

func TestParseTagGroupsOptionalFields(t *testing.T) {
	groups, err := ParseTagGroups([]byte(`{"br": [{}, {"attributes": null, "innerText": null}]}`))
	if err != nil {
		t.Fatalf("ParseTagGroups() error: %v", err)
	}
	for i, el := range groups[0].Elements {
		if el.Attributes != nil || el.InnerText != "" {
			t.Errorf("element %d = %+v, want zero value", i, el)
		}
	}
}

func TestTagGroupsJSONRoundTrip(t *testing.T) {
	in := TagGroups{
		{Tag: "span"},
		{Tag: "div", Elements: []Element{{Attributes: map[string]string{"class": "x"}, InnerText: `say "hi"`}}},
	}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	var out TagGroups
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if len(out) != 2 || out[0].Tag != "span" || out[1].Tag != "div" {
		t.Fatalf("round trip = %+v, want span then div", out)
	}
	if got := out[1].Elements[0].InnerText; got != `say "hi"` {
		t.Errorf("innerText = %q, want %q", got, `say "hi"`)
	}
}

func TestReadTagGroupsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tags.json")
	if err := os.WriteFile(path, []byte(`{"p": [{"innerText": "x"}]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	groups, err := ReadTagGroupsFile(path)
	if err != nil {
		t.Fatalf("ReadTagGroupsFile() error: %v", err)
	}
	if groups.ElementCount() != 1 {
		t.Errorf("ElementCount() = %d, want 1", groups.ElementCount())
	}

	if _, err := ReadTagGroupsFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("ReadTagGroupsFile() on missing file: want error")
	}
}
