package graph

import (
	"reflect"
	"testing"
)

func TestHierarchyRoundTrip(t *testing.T) {
	g, _ := BuildJSON([]byte(`{"div":[{"attributes":{"id":"a"}},{}],"span":[],"p":[{"innerText":"x"}]}`))

	h, err := ToHierarchy(g)
	if err != nil {
		t.Fatalf("ToHierarchy() error: %v", err)
	}
	if len(h.Children) != 3 {
		t.Fatalf("root children = %d, want 3", len(h.Children))
	}
	if got := h.Children[0].Children[0].Name; got != "div#a" {
		t.Errorf("first element = %q, want %q", got, "div#a")
	}

	back := FromHierarchy(h)
	if !reflect.DeepEqual(back, g) {
		t.Errorf("FromHierarchy(ToHierarchy(g)) = %+v, want %+v", back, g)
	}
}

func TestHierarchyWalk(t *testing.T) {
	g, _ := BuildJSON([]byte(`{"ul":[{},{}]}`))
	h, _ := ToHierarchy(g)

	var depths []int
	h.Walk(func(_ *HierarchyNode, depth int) { depths = append(depths, depth) })
	if want := []int{0, 1, 2, 2}; !reflect.DeepEqual(depths, want) {
		t.Errorf("depths = %v, want %v", depths, want)
	}
}

func TestToHierarchyNoRoot(t *testing.T) {
	if _, err := ToHierarchy(&Graph{}); err == nil {
		t.Error("ToHierarchy() on empty graph: want error")
	}
}
