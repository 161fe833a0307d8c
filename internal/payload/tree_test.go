package payload

import "testing"

func TestAt_DescendsNestedMaps(t *testing.T) {
	root, err := Parse([]byte(`{"a":{"b":{"c":"hit"}}}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	node, ok := root.At("a.b.c")
	if !ok {
		t.Fatalf("expected path to resolve")
	}
	if s, _ := node.AsString(); s != "hit" {
		t.Fatalf("expected hit, got %q", s)
	}
}

func TestAt_MissingKeyAndNonMapStepFail(t *testing.T) {
	root, _ := Parse([]byte(`{"a":{"b":"leaf"},"n":5}`))

	if _, ok := root.At("a.x"); ok {
		t.Fatalf("missing key should not resolve")
	}
	if _, ok := root.At("a.b.c"); ok {
		t.Fatalf("descending through a string should not resolve")
	}
	if _, ok := root.At("n.deeper"); ok {
		t.Fatalf("descending through a number should not resolve")
	}
}

func TestAt_NullIsTreatedAsAbsent(t *testing.T) {
	root, _ := Parse([]byte(`{"a":null}`))
	if _, ok := root.At("a"); ok {
		t.Fatalf("null should report not found")
	}
}

func TestAsNumber_AcceptsNumericStrings(t *testing.T) {
	root, _ := Parse([]byte(`{"native":120,"text":"120.5","junk":"twelve"}`))

	if node, _ := root.At("native"); node.Kind() != KindNumber {
		t.Fatalf("expected number kind")
	}
	node, _ := root.At("text")
	n, ok := node.AsNumber()
	if !ok || n != 120.5 {
		t.Fatalf("expected 120.5 from numeric string, got %v ok=%v", n, ok)
	}
	node, _ = root.At("junk")
	if _, ok := node.AsNumber(); ok {
		t.Fatalf("non-numeric string must not coerce")
	}
}

func TestAsString_RejectsNonStrings(t *testing.T) {
	root, _ := Parse([]byte(`{"n":5,"b":true}`))
	node, _ := root.At("n")
	if _, ok := node.AsString(); ok {
		t.Fatalf("number must not coerce to string")
	}
	node, _ = root.At("b")
	if _, ok := node.AsString(); ok {
		t.Fatalf("bool must not coerce to string")
	}
}

func TestKeys_ReturnsSortedOrder(t *testing.T) {
	root, err := Parse([]byte(`{"delta":1,"alpha":2,"charlie":3,"bravo":4}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []string{"alpha", "bravo", "charlie", "delta"}
	for i := 0; i < 50; i++ {
		got := root.Keys()
		if len(got) != len(want) {
			t.Fatalf("got %d keys, want %d", len(got), len(want))
		}
		for j := range want {
			if got[j] != want[j] {
				t.Fatalf("iteration %d: keys[%d] = %q, want %q", i, j, got[j], want[j])
			}
		}
	}
}
