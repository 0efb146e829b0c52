package cache

import "testing"

func TestKey_Normalization(t *testing.T) {
	base := Key("What databases has the candidate used?")

	if Key("  what databases has the candidate used?  ") != base {
		t.Error("key changed by case or whitespace")
	}
	if Key("What languages has the candidate used?") == base {
		t.Error("different questions share a key")
	}
	if len(base) <= len("cvrag:answer:") {
		t.Errorf("key %q has no digest", base)
	}
}
