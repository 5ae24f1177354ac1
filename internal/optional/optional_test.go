package optional

import (
	"encoding/json"
	"testing"
)

type workerPatch struct {
	Name  Value[string] `json:"name"`
	Phone Value[string] `json:"phone"`
	Notes Value[string] `json:"notes"`
}

func TestUnmarshalPresence(t *testing.T) {
	var p workerPatch
	if err := json.Unmarshal([]byte(`{"name":"X","notes":null}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if v, ok := p.Name.Get(); !ok || v != "X" {
		t.Fatalf("name = %q/%v, want X/true", v, ok)
	}
	if p.Phone.Set {
		t.Fatal("absent phone must stay unset")
	}
	if p.Notes.Set {
		t.Fatal("null notes must decode as unset")
	}
}

func TestEmptyStringIsSet(t *testing.T) {
	var p workerPatch
	if err := json.Unmarshal([]byte(`{"phone":""}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !p.Phone.Set || p.Phone.V != "" {
		t.Fatalf("phone = %+v, want set empty string", p.Phone)
	}
}

func TestApply(t *testing.T) {
	dst := "before"
	var unset Value[string]
	if unset.Apply(&dst) {
		t.Fatal("unset value must not apply")
	}
	if dst != "before" {
		t.Fatalf("dst changed to %q", dst)
	}
	if !Of("after").Apply(&dst) || dst != "after" {
		t.Fatalf("dst = %q, want after", dst)
	}
}
