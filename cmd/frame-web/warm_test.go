package main

import (
	"testing"

	"github.com/fpang/framekit/internal/frame"
)

func TestParseWarm(t *testing.T) {
	got, err := parseWarm([]string{"Black/Wood/Thin", " Dark Walnut / Wood / Thick "})
	if err != nil {
		t.Fatal(err)
	}
	want := []frame.UserSelection{
		{ColorName: "Black", MaterialType: "Wood", Thickness: "Thin"},
		{ColorName: "Dark Walnut", MaterialType: "Wood", Thickness: "Thick"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d selections", len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("selection %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	for _, bad := range []string{"Black/Wood", "Black//Thin", "a/b/c/d"} {
		if _, err := parseWarm([]string{bad}); err == nil {
			t.Errorf("parseWarm(%q) should fail", bad)
		}
	}
}
