package outline

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestRemoveRenumbers(t *testing.T) {
	d := NewDraft(1, []string{"a", "b", "c", "d"})
	if err := d.Remove(1); err != nil {
		t.Fatal(err)
	}
	rows := d.Rows()
	want := []Row{{0, "a"}, {1, "c"}, {2, "d"}}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("rows = %+v, want %+v", rows, want)
	}

	// The new row 1 is "c"; removing it again targets the renumbered row.
	if err := d.Remove(1); err != nil {
		t.Fatal(err)
	}
	if got := d.Titles(); !reflect.DeepEqual(got, []string{"a", "d"}) {
		t.Errorf("titles = %v", got)
	}
	if err := d.Remove(2); err == nil {
		t.Error("expected out of range error")
	}
}

func TestAddTrimsAndSkipsBlank(t *testing.T) {
	d := NewDraft(1, nil)
	if d.Add("   ") {
		t.Error("blank title added")
	}
	if !d.Add("  Intro  ") {
		t.Error("title not added")
	}
	if got := d.Rows(); len(got) != 1 || got[0].Title != "Intro" {
		t.Errorf("rows = %+v", got)
	}
}

func TestTitlesSkipEditedBlanks(t *testing.T) {
	d := NewDraft(1, []string{"a", "b", "c"})
	if err := d.Set(1, "  "); err != nil {
		t.Fatal(err)
	}
	if err := d.Set(2, " C "); err != nil {
		t.Fatal(err)
	}
	if got := d.Titles(); !reflect.DeepEqual(got, []string{"a", "C"}) {
		t.Errorf("titles = %v", got)
	}
	if err := d.Set(5, "x"); err == nil {
		t.Error("expected out of range error")
	}
}

func TestApply(t *testing.T) {
	var gotID int64
	var gotTitles []string
	calls := 0
	a := ApplierFunc(func(_ context.Context, id int64, titles []string) error {
		calls++
		gotID, gotTitles = id, titles
		return nil
	})

	empty := NewDraft(9, []string{" ", ""})
	if err := empty.Apply(context.Background(), a); !errors.Is(err, ErrEmpty) {
		t.Fatalf("err = %v, want ErrEmpty", err)
	}
	if calls != 0 {
		t.Fatal("request sent for empty outline")
	}
	if ErrEmpty.Error() != "No titles to apply" {
		t.Errorf("message = %q", ErrEmpty.Error())
	}

	d := NewDraft(9, []string{"x", " y "})
	if err := d.Apply(context.Background(), a); err != nil {
		t.Fatal(err)
	}
	if gotID != 9 || !reflect.DeepEqual(gotTitles, []string{"x", "y"}) {
		t.Errorf("applied %d %v", gotID, gotTitles)
	}
}
