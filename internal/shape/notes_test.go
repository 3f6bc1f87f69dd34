package shape

import (
	"testing"

	"github.com/gyeh/clinicload/internal/model"
)

func note(sp, id, author string) model.NoteLogRow {
	return model.NoteLogRow{
		SharePointID: ptr(sp),
		NoteID:       ptr(id),
		Author:       ptr(author),
		Notes:        ptr("<p>Called &amp; reviewed</p>"),
	}
}

func timeLog(sp, id, author, dur string) model.TimeLogRow {
	auto := true
	return model.TimeLogRow{
		SharePointID:  ptr(sp),
		NoteID:        ptr(id),
		Author:        ptr(author),
		RecordingTime: ptr(dur),
		NoteType:      ptr("Follow Up, Phone"),
		AutoTime:      &auto,
	}
}

func TestMergeNotes(t *testing.T) {
	notes := []model.NoteLogRow{
		note("101", "n1", "Coach One"),
		note("102.0", "n2", "Coach Two"),
		note("103", "n3", "Coach One"),
	}
	times := []model.TimeLogRow{
		timeLog("101", "n1", "Coach One", "00:10:00"),
		timeLog("102", "n2", "Coach Two", "00:05:00"),
		timeLog("102", "n2", "Coach Two", "00:07:00"),
		timeLog("103", "n3", "Someone Else", "00:01:00"),
	}

	merged := MergeNotes(notes, times)
	if len(merged) != 4 {
		t.Fatalf("expected 4 entries (one fan-out), got %d", len(merged))
	}
	if merged[0].Time == nil || merged[1].Time == nil || merged[2].Time == nil {
		t.Error("expected the first two notes to match")
	}
	if merged[3].Time != nil {
		t.Error("author mismatch should not join")
	}
}

func TestMergeNotesNilKey(t *testing.T) {
	n := note("101", "n1", "Coach One")
	n.NoteID = nil
	tl := timeLog("101", "n1", "Coach One", "00:10:00")
	tl.NoteID = nil

	merged := MergeNotes([]model.NoteLogRow{n}, []model.TimeLogRow{tl})
	if len(merged) != 1 || merged[0].Time != nil {
		t.Errorf("nil key parts must not match: %+v", merged)
	}
}

func TestNotes(t *testing.T) {
	tl := timeLog("101", "n1", "Coach One", "00:10:00")
	bad := timeLog("102", "n2", "Coach Two", "a while")
	entries := []NoteEntry{
		{Note: note("101", "n1", "Coach One"), Time: &tl},
		{Note: note("102", "n2", "Coach Two"), Time: &bad},
		{Note: note("103", "n3", "Coach Three")},
	}

	rows, stats := Notes(entries, nil)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	first := rows[0]
	if first.CallTimeSeconds != 600 {
		t.Errorf("call time = %d, want 600", first.CallTimeSeconds)
	}
	if deref(first.TempNoteType) != "Follow Up" {
		t.Errorf("note type = %q", deref(first.TempNoteType))
	}
	if first.IsManual == nil || *first.IsManual != 0 {
		t.Errorf("auto-timed note should not be manual, got %v", first.IsManual)
	}
	if deref(first.NoteContent) != "Called & reviewed" {
		t.Errorf("content = %q", deref(first.NoteContent))
	}
	if first.SharePointID == nil || *first.SharePointID != 101 {
		t.Errorf("sharepoint id = %v", first.SharePointID)
	}

	if stats.BadCallTimes != 1 || rows[1].CallTimeSeconds != 0 {
		t.Errorf("bad call time: stats=%+v seconds=%d", stats, rows[1].CallTimeSeconds)
	}
	if rows[2].TempNoteType != nil || rows[2].IsManual != nil {
		t.Errorf("unmatched note should have no type or manual flag: %+v", rows[2])
	}
}

func TestNoteOverrides(t *testing.T) {
	secs := int64(1200)
	overrides := []model.NoteOverride{
		{Authors: []string{"Coach One"}, NoteType: "Initial Evaluation"},
		{Authors: []string{"Coach One", "Coach Two"}, CallTimeSeconds: &secs},
	}
	tl := timeLog("101", "n1", "Coach One", "00:10:00")
	entries := []NoteEntry{
		{Note: note("101", "n1", "Coach One"), Time: &tl},
		{Note: note("102", "n2", "Coach Two")},
		{Note: note("103", "n3", "Coach Three")},
	}

	rows, _ := Notes(entries, overrides)
	if deref(rows[0].TempNoteType) != "Initial Evaluation" || rows[0].CallTimeSeconds != 1200 {
		t.Errorf("coach one: %q %d", deref(rows[0].TempNoteType), rows[0].CallTimeSeconds)
	}
	if rows[1].TempNoteType != nil || rows[1].CallTimeSeconds != 1200 {
		t.Errorf("coach two: %q %d", deref(rows[1].TempNoteType), rows[1].CallTimeSeconds)
	}
	if rows[2].CallTimeSeconds != 0 {
		t.Errorf("coach three should be untouched, got %d", rows[2].CallTimeSeconds)
	}
}
