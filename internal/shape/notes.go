package shape

import (
	"slices"
	"strconv"
	"strings"

	"github.com/gyeh/clinicload/internal/model"
	"github.com/gyeh/clinicload/internal/normalize"
)

// NoteEntry is a note paired with its call-duration record, if any.
type NoteEntry struct {
	Note model.NoteLogRow
	Time *model.TimeLogRow
}

type noteKey struct {
	sharePointID string
	noteID       string
	author       string
}

func keyOf(sharePointID, noteID, author *string) (noteKey, bool) {
	if sharePointID == nil || noteID == nil || author == nil {
		return noteKey{}, false
	}
	sp := strings.TrimSpace(*sharePointID)
	if id := normalize.ParseID(sharePointID); id != nil {
		sp = strconv.FormatInt(*id, 10)
	}
	return noteKey{sp, strings.TrimSpace(*noteID), strings.TrimSpace(*author)}, true
}

// MergeNotes left-joins notes to time logs on (SharePoint id, note id,
// author). A note matching several time logs appears once per match; a note
// matching none appears once without one. Note order is preserved.
func MergeNotes(notes []model.NoteLogRow, times []model.TimeLogRow) []NoteEntry {
	byKey := make(map[noteKey][]int, len(times))
	for i := range times {
		t := &times[i]
		if k, ok := keyOf(t.SharePointID, t.NoteID, t.Author); ok {
			byKey[k] = append(byKey[k], i)
		}
	}

	out := make([]NoteEntry, 0, len(notes))
	for _, n := range notes {
		k, ok := keyOf(n.SharePointID, n.NoteID, n.Author)
		matches := byKey[k]
		if !ok || len(matches) == 0 {
			out = append(out, NoteEntry{Note: n})
			continue
		}
		for _, i := range matches {
			out = append(out, NoteEntry{Note: n, Time: &times[i]})
		}
	}
	return out
}

// NoteStats counts notes whose call time could not be parsed.
type NoteStats struct {
	BadCallTimes int
}

// Notes normalizes merged notes into patient note rows and applies the
// per-author overrides in order. An unparseable call time is recorded as 0.
func Notes(entries []NoteEntry, overrides []model.NoteOverride) ([]model.PatientNote, NoteStats) {
	var stats NoteStats
	out := make([]model.PatientNote, 0, len(entries))
	for _, e := range entries {
		n := model.PatientNote{
			SharePointID: normalize.ParseID(e.Note.SharePointID),
			NoteContent:  normalize.CleanNoteContent(e.Note.Notes),
			NoteDatetime: e.Note.TimeStamp,
			TempUser:     e.Note.Author,
		}

		noteType := e.Note.TimeNote
		if e.Time != nil {
			if noteType == nil {
				noteType = e.Time.NoteType
			}
			secs, err := normalize.StandardizeCallTime(e.Time.RecordingTime)
			if err != nil {
				stats.BadCallTimes++
			}
			n.CallTimeSeconds = secs
			// Auto_Time is stored inverted: an automatic timer is not manual.
			n.IsManual = flag(e.Time.AutoTime, false)
			n.StartCallDatetime = e.Time.StartTime
			n.EndCallDatetime = e.Time.EndTime
		}
		n.TempNoteType = normalize.StandardizeNoteType(noteType)

		applyOverrides(&n, overrides)
		out = append(out, n)
	}
	return out, stats
}

func applyOverrides(n *model.PatientNote, overrides []model.NoteOverride) {
	if n.TempUser == nil {
		return
	}
	author := *n.TempUser
	for _, o := range overrides {
		if !slices.Contains(o.Authors, author) {
			continue
		}
		if o.NoteType != "" {
			t := o.NoteType
			n.TempNoteType = &t
		}
		if o.CallTimeSeconds != nil {
			n.CallTimeSeconds = *o.CallTimeSeconds
		}
	}
}
