// file: internals/features/college/cards/service/conflict_detector_test.go
package service

import (
	"testing"

	"github.com/google/uuid"
)

func TestDetectConflictsTeacherCollision(t *testing.T) {
	teacher := uuid.New()
	ownerGroup := uuid.New()

	occupied := []OccupiedSlot{
		{GroupID: ownerGroup, GroupName: "IS-21", TeacherID: teacher, Position: 2, WeekDay: 1},
	}
	candidate := []SlotAssignment{
		{DisciplineID: uuid.New(), TeacherID: teacher, Position: 2, WeekDay: 1},
	}

	got := DetectConflicts(candidate, occupied)
	if len(got) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(got))
	}
	c := got[0]
	if c.Type != ConflictTeacher {
		t.Fatalf("expected teacher conflict, got %q", c.Type)
	}
	if c.TeacherID != teacher || c.Position != 2 || c.WeekDay != 1 {
		t.Fatalf("conflict key mismatch: %+v", c)
	}
	if c.OwnerGroupID != ownerGroup || c.OwnerGroupName != "IS-21" {
		t.Fatalf("conflict owner mismatch: %+v", c)
	}
}

func TestDetectConflictsDifferentSlotNoCollision(t *testing.T) {
	teacher := uuid.New()

	occupied := []OccupiedSlot{
		{GroupID: uuid.New(), TeacherID: teacher, Position: 2, WeekDay: 1},
	}
	// guru sama, slot beda (posisi lain / hari lain)
	candidate := []SlotAssignment{
		{DisciplineID: uuid.New(), TeacherID: teacher, Position: 3, WeekDay: 1},
		{DisciplineID: uuid.New(), TeacherID: teacher, Position: 2, WeekDay: 2},
	}

	if got := DetectConflicts(candidate, occupied); len(got) != 0 {
		t.Fatalf("expected no conflicts, got %+v", got)
	}
}

func TestDetectConflictsResubmitSelfExcluded(t *testing.T) {
	// Pemanggil membangun occupied tanpa kartu grup pengirim — resubmit
	// payload yang sama tidak boleh bentrok dengan dirinya sendiri.
	teacher := uuid.New()
	candidate := []SlotAssignment{
		{DisciplineID: uuid.New(), TeacherID: teacher, Position: 1, WeekDay: 1, Aud: "101"},
		{DisciplineID: uuid.New(), TeacherID: teacher, Position: 2, WeekDay: 1, Aud: "101"},
	}

	if got := DetectConflicts(candidate, nil); len(got) != 0 {
		t.Fatalf("expected no conflicts, got %+v", got)
	}
}

func TestDetectConflictsRoomCollision(t *testing.T) {
	ownerGroup := uuid.New()

	occupied := []OccupiedSlot{
		{GroupID: ownerGroup, GroupName: "CS-19", TeacherID: uuid.New(), Position: 1, WeekDay: 3, Aud: "304"},
	}
	candidate := []SlotAssignment{
		// guru beda, ruangan sama, slot sama
		{DisciplineID: uuid.New(), TeacherID: uuid.New(), Position: 1, WeekDay: 3, Aud: "304"},
	}

	got := DetectConflicts(candidate, occupied)
	if len(got) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(got))
	}
	if got[0].Type != ConflictRoom || got[0].Aud != "304" {
		t.Fatalf("expected room conflict on 304, got %+v", got[0])
	}
	if got[0].OwnerGroupID != ownerGroup {
		t.Fatalf("conflict owner mismatch: %+v", got[0])
	}
}

func TestDetectConflictsEmptyRoomSkipped(t *testing.T) {
	occupied := []OccupiedSlot{
		{GroupID: uuid.New(), TeacherID: uuid.New(), Position: 1, WeekDay: 1, Aud: ""},
	}
	candidate := []SlotAssignment{
		{DisciplineID: uuid.New(), TeacherID: uuid.New(), Position: 1, WeekDay: 1, Aud: ""},
	}

	// ruangan belum ditentukan tidak ikut cek ruangan
	if got := DetectConflicts(candidate, occupied); len(got) != 0 {
		t.Fatalf("expected no conflicts, got %+v", got)
	}
}

func TestDetectConflictsIntraGroupDuplicate(t *testing.T) {
	candidate := []SlotAssignment{
		{DisciplineID: uuid.New(), TeacherID: uuid.New(), Position: 1, WeekDay: 2},
		{DisciplineID: uuid.New(), TeacherID: uuid.New(), Position: 1, WeekDay: 2},
	}

	got := DetectConflicts(candidate, nil)
	if len(got) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(got))
	}
	if got[0].Type != ConflictGroup || got[0].Position != 1 || got[0].WeekDay != 2 {
		t.Fatalf("expected group conflict at (1,2), got %+v", got[0])
	}
}

func TestDetectConflictsOrdering(t *testing.T) {
	teacher := uuid.New()
	owner := uuid.New()

	occupied := []OccupiedSlot{
		{GroupID: owner, TeacherID: teacher, Position: 4, WeekDay: 5},
		{GroupID: owner, TeacherID: uuid.New(), Position: 1, WeekDay: 1, Aud: "201"},
	}
	candidate := []SlotAssignment{
		{DisciplineID: uuid.New(), TeacherID: uuid.New(), Position: 1, WeekDay: 1, Aud: "201"}, // room
		{DisciplineID: uuid.New(), TeacherID: teacher, Position: 4, WeekDay: 5},                // teacher
		{DisciplineID: uuid.New(), TeacherID: uuid.New(), Position: 3, WeekDay: 2},
		{DisciplineID: uuid.New(), TeacherID: uuid.New(), Position: 3, WeekDay: 2}, // group dup
	}

	got := DetectConflicts(candidate, occupied)
	if len(got) != 3 {
		t.Fatalf("expected 3 conflicts, got %d: %+v", len(got), got)
	}
	want := []ConflictType{ConflictGroup, ConflictTeacher, ConflictRoom}
	for i, w := range want {
		if got[i].Type != w {
			t.Fatalf("conflict %d: expected type %q, got %q", i, w, got[i].Type)
		}
	}
}
