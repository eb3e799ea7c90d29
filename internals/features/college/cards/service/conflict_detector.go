// file: internals/features/college/cards/service/conflict_detector.go
package service

import (
	"sort"

	"github.com/google/uuid"
)

/* =========================
   Deteksi konflik (pure)

   Tanpa side effect dan tanpa DB supaya bisa diuji sendiri.
   Kunci tabrakan: (teacher, position, week_day) dan
   (aud, position, week_day). Kartu milik grup pengirim
   TIDAK ikut di occupied — resubmit kartu yang sama tidak
   boleh konflik dengan dirinya sendiri; pemanggil yang
   menjamin itu saat membangun occupied.
   ========================= */

type ConflictType string

const (
	ConflictTeacher ConflictType = "teacher" // guru dobel di slot yang sama
	ConflictRoom    ConflictType = "room"    // ruangan dobel di slot yang sama
	ConflictGroup   ConflictType = "group"   // grup pengirim dobel posisi di payload-nya sendiri
)

// SlotAssignment: satu pelajaran yang diajukan untuk grup pengirim.
type SlotAssignment struct {
	DisciplineID uuid.UUID
	TeacherID    uuid.UUID
	Position     int
	WeekDay      int
	Aud          string
}

// OccupiedSlot: satu pelajaran dari kartu current grup LAIN di versi yang sama.
type OccupiedSlot struct {
	GroupID   uuid.UUID
	GroupName string
	TeacherID uuid.UUID
	Position  int
	WeekDay   int
	Aud       string
}

// Conflict menunjuk kunci yang bentrok + pemilik yang sudah ada,
// supaya UI bisa memberi umpan balik yang actionable.
type Conflict struct {
	Type           ConflictType `json:"conflict_type"`
	TeacherID      uuid.UUID    `json:"teacher_id,omitempty"`
	Aud            string       `json:"aud,omitempty"`
	Position       int          `json:"position"`
	WeekDay        int          `json:"week_day"`
	OwnerGroupID   uuid.UUID    `json:"owner_group_id,omitempty"`
	OwnerGroupName string       `json:"owner_group_name,omitempty"`
}

type slotKey struct {
	position int
	weekDay  int
}

type teacherKey struct {
	teacher uuid.UUID
	slot    slotKey
}

type roomKey struct {
	aud  string
	slot slotKey
}

// DetectConflicts membandingkan kandidat dengan slot yang sudah terisi.
// Kompleksitas linier terhadap jumlah slot terisi per versi.
// Hasil kosong = tidak ada konflik; selain itu urut deterministik:
// group → teacher → room, lalu (week_day, position).
func DetectConflicts(candidate []SlotAssignment, occupied []OccupiedSlot) []Conflict {
	teacherOwner := make(map[teacherKey]OccupiedSlot, len(occupied))
	roomOwner := make(map[roomKey]OccupiedSlot, len(occupied))
	for _, o := range occupied {
		k := slotKey{position: o.Position, weekDay: o.WeekDay}
		teacherOwner[teacherKey{teacher: o.TeacherID, slot: k}] = o
		if o.Aud != "" {
			roomOwner[roomKey{aud: o.Aud, slot: k}] = o
		}
	}

	var out []Conflict

	// 1) dobel posisi di payload sendiri
	seen := make(map[slotKey]bool, len(candidate))
	for _, cand := range candidate {
		k := slotKey{position: cand.Position, weekDay: cand.WeekDay}
		if seen[k] {
			out = append(out, Conflict{
				Type:     ConflictGroup,
				Position: cand.Position,
				WeekDay:  cand.WeekDay,
			})
		}
		seen[k] = true
	}

	// 2) guru sudah dipakai grup lain di slot yang sama
	for _, cand := range candidate {
		k := teacherKey{teacher: cand.TeacherID, slot: slotKey{position: cand.Position, weekDay: cand.WeekDay}}
		if owner, ok := teacherOwner[k]; ok {
			out = append(out, Conflict{
				Type:           ConflictTeacher,
				TeacherID:      cand.TeacherID,
				Position:       cand.Position,
				WeekDay:        cand.WeekDay,
				OwnerGroupID:   owner.GroupID,
				OwnerGroupName: owner.GroupName,
			})
		}
	}

	// 3) ruangan sudah dipakai grup lain di slot yang sama
	for _, cand := range candidate {
		if cand.Aud == "" {
			continue
		}
		k := roomKey{aud: cand.Aud, slot: slotKey{position: cand.Position, weekDay: cand.WeekDay}}
		if owner, ok := roomOwner[k]; ok {
			out = append(out, Conflict{
				Type:           ConflictRoom,
				Aud:            cand.Aud,
				Position:       cand.Position,
				WeekDay:        cand.WeekDay,
				OwnerGroupID:   owner.GroupID,
				OwnerGroupName: owner.GroupName,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return typeRank(out[i].Type) < typeRank(out[j].Type)
		}
		if out[i].WeekDay != out[j].WeekDay {
			return out[i].WeekDay < out[j].WeekDay
		}
		return out[i].Position < out[j].Position
	})
	return out
}

func typeRank(t ConflictType) int {
	switch t {
	case ConflictGroup:
		return 0
	case ConflictTeacher:
		return 1
	default:
		return 2
	}
}
