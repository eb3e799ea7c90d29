// file: internals/features/college/ttable_versions/service/lifecycle_service_test.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	database "kampusku_backend/internals/databases"
	cardModel "kampusku_backend/internals/features/college/cards/model"
	"kampusku_backend/internals/features/college/errs"
	refModel "kampusku_backend/internals/features/college/references/model"
	m "kampusku_backend/internals/features/college/ttable_versions/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type lifecycleFixture struct {
	db       *gorm.DB
	lc       *LifecycleService
	vs       *VersionService
	actor    uuid.UUID
	building refModel.BuildingModel
	groupA   refModel.GroupModel
	groupB   refModel.GroupModel
	teacher  refModel.TeacherModel
	disc     refModel.DisciplineModel
}

func newLifecycleFixture(t *testing.T) *lifecycleFixture {
	t.Helper()
	db := newTestDB(t)

	f := &lifecycleFixture{
		db:       db,
		lc:       NewLifecycleService(db),
		vs:       NewVersionService(db),
		actor:    uuid.New(),
		building: refModel.BuildingModel{BuildingName: "Gedung A"},
		teacher:  refModel.TeacherModel{TeacherFio: "Siregar A.B."},
		disc:     refModel.DisciplineModel{DisciplineTitle: "Basis Data"},
	}
	if err := db.Create(&f.building).Error; err != nil {
		t.Fatalf("seed building: %v", err)
	}
	f.groupA = refModel.GroupModel{GroupBuildingID: f.building.BuildingID, GroupName: "IS-21", GroupIsActive: true}
	f.groupB = refModel.GroupModel{GroupBuildingID: f.building.BuildingID, GroupName: "CS-19", GroupIsActive: true}
	for _, mdl := range []any{&f.groupA, &f.groupB, &f.teacher, &f.disc} {
		if err := db.Create(mdl).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return f
}

func (f *lifecycleFixture) newPendingVersion(t *testing.T) m.TtableVersionModel {
	t.Helper()
	ver := m.TtableVersionModel{
		TtableVersionBuildingID: f.building.BuildingID,
		TtableVersionType:       m.VersionTypeStandard,
		TtableVersionStatusID:   m.VersionPending,
		TtableVersionCreatedBy:  f.actor,
	}
	if err := f.db.Create(&ver).Error; err != nil {
		t.Fatalf("seed version: %v", err)
	}
	return ver
}

// seedCard menanam kartu current untuk grup lewat model langsung
// (lifecycle tidak peduli kartu datang dari save atau import).
func (f *lifecycleFixture) seedCard(t *testing.T, versionID, groupID uuid.UUID, details ...cardModel.CardStateDetailModel) cardModel.CardStateHistoryModel {
	t.Helper()
	hist := cardModel.CardStateHistoryModel{
		CardHistTtableVersionID: versionID,
		CardHistGroupID:         groupID,
		CardHistIsCurrent:       true,
		CardHistStatusID:        cardModel.CardSaved,
		CardHistCreatedBy:       f.actor,
	}
	if err := f.db.Create(&hist).Error; err != nil {
		t.Fatalf("seed hist: %v", err)
	}
	for i := range details {
		details[i].CardDetailCardHistID = hist.CardHistID
		details[i].CardDetailTtableVersionID = versionID
		details[i].CardDetailGroupID = groupID
		details[i].CardDetailIsCurrent = true
		if details[i].CardDetailDisciplineID == uuid.Nil {
			details[i].CardDetailDisciplineID = f.disc.DisciplineID
		}
		if err := f.db.Create(&details[i]).Error; err != nil {
			t.Fatalf("seed detail: %v", err)
		}
	}
	return hist
}

func (f *lifecycleFixture) reload(t *testing.T, id uuid.UUID) m.TtableVersionModel {
	t.Helper()
	var ver m.TtableVersionModel
	if err := f.db.Where("ttable_version_id = ?", id).First(&ver).Error; err != nil {
		t.Fatalf("reload version: %v", err)
	}
	return ver
}

func TestPreCommitCheckMissingGroups(t *testing.T) {
	f := newLifecycleFixture(t)
	ver := f.newPendingVersion(t)

	f.seedCard(t, ver.TtableVersionID, f.groupA.GroupID,
		cardModel.CardStateDetailModel{CardDetailTeacherID: f.teacher.TeacherID, CardDetailPosition: 1, CardDetailWeekDay: 1})

	res, err := f.lc.PreCommitCheck(context.Background(), ver.TtableVersionID)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if res.Status != CheckMissingGroups {
		t.Fatalf("expected missing_groups, got %q", res.Status)
	}
	if len(res.MissingGroups) != 1 || res.MissingGroups[0].GroupID != f.groupB.GroupID {
		t.Fatalf("expected group B missing, got %+v", res.MissingGroups)
	}
}

func TestPreCommitCheckConflicts(t *testing.T) {
	f := newLifecycleFixture(t)
	ver := f.newPendingVersion(t)

	// drift yang lolos index: grup A dobel posisi dengan dua guru berbeda
	otherTeacher := refModel.TeacherModel{TeacherFio: "Wijaya C.D."}
	if err := f.db.Create(&otherTeacher).Error; err != nil {
		t.Fatalf("seed teacher: %v", err)
	}
	f.seedCard(t, ver.TtableVersionID, f.groupA.GroupID,
		cardModel.CardStateDetailModel{CardDetailTeacherID: f.teacher.TeacherID, CardDetailPosition: 1, CardDetailWeekDay: 1},
		cardModel.CardStateDetailModel{CardDetailTeacherID: otherTeacher.TeacherID, CardDetailPosition: 1, CardDetailWeekDay: 1})
	f.seedCard(t, ver.TtableVersionID, f.groupB.GroupID,
		cardModel.CardStateDetailModel{CardDetailTeacherID: otherTeacher.TeacherID, CardDetailPosition: 2, CardDetailWeekDay: 1})

	res, err := f.lc.PreCommitCheck(context.Background(), ver.TtableVersionID)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if res.Status != CheckConflicts || len(res.Conflicts) == 0 {
		t.Fatalf("expected conflicts, got %+v", res)
	}
}

func TestPreCommitCheckReady(t *testing.T) {
	f := newLifecycleFixture(t)
	ver := f.newPendingVersion(t)

	f.seedCard(t, ver.TtableVersionID, f.groupA.GroupID,
		cardModel.CardStateDetailModel{CardDetailTeacherID: f.teacher.TeacherID, CardDetailPosition: 1, CardDetailWeekDay: 1})
	f.seedCard(t, ver.TtableVersionID, f.groupB.GroupID,
		cardModel.CardStateDetailModel{CardDetailTeacherID: f.teacher.TeacherID, CardDetailPosition: 2, CardDetailWeekDay: 1})

	res, err := f.lc.PreCommitCheck(context.Background(), ver.TtableVersionID)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if res.Status != CheckReady {
		t.Fatalf("expected ready, got %+v", res)
	}
}

func TestCommitPromotesAndDemotes(t *testing.T) {
	f := newLifecycleFixture(t)

	v1 := f.newPendingVersion(t)
	h1 := f.seedCard(t, v1.TtableVersionID, f.groupA.GroupID,
		cardModel.CardStateDetailModel{CardDetailTeacherID: f.teacher.TeacherID, CardDetailPosition: 1, CardDetailWeekDay: 1})
	f.seedCard(t, v1.TtableVersionID, f.groupB.GroupID,
		cardModel.CardStateDetailModel{CardDetailTeacherID: f.teacher.TeacherID, CardDetailPosition: 2, CardDetailWeekDay: 1})

	res, err := f.lc.Commit(context.Background(), v1.TtableVersionID, f.actor)
	if err != nil {
		t.Fatalf("commit v1: %v", err)
	}
	if !res.Success {
		t.Fatalf("commit blocked: %+v", res)
	}

	got := f.reload(t, v1.TtableVersionID)
	if got.TtableVersionStatusID != m.VersionAccepted || !got.TtableVersionIsCommitted {
		t.Fatalf("v1 must be accepted+committed, got %+v", got)
	}

	var hist cardModel.CardStateHistoryModel
	if err := f.db.Where("card_hist_id = ?", h1.CardHistID).First(&hist).Error; err != nil {
		t.Fatalf("reload hist: %v", err)
	}
	if hist.CardHistStatusID != cardModel.CardAccepted {
		t.Fatalf("current cards must be marked accepted, got %d", hist.CardHistStatusID)
	}

	// versi kedua menggantikan yang pertama
	v2 := f.newPendingVersion(t)
	f.seedCard(t, v2.TtableVersionID, f.groupA.GroupID,
		cardModel.CardStateDetailModel{CardDetailTeacherID: f.teacher.TeacherID, CardDetailPosition: 3, CardDetailWeekDay: 1})
	f.seedCard(t, v2.TtableVersionID, f.groupB.GroupID,
		cardModel.CardStateDetailModel{CardDetailTeacherID: f.teacher.TeacherID, CardDetailPosition: 4, CardDetailWeekDay: 1})

	if _, err := f.lc.Commit(context.Background(), v2.TtableVersionID, f.actor); err != nil {
		t.Fatalf("commit v2: %v", err)
	}
	if got := f.reload(t, v1.TtableVersionID); got.TtableVersionStatusID != m.VersionDeprecated {
		t.Fatalf("v1 must be deprecated after v2 commit, got %d", got.TtableVersionStatusID)
	}
	if got := f.reload(t, v2.TtableVersionID); got.TtableVersionStatusID != m.VersionAccepted {
		t.Fatalf("v2 must be accepted, got %d", got.TtableVersionStatusID)
	}
}

func TestCommitBlockedLeavesVersionPending(t *testing.T) {
	f := newLifecycleFixture(t)
	ver := f.newPendingVersion(t)
	// hanya grup A punya kartu

	f.seedCard(t, ver.TtableVersionID, f.groupA.GroupID,
		cardModel.CardStateDetailModel{CardDetailTeacherID: f.teacher.TeacherID, CardDetailPosition: 1, CardDetailWeekDay: 1})

	res, err := f.lc.Commit(context.Background(), ver.TtableVersionID, f.actor)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if res.Success || res.Check.Status != CheckMissingGroups {
		t.Fatalf("expected blocked commit, got %+v", res)
	}
	if got := f.reload(t, ver.TtableVersionID); got.TtableVersionStatusID != m.VersionPending || got.TtableVersionIsCommitted {
		t.Fatalf("blocked commit must not mutate the version, got %+v", got)
	}
}

func TestCommitNonPendingVersion(t *testing.T) {
	f := newLifecycleFixture(t)
	ver := f.newPendingVersion(t)
	if err := f.db.Model(&m.TtableVersionModel{}).
		Where("ttable_version_id = ?", ver.TtableVersionID).
		Update("ttable_version_status_id", m.VersionDeprecated).Error; err != nil {
		t.Fatalf("update: %v", err)
	}

	if _, err := f.lc.Commit(context.Background(), ver.TtableVersionID, f.actor); !errors.Is(err, errs.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	if _, err := f.lc.Commit(context.Background(), uuid.New(), f.actor); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRollbackToVersionSwapsAccepted(t *testing.T) {
	f := newLifecycleFixture(t)

	commitVersion := func() m.TtableVersionModel {
		v := f.newPendingVersion(t)
		f.seedCard(t, v.TtableVersionID, f.groupA.GroupID,
			cardModel.CardStateDetailModel{CardDetailTeacherID: f.teacher.TeacherID, CardDetailPosition: 1, CardDetailWeekDay: 1})
		f.seedCard(t, v.TtableVersionID, f.groupB.GroupID,
			cardModel.CardStateDetailModel{CardDetailTeacherID: f.teacher.TeacherID, CardDetailPosition: 2, CardDetailWeekDay: 1})
		if _, err := f.lc.Commit(context.Background(), v.TtableVersionID, f.actor); err != nil {
			t.Fatalf("commit: %v", err)
		}
		return v
	}

	v1 := commitVersion()
	v2 := commitVersion()

	// kandidat rollback dari sudut pandang v2 = v1
	cands, err := f.lc.RollbackCandidates(context.Background(), v2.TtableVersionID)
	if err != nil {
		t.Fatalf("candidates: %v", err)
	}
	if len(cands) != 1 || cands[0].TtableVersionID != v1.TtableVersionID {
		t.Fatalf("expected v1 as candidate, got %+v", cands)
	}

	if err := f.lc.RollbackToVersion(context.Background(), v1.TtableVersionID, f.actor); err != nil {
		t.Fatalf("rollback: %v", err)
	}
	if got := f.reload(t, v1.TtableVersionID); got.TtableVersionStatusID != m.VersionAccepted {
		t.Fatalf("v1 must be accepted again, got %d", got.TtableVersionStatusID)
	}
	if got := f.reload(t, v2.TtableVersionID); got.TtableVersionStatusID != m.VersionDeprecated {
		t.Fatalf("v2 must be deprecated, got %d", got.TtableVersionStatusID)
	}

	// rollback hanya untuk versi deprecated
	if err := f.lc.RollbackToVersion(context.Background(), v1.TtableVersionID, f.actor); !errors.Is(err, errs.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState for accepted target, got %v", err)
	}
}

func TestAcceptedUniqueIndexBacksCommitRace(t *testing.T) {
	f := newLifecycleFixture(t)

	v1 := f.newPendingVersion(t)
	if err := f.db.Model(&m.TtableVersionModel{}).
		Where("ttable_version_id = ?", v1.TtableVersionID).
		Update("ttable_version_status_id", m.VersionAccepted).Error; err != nil {
		t.Fatalf("promote v1: %v", err)
	}

	// promosi kedua di scope yang sama harus ditolak index parsial,
	// dan classifier harus mengenalinya sebagai unique violation
	v2 := f.newPendingVersion(t)
	err := f.db.Model(&m.TtableVersionModel{}).
		Where("ttable_version_id = ?", v2.TtableVersionID).
		Update("ttable_version_status_id", m.VersionAccepted).Error
	if err == nil {
		t.Fatalf("expected unique violation on second accepted version")
	}
	if !errs.IsUniqueViolation(err) {
		t.Fatalf("classifier must flag unique violation, got %v", err)
	}
}
