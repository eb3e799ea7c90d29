// file: internals/features/college/ttable_versions/service/lifecycle_service.go
package service

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	cardModel "kampusku_backend/internals/features/college/cards/model"
	cardService "kampusku_backend/internals/features/college/cards/service"
	"kampusku_backend/internals/features/college/errs"
	refModel "kampusku_backend/internals/features/college/references/model"
	m "kampusku_backend/internals/features/college/ttable_versions/model"
)

/* =========================
   Service & Constructor
   ========================= */

type LifecycleService struct {
	DB *gorm.DB
}

func NewLifecycleService(db *gorm.DB) *LifecycleService {
	return &LifecycleService{DB: db}
}

/* =========================
   Hasil pre-commit check
   ========================= */

type CheckStatus string

const (
	CheckReady         CheckStatus = "ready"
	CheckMissingGroups CheckStatus = "missing_groups"
	CheckConflicts     CheckStatus = "conflicts"
)

type MissingGroup struct {
	GroupID   uuid.UUID `json:"group_id"`
	GroupName string    `json:"group_name"`
}

type CheckResult struct {
	Status        CheckStatus            `json:"status"`
	MissingGroups []MissingGroup         `json:"missing_groups,omitempty"`
	Conflicts     []cardService.Conflict `json:"conflicts,omitempty"`
}

type CommitResult struct {
	Success bool        `json:"success"`
	Check   CheckResult `json:"check"`
	Message string      `json:"message,omitempty"`
}

// Sentinel internal: check gagal di dalam transaksi commit — batalkan
// tanpa mutasi, hasilnya dilaporkan sebagai nilai.
var errCommitBlocked = errors.New("abort: commit blocked by check")

/* =========================
   PreCommitCheck
   ========================= */

// PreCommitCheck menilai kesiapan versi tanpa mengubah apa pun:
// semua grup aktif gedung harus punya kartu current, dan sapuan
// detector lintas grup harus bersih.
func (s *LifecycleService) PreCommitCheck(ctx context.Context, versionID uuid.UUID) (CheckResult, error) {
	var res CheckResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ver, err := loadVersion(tx, versionID, false)
		if err != nil {
			return err
		}
		if ver.TtableVersionStatusID != m.VersionPending {
			return errs.ErrInvalidState
		}
		res, err = checkVersion(tx, ver)
		return err
	})
	if err != nil {
		return CheckResult{}, classify("versions.check", err)
	}
	return res, nil
}

/* =========================
   Commit
   ========================= */

// Commit mempromosikan versi pending jadi accepted dalam SATU transaksi:
// check diulang di dalam transaksi, accepted lama (building+type yang
// sama) diturunkan jadi deprecated, kartu current ditandai accepted.
// Race dua commit bersamaan: yang kalah menabrak
// ux_ttable_versions_accepted dan mendapat ErrConflict.
func (s *LifecycleService) Commit(ctx context.Context, versionID, actor uuid.UUID) (CommitResult, error) {
	var res CommitResult
	err := runInTx(ctx, s.DB, func(tx *gorm.DB) error {
		ver, err := loadVersion(tx, versionID, true)
		if err != nil {
			return err
		}
		if ver.TtableVersionStatusID != m.VersionPending {
			return errs.ErrInvalidState
		}

		check, err := checkVersion(tx, ver)
		if err != nil {
			return err
		}
		if check.Status != CheckReady {
			res = CommitResult{Success: false, Check: check, Message: "version is not ready to commit"}
			return errCommitBlocked
		}

		if err := demoteAccepted(tx, ver.TtableVersionBuildingID, ver.TtableVersionType, ver.TtableVersionID); err != nil {
			return err
		}

		if err := tx.Model(&m.TtableVersionModel{}).
			Where("ttable_version_id = ?", ver.TtableVersionID).
			Updates(map[string]interface{}{
				"ttable_version_status_id":   m.VersionAccepted,
				"ttable_version_is_committed": true,
			}).Error; err != nil {
			return err
		}

		if err := tx.Model(&cardModel.CardStateHistoryModel{}).
			Where("card_hist_ttable_version_id = ? AND card_hist_is_current = ?", ver.TtableVersionID, true).
			Update("card_hist_status_id", cardModel.CardAccepted).Error; err != nil {
			return err
		}

		res = CommitResult{Success: true, Check: check, Message: "version committed"}
		return nil
	})
	if err != nil {
		if errors.Is(err, errCommitBlocked) {
			return res, nil
		}
		if errs.IsUniqueViolation(err) {
			// kalah race dengan commit lain di scope yang sama
			return CommitResult{}, errs.ErrConflict
		}
		return CommitResult{}, classify("versions.commit", err)
	}
	return res, nil
}

/* =========================
   Rollback versi
   ========================= */

// RollbackToVersion mengembalikan versi deprecated jadi accepted lagi;
// accepted yang sedang berlaku diturunkan dalam transaksi yang sama.
func (s *LifecycleService) RollbackToVersion(ctx context.Context, versionID, actor uuid.UUID) error {
	err := runInTx(ctx, s.DB, func(tx *gorm.DB) error {
		ver, err := loadVersion(tx, versionID, true)
		if err != nil {
			return err
		}
		if ver.TtableVersionStatusID != m.VersionDeprecated {
			return errs.ErrInvalidState
		}

		if err := demoteAccepted(tx, ver.TtableVersionBuildingID, ver.TtableVersionType, ver.TtableVersionID); err != nil {
			return err
		}

		return tx.Model(&m.TtableVersionModel{}).
			Where("ttable_version_id = ?", ver.TtableVersionID).
			Update("ttable_version_status_id", m.VersionAccepted).Error
	})
	if err != nil {
		if errs.IsUniqueViolation(err) {
			return errs.ErrConflict
		}
		return classify("versions.rollback", err)
	}
	return nil
}

// RollbackCandidates: versi deprecated dari scope yang sama, terbaru dulu.
func (s *LifecycleService) RollbackCandidates(ctx context.Context, versionID uuid.UUID) ([]m.TtableVersionModel, error) {
	var ver m.TtableVersionModel
	if err := s.DB.WithContext(ctx).
		Where("ttable_version_id = ?", versionID).
		First(&ver).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, errs.Storage("versions.rollback_candidates", err)
	}

	var rows []m.TtableVersionModel
	err := s.DB.WithContext(ctx).
		Where("ttable_version_building_id = ? AND ttable_version_type = ? AND ttable_version_status_id = ? AND ttable_version_id <> ?",
			ver.TtableVersionBuildingID, ver.TtableVersionType, m.VersionDeprecated, ver.TtableVersionID).
		Order("ttable_version_last_modified_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, errs.Storage("versions.rollback_candidates", err)
	}
	return rows, nil
}

/* =========================
   Helpers (internal)
   ========================= */

func loadVersion(tx *gorm.DB, versionID uuid.UUID, lock bool) (*m.TtableVersionModel, error) {
	q := tx
	if lock {
		q = forUpdate(tx)
	}
	var ver m.TtableVersionModel
	if err := q.Where("ttable_version_id = ?", versionID).First(&ver).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &ver, nil
}

// demoteAccepted menurunkan accepted yang sedang berlaku di scope yang
// sama (kalau ada) jadi deprecated, dengan row lock.
func demoteAccepted(tx *gorm.DB, buildingID uuid.UUID, vtype m.VersionType, exceptID uuid.UUID) error {
	var current m.TtableVersionModel
	err := forUpdate(tx).
		Where("ttable_version_building_id = ? AND ttable_version_type = ? AND ttable_version_status_id = ? AND ttable_version_id <> ?",
			buildingID, vtype, m.VersionAccepted, exceptID).
		First(&current).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil // commit pertama untuk scope ini
		}
		return err
	}
	return tx.Model(&m.TtableVersionModel{}).
		Where("ttable_version_id = ?", current.TtableVersionID).
		Update("ttable_version_status_id", m.VersionDeprecated).Error
}

// checkVersion: inti PreCommitCheck, dipakai juga di dalam transaksi
// commit supaya keputusan dan promosi atomik.
func checkVersion(tx *gorm.DB, ver *m.TtableVersionModel) (CheckResult, error) {
	var groups []refModel.GroupModel
	if err := tx.
		Where("group_building_id = ? AND group_is_active = ?", ver.TtableVersionBuildingID, true).
		Order("group_name ASC").
		Find(&groups).Error; err != nil {
		return CheckResult{}, err
	}

	var details []cardModel.CardStateDetailModel
	if err := tx.
		Where("card_detail_ttable_version_id = ? AND card_detail_is_current = ?", ver.TtableVersionID, true).
		Find(&details).Error; err != nil {
		return CheckResult{}, err
	}

	byGroup := make(map[uuid.UUID][]cardModel.CardStateDetailModel)
	for _, d := range details {
		byGroup[d.CardDetailGroupID] = append(byGroup[d.CardDetailGroupID], d)
	}

	groupName := make(map[uuid.UUID]string, len(groups))
	var missing []MissingGroup
	for _, g := range groups {
		groupName[g.GroupID] = g.GroupName
		if len(byGroup[g.GroupID]) == 0 {
			missing = append(missing, MissingGroup{GroupID: g.GroupID, GroupName: g.GroupName})
		}
	}
	if len(missing) > 0 {
		return CheckResult{Status: CheckMissingGroups, MissingGroups: missing}, nil
	}

	// Sapuan lintas grup: occupied diakumulasi dari grup yang sudah
	// diperiksa supaya tiap pasangan bentrok dilaporkan sekali saja.
	ids := make([]uuid.UUID, 0, len(byGroup))
	for id := range byGroup {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	var conflicts []cardService.Conflict
	var occupied []cardService.OccupiedSlot
	for _, gid := range ids {
		candidate := make([]cardService.SlotAssignment, 0, len(byGroup[gid]))
		for _, d := range byGroup[gid] {
			candidate = append(candidate, cardService.SlotAssignment{
				DisciplineID: d.CardDetailDisciplineID,
				TeacherID:    d.CardDetailTeacherID,
				Position:     d.CardDetailPosition,
				WeekDay:      d.CardDetailWeekDay,
				Aud:          d.CardDetailAud,
			})
		}
		conflicts = append(conflicts, cardService.DetectConflicts(candidate, occupied)...)
		for _, d := range byGroup[gid] {
			occupied = append(occupied, cardService.OccupiedSlot{
				GroupID:   gid,
				GroupName: groupName[gid],
				TeacherID: d.CardDetailTeacherID,
				Position:  d.CardDetailPosition,
				WeekDay:   d.CardDetailWeekDay,
				Aud:       d.CardDetailAud,
			})
		}
	}
	if len(conflicts) > 0 {
		return CheckResult{Status: CheckConflicts, Conflicts: conflicts}, nil
	}
	return CheckResult{Status: CheckReady}, nil
}
