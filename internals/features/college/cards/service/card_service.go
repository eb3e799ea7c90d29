// file: internals/features/college/cards/service/card_service.go
package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	m "kampusku_backend/internals/features/college/cards/model"
	"kampusku_backend/internals/features/college/errs"
	refModel "kampusku_backend/internals/features/college/references/model"
	verModel "kampusku_backend/internals/features/college/ttable_versions/model"
)

/* =========================
   Service & Constructor
   ========================= */

type CardService struct {
	DB *gorm.DB
}

func NewCardService(db *gorm.DB) *CardService {
	return &CardService{DB: db}
}

/* =========================
   Hasil operasi
   ========================= */

// SaveResult: konflik adalah hasil bisnis, bukan error — pemanggil
// branching di flag Success, bukan menangkap exception.
type SaveResult struct {
	Success    bool       `json:"success"`
	CardHistID uuid.UUID  `json:"card_hist_id,omitempty"`
	Conflicts  []Conflict `json:"conflicts,omitempty"`
	Message    string     `json:"message,omitempty"`
}

type Card struct {
	History m.CardStateHistoryModel  `json:"history"`
	Details []m.CardStateDetailModel `json:"details"`
}

type GroupAssignments struct {
	GroupID     uuid.UUID
	Assignments []SlotAssignment
}

type BulkResult struct {
	Success     bool        `json:"success"`
	CardHistIDs []uuid.UUID `json:"card_hist_ids,omitempty"`
	Conflicts   []Conflict  `json:"conflicts,omitempty"`
	Message     string      `json:"message,omitempty"`
}

// Sentinel internal untuk membatalkan transaksi bulk saat ada konflik
// (state tidak boleh berubah sama sekali).
var errAbortOnConflict = errors.New("abort: conflict detected")

/* =========================
   SaveCard
   ========================= */

// SaveCard menyimpan kartu grup dalam SATU transaksi:
// cek konflik terhadap kartu current grup lain → append history baru
// (is_current) → flip history lama + detailnya. Save untuk grup yang
// sama diserialisasi lewat row lock di history current; race yang lolos
// tetap ditolak index parsial slot dan dilaporkan sebagai konflik.
func (s *CardService) SaveCard(ctx context.Context, versionID, groupID, actor uuid.UUID, assignments []SlotAssignment) (SaveResult, error) {
	if err := validateAssignments(assignments); err != nil {
		return SaveResult{}, err
	}

	var res SaveResult
	err := runInTx(ctx, s.DB, func(tx *gorm.DB) error {
		if err := requirePendingVersion(tx, versionID); err != nil {
			return err
		}

		// Serialisasi save per (version, group)
		prev, err := lockCurrentHistory(tx, versionID, groupID)
		if err != nil {
			return err
		}

		occupied, err := loadOccupiedSlots(tx, versionID, groupID)
		if err != nil {
			return err
		}

		if conflicts := DetectConflicts(assignments, occupied); len(conflicts) > 0 {
			res = SaveResult{
				Success:   false,
				Conflicts: conflicts,
				Message:   "slot already taken by another group",
			}
			return nil // tidak ada mutasi; transaksi kosong boleh commit
		}

		hist, err := appendCard(tx, versionID, groupID, actor, assignments, prev)
		if err != nil {
			return err
		}
		res = SaveResult{Success: true, CardHistID: hist.CardHistID, Message: "card saved"}
		return nil
	})
	if err != nil {
		if errs.IsUniqueViolation(err) {
			// race antar request: pengecekan in-tx sudah lewat, index parsial menolak
			return SaveResult{
				Success: false,
				Message: "slot was taken by a concurrent save, please retry",
			}, nil
		}
		return SaveResult{}, classify("cards.save", err)
	}
	return res, nil
}

/* =========================
   GetCurrent / GetHistory / GetHistoryContent
   ========================= */

func (s *CardService) GetCurrent(ctx context.Context, versionID, groupID uuid.UUID) (Card, error) {
	var hist m.CardStateHistoryModel
	err := s.DB.WithContext(ctx).
		Where("card_hist_ttable_version_id = ? AND card_hist_group_id = ? AND card_hist_is_current = ?", versionID, groupID, true).
		First(&hist).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Card{}, errs.ErrNotFound
		}
		return Card{}, errs.Storage("cards.get_current", err)
	}

	details, err := loadDetails(s.DB.WithContext(ctx), hist.CardHistID)
	if err != nil {
		return Card{}, errs.Storage("cards.get_current", err)
	}
	return Card{History: hist, Details: details}, nil
}

// GetHistory: snapshot urut terbaru dulu; finite, tidak restartable.
func (s *CardService) GetHistory(ctx context.Context, versionID, groupID uuid.UUID) ([]m.CardStateHistoryModel, error) {
	var rows []m.CardStateHistoryModel
	err := s.DB.WithContext(ctx).
		Where("card_hist_ttable_version_id = ? AND card_hist_group_id = ?", versionID, groupID).
		Order("card_hist_created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, errs.Storage("cards.get_history", err)
	}
	return rows, nil
}

func (s *CardService) GetHistoryContent(ctx context.Context, cardHistID uuid.UUID) ([]m.CardStateDetailModel, error) {
	var hist m.CardStateHistoryModel
	if err := s.DB.WithContext(ctx).
		Where("card_hist_id = ?", cardHistID).
		First(&hist).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, errs.Storage("cards.history_content", err)
	}
	details, err := loadDetails(s.DB.WithContext(ctx), cardHistID)
	if err != nil {
		return nil, errs.Storage("cards.history_content", err)
	}
	return details, nil
}

/* =========================
   Rollback kartu
   ========================= */

// Rollback menjadikan baris history lama sebagai current lagi.
// Target harus milik (version, group) yang sama — selain itu InvalidState.
// Slot target yang keburu dipakai grup lain sejak kartu itu diganti
// dilaporkan sebagai konflik (tanpa mutasi), bukan error.
func (s *CardService) Rollback(ctx context.Context, versionID, groupID, targetHistID uuid.UUID) (SaveResult, error) {
	var res SaveResult
	err := runInTx(ctx, s.DB, func(tx *gorm.DB) error {
		if err := requirePendingVersion(tx, versionID); err != nil {
			return err
		}

		var target m.CardStateHistoryModel
		if err := forUpdate(tx).
			Where("card_hist_id = ?", targetHistID).
			First(&target).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.ErrNotFound
			}
			return err
		}
		if target.CardHistTtableVersionID != versionID || target.CardHistGroupID != groupID {
			return errs.ErrInvalidState
		}
		if target.CardHistIsCurrent {
			res = SaveResult{Success: true, CardHistID: target.CardHistID, Message: "card already current"}
			return nil
		}

		details, err := loadDetails(tx, target.CardHistID)
		if err != nil {
			return err
		}
		occupied, err := loadOccupiedSlots(tx, versionID, groupID)
		if err != nil {
			return err
		}
		if conflicts := DetectConflicts(detailsToAssignments(details), occupied); len(conflicts) > 0 {
			res = SaveResult{
				Success:   false,
				Conflicts: conflicts,
				Message:   "slot already taken by another group",
			}
			return nil // tidak ada mutasi
		}

		prev, err := lockCurrentHistory(tx, versionID, groupID)
		if err != nil {
			return err
		}
		if prev != nil {
			if err := setCurrent(tx, prev.CardHistID, false); err != nil {
				return err
			}
		}
		if err := setCurrent(tx, target.CardHistID, true); err != nil {
			return err
		}
		res = SaveResult{Success: true, CardHistID: target.CardHistID, Message: "card restored"}
		return nil
	})
	if err != nil {
		if errs.IsUniqueViolation(err) {
			// race: slot target direbut setelah pengecekan in-tx
			return SaveResult{
				Success: false,
				Message: "slot was taken by a concurrent save, please retry",
			}, nil
		}
		return SaveResult{}, classify("cards.rollback", err)
	}
	return res, nil
}

/* =========================
   Status kartu (accept / mark edited)
   ========================= */

// AcceptCard menandai kartu current sebagai accepted; kartu harus
// current, dan tabrakan dengan kartu current grup lain dilaporkan
// sebagai konflik terstruktur supaya UI tahu slot mana yang menghalangi.
func (s *CardService) AcceptCard(ctx context.Context, cardHistID uuid.UUID) (SaveResult, error) {
	var res SaveResult
	err := runInTx(ctx, s.DB, func(tx *gorm.DB) error {
		var hist m.CardStateHistoryModel
		if err := forUpdate(tx).
			Where("card_hist_id = ?", cardHistID).
			First(&hist).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.ErrNotFound
			}
			return err
		}
		if !hist.CardHistIsCurrent {
			return errs.ErrInvalidState
		}
		if err := requirePendingVersion(tx, hist.CardHistTtableVersionID); err != nil {
			return err
		}

		details, err := loadDetails(tx, hist.CardHistID)
		if err != nil {
			return err
		}
		occupied, err := loadOccupiedSlots(tx, hist.CardHistTtableVersionID, hist.CardHistGroupID)
		if err != nil {
			return err
		}
		if conflicts := DetectConflicts(detailsToAssignments(details), occupied); len(conflicts) > 0 {
			res = SaveResult{
				Success:   false,
				Conflicts: conflicts,
				Message:   "card conflicts with another group's current card",
			}
			return nil
		}

		if err := tx.Model(&m.CardStateHistoryModel{}).
			Where("card_hist_id = ?", hist.CardHistID).
			Update("card_hist_status_id", m.CardAccepted).Error; err != nil {
			return err
		}
		res = SaveResult{Success: true, CardHistID: hist.CardHistID, Message: "card accepted"}
		return nil
	})
	if err != nil {
		return SaveResult{}, classify("cards.accept", err)
	}
	return res, nil
}

// MarkCardEdited mengembalikan status kartu ke saved (dipakai UI saat
// kartu accepted dibuka lagi untuk diedit).
func (s *CardService) MarkCardEdited(ctx context.Context, cardHistID uuid.UUID) error {
	err := runInTx(ctx, s.DB, func(tx *gorm.DB) error {
		var hist m.CardStateHistoryModel
		if err := forUpdate(tx).
			Where("card_hist_id = ?", cardHistID).
			First(&hist).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.ErrNotFound
			}
			return err
		}
		if err := requirePendingVersion(tx, hist.CardHistTtableVersionID); err != nil {
			return err
		}
		return tx.Model(&m.CardStateHistoryModel{}).
			Where("card_hist_id = ?", hist.CardHistID).
			Update("card_hist_status_id", m.CardSaved).Error
	})
	return classify("cards.mark_edited", err)
}

/* =========================
   BulkAdd (feed dari importer)
   ========================= */

// BulkAdd menanam satu kartu per grup secara atomik (feed dari parser
// dokumen / clipboard). Konflik di grup manapun membatalkan seluruh
// batch tanpa mutasi.
func (s *CardService) BulkAdd(ctx context.Context, versionID, actor uuid.UUID, cards []GroupAssignments) (BulkResult, error) {
	if len(cards) == 0 {
		return BulkResult{}, errs.ErrInvalidInput
	}
	for _, c := range cards {
		if err := validateAssignments(c.Assignments); err != nil {
			return BulkResult{}, err
		}
	}

	var res BulkResult
	err := runInTx(ctx, s.DB, func(tx *gorm.DB) error {
		if err := requirePendingVersion(tx, versionID); err != nil {
			return err
		}

		// semua grup harus dikenal
		ids := make([]uuid.UUID, 0, len(cards))
		for _, c := range cards {
			ids = append(ids, c.GroupID)
		}
		var cnt int64
		if err := tx.Model(&refModel.GroupModel{}).Where("group_id IN ?", ids).Count(&cnt).Error; err != nil {
			return err
		}
		if cnt != int64(len(ids)) {
			return errs.ErrNotFound
		}

		histIDs := make([]uuid.UUID, 0, len(cards))
		for _, c := range cards {
			prev, err := lockCurrentHistory(tx, versionID, c.GroupID)
			if err != nil {
				return err
			}
			// occupied dibaca ulang per grup supaya grup sebelumnya
			// di batch yang sama ikut terhitung
			occupied, err := loadOccupiedSlots(tx, versionID, c.GroupID)
			if err != nil {
				return err
			}
			if conflicts := DetectConflicts(c.Assignments, occupied); len(conflicts) > 0 {
				res = BulkResult{
					Success:   false,
					Conflicts: conflicts,
					Message:   "conflict in batch, nothing was saved",
				}
				return errAbortOnConflict
			}
			hist, err := appendCard(tx, versionID, c.GroupID, actor, c.Assignments, prev)
			if err != nil {
				return err
			}
			histIDs = append(histIDs, hist.CardHistID)
		}
		res = BulkResult{Success: true, CardHistIDs: histIDs, Message: "cards saved"}
		return nil
	})
	if err != nil {
		if errors.Is(err, errAbortOnConflict) {
			return res, nil
		}
		if errs.IsUniqueViolation(err) {
			return BulkResult{
				Success: false,
				Message: "slot was taken by a concurrent save, please retry",
			}, nil
		}
		return BulkResult{}, classify("cards.bulk_add", err)
	}
	return res, nil
}

/* =========================
   Helpers (internal)
   ========================= */

func validateAssignments(assignments []SlotAssignment) error {
	if len(assignments) == 0 {
		return errs.ErrInvalidInput
	}
	for _, a := range assignments {
		if a.TeacherID == uuid.Nil || a.DisciplineID == uuid.Nil {
			return errs.ErrInvalidInput
		}
		if a.Position < 1 || a.WeekDay < 1 || a.WeekDay > 7 {
			return errs.ErrInvalidInput
		}
	}
	return nil
}

// forUpdate memasang row lock hanya di Postgres; sqlite (test) tidak
// mendukung FOR UPDATE — di sana index parsial yang menjaga invariant.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

func requirePendingVersion(tx *gorm.DB, versionID uuid.UUID) error {
	var ver verModel.TtableVersionModel
	if err := tx.
		Where("ttable_version_id = ?", versionID).
		First(&ver).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.ErrNotFound
		}
		return err
	}
	if ver.TtableVersionStatusID != verModel.VersionPending {
		// versi accepted/deprecated tidak boleh diedit
		return errs.ErrInvalidState
	}
	return nil
}

// lockCurrentHistory mengunci baris current (version, group); nil jika
// grup belum punya kartu.
func lockCurrentHistory(tx *gorm.DB, versionID, groupID uuid.UUID) (*m.CardStateHistoryModel, error) {
	var hist m.CardStateHistoryModel
	err := forUpdate(tx).
		Where("card_hist_ttable_version_id = ? AND card_hist_group_id = ? AND card_hist_is_current = ?", versionID, groupID, true).
		First(&hist).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &hist, nil
}

func loadOccupiedSlots(tx *gorm.DB, versionID, excludeGroupID uuid.UUID) ([]OccupiedSlot, error) {
	var occ []OccupiedSlot
	err := tx.Table("cards_states_details AS d").
		Select(`d.card_detail_group_id AS group_id,
			g.group_name AS group_name,
			d.card_detail_teacher_id AS teacher_id,
			d.card_detail_position AS position,
			d.card_detail_week_day AS week_day,
			d.card_detail_aud AS aud`).
		Joins("LEFT JOIN groups g ON g.group_id = d.card_detail_group_id").
		Where("d.card_detail_ttable_version_id = ? AND d.card_detail_is_current = ? AND d.card_detail_group_id <> ?",
			versionID, true, excludeGroupID).
		Scan(&occ).Error
	if err != nil {
		return nil, err
	}
	return occ, nil
}

// appendCard: baris history baru jadi current + detailnya; history lama
// (jika ada) dan detailnya di-flip dalam transaksi yang sama.
func appendCard(tx *gorm.DB, versionID, groupID, actor uuid.UUID, assignments []SlotAssignment, prev *m.CardStateHistoryModel) (*m.CardStateHistoryModel, error) {
	if prev != nil {
		if err := setCurrent(tx, prev.CardHistID, false); err != nil {
			return nil, err
		}
	}

	hist := m.CardStateHistoryModel{
		CardHistID:              uuid.New(),
		CardHistTtableVersionID: versionID,
		CardHistGroupID:         groupID,
		CardHistIsCurrent:       true,
		CardHistStatusID:        m.CardSaved,
		CardHistCreatedBy:       actor,
	}
	if err := tx.Create(&hist).Error; err != nil {
		return nil, err
	}

	details := make([]m.CardStateDetailModel, 0, len(assignments))
	for _, a := range assignments {
		details = append(details, m.CardStateDetailModel{
			CardDetailID:              uuid.New(),
			CardDetailCardHistID:      hist.CardHistID,
			CardDetailTtableVersionID: versionID,
			CardDetailGroupID:         groupID,
			CardDetailIsCurrent:       true,
			CardDetailDisciplineID:    a.DisciplineID,
			CardDetailTeacherID:       a.TeacherID,
			CardDetailPosition:        a.Position,
			CardDetailWeekDay:         a.WeekDay,
			CardDetailAud:             a.Aud,
		})
	}
	if err := tx.Create(&details).Error; err != nil {
		return nil, err
	}
	return &hist, nil
}

// setCurrent flip history + detail mirror-nya sekaligus.
func setCurrent(tx *gorm.DB, cardHistID uuid.UUID, current bool) error {
	if err := tx.Model(&m.CardStateHistoryModel{}).
		Where("card_hist_id = ?", cardHistID).
		Update("card_hist_is_current", current).Error; err != nil {
		return err
	}
	return tx.Model(&m.CardStateDetailModel{}).
		Where("card_detail_card_hist_id = ?", cardHistID).
		Update("card_detail_is_current", current).Error
}

func loadDetails(db *gorm.DB, cardHistID uuid.UUID) ([]m.CardStateDetailModel, error) {
	var details []m.CardStateDetailModel
	err := db.
		Where("card_detail_card_hist_id = ?", cardHistID).
		Order("card_detail_week_day ASC, card_detail_position ASC").
		Find(&details).Error
	return details, err
}

func detailsToAssignments(details []m.CardStateDetailModel) []SlotAssignment {
	out := make([]SlotAssignment, 0, len(details))
	for _, d := range details {
		out = append(out, SlotAssignment{
			DisciplineID: d.CardDetailDisciplineID,
			TeacherID:    d.CardDetailTeacherID,
			Position:     d.CardDetailPosition,
			WeekDay:      d.CardDetailWeekDay,
			Aud:          d.CardDetailAud,
		})
	}
	return out
}

// runInTx: satu transaksi per mutasi multi-baris; retry sekali untuk
// serialization failure / deadlock (40001/40P01), setelah itu menyerah.
func runInTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	err := db.WithContext(ctx).Transaction(fn)
	if err != nil && errs.IsRetryableTx(err) {
		err = db.WithContext(ctx).Transaction(fn)
	}
	return err
}

// classify membungkus error driver jadi StorageError; error taksonomi
// dilewatkan apa adanya.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, errs.ErrNotFound),
		errors.Is(err, errs.ErrInvalidInput),
		errors.Is(err, errs.ErrInvalidState),
		errors.Is(err, errs.ErrConflict):
		return err
	default:
		return errs.Storage(op, err)
	}
}
