package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"kampusku_backend/internals/configs"
	cardModel "kampusku_backend/internals/features/college/cards/model"
	refModel "kampusku_backend/internals/features/college/references/model"
	verModel "kampusku_backend/internals/features/college/ttable_versions/model"
)

var DB *gorm.DB

func ConnectDB() {
	log.Println("🔌 Koneksi ke PostgreSQL...")

	// DSN lengkap + statement_timeout (selaras dengan HTTP timeout guard)
	sslmode := getenv("DB_SSLMODE", "require")
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&application_name=kampusku&options=-c statement_timeout=3000",
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_HOST"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_NAME"),
		sslmode,
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true, // 👍 cocok untuk PgBouncer (transaction pooling)
	}), &gorm.Config{
		Logger: configs.NewGormLogger(),
	})
	if err != nil {
		log.Fatalf("❌ Gagal konek DB: %v", err)
	}
	DB = db
	log.Println("✅ DB connected.")
}

func TunePool() {
	sqlDB, err := DB.DB()
	if err != nil {
		log.Printf("pool tune err: %v", err)
		return
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
}

func WarmUpQueries() {
	// jalankan ringan supaya koneksi/pool “keisi” & siap
	go func() {
		time.Sleep(500 * time.Millisecond)
		if err := ping(); err != nil {
			log.Printf("warm-up ping err: %v", err)
		}
	}()
}

// Migrate membuat tabel engine + index parsial yang menjaga invariant:
// maksimal satu versi accepted per (building, type), tepat satu kartu
// current per (version, group), dan slot guru/ruangan unik pada kartu
// current. Index parsial adalah pagar terakhir terhadap race yang lolos
// dari pengecekan in-transaction.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&refModel.BuildingModel{},
		&refModel.GroupModel{},
		&refModel.TeacherModel{},
		&refModel.DisciplineModel{},
		&verModel.TtableVersionModel{},
		&cardModel.CardStateHistoryModel{},
		&cardModel.CardStateDetailModel{},
	); err != nil {
		return err
	}

	stmts := []string{
		// satu versi accepted per (building, type)
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_ttable_versions_accepted
		   ON ttable_versions (ttable_version_building_id, ttable_version_type)
		   WHERE ttable_version_status_id = 1`,
		// satu versi pending per (building, type, date); COALESCE supaya date NULL ikut unik
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_ttable_versions_pending
		   ON ttable_versions (ttable_version_building_id, ttable_version_type, COALESCE(ttable_version_schedule_date, '0001-01-01'))
		   WHERE ttable_version_status_id = 2`,
		// tepat satu history current per (version, group)
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_cards_history_current
		   ON cards_states_history (card_hist_ttable_version_id, card_hist_group_id)
		   WHERE card_hist_is_current`,
		// slot guru unik pada kartu current
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_cards_details_teacher_slot
		   ON cards_states_details (card_detail_ttable_version_id, card_detail_teacher_id, card_detail_position, card_detail_week_day)
		   WHERE card_detail_is_current`,
		// slot ruangan unik pada kartu current (aud kosong = belum ditentukan)
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_cards_details_room_slot
		   ON cards_states_details (card_detail_ttable_version_id, card_detail_aud, card_detail_position, card_detail_week_day)
		   WHERE card_detail_is_current AND card_detail_aud <> ''`,
	}
	for _, s := range stmts {
		if err := db.Exec(s).Error; err != nil {
			return err
		}
	}
	return nil
}

func ping() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
