package constants

import "fmt"

// Template pesan error role
const (
	ErrOnlyMethodistCanAccess = "❌ Hanya methodist atau admin yang boleh mengakses fitur %s."
	ErrOnlyReadersCanAccess   = "❌ Role Anda tidak punya akses baca untuk fitur %s."
)

func RoleErrorMethodist(feature string) string {
	return fmt.Sprintf(ErrOnlyMethodistCanAccess, feature)
}

func RoleErrorReader(feature string) string {
	return fmt.Sprintf(ErrOnlyReadersCanAccess, feature)
}

// ==========================
// ✅ Role names
// ==========================
const (
	RoleAdmin     = "admin"
	RoleMethodist = "methodist" // penyusun jadwal
	RoleReadAll   = "read_all"  // hanya baca
)

var (
	AllRoles = []string{
		RoleAdmin,
		RoleMethodist,
		RoleReadAll,
	}

	// Boleh mengubah versi jadwal & kartu
	EditorRoles = []string{
		RoleAdmin,
		RoleMethodist,
	}

	// Boleh membaca versi jadwal & kartu
	ReaderRoles = []string{
		RoleAdmin,
		RoleMethodist,
		RoleReadAll,
	}
)
