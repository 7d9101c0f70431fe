package directory

import "database/sql"

// Employee is one row of the directory USER table joined with its
// position, org unit and company names. The joined names are null when the
// referenced row is gone.
type Employee struct {
	UserID      string         `db:"user_id"`
	Sei         string         `db:"sei"`
	Mei         string         `db:"mei"`
	YakusyokuCD sql.NullString `db:"yakusyoku_cd"`
	KaisyaCD    sql.NullString `db:"kaisya_cd"`
	SoshikiCD   sql.NullString `db:"soshiki_cd"`
	YakusyokuNM sql.NullString `db:"yakusyoku_nm"`
	SoshikiNM   sql.NullString `db:"soshiki_nm"`
	KaisyaNM    sql.NullString `db:"kaisya_nm"`
}

type Company struct {
	KaisyaCD string `db:"kaisya_cd" json:"KAISYA_CD"`
	KaisyaNM string `db:"kaisya_nm" json:"KAISYA_NM"`
}

type OrgUnit struct {
	KaisyaCD  string `db:"kaisya_cd" json:"KAISYA_CD"`
	SoshikiCD string `db:"soshiki_cd" json:"SOSHIKI_CD"`
	SoshikiNM string `db:"soshiki_nm" json:"SOSHIKI_NM"`
}

type Position struct {
	KaisyaCD    string `db:"kaisya_cd" json:"KAISYA_CD"`
	YakusyokuCD string `db:"yakusyoku_cd" json:"YAKUSYOKU_CD"`
	YakusyokuNM string `db:"yakusyoku_nm" json:"YAKUSYOKU_NM"`
}
