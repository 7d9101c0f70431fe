package directory

import (
	"context"
	"database/sql"
	"strings"

	directoryDatamodel "github.com/frahmantamala/grafana-sync/internal/core/datamodel/directory"
	"golang.org/x/text/unicode/norm"
)

// Client is a read-only view of the employee directory. List calls propagate
// every failure so an unreachable directory never looks like an empty one.
type Client interface {
	ListEmployees(ctx context.Context) ([]Employee, error)
	// GetEmployee returns nil, nil when the id is unknown.
	GetEmployee(ctx context.Context, id string) (*Employee, error)
	ListCompanies(ctx context.Context) ([]directoryDatamodel.Company, error)
	ListOrgUnits(ctx context.Context) ([]directoryDatamodel.OrgUnit, error)
	ListPositions(ctx context.Context) ([]directoryDatamodel.Position, error)
}

type Employee struct {
	ID           string  `json:"USER_ID"`
	Surname      string  `json:"SEI"`
	GivenName    string  `json:"MEI"`
	PositionCode *string `json:"YAKUSYOKU_CD,omitempty"`
	CompanyCode  *string `json:"KAISYA_CD,omitempty"`
	OrgUnitCode  *string `json:"SOSHIKI_CD,omitempty"`
	PositionName *string `json:"YAKUSYOKU_NM,omitempty"`
	OrgUnitName  *string `json:"SOSHIKI_NM,omitempty"`
	CompanyName  *string `json:"KAISYA_NM,omitempty"`
}

// DisplayName joins surname and given name with a single space after NFKC
// normalization. It falls back to the employee id when both are blank.
func DisplayName(e Employee) string {
	joined := norm.NFKC.String(e.Surname + " " + e.GivenName)
	name := strings.Join(strings.Fields(joined), " ")
	if name == "" {
		return e.ID
	}
	return name
}

// PlaceholderEmail is used because the directory carries no email address.
func PlaceholderEmail(id string) string {
	return id + "@example.com"
}

func FromDataModel(row directoryDatamodel.Employee) Employee {
	return Employee{
		ID:           strings.TrimSpace(row.UserID),
		Surname:      row.Sei,
		GivenName:    row.Mei,
		PositionCode: nullable(row.YakusyokuCD),
		CompanyCode:  nullable(row.KaisyaCD),
		OrgUnitCode:  nullable(row.SoshikiCD),
		PositionName: nullable(row.YakusyokuNM),
		OrgUnitName:  nullable(row.SoshikiNM),
		CompanyName:  nullable(row.KaisyaNM),
	}
}

func nullable(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}
