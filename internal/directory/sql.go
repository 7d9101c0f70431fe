package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	directoryDatamodel "github.com/frahmantamala/grafana-sync/internal/core/datamodel/directory"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

// The directory schema uses upper-case quoted identifiers; USER is reserved
// in PostgreSQL and must stay quoted.
const employeeSelect = `
	SELECT
		u."USER_ID"      AS user_id,
		u."SEI"          AS sei,
		u."MEI"          AS mei,
		u."YAKUSYOKU_CD" AS yakusyoku_cd,
		u."KAISYA_CD"    AS kaisya_cd,
		u."SOSHIKI_CD"   AS soshiki_cd,
		y."YAKUSYOKU_NM" AS yakusyoku_nm,
		s."SOSHIKI_NM"   AS soshiki_nm,
		k."KAISYA_NM"    AS kaisya_nm
	FROM "USER" u
	LEFT JOIN "YAKUSYOKU" y ON u."KAISYA_CD" = y."KAISYA_CD" AND u."YAKUSYOKU_CD" = y."YAKUSYOKU_CD"
	LEFT JOIN "SOSHIKI" s ON u."KAISYA_CD" = s."KAISYA_CD" AND u."SOSHIKI_CD" = s."SOSHIKI_CD"
	LEFT JOIN "KAISYA" k ON u."KAISYA_CD" = k."KAISYA_CD"`

const (
	listEmployeesQuery = employeeSelect + `
	ORDER BY u."USER_ID"`
	getEmployeeQuery = employeeSelect + `
	WHERE u."USER_ID" = $1`
	listCompaniesQuery = `SELECT "KAISYA_CD" AS kaisya_cd, "KAISYA_NM" AS kaisya_nm FROM "KAISYA" ORDER BY "KAISYA_NM"`
	listOrgUnitsQuery  = `SELECT "KAISYA_CD" AS kaisya_cd, "SOSHIKI_CD" AS soshiki_cd, "SOSHIKI_NM" AS soshiki_nm FROM "SOSHIKI" ORDER BY "KAISYA_CD", "SOSHIKI_NM"`
	listPositionsQuery = `SELECT "KAISYA_CD" AS kaisya_cd, "YAKUSYOKU_CD" AS yakusyoku_cd, "YAKUSYOKU_NM" AS yakusyoku_nm FROM "YAKUSYOKU" ORDER BY "KAISYA_CD", "YAKUSYOKU_NM"`
)

type SQLClient struct {
	db      *sqlx.DB
	timeout time.Duration
	logger  *slog.Logger
}

// Open connects to the directory database with the pgx driver.
func Open(dsn string, timeout time.Duration, logger *slog.Logger) (*SQLClient, error) {
	db, err := sqlx.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open directory db: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return NewSQLClient(db, timeout, logger), nil
}

func NewSQLClient(db *sqlx.DB, timeout time.Duration, logger *slog.Logger) *SQLClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SQLClient{db: db, timeout: timeout, logger: logger}
}

func (c *SQLClient) Close() error {
	return c.db.Close()
}

func (c *SQLClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.db.PingContext(ctx)
}

func (c *SQLClient) ListEmployees(ctx context.Context) ([]Employee, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var rows []directoryDatamodel.Employee
	if err := c.db.SelectContext(ctx, &rows, listEmployeesQuery); err != nil {
		c.logger.Error("failed to list directory employees", "error", err)
		return nil, fmt.Errorf("list employees: %w", err)
	}

	employees := make([]Employee, 0, len(rows))
	for _, row := range rows {
		employees = append(employees, FromDataModel(row))
	}
	c.logger.Debug("listed directory employees", "count", len(employees))
	return employees, nil
}

func (c *SQLClient) GetEmployee(ctx context.Context, id string) (*Employee, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var row directoryDatamodel.Employee
	err := c.db.GetContext(ctx, &row, getEmployeeQuery, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		c.logger.Error("failed to get directory employee", "employee_id", id, "error", err)
		return nil, fmt.Errorf("get employee %s: %w", id, err)
	}

	employee := FromDataModel(row)
	return &employee, nil
}

func (c *SQLClient) ListCompanies(ctx context.Context) ([]directoryDatamodel.Company, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var companies []directoryDatamodel.Company
	if err := c.db.SelectContext(ctx, &companies, listCompaniesQuery); err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	return companies, nil
}

func (c *SQLClient) ListOrgUnits(ctx context.Context) ([]directoryDatamodel.OrgUnit, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var units []directoryDatamodel.OrgUnit
	if err := c.db.SelectContext(ctx, &units, listOrgUnitsQuery); err != nil {
		return nil, fmt.Errorf("list org units: %w", err)
	}
	return units, nil
}

func (c *SQLClient) ListPositions(ctx context.Context) ([]directoryDatamodel.Position, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var positions []directoryDatamodel.Position
	if err := c.db.SelectContext(ctx, &positions, listPositionsQuery); err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}
	return positions, nil
}
