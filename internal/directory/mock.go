package directory

import (
	"context"
	"sync"

	directoryDatamodel "github.com/frahmantamala/grafana-sync/internal/core/datamodel/directory"
)

// MockClient is an in-memory directory used for offline development and tests.
type MockClient struct {
	mu        sync.RWMutex
	employees []Employee
	companies []directoryDatamodel.Company
	orgUnits  []directoryDatamodel.OrgUnit
	positions []directoryDatamodel.Position
	failErr   error
}

// NewMockClient returns a client seeded with the development fixtures.
func NewMockClient() *MockClient {
	return &MockClient{
		employees: fixtureEmployees(),
		companies: []directoryDatamodel.Company{
			{KaisyaCD: "001", KaisyaNM: "本社"},
			{KaisyaCD: "002", KaisyaNM: "支社"},
			{KaisyaCD: "003", KaisyaNM: "子会社"},
		},
		orgUnits: []directoryDatamodel.OrgUnit{
			{KaisyaCD: "001", SoshikiCD: "0001", SoshikiNM: "営業部"},
			{KaisyaCD: "001", SoshikiCD: "0002", SoshikiNM: "技術部"},
			{KaisyaCD: "002", SoshikiCD: "0003", SoshikiNM: "管理部"},
			{KaisyaCD: "003", SoshikiCD: "0004", SoshikiNM: "企画部"},
		},
		positions: []directoryDatamodel.Position{
			{KaisyaCD: "001", YakusyokuCD: "01", YakusyokuNM: "部長"},
			{KaisyaCD: "001", YakusyokuCD: "02", YakusyokuNM: "課長"},
			{KaisyaCD: "001", YakusyokuCD: "03", YakusyokuNM: "社員"},
			{KaisyaCD: "002", YakusyokuCD: "01", YakusyokuNM: "部長"},
			{KaisyaCD: "002", YakusyokuCD: "03", YakusyokuNM: "社員"},
		},
	}
}

// NewMockClientWith returns a client holding only the given employees.
func NewMockClientWith(employees ...Employee) *MockClient {
	return &MockClient{employees: employees}
}

func (m *MockClient) SetShouldFail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failErr = err
}

func (m *MockClient) SetEmployees(employees ...Employee) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees = employees
}

func (m *MockClient) ListEmployees(ctx context.Context) ([]Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	out := make([]Employee, len(m.employees))
	copy(out, m.employees)
	return out, nil
}

func (m *MockClient) GetEmployee(ctx context.Context, id string) (*Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	for _, e := range m.employees {
		if e.ID == id {
			found := e
			return &found, nil
		}
	}
	return nil, nil
}

func (m *MockClient) ListCompanies(ctx context.Context) ([]directoryDatamodel.Company, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	return append([]directoryDatamodel.Company(nil), m.companies...), nil
}

func (m *MockClient) ListOrgUnits(ctx context.Context) ([]directoryDatamodel.OrgUnit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	return append([]directoryDatamodel.OrgUnit(nil), m.orgUnits...), nil
}

func (m *MockClient) ListPositions(ctx context.Context) ([]directoryDatamodel.Position, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	return append([]directoryDatamodel.Position(nil), m.positions...), nil
}

func fixtureEmployees() []Employee {
	type row struct {
		id, sei, mei, pos, company, unit, posName, unitName, companyName string
	}
	rows := []row{
		{"0001", "山田", "太郎", "01", "001", "0001", "部長", "営業部", "本社"},
		{"0002", "佐藤", "花子", "02", "001", "0001", "課長", "営業部", "本社"},
		{"0003", "鈴木", "一郎", "03", "001", "0002", "社員", "技術部", "本社"},
		{"0004", "田中", "浩", "01", "001", "0002", "部長", "技術部", "本社"},
		{"0005", "高橋", "明", "03", "002", "0003", "社員", "管理部", "支社"},
	}

	employees := make([]Employee, 0, len(rows))
	for _, r := range rows {
		r := r
		employees = append(employees, Employee{
			ID:           r.id,
			Surname:      r.sei,
			GivenName:    r.mei,
			PositionCode: &r.pos,
			CompanyCode:  &r.company,
			OrgUnitCode:  &r.unit,
			PositionName: &r.posName,
			OrgUnitName:  &r.unitName,
			CompanyName:  &r.companyName,
		})
	}
	return employees
}
