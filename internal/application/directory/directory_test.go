package directory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yashturmbekar/pmcrms/internal/domain/entity"
)

type stubOfficerRepo struct {
	officers map[int64]*entity.Officer
}

func (m *stubOfficerRepo) Create(ctx context.Context, officer *entity.Officer) error { return nil }

func (m *stubOfficerRepo) GetByID(ctx context.Context, id int64) (*entity.Officer, error) {
	return m.officers[id], nil
}

func (m *stubOfficerRepo) FindActiveByRole(ctx context.Context, role entity.OfficerRole) ([]*entity.Officer, error) {
	var out []*entity.Officer
	for _, o := range m.officers {
		if o.Role == role && o.Active {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *stubOfficerRepo) SetActive(ctx context.Context, id int64, active bool) error { return nil }

func (m *stubOfficerRepo) List(ctx context.Context, limit, offset int) ([]*entity.Officer, error) {
	return nil, nil
}

func TestFindEligibleFiltersInactive(t *testing.T) {
	repo := &stubOfficerRepo{officers: map[int64]*entity.Officer{
		1: {ID: 1, Role: entity.RoleJEArchitect, Active: true, CreatedAt: time.Now()},
		2: {ID: 2, Role: entity.RoleJEArchitect, Active: false},
		3: {ID: 3, Role: entity.RoleClerk, Active: true},
	}}
	dir := New(repo)

	eligible, err := dir.FindEligible(context.Background(), entity.RoleJEArchitect)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(eligible) != 1 || eligible[0].ID != 1 {
		t.Errorf("eligible = %v, want officer 1 only", eligible)
	}
}

func TestFindEligibleEmptyIsNotAnError(t *testing.T) {
	dir := New(&stubOfficerRepo{officers: map[int64]*entity.Officer{}})

	eligible, err := dir.FindEligible(context.Background(), entity.RoleCityEngineer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(eligible) != 0 {
		t.Errorf("expected empty set, got %v", eligible)
	}
}

func TestGetUnknownOfficer(t *testing.T) {
	dir := New(&stubOfficerRepo{officers: map[int64]*entity.Officer{}})

	if _, err := dir.Get(context.Background(), 42); !errors.Is(err, ErrOfficerNotFound) {
		t.Errorf("expected ErrOfficerNotFound, got %v", err)
	}
}
