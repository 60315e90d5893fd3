package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/yashturmbekar/pmcrms/internal/application/directory"
	"github.com/yashturmbekar/pmcrms/internal/domain/entity"
)

func TestOnboardOfficer(t *testing.T) {
	officers := &mockOfficerRepo{officers: make(map[int64]*entity.Officer)}
	svc := NewOfficerService(officers, &mockApplicationRepo{}, zap.NewNop())

	officer, err := svc.Onboard(context.Background(), OnboardOfficerRequest{
		Name:  " Ravi Deshmukh ",
		Email: "ravi@pmc.gov.in",
		Role:  entity.RoleJEArchitect,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !officer.Active {
		t.Error("new officers must start active")
	}
	if officer.Name != "Ravi Deshmukh" {
		t.Errorf("name not trimmed: %q", officer.Name)
	}
	if officer.Role != entity.RoleJEArchitect {
		t.Errorf("role = %s", officer.Role)
	}
}

func TestOnboardOfficerValidation(t *testing.T) {
	svc := NewOfficerService(&mockOfficerRepo{officers: make(map[int64]*entity.Officer)}, &mockApplicationRepo{}, zap.NewNop())

	tests := []struct {
		name string
		req  OnboardOfficerRequest
	}{
		{"missing name", OnboardOfficerRequest{Email: "a@b.com", Role: entity.RoleClerk}},
		{"missing email", OnboardOfficerRequest{Name: "Ravi", Role: entity.RoleClerk}},
		{"bad email", OnboardOfficerRequest{Name: "Ravi", Email: "nope", Role: entity.RoleClerk}},
		{"unknown role", OnboardOfficerRequest{Name: "Ravi", Email: "a@b.com", Role: "SUPERINTENDENT"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Onboard(context.Background(), tt.req); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestOnboardOfficerInvalidRole(t *testing.T) {
	svc := NewOfficerService(&mockOfficerRepo{officers: make(map[int64]*entity.Officer)}, &mockApplicationRepo{}, zap.NewNop())

	_, err := svc.Onboard(context.Background(), OnboardOfficerRequest{
		Name: "Ravi", Email: "ravi@pmc.gov.in", Role: "SUPERINTENDENT",
	})
	if !errors.Is(err, ErrInvalidRole) {
		t.Errorf("expected ErrInvalidRole, got %v", err)
	}
}

func TestSetActiveUnknownOfficer(t *testing.T) {
	svc := NewOfficerService(&mockOfficerRepo{officers: make(map[int64]*entity.Officer)}, &mockApplicationRepo{}, zap.NewNop())

	if err := svc.SetActive(context.Background(), 42, false); !errors.Is(err, directory.ErrOfficerNotFound) {
		t.Errorf("expected ErrOfficerNotFound, got %v", err)
	}
}

func TestSetActive(t *testing.T) {
	officers := &mockOfficerRepo{officers: map[int64]*entity.Officer{
		7: {ID: 7, Role: entity.RoleClerk, Active: true},
	}}
	svc := NewOfficerService(officers, &mockApplicationRepo{}, zap.NewNop())

	if err := svc.SetActive(context.Background(), 7, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if officers.officers[7].Active {
		t.Error("officer should be deactivated")
	}
}
