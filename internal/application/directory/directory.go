package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/yashturmbekar/pmcrms/internal/application/port"
	"github.com/yashturmbekar/pmcrms/internal/domain/entity"
)

// ErrOfficerNotFound is returned when a queried officer does not exist
var ErrOfficerNotFound = errors.New("officer not found")

// Directory answers "who can take this stage". It is a read-only view over the
// officer table; an empty eligible set is not an error here, the assignment
// selector reports it.
type Directory interface {
	FindEligible(ctx context.Context, role entity.OfficerRole) ([]*entity.Officer, error)
	Get(ctx context.Context, officerID int64) (*entity.Officer, error)
}

type directoryImpl struct {
	officers port.OfficerRepository
}

// New creates an officer directory backed by the officer repository
func New(officers port.OfficerRepository) Directory {
	return &directoryImpl{officers: officers}
}

// FindEligible returns active officers holding the given role
func (d *directoryImpl) FindEligible(ctx context.Context, role entity.OfficerRole) ([]*entity.Officer, error) {
	eligible, err := d.officers.FindActiveByRole(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("find eligible officers: %w", err)
	}
	return eligible, nil
}

// Get returns the officer or ErrOfficerNotFound
func (d *directoryImpl) Get(ctx context.Context, officerID int64) (*entity.Officer, error) {
	officer, err := d.officers.GetByID(ctx, officerID)
	if err != nil {
		return nil, fmt.Errorf("get officer: %w", err)
	}
	if officer == nil {
		return nil, fmt.Errorf("%w: id %d", ErrOfficerNotFound, officerID)
	}
	return officer, nil
}
