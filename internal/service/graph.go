package service

import (
	"context"
	"fmt"

	"github.com/AlexDev08/OpenCRE-migration/internal/model"
)

// FindCREsOfCRE returns the immediate groups of the CRE, nil if it has none.
func (s *CREService) FindCREsOfCRE(ctx context.Context, cre *model.CRE) ([]*model.CRE, error) {
	if cre == nil {
		return nil, fmt.Errorf("%w: no cre given", ErrNotFound)
	}

	groups, err := s.store.ListGroupsOf(ctx, cre.ID)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, nil
	}

	return groups, nil
}

// FindCREsOfStandard returns every CRE linked to the standard, nil if none is.
func (s *CREService) FindCREsOfStandard(ctx context.Context, standard *model.Standard) ([]*model.CRE, error) {
	if standard == nil {
		return nil, fmt.Errorf("%w: no standard given", ErrNotFound)
	}

	cres, err := s.store.ListCREsOfStandard(ctx, standard.ID)
	if err != nil {
		return nil, err
	}
	if len(cres) == 0 {
		return nil, nil
	}

	return cres, nil
}

// GetMaxInternalConnections returns the largest number of children held by a single group.
func (s *CREService) GetMaxInternalConnections(ctx context.Context) (int, error) {
	count, err := s.store.MaxInternalConnections(ctx)
	if err != nil {
		return 0, err
	}

	return int(count), nil
}
