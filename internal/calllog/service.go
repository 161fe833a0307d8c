package calllog

import (
	"context"
	"errors"
)

// Service exposes read access to the call-log store for the HTTP API.
// Writes happen elsewhere: the webhook handler and the sync orchestrator
// both go straight to Repository.Upsert under the natural-key contract.

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

var ErrInvalidArgument = errors.New("calllog: invalid argument")

func (s *Service) Get(ctx context.Context, id string) (CallRecord, error) {
	if id == "" {
		return CallRecord{}, ErrInvalidArgument
	}
	rec, ok, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return CallRecord{}, err
	}
	if !ok {
		return CallRecord{}, ErrNotFound
	}
	return rec, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]CallRecord, error) {
	if filter.Provider != "" && !filter.Provider.Valid() {
		return nil, ErrInvalidArgument
	}
	return s.repo.List(ctx, filter)
}
