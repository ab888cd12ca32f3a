// Package service ties input validation, life table loading and the
// survival engine together for the CLI and the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rgehrsitz/encounters/internal/calculation"
	"github.com/rgehrsitz/encounters/internal/config"
	"github.com/rgehrsitz/encounters/internal/datastore"
	"github.com/rgehrsitz/encounters/internal/domain"
)

// ErrInvalidInput marks requests rejected by validation.
var ErrInvalidInput = errors.New("invalid input")

// Service answers encounter questions.
type Service struct {
	source datastore.Source
	engine *calculation.SurvivalEngine
	parser *config.InputParser
}

// New creates a service reading tables from src.
func New(src datastore.Source, engine *calculation.SurvivalEngine) *Service {
	if engine == nil {
		engine = calculation.NewSurvivalEngine()
	}
	return &Service{source: src, engine: engine, parser: config.NewInputParser()}
}

// Engine returns the underlying survival engine.
func (s *Service) Engine() *calculation.SurvivalEngine {
	return s.engine
}

// Calculate validates input, loads both life tables and runs the simulation.
func (s *Service) Calculate(ctx context.Context, input *domain.RelationshipInput) (*domain.EncounterReport, error) {
	a, b, err := s.subjects(ctx, input)
	if err != nil {
		return nil, err
	}
	result := s.engine.Simulate(a, b, input.VisitsPerYear)
	return domain.NewEncounterReport(*input, result), nil
}

// Sweep runs input at each of the given annual visit counts. An empty
// list uses calculation.DefaultSweepFrequencies.
func (s *Service) Sweep(ctx context.Context, input *domain.RelationshipInput, frequencies []int) (*domain.FrequencySweep, error) {
	for _, f := range frequencies {
		if f < 0 || f > domain.MaxVisitsPerYear {
			return nil, fmt.Errorf("%w: sweep frequency %d outside 0..%d", ErrInvalidInput, f, domain.MaxVisitsPerYear)
		}
	}
	if len(frequencies) == 0 {
		frequencies = calculation.DefaultSweepFrequencies
	}
	a, b, err := s.subjects(ctx, input)
	if err != nil {
		return nil, err
	}
	return &domain.FrequencySweep{
		Input:  *input,
		Points: s.engine.SweepFrequencies(a, b, frequencies),
	}, nil
}

func (s *Service) subjects(ctx context.Context, input *domain.RelationshipInput) (calculation.Subject, calculation.Subject, error) {
	if err := s.parser.ValidateRelationship(input); err != nil {
		return calculation.Subject{}, calculation.Subject{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	yours, theirs, err := datastore.Pair(ctx, s.source, input.You, input.Them)
	if err != nil {
		return calculation.Subject{}, calculation.Subject{}, err
	}
	return calculation.Subject{Age: input.You.Age, Table: yours},
		calculation.Subject{Age: input.Them.Age, Table: theirs}, nil
}
