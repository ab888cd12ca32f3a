package config

import (
	"fmt"
	"os"
	"regexp"

	"github.com/rgehrsitz/encounters/internal/domain"
	"gopkg.in/yaml.v3"
)

var countryCodePattern = regexp.MustCompile(`^[A-Z]{3}$`)

// InputParser handles parsing of scenario input files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads a relationship scenario from a YAML (or JSON) file
func (ip *InputParser) LoadFromFile(filename string) (*domain.RelationshipInput, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ip.Parse(data)
}

// Parse decodes and validates a scenario document
func (ip *InputParser) Parse(data []byte) (*domain.RelationshipInput, error) {
	var input domain.RelationshipInput
	if err := yaml.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := ip.ValidateRelationship(&input); err != nil {
		return nil, fmt.Errorf("scenario validation failed: %w", err)
	}

	return &input, nil
}

// ValidateRelationship validates a request and resolves its annual visit
// count from the period fields when they are present.
func (ip *InputParser) ValidateRelationship(input *domain.RelationshipInput) error {
	if input == nil {
		return fmt.Errorf("input is required")
	}
	if err := ip.validatePerson(&input.You); err != nil {
		return fmt.Errorf("you: %w", err)
	}
	if err := ip.validatePerson(&input.Them); err != nil {
		return fmt.Errorf("them: %w", err)
	}

	if input.RelationType == "" {
		input.RelationType = domain.RelationOther
	}
	if !input.RelationType.Valid() {
		return fmt.Errorf("invalid relation type %q", input.RelationType)
	}
	// Parents and grandparents must be older than you
	if input.RelationType.IsParental() && input.Them.Age <= input.You.Age {
		return fmt.Errorf("for %s relations they should be older than you", input.RelationType)
	}

	if err := ip.validateFrequency(input); err != nil {
		return fmt.Errorf("frequency: %w", err)
	}

	return nil
}

// validatePerson validates a single person
func (ip *InputParser) validatePerson(p *domain.PersonInput) error {
	if p.Age < 0 {
		return fmt.Errorf("age must be at least 0, got %d", p.Age)
	}
	if p.Age > domain.MaxTableAge {
		return fmt.Errorf("age cannot exceed %d (life table data limitation), got %d", domain.MaxTableAge, p.Age)
	}
	if !p.Sex.Valid() {
		return fmt.Errorf("sex must be either male or female, got %q", p.Sex)
	}
	if !countryCodePattern.MatchString(p.Country) {
		return fmt.Errorf("country code must be 3 uppercase letters (ISO 3166-1 alpha-3), got %q", p.Country)
	}
	return nil
}

// validateFrequency checks the period fields, then the resolved annual count
func (ip *InputParser) validateFrequency(input *domain.RelationshipInput) error {
	if input.FrequencyPeriod != "" {
		if !input.FrequencyPeriod.Valid() {
			return fmt.Errorf("invalid frequency period %q", input.FrequencyPeriod)
		}
		if input.TimesPerPeriod < 1 {
			return fmt.Errorf("must have at least 1 visit per period")
		}
		if limit := domain.MaxTimesForPeriod(input.FrequencyPeriod); input.TimesPerPeriod > limit {
			return fmt.Errorf("for %s period, maximum is %d times", input.FrequencyPeriod, limit)
		}
		input.ResolveVisitsPerYear()
	}

	if input.VisitsPerYear < 0 {
		return fmt.Errorf("visits per year cannot be negative")
	}
	if input.VisitsPerYear > domain.MaxVisitsPerYear {
		return fmt.Errorf("cannot exceed %d visits per year", domain.MaxVisitsPerYear)
	}
	return nil
}
