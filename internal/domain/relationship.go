package domain

import "math"

// RelationType describes how the two people are related.
type RelationType string

const (
	RelationMother              RelationType = "mother"
	RelationFather              RelationType = "father"
	RelationGrandmotherMaternal RelationType = "grandmother_maternal"
	RelationGrandmotherPaternal RelationType = "grandmother_paternal"
	RelationGrandfatherMaternal RelationType = "grandfather_maternal"
	RelationGrandfatherPaternal RelationType = "grandfather_paternal"
	RelationPartner             RelationType = "partner"
	RelationFriend              RelationType = "friend"
	RelationOtherFamily         RelationType = "other_family"
	RelationOther               RelationType = "other"
)

// RelationTypes lists every supported relation in display order.
var RelationTypes = []RelationType{
	RelationMother,
	RelationFather,
	RelationGrandmotherMaternal,
	RelationGrandmotherPaternal,
	RelationGrandfatherMaternal,
	RelationGrandfatherPaternal,
	RelationPartner,
	RelationFriend,
	RelationOtherFamily,
	RelationOther,
}

// Valid reports whether r is a known relation type.
func (r RelationType) Valid() bool {
	for _, known := range RelationTypes {
		if r == known {
			return true
		}
	}
	return false
}

// IsParental reports whether the other person is a parent or grandparent.
func (r RelationType) IsParental() bool {
	switch r {
	case RelationMother, RelationFather,
		RelationGrandmotherMaternal, RelationGrandmotherPaternal,
		RelationGrandfatherMaternal, RelationGrandfatherPaternal:
		return true
	}
	return false
}

// PersonInput describes one of the two people.
type PersonInput struct {
	Age     int    `yaml:"age" json:"age"`
	Sex     Sex    `yaml:"sex" json:"sex"`
	Country string `yaml:"country" json:"country"` // ISO 3166-1 alpha-3
}

// RelationshipInput is a complete calculation request.
type RelationshipInput struct {
	You             PersonInput     `yaml:"you" json:"you"`
	Them            PersonInput     `yaml:"them" json:"them"`
	RelationType    RelationType    `yaml:"relation_type" json:"relationType"`
	VisitsPerYear   int             `yaml:"visits_per_year" json:"visitsPerYear"`
	FrequencyPeriod FrequencyPeriod `yaml:"frequency_period,omitempty" json:"frequencyPeriod,omitempty"`
	TimesPerPeriod  int             `yaml:"times_per_period,omitempty" json:"timesPerPeriod,omitempty"`
}

// ResolveVisitsPerYear derives VisitsPerYear from the period fields when
// they are set. An explicit period always wins over a raw visit count.
func (ri *RelationshipInput) ResolveVisitsPerYear() int {
	if ri.FrequencyPeriod != "" && ri.TimesPerPeriod > 0 {
		ri.VisitsPerYear = VisitsPerYear(ri.FrequencyPeriod, ri.TimesPerPeriod)
	}
	return ri.VisitsPerYear
}

// TimeAlreadySpent estimates the share of all lifetime time together
// that has already elapsed at yourAge. Most time with parents and
// grandparents is spent before 18, with other relations before 15; after
// the peak the share approaches 95% asymptotically.
func TimeAlreadySpent(yourAge int, relation RelationType) float64 {
	peak := 15.0
	if relation.IsParental() {
		peak = 18.0
	}

	age := float64(yourAge)
	if age <= peak {
		return age / peak
	}

	yearsAfterPeak := age - peak
	return 0.7 + 0.25*(1-math.Exp(-yearsAfterPeak/10))
}
