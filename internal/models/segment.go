package models

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// FilterKey identifies a supported segment filter
type FilterKey string

const (
	FilterRole     FilterKey = "role"
	FilterCountry  FilterKey = "country"
	FilterGender   FilterKey = "gender"
	FilterTripsMin FilterKey = "trip_count_min"
	FilterTripsMax FilterKey = "trip_count_max"
)

// Gender codes accepted by the gender filter
const (
	GenderMale   = "M"
	GenderFemale = "F"
	GenderOther  = "O"
)

// SegmentFilter is one predicate of a segment. The set of implementations is closed.
type SegmentFilter interface {
	Key() FilterKey
	Matches(u *User) bool
	segmentFilter()
}

// RoleFilter matches the role name exactly, case-sensitive
type RoleFilter struct{ Role string }

// CountryFilter matches the country exactly
type CountryFilter struct{ Country string }

// GenderFilter matches an enumerated gender code
type GenderFilter struct{ Gender string }

// MinTripsFilter is an inclusive lower bound on trip count
type MinTripsFilter struct{ Min int }

// MaxTripsFilter is an inclusive upper bound on trip count
type MaxTripsFilter struct{ Max int }

func (RoleFilter) Key() FilterKey     { return FilterRole }
func (CountryFilter) Key() FilterKey  { return FilterCountry }
func (GenderFilter) Key() FilterKey   { return FilterGender }
func (MinTripsFilter) Key() FilterKey { return FilterTripsMin }
func (MaxTripsFilter) Key() FilterKey { return FilterTripsMax }

func (f RoleFilter) Matches(u *User) bool     { return u.Role == f.Role }
func (f CountryFilter) Matches(u *User) bool  { return u.Country == f.Country }
func (f GenderFilter) Matches(u *User) bool   { return u.Gender == f.Gender }
func (f MinTripsFilter) Matches(u *User) bool { return u.TripCount >= f.Min }
func (f MaxTripsFilter) Matches(u *User) bool { return u.TripCount <= f.Max }

func (RoleFilter) segmentFilter()     {}
func (CountryFilter) segmentFilter()  {}
func (GenderFilter) segmentFilter()   {}
func (MinTripsFilter) segmentFilter() {}
func (MaxTripsFilter) segmentFilter() {}

// ParseSegment converts the persisted key/value mapping into typed filters.
// It returns every problem found keyed by "segment.<key>". Filters come back
// sorted by key so evaluation order does not depend on map iteration.
func ParseSegment(raw map[string]string) ([]SegmentFilter, map[string]string) {
	problems := map[string]string{}
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	filters := make([]SegmentFilter, 0, len(raw))
	for _, k := range keys {
		v := strings.TrimSpace(raw[k])
		field := "segment." + k
		switch FilterKey(k) {
		case FilterRole:
			if v == "" {
				problems[field] = "role must not be empty"
				continue
			}
			filters = append(filters, RoleFilter{Role: v})
		case FilterCountry:
			if v == "" {
				problems[field] = "country must not be empty"
				continue
			}
			filters = append(filters, CountryFilter{Country: v})
		case FilterGender:
			if v != GenderMale && v != GenderFemale && v != GenderOther {
				problems[field] = fmt.Sprintf("unknown gender code %q", v)
				continue
			}
			filters = append(filters, GenderFilter{Gender: v})
		case FilterTripsMin, FilterTripsMax:
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				problems[field] = "trip count must be a non-negative integer"
				continue
			}
			if FilterKey(k) == FilterTripsMin {
				filters = append(filters, MinTripsFilter{Min: n})
			} else {
				filters = append(filters, MaxTripsFilter{Max: n})
			}
		default:
			problems[field] = fmt.Sprintf("unknown filter key %q", k)
		}
	}
	return filters, problems
}
