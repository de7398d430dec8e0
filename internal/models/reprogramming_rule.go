package models

import (
	"errors"
	"fmt"
	"time"
)

// RuleKind names a reprogramming rule variant
type RuleKind string

const (
	RuleMinimumLeadTime   RuleKind = "MINIMUM_LEAD_TIME"
	RuleBlackoutDates     RuleKind = "BLACKOUT_DATES"
	RuleMaxReprogrammings RuleKind = "MAX_REPROGRAMMINGS"
)

// DateLayout is the calendar date format used by blackout dates
const DateLayout = "2006-01-02"

// RuleConfig is the persisted, loosely-typed form of a reprogramming rule
type RuleConfig struct {
	Kind  RuleKind `bson:"kind" json:"kind"`
	Hours *float64 `bson:"hours,omitempty" json:"hours,omitempty"`
	Dates []string `bson:"dates,omitempty" json:"dates,omitempty"`
	Max   *int     `bson:"max,omitempty" json:"max,omitempty"`
}

// ReprogrammingRule is one of MinimumLeadTime, BlackoutDates or MaxReprogrammings
type ReprogrammingRule interface {
	Kind() RuleKind
	reprogrammingRule()
}

// MinimumLeadTime requires the new start to be at least Hours away from now
type MinimumLeadTime struct {
	Hours float64
}

// BlackoutDates lists calendar dates on which no reservation may start
type BlackoutDates struct {
	Dates map[string]struct{}
}

// MaxReprogrammings caps how many times a reservation may be reprogrammed
type MaxReprogrammings struct {
	Max int
}

func (MinimumLeadTime) Kind() RuleKind   { return RuleMinimumLeadTime }
func (BlackoutDates) Kind() RuleKind     { return RuleBlackoutDates }
func (MaxReprogrammings) Kind() RuleKind { return RuleMaxReprogrammings }

func (MinimumLeadTime) reprogrammingRule()   {}
func (BlackoutDates) reprogrammingRule()     {}
func (MaxReprogrammings) reprogrammingRule() {}

// Contains reports whether the calendar date of t (in t's location) is blacked out
func (b BlackoutDates) Contains(t time.Time) bool {
	_, ok := b.Dates[t.Format(DateLayout)]
	return ok
}

// ErrMalformedRule is returned by ParseRule for a rule that cannot be applied
var ErrMalformedRule = errors.New("malformed reprogramming rule")

// ParseRule validates a persisted rule and returns its typed variant
func ParseRule(cfg RuleConfig) (ReprogrammingRule, error) {
	switch cfg.Kind {
	case RuleMinimumLeadTime:
		if cfg.Hours == nil || *cfg.Hours < 0 {
			return nil, fmt.Errorf("%w: %s needs non-negative hours", ErrMalformedRule, cfg.Kind)
		}
		return MinimumLeadTime{Hours: *cfg.Hours}, nil
	case RuleBlackoutDates:
		if len(cfg.Dates) == 0 {
			return nil, fmt.Errorf("%w: %s needs at least one date", ErrMalformedRule, cfg.Kind)
		}
		dates := make(map[string]struct{}, len(cfg.Dates))
		for _, d := range cfg.Dates {
			parsed, err := time.Parse(DateLayout, d)
			if err != nil {
				return nil, fmt.Errorf("%w: %s has invalid date %q", ErrMalformedRule, cfg.Kind, d)
			}
			dates[parsed.Format(DateLayout)] = struct{}{}
		}
		return BlackoutDates{Dates: dates}, nil
	case RuleMaxReprogrammings:
		if cfg.Max == nil || *cfg.Max < 0 {
			return nil, fmt.Errorf("%w: %s needs a non-negative max", ErrMalformedRule, cfg.Kind)
		}
		return MaxReprogrammings{Max: *cfg.Max}, nil
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrMalformedRule, cfg.Kind)
	}
}

// Verdict is the outcome of evaluating a reprogramming request
type Verdict struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// Allow returns an allowing verdict
func Allow() Verdict { return Verdict{Allowed: true} }

// Deny returns a denying verdict with a human-readable reason
func Deny(reason string) Verdict { return Verdict{Reason: reason} }
