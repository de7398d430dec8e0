package services

import (
	"strconv"
	"time"

	"github.com/ArowuTest/tourbook-backend/internal/metrics"
	"github.com/ArowuTest/tourbook-backend/internal/models"
	"go.uber.org/zap"
)

// Denial reasons reported by the rule engine
const (
	ReasonMaxReprogrammings    = "maximum reprogrammings reached"
	ReasonInsufficientLeadTime = "insufficient lead time"
	ReasonBlackedOut           = "date is blacked out"
)

// EvaluationConfig carries the ambient inputs of a rule evaluation
type EvaluationConfig struct {
	Now time.Time
	// Location decides which calendar date a start time falls on for blackout
	// checks. Nil means the proposed start's own location.
	Location *time.Location
}

// EvaluateReprogramming decides whether the reservation may move to
// proposedStart. Rule kinds are checked in a fixed order: maximum count,
// then lead time, then blackout dates; the first failing kind is reported.
func EvaluateReprogramming(res *models.Reservation, proposedStart time.Time, rules []models.ReprogrammingRule, cfg EvaluationConfig) models.Verdict {
	var (
		maxRules  []models.MaxReprogrammings
		leadRules []models.MinimumLeadTime
		blackouts []models.BlackoutDates
	)
	for _, r := range rules {
		switch rule := r.(type) {
		case models.MaxReprogrammings:
			maxRules = append(maxRules, rule)
		case models.MinimumLeadTime:
			leadRules = append(leadRules, rule)
		case models.BlackoutDates:
			blackouts = append(blackouts, rule)
		}
	}

	for _, r := range maxRules {
		if res.ReprogrammingCount >= r.Max {
			return models.Deny(ReasonMaxReprogrammings)
		}
	}

	lead := proposedStart.Sub(cfg.Now).Hours()
	for _, r := range leadRules {
		if lead < r.Hours {
			return models.Deny(ReasonInsufficientLeadTime)
		}
	}

	day := proposedStart
	if cfg.Location != nil {
		day = proposedStart.In(cfg.Location)
	}
	for _, r := range blackouts {
		if r.Contains(day) {
			return models.Deny(ReasonBlackedOut)
		}
	}

	return models.Allow()
}

// RuleEngine evaluates persisted rule configurations, skipping malformed ones
type RuleEngine struct {
	logger *zap.Logger
}

// NewRuleEngine creates a new RuleEngine
func NewRuleEngine(logger *zap.Logger) *RuleEngine {
	return &RuleEngine{logger: logger}
}

// Parse converts rule configurations into typed rules. Malformed entries are
// logged and left out.
func (e *RuleEngine) Parse(configs []models.RuleConfig) []models.ReprogrammingRule {
	rules := make([]models.ReprogrammingRule, 0, len(configs))
	for i, cfg := range configs {
		rule, err := models.ParseRule(cfg)
		if err != nil {
			metrics.ReprogrammingRulesSkipped.WithLabelValues(string(cfg.Kind)).Inc()
			e.logger.Warn("skipping malformed reprogramming rule",
				zap.Int("index", i),
				zap.String("kind", string(cfg.Kind)),
				zap.Error(err),
			)
			continue
		}
		rules = append(rules, rule)
	}
	return rules
}

// Evaluate parses configs and evaluates the request against the usable rules
func (e *RuleEngine) Evaluate(res *models.Reservation, proposedStart time.Time, configs []models.RuleConfig, cfg EvaluationConfig) models.Verdict {
	v := EvaluateReprogramming(res, proposedStart, e.Parse(configs), cfg)
	metrics.ReprogrammingVerdicts.WithLabelValues(strconv.FormatBool(v.Allowed), v.Reason).Inc()
	return v
}
