package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/opsexstack/debtscan/internal/models"
	"github.com/opsexstack/debtscan/internal/utils"
)

// StrategyRule maps a pipe-delimited keyword group to a three-step
// refactoring plan. Table order is matching order: the first group with
// any substring hit wins, so more specific groups must come first.
type StrategyRule struct {
	Keywords  string `yaml:"keywords"`
	Immediate string `yaml:"immediate"`
	RootCause string `yaml:"root_cause"`
	LongTerm  string `yaml:"long_term"`
}

// strategyPack is the YAML root for an external rule-pack override.
type strategyPack struct {
	Rules []StrategyRule `yaml:"rules"`
}

var defaultStrategyRules = []StrategyRule{
	{
		Keywords:  "search|query",
		Immediate: "Implement Redis/Memcached layer for query results caching",
		RootCause: "ElasticSearch indices unoptimized, missing shards, or network latency",
		LongTerm:  "Migrate to event-driven CQRS pattern with projection layer",
	},
	{
		Keywords:  "report|export",
		Immediate: "Move to async job queue (Celery/Bull/RQ) to unblock HTTP threads",
		RootCause: "Large dataset aggregation blocking request, slow aggregation pipeline",
		LongTerm:  "Implement materialized views or data warehouse with hourly refreshes",
	},
	{
		Keywords:  "transaction|payment|checkout",
		Immediate: "Add timeout handling and implement retry logic with exponential backoff",
		RootCause: "External payment processor delays, network issues, or unoptimized database queries",
		LongTerm:  "Isolate transaction processing into dedicated microservice with circuit breakers",
	},
	{
		Keywords:  "auth|login|oauth|jwt",
		Immediate: "Implement token caching with short TTL (Redis)",
		RootCause: "Identity provider latency or excessive permission checks (N+1 queries)",
		LongTerm:  "Adopt passwordless authentication (WebAuthn) or federation",
	},
	{
		Keywords:  "upload|file|media",
		Immediate: "Stream uploads directly to S3/Cloud Storage; validate client-side",
		RootCause: "Processing files before persisting to storage, or single-threaded uploads",
		LongTerm:  "Implement chunked multi-part uploads with resumable progress tracking",
	},
	{
		Keywords:  "profile|user|account",
		Immediate: "Cache user profiles in distributed cache (Redis) with 5-min TTL",
		RootCause: "Repeated database lookups for profile data, unindexed queries",
		LongTerm:  "Implement event-sourced user projections with eventual consistency",
	},
	{
		Keywords:  "notification|email|sms",
		Immediate: "Move to message queue (RabbitMQ/Kafka) for async processing",
		RootCause: "Blocking HTTP waits for notification delivery",
		LongTerm:  "Implement event-driven notification system with retry queues",
	},
	{
		Keywords:  "database|sql",
		Immediate: "Add query result caching and implement connection pooling",
		RootCause: "Missing database indexes, connection pool exhaustion, or slow queries",
		LongTerm:  "Shard database, implement read replicas, or migrate to NoSQL where appropriate",
	},
}

// SLATemplate names percentile latency thresholds for a service class.
type SLATemplate struct {
	P50         float64 `json:"p50" yaml:"p50"`
	P95         float64 `json:"p95" yaml:"p95"`
	P99         float64 `json:"p99" yaml:"p99"`
	Description string  `json:"description" yaml:"description"`
}

var slaTemplates = map[string]SLATemplate{
	"aggressive": {
		P50: 100, P95: 250, P99: 500,
		Description: "High-performance, low-latency systems (e.g., real-time trading, live gaming)",
	},
	"standard": {
		P50: 200, P95: 500, P99: 1000,
		Description: "Typical web applications and APIs",
	},
	"relaxed": {
		P50: 500, P95: 2000, P99: 5000,
		Description: "Background jobs, batch processing, non-critical systems",
	},
}

// SLATemplates returns a copy of the named template table.
func SLATemplates() map[string]SLATemplate {
	out := make(map[string]SLATemplate, len(slaTemplates))
	for name, tpl := range slaTemplates {
		out[name] = tpl
	}
	return out
}

// StrategyEngine resolves endpoints to refactoring recommendations via
// the keyword rule table, plus quick-win and SLA assessments.
type StrategyEngine struct {
	rules  []StrategyRule
	logger *slog.Logger
}

// NewStrategyEngine loads rules from the provided YAML path, falling
// back to the compiled-in table when the path is empty or missing.
func NewStrategyEngine(path string, logger *slog.Logger) (*StrategyEngine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	rules := defaultStrategyRules

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, utils.NewAppError("strategy.NewStrategyEngine", "read rule pack", err)
			}
		} else {
			var pack strategyPack
			if err := yaml.Unmarshal(data, &pack); err != nil {
				return nil, utils.NewAppError("strategy.NewStrategyEngine", "parse rule pack", err)
			}
			if len(pack.Rules) > 0 {
				rules = pack.Rules
				logger.Info("loaded strategy rule pack", slog.String("path", path), slog.Int("rules", len(rules)))
			}
		}
	}

	return &StrategyEngine{rules: rules, logger: logger}, nil
}

// PlanFor returns the endpoint together with its three-step plan:
// immediate mitigation, root cause, long term. Matching is
// case-insensitive substring over the pipe-delimited alternatives,
// first rule wins; unmatched endpoints get the generic plan.
func (e *StrategyEngine) PlanFor(endpoint string) (string, []string) {
	lower := strings.ToLower(endpoint)
	for _, rule := range e.rules {
		for _, keyword := range strings.Split(rule.Keywords, "|") {
			if keyword != "" && strings.Contains(lower, keyword) {
				return endpoint, []string{
					fmt.Sprintf("**Immediate Mitigation:** %s", rule.Immediate),
					fmt.Sprintf("**Root Cause Analysis:** %s", rule.RootCause),
					fmt.Sprintf("**Long Term Strategy:** %s", rule.LongTerm),
				}
			}
		}
	}

	return endpoint, []string{
		fmt.Sprintf("**Immediate Mitigation:** Review application logs for `%s` during high-latency windows. Add detailed APM instrumentation.", endpoint),
		"**Root Cause Analysis:** Check CPU/memory saturation on host nodes. Verify connection pool exhaustion (increase max_pool_size or implement PgBouncer).",
		fmt.Sprintf("**Long Term Strategy:** Profile `%s` with flame graphs. Consider horizontal scaling or request queuing.", endpoint),
	}
}

// WorstEndpoint returns the endpoint whose anomalies carry the greatest
// summed latency, or "" when there are no anomalies. Ties break on the
// lexicographically smaller endpoint so output is deterministic.
func WorstEndpoint(anomalies []models.AnnotatedRecord) string {
	totals := make(map[string]float64)
	for _, rec := range anomalies {
		totals[rec.Endpoint] += rec.LatencyMs
	}
	if len(totals) == 0 {
		return ""
	}

	endpoints := make([]string, 0, len(totals))
	for ep := range totals {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	worst := endpoints[0]
	for _, ep := range endpoints[1:] {
		if totals[ep] > totals[worst] {
			worst = ep
		}
	}
	return worst
}

// QuickWins returns actionable suggestions ordered by severity:
// threshold-triggered items first, then the standing recommendations.
func (e *StrategyEngine) QuickWins(anomalyCount int, financialLoss float64) []string {
	var wins []string

	if anomalyCount > 100 {
		wins = append(wins, "**High Priority**: Implement basic caching layer (Redis) - Quick win with 40-60% latency reduction")
	}
	if financialLoss > 500 {
		wins = append(wins, fmt.Sprintf("**ROI Alert**: $%.0f cost/day - Justifies hiring/outsourcing for optimization", financialLoss))
	}
	if anomalyCount > 500 {
		wins = append(wins, "**Critical**: Consider load balancing, horizontal scaling, or circuit breaker patterns")
	}

	wins = append(wins,
		"**Easy Win**: Add request-level caching (HTTP headers, ETag) for GET endpoints",
		"**Quick Fix**: Implement database query result caching (short TTL)",
		"**Infrastructure**: Verify connection pools are sized correctly for your workload",
	)
	return wins
}

// EvaluateSLA compares measured percentiles against a named template.
// Unknown template names fall back to "standard".
func EvaluateSLA(percentiles map[string]float64, level string) models.SLAEvaluation {
	sla, ok := slaTemplates[level]
	if !ok {
		level = "standard"
		sla = slaTemplates[level]
	}

	eval := models.SLAEvaluation{
		Level:        level,
		Description:  sla.Description,
		P50Compliant: percentiles["P50"] <= sla.P50,
		P95Compliant: percentiles["P95"] <= sla.P95,
		P99Compliant: percentiles["P99"] <= sla.P99,
	}
	eval.AllCompliant = eval.P50Compliant && eval.P95Compliant && eval.P99Compliant
	return eval
}

// MaturityAdvice grades current mean latency into an optimization
// maturity message for the report header.
func MaturityAdvice(meanLatency float64) string {
	switch {
	case meanLatency < 50:
		return "**World-Class**: Your systems are highly optimized. Focus on maintaining SLAs and preventing regressions."
	case meanLatency < 100:
		return "**Production-Ready**: Good baseline performance. Continue monitoring and optimize outliers."
	case meanLatency < 300:
		return "**Needs Work**: Consider caching and query optimization. User experience is at risk."
	case meanLatency < 1000:
		return "**Critical**: Immediate optimization needed. Users experiencing significant delays. Implement caching + async processing."
	default:
		return "**Emergency**: System is severely degraded. Implement circuit breakers and fallbacks immediately."
	}
}
