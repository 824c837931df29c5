// Package alerts implements the rule evaluation engine and webhook delivery
// for lab alerting. Rules are evaluated against each graded reading; webhooks
// are delivered to Slack, Teams, or generic HTTP targets, each behind its own
// circuit breaker so a dead endpoint stops being hammered.
package alerts
