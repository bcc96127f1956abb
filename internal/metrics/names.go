package metrics

const (
	EvaluationsH       = "The total number of pipeline evaluations"
	EvaluationsN       = "fuzzykart_pipeline_evaluations"
	EvaluationSecondsH = "Time spent in fuzzify, inference and defuzzify per evaluation"
	EvaluationSecondsN = "fuzzykart_pipeline_evaluation_seconds"
	InvalidOutputsH    = "The total number of output variables left without a decision (NaN)"
	InvalidOutputsN    = "fuzzykart_pipeline_invalid_outputs"
	RulesFiredH        = "The number of rules with positive activation in the last evaluation"
	RulesFiredN        = "fuzzykart_pipeline_rules_fired"
	RuleBaseSwapsH     = "The total number of rule-base swaps applied"
	RuleBaseSwapsN     = "fuzzykart_rulebase_swaps"
	RuleBaseRejectsH   = "The total number of candidate rule bases rejected at load or by the gate"
	RuleBaseRejectsN   = "fuzzykart_rulebase_rejects"
	RuleBaseRulesH     = "The number of rules in the active rule base"
	RuleBaseRulesN     = "fuzzykart_rulebase_rules"
	RPCEvaluationsH    = "The total number of Evaluate RPCs served"
	RPCEvaluationsN    = "fuzzykart_rpc_evaluations"
	WatchReloadsH      = "The total number of rule-base file reloads triggered by the watcher"
	WatchReloadsN      = "fuzzykart_watch_reloads"
)
