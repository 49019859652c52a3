// Package fusion combines the per-modality analysis results into the final
// structured assessment, via the LLM scorer or the rule-based heuristic.
package fusion
