package types

import (
	"encoding/json"
	"fmt"
)

// AnalysisResult is the payload produced by the analysis service when a
// verification completes. The client stores and forwards it without
// interpreting its internals.
type AnalysisResult struct {
	Verdict         string           `json:"verdict"`
	Score           float64          `json:"score"`
	Confidence      float64          `json:"confidence"`
	Evidence        []ClauseMatch    `json:"evidence,omitempty"`
	Findings        []Finding        `json:"findings,omitempty"`
	Recommendations []Recommendation `json:"recommendations,omitempty"`
	Summary         string           `json:"summary,omitempty"`
	Metrics         *ResultMetrics   `json:"metrics,omitempty"`
}

// ClauseMatch is a supporting evidence entry linking a policy excerpt to an
// article of the applicable regulation.
type ClauseMatch struct {
	Article       string  `json:"article"`
	PolicyExcerpt string  `json:"policy_excerpt"`
	Score         float64 `json:"score"`
}

// Finding is a single detected compliance issue.
type Finding struct {
	Article    string  `json:"article"`
	Issue      string  `json:"issue"`
	Severity   string  `json:"severity"` // high, medium, low
	Confidence float64 `json:"confidence"`
}

// Recommendation is a suggested remediation for an article.
type Recommendation struct {
	Article    string `json:"article"`
	Suggestion string `json:"suggestion"`
}

// ResultMetrics summarizes violation counts for a completed analysis.
type ResultMetrics struct {
	TotalViolations    int `json:"total_violations"`
	TotalFulfills      int `json:"total_fulfills"`
	CriticalViolations int `json:"critical_violations"`
}

// ResultFromPayload converts a decoded `completed` event payload into an
// AnalysisResult. The payload arrives as a generic map from the line decoder;
// round-tripping through JSON keeps the conversion in one place instead of
// hand-walking every field.
func ResultFromPayload(payload map[string]any) (*AnalysisResult, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode result payload: %w", err)
	}
	var result AnalysisResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode result payload: %w", err)
	}
	return &result, nil
}
