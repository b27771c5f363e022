package candidate

// Verdict is the classifier's decision for one candidate.
type Verdict struct {
	IsPositive  bool    `json:"is_exoplanet"`
	Confidence  float64 `json:"confidence"`
	Explanation string  `json:"details"`
	ModelLabel  string  `json:"model_type"`

	// Fallback marks a verdict produced locally because the remote model was unreachable.
	Fallback bool `json:"fallback,omitempty"`
}

// Label is the human-readable decision.
func (v Verdict) Label() string {
	if v.IsPositive {
		return "Exoplanet candidate"
	}
	return "Likely false positive"
}
