package domain

// RiskAssessment is the semantic classifier's opinion on a candidate action.
// It lives only for the duration of the current turn.
//
// A nil *RiskAssessment means "no opinion" and must never be read as safe;
// the firewall's verdict alone governs in that case.
type RiskAssessment struct {
	Dangerous  bool    `json:"dangerous" mapstructure:"dangerous"`
	Confidence float64 `json:"confidence" mapstructure:"confidence"`
	Reason     string  `json:"reason,omitempty" mapstructure:"reason"`
}
