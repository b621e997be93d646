package domain

// EvaluationResult is the verdict on a candidate route. Optional fields are
// nil when the route was rejected before any travel time could be computed.
type EvaluationResult struct {
	Valid              bool     `json:"valid"`
	TravelTimeMinutes  *int     `json:"travelTimeMinutes,omitempty"`
	OptimalTimeMinutes *int     `json:"optimalTimeMinutes,omitempty"`
	OptimalRoute       []string `json:"optimalRoute,omitempty"`
	Score              *int     `json:"score,omitempty"`
	Message            string   `json:"message,omitempty"`
}

func InvalidResult(message string) EvaluationResult {
	return EvaluationResult{Valid: false, Message: message}
}
