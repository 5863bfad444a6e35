package types

// PredictionResponse is returned by POST /predict.
type PredictionResponse struct {
	// Estimated completion time in minutes. Nil when the backend omitted it.
	// example: 62
	EstimatedTime *float64 `json:"estimated_time,omitempty" example:"62"`
	// Some backends answer 200 with an error message instead of a prediction.
	Error string `json:"error,omitempty"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: training item not found
	Error string `json:"error" example:"training item not found"`
	// HTTP status code.
	// example: 404
	Code int `json:"code" example:"404"`
}
