package messages

import "time"

// PredictionCompletedEvent is published once per successful prediction run.
// The recommendation trigger consumes it on a separate worker; consumer
// failures never reach the producer.
type PredictionCompletedEvent struct {
	UserID         string    `json:"user_id"`
	SessionID      uint      `json:"session_id"`
	PredictionID   string    `json:"prediction_id"`
	PredictedYield float64   `json:"predicted_yield"`
	Confidence     float64   `json:"confidence"`
	Timestamp      time.Time `json:"timestamp"`
}
