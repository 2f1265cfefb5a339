package qdrant

import "fmt"

// Wire types for the Qdrant REST API. Field names follow the JSON the server
// expects; see https://api.qdrant.tech for the full schema.

type vectorParams struct {
	Size     int    `json:"size"`
	Distance string `json:"distance"`
}

type createCollectionRequest struct {
	Vectors map[string]vectorParams `json:"vectors"`
}

// collectionInfoResponse is the GET /collections/{name} envelope. Only the
// status is decoded; the probe cares about existence, not details.
type collectionInfoResponse struct {
	Status string `json:"status"`
}

type pointPayload struct {
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type pointStruct struct {
	ID      string               `json:"id"`
	Vector  map[string][]float32 `json:"vector"`
	Payload pointPayload         `json:"payload"`
}

type upsertPointsRequest struct {
	Points []pointStruct `json:"points"`
}

type operationResponse struct {
	Result struct {
		OperationID int64  `json:"operation_id"`
		Status      string `json:"status"`
	} `json:"result"`
	Status string  `json:"status"`
	Time   float64 `json:"time"`
}

type namedVector struct {
	Name   string    `json:"name"`
	Vector []float32 `json:"vector"`
}

type searchRequest struct {
	Vector      namedVector `json:"vector"`
	Limit       int         `json:"limit"`
	WithPayload bool        `json:"with_payload"`
}

type scoredPoint struct {
	// ID is a string for points written by this adapter (chunk UUIDs), but
	// Qdrant also allows numeric point IDs, so decode either.
	ID      any          `json:"id"`
	Score   float32      `json:"score"`
	Payload pointPayload `json:"payload"`
}

type searchResponse struct {
	Result []scoredPoint `json:"result"`
}

// idString renders the point ID as a string regardless of wire type.
func (p scoredPoint) idString() string {
	switch id := p.ID.(type) {
	case string:
		return id
	case float64:
		return fmt.Sprintf("%.0f", id)
	default:
		return fmt.Sprint(id)
	}
}
