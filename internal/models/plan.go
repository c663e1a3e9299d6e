package models

import "encoding/json"

// PlanRequest is the JSON body for POST /api/generate-plan. Research is kept
// raw so it is forwarded exactly as received.
type PlanRequest struct {
	Company  string          `json:"company"`
	Research json.RawMessage `json:"research"`
}

// ChatRequest is the JSON body for POST /api/chat.
type ChatRequest struct {
	Company  string          `json:"company"`
	Research json.RawMessage `json:"research"`
	Question string          `json:"question"`
}

// ParseRequest is the JSON body for POST /api/parse-plan. Either field may
// hold a string or an object.
type ParseRequest struct {
	Text json.RawMessage `json:"text"`
	Plan json.RawMessage `json:"plan"`
}

// AnalysisRequest is the JSON body for POST /api/parse-analysis.
type AnalysisRequest struct {
	Analysis any `json:"analysis"`
}
