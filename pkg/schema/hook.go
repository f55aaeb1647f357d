package schema

import "time"

type HookRequest struct {
	Hook    string `json:"hook" validate:"required"`
	Context string `json:"context" validate:"required"`
	Emotion string `json:"emotion" validate:"required"`
	Theme   string `json:"theme" validate:"required"`
	Tone    string `json:"tone,omitempty"`
}

// TripBreakdown holds one flag per T.R.I.P. criterion.
type TripBreakdown struct {
	Tension        bool `json:"tension" jsonschema_description:"Introduces emotional, spiritual, or psychological conflict or friction"`
	Relatability   bool `json:"relatability" jsonschema_description:"Reflects a common struggle or silent pain the audience feels"`
	Intrigue       bool `json:"intrigue" jsonschema_description:"Opens a mental loop that demands resolution"`
	PersonalStakes bool `json:"personalStakes" jsonschema_description:"Feels like a raw emotional confession or real moment"`
}

// HookVerdict is the shape the model is asked to return.
type HookVerdict struct {
	Score         float64       `json:"score" jsonschema:"minimum=0,maximum=10" jsonschema_description:"Rating out of 10 based on how many T.R.I.P. elements the hook hits and how effectively"`
	TripBreakdown TripBreakdown `json:"tripBreakdown" jsonschema_description:"Which T.R.I.P. elements are present"`
	Feedback      string        `json:"feedback" jsonschema_description:"What works well and what could be improved"`
	Variations    []string      `json:"variations" jsonschema_description:"Exactly three refined variations that keep the creator's voice"`
	ReframePrompt *string       `json:"reframePrompt" jsonschema_description:"Optional suggestion for approaching the hook differently"`
}

type HookAnalysis struct {
	OriginalHook string `json:"originalHook"`
	HookVerdict
}

type SavedHookVariation struct {
	ID                string    `json:"id"`
	OwnerID           string    `json:"userId"`
	OriginalHook      string    `json:"originalHook" validate:"required"`
	SelectedVariation string    `json:"selectedVariation" validate:"required"`
	TripScore         float64   `json:"tripScore"`
	Timestamp         time.Time `json:"timestamp"`
}
