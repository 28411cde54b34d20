// Package types contains the view types served to the shell.
package types

import (
	"time"

	"github.com/slamweb/slam/internal/domain/sport"
	"github.com/slamweb/slam/internal/domain/sportfield"
	"github.com/slamweb/slam/internal/domain/stats"
)

// FieldView is one form input: its metadata plus the text to show.
type FieldView struct {
	Key     string                   `json:"key"`
	Label   string                   `json:"label"`
	Kind    sportfield.FieldKind     `json:"kind"`
	Options []sportfield.FieldOption `json:"options,omitempty"`
	Value   string                   `json:"value"`
}

// TrackForm is the editable view of one track.
type TrackForm struct {
	Index int           `json:"index"`
	Basic []FieldView   `json:"basic"`
	Extra [][]FieldView `json:"extra"`
}

// Form is the editable view of a draft; Extra rows follow the requested layout.
type Form struct {
	DraftID string        `json:"draft_id"`
	Lang    string        `json:"lang"`
	Type    string        `json:"type"`
	Basic   []FieldView   `json:"basic"`
	Extra   [][]FieldView `json:"extra"`
	Tracks  []TrackForm   `json:"tracks"`
}

// Schema is the field layout of a sport type, without values.
type Schema struct {
	Type   string                     `json:"type"`
	Lang   string                     `json:"lang"`
	Layout sportfield.LayoutConfig    `json:"layout"`
	Rows   [][]sportfield.FieldConfig `json:"rows"`
}

// Defaults is the blank payload and track of a sport type.
type Defaults struct {
	Type  string      `json:"type"`
	Extra sport.Extra `json:"extra"`
	Track sport.Track `json:"track"`
}

// Draft is the JSON view of a stored draft.
type Draft struct {
	ID        string       `json:"id"`
	Origin    string       `json:"origin"`
	Sport     *sport.Sport `json:"sport"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Job is the JSON view of a recognition job.
type Job struct {
	ID        string    `json:"job_id"`
	Status    string    `json:"status"`
	DraftID   string    `json:"draft_id,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Error     string    `json:"error,omitempty"`
	Duplicate bool      `json:"duplicate,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SubmitResult reports what a submit did with the draft.
type SubmitResult struct {
	Action string `json:"action"` // inserted or updated
	Type   string `json:"type"`
}

// StatsView is a backend summary plus the chart derived from it.
type StatsView struct {
	Query   stats.Query        `json:"query"`
	Summary *stats.Summary     `json:"summary"`
	Series  []stats.Point      `json:"series"`
	Years   []int              `json:"years"`
	Months  []int              `json:"months,omitempty"`
	Weeks   []stats.WeekOption `json:"weeks,omitempty"`
}

// Overview is the landing page payload.
type Overview struct {
	Sports []sport.Sport `json:"sports"`
	Stats  StatsView     `json:"stats"`
}

// User is the signed-in user's profile.
type User struct {
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
}

// Ack is the bodiless success response.
type Ack struct {
	Success bool `json:"success"`
}
