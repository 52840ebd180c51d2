package providers

import (
	"context"
	"time"

	"github.com/Digital-Creators-Team/lucky-draw-module/reel"
	"github.com/google/uuid"
)

// NameProvider keeps a copy of each reel's name list outside the process.
// Winners are never stored.
type NameProvider interface {
	// LoadNames returns the saved list and whether one existed.
	LoadNames(ctx context.Context, reelCode string) ([]string, bool, error)
	SaveNames(ctx context.Context, reelCode string, names []string) error
}

// EventProvider delivers reel lifecycle events to an external system.
type EventProvider interface {
	Publish(ctx context.Context, ev *ReelEvent) error
}

// ReelEvent is the wire form of a reel.Event.
type ReelEvent struct {
	ID           string            `json:"id"`
	Type         string            `json:"type"`
	ReelCode     string            `json:"reel_code"`
	SpinID       string            `json:"spin_id,omitempty"`
	State        string            `json:"state,omitempty"`
	Winner       string            `json:"winner,omitempty"`
	Transition   *reel.Transition  `json:"transition,omitempty"`
	Names        []string          `json:"names,omitempty"`
	Operator     *reel.Operator    `json:"operator,omitempty"`
	ErrorCode    int               `json:"error_code,omitempty"`
	ErrorMessage string            `json:"error_message,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	Timestamp    time.Time         `json:"timestamp"`
}

// NewReelEvent converts ev. The event ID is the spin ID when there is one,
// a fresh UUID otherwise.
func NewReelEvent(ev reel.Event) *ReelEvent {
	out := &ReelEvent{
		Type:      ev.Type,
		ReelCode:  ev.ReelCode,
		Names:     ev.Names,
		Timestamp: time.Now(),
	}
	if res := ev.Result; res != nil {
		out.SpinID = res.SpinID
		out.ID = res.SpinID
		out.State = res.State.String()
		out.Operator = res.Operator
		if res.Winner != nil {
			out.Winner = res.Winner.Name
		}
		if res.Transition.Duration > 0 {
			tr := res.Transition
			out.Transition = &tr
		}
	}
	if out.ID == "" {
		out.ID = uuid.NewString()
	}
	if ev.Error != "" {
		out.ErrorCode = ev.ErrorCode
		out.ErrorMessage = ev.Error
	}
	return out
}
