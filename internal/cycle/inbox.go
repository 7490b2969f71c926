package cycle

import (
	"sync"
	"time"

	"github.com/nerrad567/lightguard-core/internal/control"
	"github.com/nerrad567/lightguard-core/internal/lighting"
	"github.com/nerrad567/lightguard-core/internal/vehicle"
)

// Inbox holds the most recent bus inputs between ticks.
//
// A frame is consumed by the first tick after it arrives; ego state and the
// manual beam request persist until replaced. Handlers match
// mqtt.MessageHandler and are safe to call from any goroutine.
type Inbox struct {
	mu sync.Mutex

	frame      *FrameMessage
	receivedAt time.Time

	ego    control.EgoState
	manual *lighting.BeamMode

	now func() time.Time
}

// NewInbox creates an empty inbox.
func NewInbox() *Inbox {
	return &Inbox{now: time.Now}
}

// HandleFrame stores a perception frame, replacing any frame not yet taken.
func (b *Inbox) HandleFrame(_ string, payload []byte) error {
	msg, err := decodeFrame(payload)
	if err != nil {
		return err
	}
	b.PutFrame(msg)
	return nil
}

// PutFrame stores a decoded frame.
func (b *Inbox) PutFrame(msg FrameMessage) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.frame = &msg
	b.receivedAt = b.now()
}

// HandleEgo stores the latest ego state.
func (b *Inbox) HandleEgo(_ string, payload []byte) error {
	ego, err := decodeEgo(payload)
	if err != nil {
		return err
	}
	b.PutEgo(ego)
	return nil
}

// PutEgo stores a decoded ego state.
func (b *Inbox) PutEgo(ego control.EgoState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ego = ego
}

// HandleBeam stores the driver's beam request. "AUTO" or an empty mode
// releases the override; an unknown mode is rejected and the held request
// is left unchanged.
func (b *Inbox) HandleBeam(_ string, payload []byte) error {
	msg, err := decodeBeam(payload)
	if err != nil {
		return err
	}
	mode, release, err := msg.beamMode()
	if err != nil {
		return err
	}
	if release {
		b.SetManual(nil)
		return nil
	}
	b.SetManual(&mode)
	return nil
}

// SetManual sets or, with nil, clears the manual beam override.
func (b *Inbox) SetManual(mode *lighting.BeamMode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if mode == nil {
		b.manual = nil
		return
	}
	m := *mode
	b.manual = &m
}

// Manual returns the current manual override, nil when none.
func (b *Inbox) Manual() *lighting.BeamMode {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.manual == nil {
		return nil
	}
	m := *b.manual
	return &m
}

// take assembles the tick input at now and consumes the pending frame.
func (b *Inbox) take(now time.Time) control.Input {
	b.mu.Lock()
	defer b.mu.Unlock()

	in := control.Input{Ego: b.ego}
	if b.manual != nil {
		m := *b.manual
		in.ManualBeam = &m
	}

	if b.frame != nil {
		sampled := b.frame.SampledAt
		if sampled.IsZero() {
			sampled = b.receivedAt
		}
		obs := make([]vehicle.Observation, len(b.frame.Vehicles))
		for i, v := range b.frame.Vehicles {
			obs[i] = v.observation()
		}
		in.Frame = &control.Frame{
			Observations: obs,
			Rejected:     b.frame.Rejected,
			Age:          max(now.Sub(sampled), 0),
		}
		b.frame = nil
	}
	return in
}
