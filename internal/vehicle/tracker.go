package vehicle

import (
	"cmp"
	"slices"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/nerrad567/lightguard-core/internal/lighting"
)

// observationFactor bounds how many valid observations are considered per
// tick relative to MaxTracks, keeping association cost at most
// MaxTracks * observationFactor * MaxTracks pairs.
const observationFactor = 2

// Result is the outcome of one tracker update.
type Result struct {
	// Vehicles is the current track list ordered by ascending ID.
	Vehicles []DetectedVehicle

	// Discarded counts observations rejected as malformed.
	Discarded int

	// OutOfRange counts valid observations beyond the detection range.
	OutOfRange int

	// Overflow counts observations that could not be tracked because the
	// track table or the per-tick observation budget was full.
	Overflow int

	// Lost holds the IDs of tracks dropped this tick.
	Lost []int
}

// track is the tracker-private mutable state behind a DetectedVehicle.
type track struct {
	id        int
	hint      int
	typ       Type
	pos       r2.Vec
	vel       r2.Vec
	unmatched time.Duration
}

// candidate is a gated track/observation pairing.
type candidate struct {
	track   int // index into Tracker.tracks
	obs     int // index into the valid observation slice
	dist2   float64
	hintHit bool
	trackID int
}

// Tracker associates observations with persistent vehicle tracks.
type Tracker struct {
	cfg    lighting.Config
	tracks []*track // ascending by id
	nextID int
}

// NewTracker creates an empty tracker.
func NewTracker(cfg lighting.Config) *Tracker {
	return &Tracker{
		cfg:    cfg,
		tracks: make([]*track, 0, cfg.MaxTracks),
		nextID: 1,
	}
}

// Update ingests the observations for one tick.
//
// Parameters:
//   - observations: raw detections for this tick (nil when the feed was stale)
//   - dt: time elapsed since the previous Update
//
// Returns:
//   - Result: the new vehicle list plus discard, overflow and loss accounting
func (t *Tracker) Update(observations []Observation, dt time.Duration) Result {
	var res Result

	valid := make([]Observation, 0, len(observations))
	budget := t.cfg.MaxTracks * observationFactor
	for _, o := range observations {
		if err := o.Validate(); err != nil {
			res.Discarded++
			continue
		}
		if r2.Norm(o.Position) > t.cfg.DetectionRange {
			res.OutOfRange++
			continue
		}
		if len(valid) == budget {
			res.Overflow++
			continue
		}
		valid = append(valid, o)
	}

	secs := dt.Seconds()
	for _, tr := range t.tracks {
		tr.pos = r2.Add(tr.pos, r2.Scale(secs, tr.vel))
	}

	trackMatched, obsMatched := t.associate(valid)

	kept := t.tracks[:0]
	for i, tr := range t.tracks {
		if o := trackMatched[i]; o >= 0 {
			obs := valid[o]
			tr.pos = obs.Position
			tr.vel = obs.Velocity
			tr.hint = obs.IDHint
			tr.unmatched = 0
			kept = append(kept, tr)
			continue
		}
		tr.unmatched += dt
		if tr.unmatched > t.cfg.TrackTimeout || r2.Norm(tr.pos) > t.cfg.DetectionRange {
			res.Lost = append(res.Lost, tr.id)
			continue
		}
		kept = append(kept, tr)
	}
	t.tracks = kept

	for i, obs := range valid {
		if obsMatched[i] {
			continue
		}
		if len(t.tracks) >= t.cfg.MaxTracks {
			res.Overflow++
			continue
		}
		t.tracks = append(t.tracks, &track{
			id:   t.nextID,
			hint: obs.IDHint,
			typ:  obs.Type,
			pos:  obs.Position,
			vel:  obs.Velocity,
		})
		t.nextID++
	}

	res.Vehicles = t.snapshot()
	return res
}

// associate pairs tracks with observations inside the gating radius.
//
// Pairs are taken greedily: hint matches first, then by ascending squared
// distance, then by lowest track ID, then by observation order.
//
// Returns:
//   - []int: for each track index, the matched observation index or -1
//   - []bool: whether each observation was matched
func (t *Tracker) associate(valid []Observation) ([]int, []bool) {
	trackMatched := make([]int, len(t.tracks))
	for i := range trackMatched {
		trackMatched[i] = -1
	}
	obsMatched := make([]bool, len(valid))
	if len(t.tracks) == 0 || len(valid) == 0 {
		return trackMatched, obsMatched
	}

	gate2 := t.cfg.GatingRadius * t.cfg.GatingRadius
	pairs := make([]candidate, 0, len(t.tracks))
	for ti, tr := range t.tracks {
		for oi, obs := range valid {
			if obs.Type != tr.typ {
				continue
			}
			d2 := r2.Norm2(r2.Sub(obs.Position, tr.pos))
			if d2 > gate2 {
				continue
			}
			pairs = append(pairs, candidate{
				track:   ti,
				obs:     oi,
				dist2:   d2,
				hintHit: obs.IDHint != 0 && obs.IDHint == tr.hint,
				trackID: tr.id,
			})
		}
	}

	slices.SortFunc(pairs, func(a, b candidate) int {
		if a.hintHit != b.hintHit {
			if a.hintHit {
				return -1
			}
			return 1
		}
		if c := cmp.Compare(a.dist2, b.dist2); c != 0 {
			return c
		}
		if c := cmp.Compare(a.trackID, b.trackID); c != 0 {
			return c
		}
		return cmp.Compare(a.obs, b.obs)
	})

	for _, p := range pairs {
		if trackMatched[p.track] >= 0 || obsMatched[p.obs] {
			continue
		}
		trackMatched[p.track] = p.obs
		obsMatched[p.obs] = true
	}
	return trackMatched, obsMatched
}

// snapshot copies the track table into an immutable vehicle list.
func (t *Tracker) snapshot() []DetectedVehicle {
	out := make([]DetectedVehicle, len(t.tracks))
	for i, tr := range t.tracks {
		out[i] = DetectedVehicle{
			ID:       tr.id,
			Type:     tr.typ,
			Position: tr.pos,
			Velocity: tr.vel,
			Distance: r2.Norm(tr.pos),
		}
	}
	return out
}

// Len returns the number of live tracks.
func (t *Tracker) Len() int {
	return len(t.tracks)
}

