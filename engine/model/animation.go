package model

import "sync"

// AnimationTrack animates one property of one node.
type AnimationTrack struct {
	// Name is the track identifier; morph weight tracks are suffixed with the target index.
	Name string

	// Target is the animated node.
	Target *Node

	// Property is the node property the keys drive.
	Property AnimationProperty

	// TargetIndex is the morph target index for PropertyMorphWeight, -1 otherwise.
	TargetIndex int

	Interpolation Interpolation

	Keys []Keyframe
}

// Duration returns the time of the last key.
func (t *AnimationTrack) Duration() float32 {
	if len(t.Keys) == 0 {
		return 0
	}
	return t.Keys[len(t.Keys)-1].Time
}

// AnimationGroup bundles the tracks of one source animation so they play together.
// Tracks may be added concurrently while a load is still resolving keyframe data.
type AnimationGroup struct {
	mu sync.RWMutex

	name    string
	tracks  []*AnimationTrack
	playing bool
	loop    bool
}

// NewAnimationGroup creates an empty, stopped AnimationGroup.
//
// Parameters:
//   - name: the group name
//
// Returns:
//   - *AnimationGroup: the new group
func NewAnimationGroup(name string) *AnimationGroup {
	return &AnimationGroup{name: name}
}

func (g *AnimationGroup) Name() string {
	return g.name
}

func (g *AnimationGroup) AddTrack(t *AnimationTrack) {
	g.mu.Lock()
	g.tracks = append(g.tracks, t)
	g.mu.Unlock()
}

func (g *AnimationGroup) Tracks() []*AnimationTrack {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*AnimationTrack, len(g.tracks))
	copy(out, g.tracks)
	return out
}

// Duration returns the longest track duration.
func (g *AnimationGroup) Duration() float32 {
	var d float32
	for _, t := range g.Tracks() {
		d = max(d, t.Duration())
	}
	return d
}

// Start marks the group as playing.
//
// Parameters:
//   - loop: whether playback wraps at the end
func (g *AnimationGroup) Start(loop bool) {
	g.mu.Lock()
	g.playing = true
	g.loop = loop
	g.mu.Unlock()
}

func (g *AnimationGroup) Stop() {
	g.mu.Lock()
	g.playing = false
	g.mu.Unlock()
}

func (g *AnimationGroup) Playing() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.playing
}

func (g *AnimationGroup) Looping() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.loop
}
