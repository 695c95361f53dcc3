package loader

import (
	"context"
	"fmt"

	"github.com/Carmen-Shannon/oxy-gltf/common"
	"github.com/Carmen-Shannon/oxy-gltf/engine/model"

	"go.uber.org/zap"
)

// animationChannel is a validated channel ready to be resolved.
type animationChannel struct {
	name          string
	target        *model.Node
	property      model.AnimationProperty
	interpolation model.Interpolation
	sampler       *AnimationSampler
	// morphTargets is the number of weights per key for weight channels.
	morphTargets int
}

// loadAnimations creates one animation group per animation and schedules every valid
// channel. Malformed channels are logged and skipped.
func (l *gltfLoader) loadAnimations() {
	for ai := range l.doc.Animations {
		rec := &l.doc.Animations[ai]
		group := model.NewAnimationGroup(common.Coalesce(rec.Name, fmt.Sprintf("anim%d", ai)))
		l.groups = append(l.groups, group)
		l.target.AddAnimationGroup(group)

		tracks := 0
		for ci := range rec.Channels {
			path := fmt.Sprintf("/animations/%d/channels/%d", ai, ci)
			ch, ok := l.validateChannel(path, rec, &rec.Channels[ci])
			if !ok {
				continue
			}
			ch.name = fmt.Sprintf("%s_channel%d", group.Name(), tracks)
			tracks++

			l.barrier.Go(path, func(ctx context.Context) error {
				return l.loadChannel(ctx, path, group, ch)
			})
		}
	}
}

// validateChannel checks the target node, path, sampler and interpolation of a channel.
func (l *gltfLoader) validateChannel(path string, anim *Animation, rec *AnimationChannel) (*animationChannel, bool) {
	warn := func(reason string, fields ...zap.Field) {
		l.log.Warn("Skipping animation channel: "+reason, append([]zap.Field{zap.String("path", path)}, fields...)...)
	}

	if rec.Target.Node == nil {
		return nil, false
	}
	ni := *rec.Target.Node
	if ni < 0 || ni >= len(l.doc.Nodes) {
		warn("invalid target node", zap.Int("node", ni))
		return nil, false
	}
	node := l.nodes[ni]
	if node == nil {
		// not part of this import
		return nil, false
	}

	if rec.Sampler < 0 || rec.Sampler >= len(anim.Samplers) {
		warn("invalid sampler", zap.Int("sampler", rec.Sampler))
		return nil, false
	}
	sampler := &anim.Samplers[rec.Sampler]

	ch := &animationChannel{target: node, sampler: sampler}

	switch rec.Target.Path {
	case PathTranslation:
		ch.property = model.PropertyTranslation
	case PathRotation:
		ch.property = model.PropertyRotation
	case PathScale:
		ch.property = model.PropertyScale
	case PathWeights:
		ch.property = model.PropertyMorphWeight
		nrec := &l.doc.Nodes[ni]
		if nrec.Mesh != nil && len(l.doc.Meshes[*nrec.Mesh].Primitives) > 0 {
			ch.morphTargets = len(l.doc.Meshes[*nrec.Mesh].Primitives[0].Targets)
		}
		if ch.morphTargets == 0 {
			warn("target node has no morph targets", zap.Int("node", ni))
			return nil, false
		}
	default:
		warn("invalid target path", zap.String("target_path", rec.Target.Path))
		return nil, false
	}

	switch common.Coalesce(sampler.Interpolation, InterpolationLinear) {
	case InterpolationLinear:
		ch.interpolation = model.InterpolationLinear
	case InterpolationStep:
		ch.interpolation = model.InterpolationStep
	case InterpolationCubicSpline:
		ch.interpolation = model.InterpolationCubicSpline
	default:
		warn("invalid interpolation", zap.String("interpolation", sampler.Interpolation))
		return nil, false
	}

	return ch, true
}

// loadChannel resolves the keyframes of a channel and adds its tracks to group.
func (l *gltfLoader) loadChannel(ctx context.Context, path string, group *model.AnimationGroup, ch *animationChannel) error {
	input, err := l.resolver.ResolveAccessor(ctx, ch.sampler.Input)
	if err != nil {
		return err
	}
	output, err := l.resolver.ResolveAccessor(ctx, ch.sampler.Output)
	if err != nil {
		return err
	}

	times := input.Float32s()
	values := output.Float32s()

	stride := 0
	switch ch.property {
	case model.PropertyTranslation, model.PropertyScale:
		stride = 3
	case model.PropertyRotation:
		stride = 4
	case model.PropertyMorphWeight:
		stride = ch.morphTargets
	}

	perKey := 1
	if ch.interpolation == model.InterpolationCubicSpline {
		perKey = 3
	}
	if want := len(times) * perKey * stride; len(values) != want {
		return parseErrorf("%s: sampler output has %d values, expected %d", path, len(values), want)
	}

	if ch.property != model.PropertyMorphWeight {
		group.AddTrack(&model.AnimationTrack{
			Name:          ch.name,
			Target:        ch.target,
			Property:      ch.property,
			TargetIndex:   -1,
			Interpolation: ch.interpolation,
			Keys:          buildKeys(times, values, stride, 0, stride, perKey),
		})
		return nil
	}

	for t := 0; t < ch.morphTargets; t++ {
		group.AddTrack(&model.AnimationTrack{
			Name:          fmt.Sprintf("%s_%d", ch.name, t),
			Target:        ch.target,
			Property:      model.PropertyMorphWeight,
			TargetIndex:   t,
			Interpolation: ch.interpolation,
			Keys:          buildKeys(times, values, stride, t, 1, perKey),
		})
	}
	return nil
}

// buildKeys slices width values starting at offset out of every stride-wide element.
// With perKey 3 the elements of each key are in-tangent, value, out-tangent.
func buildKeys(times, values []float32, stride, offset, width, perKey int) []model.Keyframe {
	element := func(i int) []float32 {
		start := i*stride + offset
		return append([]float32(nil), values[start:start+width]...)
	}

	keys := make([]model.Keyframe, len(times))
	for k, time := range times {
		keys[k].Time = time
		if perKey == 3 {
			keys[k].InTangent = element(k * 3)
			keys[k].Value = element(k*3 + 1)
			keys[k].OutTangent = element(k*3 + 2)
		} else {
			keys[k].Value = element(k)
		}
	}
	return keys
}
