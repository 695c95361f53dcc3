package loader

import (
	"context"
	"fmt"

	"github.com/Carmen-Shannon/oxy-gltf/common"
	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
)

// loadSkins attaches a skeleton to every built node that references a skin. It runs after
// the node traversal so that every joint node that will be built already exists.
func (l *gltfLoader) loadSkins() {
	for ni, node := range l.nodes {
		if node == nil || l.doc.Nodes[ni].Skin == nil {
			continue
		}
		skel, err := l.loadSkin(*l.doc.Nodes[ni].Skin)
		if err != nil {
			l.barrier.Fail(err)
			continue
		}
		node.SetSkeleton(skel)
	}
}

// loadSkin materializes skin index into a skeleton once and schedules the binding of its
// inverse bind matrices.
func (l *gltfLoader) loadSkin(index int) (*model.Skeleton, error) {
	if skel := l.skins[index]; skel != nil {
		return skel, nil
	}

	rec := &l.doc.Skins[index]
	path := fmt.Sprintf("/skins/%d", index)

	boneOf := make(map[int]int, len(rec.Joints))
	for bi, joint := range rec.Joints {
		if err := checkIndex(fmt.Sprintf("%s/joints/%d", path, bi), joint, len(l.doc.Nodes)); err != nil {
			return nil, err
		}
		if _, dup := boneOf[joint]; dup {
			return nil, parseErrorf("%s/joints/%d: node %d is listed twice", path, bi, joint)
		}
		boneOf[joint] = bi
	}

	skel := model.NewSkeleton(common.Coalesce(rec.Name, fmt.Sprintf("skeleton%d", index)), path)
	for bi, joint := range rec.Joints {
		nrec := &l.doc.Nodes[joint]
		skel.AddBone(&model.Bone{
			Name:              common.Coalesce(nrec.Name, fmt.Sprintf("joint%d", bi)),
			ParentIndex:       l.parentBone(joint, boneOf),
			InverseBindMatrix: common.IdentityMatrix(),
			BindLocalMatrix:   common.IdentityMatrix(),
			LocalTransform:    nodeTransform(nrec),
			Node:              l.nodes[joint],
		})
	}

	l.skins[index] = skel
	l.target.AddSkeleton(skel)

	l.barrier.Go(path, func(ctx context.Context) error {
		return l.bindSkin(ctx, path, rec, skel)
	})
	return skel, nil
}

// parentBone returns the bone index of the nearest ancestor of joint that is also a joint of
// the skin, -1 when there is none.
func (l *gltfLoader) parentBone(joint int, boneOf map[int]int) int {
	steps := 0
	for p := l.parents[joint]; p >= 0 && steps < len(l.parents); p = l.parents[p] {
		if bi, ok := boneOf[p]; ok {
			return bi
		}
		steps++
	}
	return -1
}

// bindSkin resolves the inverse bind matrices of a skin and binds them to its skeleton.
func (l *gltfLoader) bindSkin(ctx context.Context, path string, rec *Skin, skel *model.Skeleton) error {
	if rec.InverseBindMatrices == nil {
		skel.BindInverseBindMatrices(nil)
		return nil
	}

	acc, err := l.resolver.ResolveAccessor(ctx, *rec.InverseBindMatrices)
	if err != nil {
		return err
	}
	matrices, err := acc.Matrices()
	if err != nil {
		return fmt.Errorf("%s/inverseBindMatrices: %w", path, err)
	}
	if len(matrices) < len(rec.Joints) {
		return parseErrorf("%s/inverseBindMatrices: %d matrices for %d joints", path, len(matrices), len(rec.Joints))
	}

	skel.BindInverseBindMatrices(matrices[:len(rec.Joints)])
	return nil
}
