// pkg/thruster/mount.go

// Package thruster models unidirectional thruster mounts attached to a
// rigid body and flattens them into the body-local list the allocation
// solver works on.
package thruster

import (
	"sort"

	"github.com/opd-ai/go-thrustalloc/pkg/physics"
)

// OwnerID is a stable identifier for a body part carrying mounts. Creation
// order works; any total order that persists across ticks does.
type OwnerID uint64

// MountID identifies one mount: the part that carries it plus its index in
// that part's mount list. Stable across ticks for an unchanged layout.
type MountID struct {
	Owner OwnerID
	Index int
}

// Mount is one unidirectional thruster: a fixed position and thrust
// direction in its owner's local frame, with a bounded rated thrust.
type Mount struct {
	LocalPosition   physics.Vector2D `json:"localPosition"`
	ThrustDirection physics.Vector2D `json:"thrustDirection"`
	MaxThrust       float64          `json:"maxThrust"`
}

// Owner is a body part (the controlled body itself or a rigidly attached
// sub-part) together with its transform into the body frame and the mounts
// it carries. The controlled body registers itself with the identity
// transform.
type Owner struct {
	ID        OwnerID
	Transform physics.Transform
	Mounts    []Mount
}

// Layout is the full mount configuration of one controlled body. Every
// structural mutation bumps a version counter; the controller compares the
// counter against the one recorded at last resolution to detect staleness.
type Layout struct {
	owners  []Owner
	version uint64
}

// NewLayout creates an empty layout at version 1 so that a zero "last
// resolved" version always reads as stale.
func NewLayout() *Layout {
	return &Layout{version: 1}
}

// Version returns the current topology generation
func (l *Layout) Version() uint64 {
	return l.version
}

// AddOwner registers a part and its mounts. Re-adding an existing ID
// replaces that owner's transform and mounts.
func (l *Layout) AddOwner(id OwnerID, transform physics.Transform, mounts ...Mount) {
	l.version++
	for i := range l.owners {
		if l.owners[i].ID == id {
			l.owners[i].Transform = transform
			l.owners[i].Mounts = append([]Mount(nil), mounts...)
			return
		}
	}
	l.owners = append(l.owners, Owner{
		ID:        id,
		Transform: transform,
		Mounts:    append([]Mount(nil), mounts...),
	})
	sort.Slice(l.owners, func(i, j int) bool {
		return l.owners[i].ID < l.owners[j].ID
	})
}

// RemoveOwner drops a part and all its mounts. Removing an unknown ID still
// bumps the version; callers treat any structural call as a mutation.
func (l *Layout) RemoveOwner(id OwnerID) {
	l.version++
	for i := range l.owners {
		if l.owners[i].ID == id {
			l.owners = append(l.owners[:i], l.owners[i+1:]...)
			return
		}
	}
}

// AddMount appends a mount to an existing owner and reports whether the
// owner was found.
func (l *Layout) AddMount(id OwnerID, mount Mount) bool {
	l.version++
	for i := range l.owners {
		if l.owners[i].ID == id {
			l.owners[i].Mounts = append(l.owners[i].Mounts, mount)
			return true
		}
	}
	return false
}

// RemoveMount removes the mount at index from an owner. Later mounts of the
// same owner shift down, so their MountIDs change with the version.
func (l *Layout) RemoveMount(id OwnerID, index int) bool {
	l.version++
	for i := range l.owners {
		if l.owners[i].ID != id {
			continue
		}
		if index < 0 || index >= len(l.owners[i].Mounts) {
			return false
		}
		l.owners[i].Mounts = append(l.owners[i].Mounts[:index], l.owners[i].Mounts[index+1:]...)
		return true
	}
	return false
}

// SetOwnerTransform updates a part's static transform relative to the body
func (l *Layout) SetOwnerTransform(id OwnerID, transform physics.Transform) bool {
	l.version++
	for i := range l.owners {
		if l.owners[i].ID == id {
			l.owners[i].Transform = transform
			return true
		}
	}
	return false
}

// Owners returns the parts in ID order. The slice is shared; callers must
// not mutate it.
func (l *Layout) Owners() []Owner {
	return l.owners
}
