package objects

import (
	"slices"
)

// SortedZIndexObject draws its children in ascending z-index order.
// Children with equal z-index keep insertion order.
type SortedZIndexObject struct {
	*BaseObject

	sorted []GameObject
}

var _ GameObject = &SortedZIndexObject{}

func NewSortedZIndexObject(id string) *SortedZIndexObject {
	return &SortedZIndexObject{
		BaseObject: NewBaseObject(id, nil),
	}
}

func (o *SortedZIndexObject) AddChild(id string, child GameObject) error {
	if err := o.BaseObject.AddChild(id, child); err != nil {
		return err
	}
	// children must detach through the sorted list
	child.SetParent(o)

	at := slices.IndexFunc(o.sorted, func(obj GameObject) bool {
		return obj.GetZIndex() > child.GetZIndex()
	})
	if at < 0 {
		at = len(o.sorted)
	}
	o.sorted = slices.Insert(o.sorted, at, child)
	return nil
}

func (o *SortedZIndexObject) RemoveChild(id string) error {
	if err := o.BaseObject.RemoveChild(id); err != nil {
		return err
	}
	o.sorted = slices.DeleteFunc(o.sorted, func(obj GameObject) bool {
		return obj.GetID() == id
	})
	return nil
}

func (o *SortedZIndexObject) GetChildren() []GameObject {
	return o.sorted
}
