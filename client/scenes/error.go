package scenes

import "github.com/cbodonnell/reels/client/objects"

// ErrorScene replaces the machine when the authority cannot be reached.
type ErrorScene struct {
	*BaseScene
}

var _ Scene = &ErrorScene{}

// NewErrorScene shows msg with a hint on how to continue.
func NewErrorScene(msg string, hint string) (Scene, error) {
	return &ErrorScene{
		BaseScene: NewBaseScene(objects.NewTextOverlayObject("overlay-error", msg, hint)),
	}, nil
}
