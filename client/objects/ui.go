package objects

import (
	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
)

// UIObject hosts an ebitenui tree inside the object tree.
type UIObject struct {
	*BaseObject

	ui *ebitenui.UI
}

func NewUIObject(id string, ui *ebitenui.UI) *UIObject {
	return &UIObject{
		BaseObject: NewBaseObject(id, &NewBaseObjectOpts{ZIndex: 10}),
		ui:         ui,
	}
}

func (o *UIObject) Update() error {
	o.ui.Update()
	return nil
}

func (o *UIObject) Draw(screen *ebiten.Image) {
	o.ui.Draw(screen)
}
