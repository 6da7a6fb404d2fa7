package scenes

import (
	"github.com/cbodonnell/reels/client/objects"
	"github.com/hajimehoshi/ebiten/v2"
)

// Scene is one screen of the machine. The game runs exactly one at a time.
type Scene interface {
	objects.Lifecycle

	// GetRoot returns the object tree the scene updates and draws.
	GetRoot() objects.GameObject
}

// BaseScene runs the lifecycle of a scene by walking its object tree, so a
// scene only needs to build the tree and add its own behavior on top.
type BaseScene struct {
	Root objects.GameObject
}

func NewBaseScene(root objects.GameObject) *BaseScene {
	return &BaseScene{
		Root: root,
	}
}

func (s *BaseScene) GetRoot() objects.GameObject {
	return s.Root
}

func (s *BaseScene) Init() error {
	return objects.InitTree(s.Root)
}

func (s *BaseScene) Destroy() error {
	return objects.DestroyTree(s.Root)
}

func (s *BaseScene) Update() error {
	return objects.UpdateTree(s.Root)
}

func (s *BaseScene) Draw(screen *ebiten.Image) {
	objects.DrawTree(s.Root, screen)
}
