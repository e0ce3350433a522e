package assets

import (
	"fmt"

	"github.com/spaghettifunk/bricklayer/engine/containers"
)

// RequestKind says which half of an asset slot a reload targets.
type RequestKind uint8

const (
	RequestMesh RequestKind = iota
	RequestTexture
)

func (k RequestKind) String() string {
	switch k {
	case RequestMesh:
		return "mesh"
	case RequestTexture:
		return "texture"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// ReloadRequest asks the dispatcher to re-decode and re-commit one
// asset kind for one slot. Requests are consumed exactly once and
// duplicates are harmless since a reload is idempotent.
type ReloadRequest struct {
	Slot int
	Kind RequestKind
	Path string
}

// ReloadQueue bridges the watcher goroutine (producer) and the render
// thread (consumer). It carries its own synchronization so producers
// are never blocked behind a slow decode.
type ReloadQueue struct {
	stack *containers.Stack[ReloadRequest]
}

func NewReloadQueue() *ReloadQueue {
	return &ReloadQueue{stack: containers.NewStack[ReloadRequest]()}
}

func (q *ReloadQueue) Push(req ReloadRequest) {
	q.stack.Push(req)
}

func (q *ReloadQueue) Pop() (ReloadRequest, bool) {
	return q.stack.Pop()
}

func (q *ReloadQueue) Len() int {
	return q.stack.Len()
}
