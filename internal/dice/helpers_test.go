package dice_test

import (
	"fmt"
	"sync"
)

// faceSource replays a fixed list of die faces (1-based). It panics when the
// list is exhausted or a face exceeds the requested sides.
type faceSource struct {
	mu    sync.Mutex
	faces []int
	next  int
}

func newFaceSource(faces ...int) *faceSource {
	return &faceSource{faces: faces}
}

func (f *faceSource) Intn(n int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.next >= len(f.faces) {
		panic("faceSource: out of faces")
	}
	face := f.faces[f.next]
	f.next++
	if face < 1 || face > n {
		panic(fmt.Sprintf("faceSource: face %d outside [1, %d]", face, n))
	}
	return face - 1
}
