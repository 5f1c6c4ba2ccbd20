package testutil

import (
	"context"
	"io/fs"
	"sync"

	"github.com/arthur-debert/cogsync/pkg/fsops"
)

// CountingWriter records every copy before delegating to Next. A nil Next
// uses the real synthfs writer.
type CountingWriter struct {
	Next fsops.Writer

	// FailOn makes copies to these destinations fail with the given error.
	FailOn map[string]error

	mu     sync.Mutex
	Copies []Copy
}

// Copy is one recorded CopyFile call.
type Copy struct {
	Src, Dst string
	Mode     fs.FileMode
}

// CopyFile implements fsops.Writer.
func (w *CountingWriter) CopyFile(ctx context.Context, src, dst string, mode fs.FileMode) error {
	w.mu.Lock()
	w.Copies = append(w.Copies, Copy{Src: src, Dst: dst, Mode: mode})
	failErr := w.FailOn[dst]
	if w.Next == nil {
		w.Next = fsops.New()
	}
	next := w.Next
	w.mu.Unlock()

	if failErr != nil {
		return failErr
	}
	return next.CopyFile(ctx, src, dst, mode)
}

// Count returns the number of recorded copies.
func (w *CountingWriter) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.Copies)
}

// Reset forgets recorded copies.
func (w *CountingWriter) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Copies = nil
}
