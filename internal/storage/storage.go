// Package storage provides the artifact storage abstraction shared by the
// capture orchestrator and comparison engines.
package storage

// Kind identifies one of the artifact directories.
type Kind string

const (
	// KindBase holds accepted baseline screenshots.
	KindBase Kind = "base"
	// KindCurrent holds screenshots from the in-progress run.
	KindCurrent Kind = "current"
	// KindDiff holds generated difference images.
	KindDiff Kind = "diff"
)

// Kinds lists all artifact kinds.
var Kinds = []Kind{KindBase, KindCurrent, KindDiff}

// Store is the artifact storage backend. Comparison engines and the
// orchestrator never touch a concrete filesystem directly, only this
// interface, so backends are swappable.
type Store interface {
	// List returns the artifact names present under kind, sorted.
	List(kind Kind) ([]string, error)
	// Read returns the artifact bytes. A missing artifact yields an error
	// satisfying errors.Is(err, fs.ErrNotExist).
	Read(kind Kind, name string) ([]byte, error)
	// Write persists the artifact atomically and returns its location.
	Write(kind Kind, name string, data []byte) (string, error)
	// Remove deletes the artifact. Removing a missing artifact is not an
	// error.
	Remove(kind Kind, name string) error
}
