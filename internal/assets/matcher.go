package assets

import "talisman/internal/imaging"

// Matcher is a pure predicate over an item record, used both for selection
// and for gating postprocess transforms.
type Matcher interface {
	Matches(file *File) bool
}

// MatcherFunc adapts a function to the Matcher interface.
type MatcherFunc func(file *File) bool

func (f MatcherFunc) Matches(file *File) bool {
	return f(file)
}

// IDPrefix matches records whose ID decodes and starts with prefix.
func IDPrefix(prefix string) Matcher {
	return MatcherFunc(func(file *File) bool {
		return file.ID.HasPrefix(prefix)
	})
}

// KindIs matches records of the given kind.
func KindIs(kind Kind) Matcher {
	return MatcherFunc(func(file *File) bool {
		return file.Kind == kind
	})
}

// Transform mutates a decoded image. A failed transform aborts only the
// owning record unless the pipeline runs in strict mode.
type Transform interface {
	Apply(img *imaging.Image) error
}

// TransformFunc adapts a function to the Transform interface.
type TransformFunc func(img *imaging.Image) error

func (f TransformFunc) Apply(img *imaging.Image) error {
	return f(img)
}
