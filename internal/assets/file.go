package assets

import "talisman/internal/dat"

// Kind tags a record's provenance: the base item tables or the unique stash
// layout. It only participates in matching, never in resolution.
type Kind int

const (
	KindBase Kind = iota
	KindUnique
)

func (k Kind) String() string {
	switch k {
	case KindBase:
		return "base"
	case KindUnique:
		return "unique"
	default:
		return "unknown"
	}
}

// File is the unit the pipeline operates on: one item record unified from
// either source table. VisualIdentity is an unchecked foreign key into the
// ItemVisualIdentity table; ID and Name are fallible text handles.
type File struct {
	Kind           Kind
	ID             dat.String
	VisualIdentity uint64
	Name           dat.String
}
