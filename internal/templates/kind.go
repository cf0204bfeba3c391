package templates

import "fmt"

// Kind identifies one of the fixed sample file templates
type Kind int

const (
	Dataclass Kind = iota
	Protocol
	Service
	TypedDict
	Utils

	kindCount
)

var kindKeys = [kindCount]string{
	Dataclass: "dataclass",
	Protocol:  "protocol",
	Service:   "service",
	TypedDict: "typeddict",
	Utils:     "utils",
}

// Kinds returns every kind in round-robin order
func Kinds() []Kind {
	return []Kind{Dataclass, Protocol, Service, TypedDict, Utils}
}

// ForIndex selects the kind for the file at index by cycling through Kinds
func ForIndex(index int) Kind {
	k := index % int(kindCount)
	if k < 0 {
		k += int(kindCount)
	}
	return Kind(k)
}

// Valid reports whether k is one of the defined kinds
func (k Kind) Valid() bool {
	return k >= 0 && k < kindCount
}

// Key returns the kind's name as used in file names
func (k Kind) Key() string {
	if !k.Valid() {
		return ""
	}
	return kindKeys[k]
}

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindKeys[k]
}

// FileName returns the name of the generated file for this kind at index.
// Indices are padded to two digits; wider indices are written in full.
func (k Kind) FileName(index int) string {
	return fmt.Sprintf("%s_%02d.py", k.Key(), index)
}
