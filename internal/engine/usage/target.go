// Package usage finds references to one library interface inside parsed
// Python files. Binding (imports → qualified origins) and scanning (calls and
// class bases) run independently per file.
package usage

import (
	"fmt"
	"strings"
	"unicode"

	"ifacescan/internal/core/errors"
)

type TargetKind string

const (
	// KindAuto treats names starting with an upper-case letter as classes.
	KindAuto     TargetKind = "auto"
	KindFunction TargetKind = "function"
	KindClass    TargetKind = "class"
)

func ParseTargetKind(raw string) (TargetKind, error) {
	switch TargetKind(strings.ToLower(strings.TrimSpace(raw))) {
	case "", KindAuto:
		return KindAuto, nil
	case KindFunction:
		return KindFunction, nil
	case KindClass:
		return KindClass, nil
	}
	return "", errors.New(errors.CodeValidationError, fmt.Sprintf("unknown target kind %q (want auto, function or class)", raw))
}

// TargetSpec identifies the interface being searched for.
type TargetSpec struct {
	InterfaceName string
	LibraryName   string
	Kind          TargetKind
}

func NewTargetSpec(interfaceName, libraryName string, kind TargetKind) (TargetSpec, error) {
	interfaceName = strings.TrimSpace(interfaceName)
	libraryName = strings.TrimSpace(libraryName)
	if kind == "" {
		kind = KindAuto
	}

	if interfaceName == "" {
		return TargetSpec{}, errors.New(errors.CodeValidationError, "interface name must not be empty")
	}
	if !isIdentifier(interfaceName) {
		return TargetSpec{}, errors.New(errors.CodeValidationError, fmt.Sprintf("interface name %q is not a valid identifier", interfaceName))
	}
	if libraryName == "" {
		return TargetSpec{}, errors.New(errors.CodeValidationError, "library name must not be empty")
	}
	for _, part := range strings.Split(libraryName, ".") {
		if !isIdentifier(part) {
			return TargetSpec{}, errors.New(errors.CodeValidationError, fmt.Sprintf("library name %q is not a dotted module path", libraryName))
		}
	}
	if _, err := ParseTargetKind(string(kind)); err != nil {
		return TargetSpec{}, err
	}

	return TargetSpec{InterfaceName: interfaceName, LibraryName: libraryName, Kind: kind}, nil
}

// Qualified is the dotted identity library.interface.
func (t TargetSpec) Qualified() string {
	return t.LibraryName + "." + t.InterfaceName
}

func (t TargetSpec) String() string {
	return t.Qualified()
}

// IsClass reports whether class bases are inspected for this target.
func (t TargetSpec) IsClass() bool {
	switch t.Kind {
	case KindClass:
		return true
	case KindFunction:
		return false
	}
	for _, r := range t.InterfaceName {
		return unicode.IsUpper(r)
	}
	return false
}

func isIdentifier(value string) bool {
	if value == "" {
		return false
	}
	for i, r := range value {
		if r == '_' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}
