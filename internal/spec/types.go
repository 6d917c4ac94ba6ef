package spec

// Tag is the closed set of type kinds a declaration can use.
type Tag uint8

const (
	// TagInvalid is the zero value; it never survives loading.
	TagInvalid Tag = iota
	Int32
	Int64
	Float32
	Float64
	// RawPointer is a 32-bit offset into guest linear memory.
	RawPointer
	// StructByValue is a struct passed or returned by value.
	StructByValue
	// Void is only legal as a return type.
	Void
)

var tagNames = [...]string{
	TagInvalid:    "Invalid",
	Int32:         "Int32",
	Int64:         "Int64",
	Float32:       "Float32",
	Float64:       "Float64",
	RawPointer:    "RawPointer",
	StructByValue: "StructByValue",
	Void:          "Void",
}

var tagLetters = [...]string{
	Int32:         "i",
	Int64:         "I",
	Float32:       "f",
	Float64:       "F",
	RawPointer:    "p",
	StructByValue: "S",
	Void:          "v",
}

func (t Tag) String() string {
	if int(t) < len(tagNames) {
		return tagNames[t]
	}
	return tagNames[TagInvalid]
}

// Letter returns the single-character form used in spec files.
func (t Tag) Letter() string {
	if t != TagInvalid && int(t) < len(tagLetters) {
		return tagLetters[t]
	}
	return "?"
}

// IsScalar reports whether t is carried directly in one value slot.
func (t Tag) IsScalar() bool {
	switch t {
	case Int32, Int64, Float32, Float64:
		return true
	}
	return false
}

// ParseTag decodes a spec-file tag letter.
func ParseTag(letter string) (Tag, bool) {
	for t, l := range tagLetters {
		if l != "" && l == letter {
			return Tag(t), true
		}
	}
	return TagInvalid, false
}

// TypeDescriptor describes one parameter or return type.
type TypeDescriptor struct {
	Tag Tag
	// NativeTypeName is the guest-side (C) type name.
	NativeTypeName string
	// NativeTypeNameOverride is the host-side (Go) type name, if it differs.
	NativeTypeNameOverride string
}

// HostTypeName returns the Go type the host native function uses.
func (d TypeDescriptor) HostTypeName() string {
	if d.NativeTypeNameOverride != "" {
		return d.NativeTypeNameOverride
	}
	switch d.Tag {
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case RawPointer:
		return "[]byte"
	case StructByValue:
		return d.NativeTypeName
	}
	return ""
}

// GuestTypeName returns the C type the guest uses.
func (d TypeDescriptor) GuestTypeName() string {
	if d.Tag == Void && d.NativeTypeName == "" {
		return "void"
	}
	return d.NativeTypeName
}

// Parameter is one declared argument.
type Parameter struct {
	Name string
	Type TypeDescriptor
}

// Declaration is one function exposed across the guest/host boundary.
type Declaration struct {
	// Name is the import-visible identifier.
	Name string
	// NativeName is the host function called by the trampoline.
	NativeName   string
	Return       TypeDescriptor
	Params       []Parameter
	GenerateStub bool
}
