// Package problem holds the host-agnostic problem statement handed to language generators.
package problem

// Kind is the semantic type of a return value or parameter.
type Kind int

const (
	KindInvalid Kind = iota
	KindChar
	KindCharArray
	KindInt
	KindIntArray
	KindLong
	KindLongArray
	KindDouble
	KindDoubleArray
	KindString
	KindStringArray
)

var kindNames = map[Kind]string{
	KindChar:        "char",
	KindCharArray:   "char[]",
	KindInt:         "int",
	KindIntArray:    "int[]",
	KindLong:        "long",
	KindLongArray:   "long[]",
	KindDouble:      "double",
	KindDoubleArray: "double[]",
	KindString:      "String",
	KindStringArray: "String[]",
}

// String returns the host descriptor of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "invalid"
}

// Valid reports whether k is one of the supported kinds.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// IsArray reports whether k is an array kind.
func (k Kind) IsArray() bool {
	switch k {
	case KindCharArray, KindIntArray, KindLongArray, KindDoubleArray, KindStringArray:
		return true
	}
	return false
}

// Elem returns the element kind of an array kind, or k itself.
func (k Kind) Elem() Kind {
	switch k {
	case KindCharArray:
		return KindChar
	case KindIntArray:
		return KindInt
	case KindLongArray:
		return KindLong
	case KindDoubleArray:
		return KindDouble
	case KindStringArray:
		return KindString
	}
	return k
}

// Kinds returns every supported kind in declaration order.
func Kinds() []Kind {
	return []Kind{
		KindChar, KindCharArray,
		KindInt, KindIntArray,
		KindLong, KindLongArray,
		KindDouble, KindDoubleArray,
		KindString, KindStringArray,
	}
}
