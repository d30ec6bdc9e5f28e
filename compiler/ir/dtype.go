package ir

import "tlog.app/go/errors"

type DType int

const (
	Invalid DType = iota
	Int8
	Uint8
	Int16
	Int32
	Float32
)

var dtypeNames = []string{
	Invalid: "invalid",
	Int8:    "int8",
	Uint8:   "uint8",
	Int16:   "int16",
	Int32:   "int32",
	Float32: "float32",
}

// Size returns the element size in bytes, 0 for unknown types.
func (t DType) Size() int {
	switch t {
	case Int8, Uint8:
		return 1
	case Int16:
		return 2
	case Int32, Float32:
		return 4
	default:
		return 0
	}
}

func (t DType) String() string {
	if t >= 0 && int(t) < len(dtypeNames) {
		return dtypeNames[t]
	}

	return "unknown"
}

func ParseDType(s string) (DType, error) {
	for t, n := range dtypeNames {
		if t != int(Invalid) && n == s {
			return DType(t), nil
		}
	}

	return Invalid, errors.New("unknown dtype: %q", s)
}
