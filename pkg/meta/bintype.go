package meta

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownEnum is returned when a dump names an enum value this package does
// not know.
var ErrUnknownEnum = errors.New("unknown enum value")

// BinType is the value type of a bin property.
type BinType uint8

// Bin types. Container types have the high bit set.
const (
	BinNone    BinType = 0
	BinBool    BinType = 1
	BinI8      BinType = 2
	BinU8      BinType = 3
	BinI16     BinType = 4
	BinU16     BinType = 5
	BinI32     BinType = 6
	BinU32     BinType = 7
	BinI64     BinType = 8
	BinU64     BinType = 9
	BinF32     BinType = 10
	BinVec2    BinType = 11
	BinVec3    BinType = 12
	BinVec4    BinType = 13
	BinMtx44   BinType = 14
	BinColor   BinType = 15
	BinString  BinType = 16
	BinHash    BinType = 17
	BinFile    BinType = 18
	BinList    BinType = 0x80
	BinList2   BinType = 0x80 | 1
	BinPointer BinType = 0x80 | 2
	BinEmbed   BinType = 0x80 | 3
	BinLink    BinType = 0x80 | 4
	BinOption  BinType = 0x80 | 5
	BinMap     BinType = 0x80 | 6
	BinFlag    BinType = 0x80 | 7
)

//nolint:gochecknoglobals // Read-only name table.
var binTypeNames = map[BinType]string{
	BinNone: "None", BinBool: "Bool", BinI8: "I8", BinU8: "U8", BinI16: "I16",
	BinU16: "U16", BinI32: "I32", BinU32: "U32", BinI64: "I64", BinU64: "U64",
	BinF32: "F32", BinVec2: "Vec2", BinVec3: "Vec3", BinVec4: "Vec4",
	BinMtx44: "Mtx44", BinColor: "Color", BinString: "String", BinHash: "Hash",
	BinFile: "File", BinList: "List", BinList2: "List2", BinPointer: "Pointer",
	BinEmbed: "Embed", BinLink: "Link", BinOption: "Option", BinMap: "Map",
	BinFlag: "Flag",
}

// IsContainer reports whether t holds other values.
func (t BinType) IsContainer() bool {
	return t&0x80 != 0
}

func (t BinType) String() string {
	if name, ok := binTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("BinType(%d)", uint8(t))
}

// MarshalText implements encoding.TextMarshaler.
func (t BinType) MarshalText() ([]byte, error) {
	if _, ok := binTypeNames[t]; !ok {
		return nil, fmt.Errorf("bin type %d: %w", uint8(t), ErrUnknownEnum)
	}
	return []byte(t.String()), nil
}

// UnmarshalJSON accepts the variant name or its numeric value.
func (t *BinType) UnmarshalJSON(data []byte) error {
	var num uint8
	if err := json.Unmarshal(data, &num); err == nil {
		if _, ok := binTypeNames[BinType(num)]; !ok {
			return fmt.Errorf("bin type %d: %w", num, ErrUnknownEnum)
		}
		*t = BinType(num)
		return nil
	}
	return unmarshalName(data, binTypeNames, t, "bin type")
}

// ContainerStorage is the memory layout of a container property.
type ContainerStorage uint8

// Container storage kinds.
const (
	StorageUnknownVector ContainerStorage = iota
	StorageOption
	StorageFixed
	StorageStdVector
	StorageRitoVector
)

//nolint:gochecknoglobals // Read-only name table.
var containerStorageNames = map[ContainerStorage]string{
	StorageUnknownVector: "UnknownVector",
	StorageOption:        "Option",
	StorageFixed:         "Fixed",
	StorageStdVector:     "StdVector",
	StorageRitoVector:    "RitoVector",
}

func (s ContainerStorage) String() string {
	return containerStorageNames[s]
}

// MarshalText implements encoding.TextMarshaler.
func (s ContainerStorage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalJSON accepts the variant name.
func (s *ContainerStorage) UnmarshalJSON(data []byte) error {
	return unmarshalName(data, containerStorageNames, s, "container storage")
}

// MapStorage is the memory layout of a map property.
type MapStorage uint8

// Map storage kinds.
const (
	StorageUnknownMap MapStorage = iota
	StorageStdMap
	StorageStdUnorderedMap
	StorageRitoVectorMap
)

//nolint:gochecknoglobals // Read-only name table.
var mapStorageNames = map[MapStorage]string{
	StorageUnknownMap:      "UnknownMap",
	StorageStdMap:          "StdMap",
	StorageStdUnorderedMap: "StdUnorderedMap",
	StorageRitoVectorMap:   "RitoVectorMap",
}

func (s MapStorage) String() string {
	return mapStorageNames[s]
}

// MarshalText implements encoding.TextMarshaler.
func (s MapStorage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalJSON accepts the variant name.
func (s *MapStorage) UnmarshalJSON(data []byte) error {
	return unmarshalName(data, mapStorageNames, s, "map storage")
}

func unmarshalName[T comparable](data []byte, names map[T]string, out *T, what string) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	for value, candidate := range names {
		if candidate == name {
			*out = value
			return nil
		}
	}
	return fmt.Errorf("%s %q: %w", what, name, ErrUnknownEnum)
}
