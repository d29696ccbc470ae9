// Package meta loads the class metadata dump of the game and answers class
// lookups for hover.
package meta

// DumpFile is the top-level document of a metadata dump.
type DumpFile struct {
	// Version is the game version the dump was taken from, or "unknown".
	Version string            `json:"version"`
	Classes map[string]*Class `json:"classes"`
}

// Class describes a bin class. It is read-only after loading.
type Class struct {
	Base              *string             `json:"base,omitempty"     yaml:"base,omitempty"`
	SecondaryBases    map[string]uint32   `json:"secondary_bases"    yaml:"secondary_bases,omitempty"`
	SecondaryChildren map[string]uint32   `json:"secondary_children" yaml:"secondary_children,omitempty"`
	Size              uint32              `json:"size"               yaml:"size"`
	Alignment         uint32              `json:"alignment"          yaml:"alignment"`
	Is                ClassFlags          `json:"is"                 yaml:"is"`
	Functions         ClassFunctions      `json:"fn"                 yaml:"fn"`
	Properties        map[string]Property `json:"properties"         yaml:"properties,omitempty"`
	Defaults          map[string]any      `json:"defaults,omitempty" yaml:"defaults,omitempty"`
}

// ClassFlags are the structural flags of a class.
type ClassFlags struct {
	Interface     bool `json:"interface"      yaml:"interface"`
	Value         bool `json:"value"          yaml:"value"`
	SecondaryBase bool `json:"secondary_base" yaml:"secondary_base"`
	Unk5          bool `json:"unk5"           yaml:"unk5"`
}

// ClassFunctions holds the symbol names of the class's special functions.
type ClassFunctions struct {
	UpcastSecondary    *string `json:"upcast_secondary,omitempty"    yaml:"upcast_secondary,omitempty"`
	Constructor        *string `json:"constructor,omitempty"         yaml:"constructor,omitempty"`
	Destructor         *string `json:"destructor,omitempty"          yaml:"destructor,omitempty"`
	InplaceConstructor *string `json:"inplace_constructor,omitempty" yaml:"inplace_constructor,omitempty"`
	InplaceDestructor  *string `json:"inplace_destructor,omitempty"  yaml:"inplace_destructor,omitempty"`
	Register           *string `json:"register,omitempty"            yaml:"register,omitempty"`
}

// Property describes one field of a class.
type Property struct {
	OtherClass *string            `json:"other_class,omitempty" yaml:"other_class,omitempty"`
	Offset     uint32             `json:"offset"                yaml:"offset"`
	Bitmask    uint8              `json:"bitmask"               yaml:"bitmask"`
	ValueType  BinType            `json:"value_type"            yaml:"value_type"`
	Container  *PropertyContainer `json:"container,omitempty"   yaml:"container,omitempty"`
	Map        *PropertyMap       `json:"map,omitempty"         yaml:"map,omitempty"`
	UnkPtr     string             `json:"unkptr"                yaml:"unkptr"`
}

// PropertyContainer describes list-like storage of a property.
type PropertyContainer struct {
	VTable    string            `json:"vtable"            yaml:"vtable"`
	ValueType BinType           `json:"value_type"        yaml:"value_type"`
	ValueSize uint64            `json:"value_size"        yaml:"value_size"`
	FixedSize *uint64           `json:"fixed_size"        yaml:"fixed_size,omitempty"`
	Storage   *ContainerStorage `json:"storage,omitempty" yaml:"storage,omitempty"`
}

// PropertyMap describes map storage of a property.
type PropertyMap struct {
	VTable    string     `json:"vtable"     yaml:"vtable"`
	KeyType   BinType    `json:"key_type"   yaml:"key_type"`
	ValueType BinType    `json:"value_type" yaml:"value_type"`
	Storage   MapStorage `json:"storage"    yaml:"storage"`
}
