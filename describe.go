package protobind

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// Manifest lists the types of a registry as they are currently bound.
type Manifest struct {
	Types []TypeInfo `json:"types" jsonschema:"description=Registered types in registration order"`
}

// TypeInfo describes one registered type.
type TypeInfo struct {
	Name          string         `json:"name" jsonschema:"required"`
	Parent        string         `json:"parent,omitempty"`
	Initialized   bool           `json:"initialized"`
	Constructible bool           `json:"constructible" jsonschema:"description=Scripts may call T.new"`
	MinArgs       int            `json:"minArgs" jsonschema:"minimum=0"`
	Methods       []MethodInfo   `json:"methods,omitempty"`
	Statics       []MethodInfo   `json:"statics,omitempty"`
	Accessors     []AccessorInfo `json:"accessors,omitempty"`
}

// MethodInfo describes a bound method or static method.
type MethodInfo struct {
	Name    string      `json:"name" jsonschema:"required"`
	MinArgs int         `json:"minArgs" jsonschema:"minimum=0"`
	Params  []ParamInfo `json:"params,omitempty"`
}

// ParamInfo describes a declared parameter of a schema-bound method.
type ParamInfo struct {
	Name     string `json:"name"`
	Kind     string `json:"kind" jsonschema:"enum=any,enum=int,enum=double,enum=string,enum=bool,enum=object,enum=array"`
	Optional bool   `json:"optional,omitempty"`
	Type     string `json:"type,omitempty"`
}

// AccessorInfo describes an instance property.
type AccessorInfo struct {
	Name     string `json:"name" jsonschema:"required"`
	ReadOnly bool   `json:"readOnly,omitempty"`
}

// Describe returns the manifest of r. Methods and accessors appear once
// the initializers have run.
func (r *Registry) Describe() Manifest {
	var m Manifest
	for _, e := range r.Registrations() {
		m.Types = append(m.Types, e.Descriptor.info())
	}
	return m
}

func (d *Descriptor) info() TypeInfo {
	ti := TypeInfo{
		Name:          d.name,
		Initialized:   d.Initialized(),
		Constructible: d.Constructible(),
	}
	if d.ctor != nil {
		ti.MinArgs = d.ctor.MinArgs
	}
	if d.parent != nil {
		ti.Parent = d.parent.name
	}
	for _, name := range d.methodOrder {
		ti.Methods = append(ti.Methods, methodInfo(name, d.methods[name]))
	}
	for _, name := range d.staticOrder {
		ti.Statics = append(ti.Statics, methodInfo(name, d.statics[name]))
	}
	for _, name := range d.accessorOrder {
		ti.Accessors = append(ti.Accessors, AccessorInfo{Name: name, ReadOnly: d.accessors[name].set == nil})
	}
	return ti
}

func methodInfo(name string, m method) MethodInfo {
	mi := MethodInfo{Name: name, MinArgs: m.minArgs}
	for _, p := range m.params {
		pi := ParamInfo{Name: p.Name, Kind: p.Kind.String(), Optional: p.Optional}
		if p.Type != nil {
			pi.Type = p.Type.descriptor().name
		}
		mi.Params = append(mi.Params, pi)
	}
	return mi
}

// JSON returns the manifest as indented JSON.
func (m Manifest) JSON() ([]byte, error) {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal manifest: %w", err)
	}
	return b, nil
}

// ManifestSchema returns the JSON schema of Manifest.
func ManifestSchema() ([]byte, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct: true,
	}
	schema := reflector.Reflect(&Manifest{})

	b, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return b, nil
}
