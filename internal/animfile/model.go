package animfile

// File is the on-disk shape of a document. Numbers are decoded leniently, so
// keys and values may be written as numbers or numeric strings.
type File struct {
	Animated []Animated `yaml:"animated,omitempty" toml:"animated,omitempty"`
	Curves   []Curve    `yaml:"curves,omitempty" toml:"curves,omitempty"`
	Clips    []Clip     `yaml:"clips,omitempty" toml:"clips,omitempty"`
}

type Animated struct {
	Name   string `yaml:"name" toml:"name"`
	Values []any  `yaml:"values,flow" toml:"values"`
}

// Ref names a component of an animated value.
type Ref struct {
	Animated  string `yaml:"animated" toml:"animated"`
	Component int    `yaml:"component" toml:"component"`
}

type Curve struct {
	ID             string   `yaml:"id" toml:"id"`
	Target         *Ref     `yaml:"target,omitempty" toml:"target,omitempty"`
	Driver         *Ref     `yaml:"driver,omitempty" toml:"driver,omitempty"`
	PreInfinity    string   `yaml:"pre_infinity,omitempty" toml:"pre_infinity,omitempty"`
	PostInfinity   string   `yaml:"post_infinity,omitempty" toml:"post_infinity,omitempty"`
	Keys           []any    `yaml:"keys,flow" toml:"keys"`
	Values         []any    `yaml:"values,flow" toml:"values"`
	Interpolations []string `yaml:"interpolations,omitempty,flow" toml:"interpolations,omitempty"`
	InTangents     [][]any  `yaml:"in_tangents,omitempty,flow" toml:"in_tangents,omitempty"`
	OutTangents    [][]any  `yaml:"out_tangents,omitempty,flow" toml:"out_tangents,omitempty"`
	CurrentClip    string   `yaml:"current_clip,omitempty" toml:"current_clip,omitempty"`
	CurrentOffset  any      `yaml:"current_offset,omitempty" toml:"current_offset,omitempty"`
}

type Clip struct {
	Name    string         `yaml:"name" toml:"name"`
	Start   any            `yaml:"start" toml:"start"`
	End     any            `yaml:"end" toml:"end"`
	Curves  []string       `yaml:"curves,omitempty,flow" toml:"curves,omitempty"`
	Offsets map[string]any `yaml:"offsets,omitempty" toml:"offsets,omitempty"`
}
