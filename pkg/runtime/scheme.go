package runtime

import (
	"fmt"

	"sigs.k8s.io/yaml"
)

// Scheme decodes YAML or JSON documents into registered types
// selected by the type attribute of the document.
type Scheme[E Object] interface {
	Types[E]

	Decode(data []byte) (E, error)
	Encode(o E) ([]byte, error)
}

type scheme[E Object] struct {
	*types[E]
}

var _ Scheme[Object] = (*scheme[Object])(nil)

func NewYAMLScheme[E Object]() Scheme[E] {
	return &scheme[E]{newTypes[E]()}
}

func (s *scheme[E]) Decode(data []byte) (E, error) {
	var _nil E
	var meta ObjectMeta

	if err := yaml.Unmarshal(data, &meta); err != nil {
		return _nil, err
	}
	if meta.Type == "" {
		return _nil, fmt.Errorf("type attribute missing")
	}
	o, err := s.CreateObject(meta.Type)
	if err != nil {
		return _nil, err
	}
	if err := yaml.Unmarshal(data, o); err != nil {
		return _nil, fmt.Errorf("cannot decode %s: %w", meta.Type, err)
	}
	return o, nil
}

func (s *scheme[E]) Encode(o E) ([]byte, error) {
	if !s.HasType(o.GetType()) {
		return nil, fmt.Errorf("unknown object type %q", o.GetType())
	}
	return yaml.Marshal(o)
}
