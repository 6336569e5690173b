package runtime

// Object is a record carrying its type name.
type Object interface {
	GetType() string
	SetType(string)
}

// ObjectMeta can be embedded into records to provide the
// type attribute.
type ObjectMeta struct {
	Type string `json:"type"`
}

var _ Object = (*ObjectMeta)(nil)

func (o *ObjectMeta) GetType() string {
	return o.Type
}

func (o *ObjectMeta) SetType(t string) {
	o.Type = t
}
