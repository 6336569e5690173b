package database

// Database is a durable store for typed objects keyed by
// (type, namespace, name). Implementations are safe for
// concurrent use.
type Database[O Object] interface {
	Scheme() Scheme[O]

	// ListObjectIds lists the objects of a type in a namespace.
	// An empty namespace lists the objects of all namespaces.
	ListObjectIds(typ, ns string) ([]ObjectId, error)
	ListObjects(typ, ns string) ([]O, error)

	// GetObject fails with ErrNotExist for unknown objects.
	GetObject(id ObjectId) (O, error)
	SetObject(o O) error
	DeleteObject(id ObjectId) error

	Close() error
}

// Specification describes a database and creates instances of it.
type Specification[O Object] interface {
	Create(s Scheme[O]) (Database[O], error)
}
