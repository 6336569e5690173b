package ctxutil

// Key is a key for context values.
type Key interface {
	String() string
}

// SimpleKey is a string based context key.
type SimpleKey string

func (k SimpleKey) String() string {
	return string(k)
}
