package utils

import (
	"time"

	v1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// Timestamp is a UTC time rounded to seconds and serialized
// in RFC 3339 format.
type Timestamp struct {
	v1.Time `json:",inline"`
}

func NewTimestamp() Timestamp {
	return NewTimestampFor(time.Now())
}

func NewTimestampFor(t time.Time) Timestamp {
	return Timestamp{v1.NewTime(t.UTC().Round(time.Second))}
}

func (t Timestamp) String() string {
	return t.Format(time.RFC3339)
}

