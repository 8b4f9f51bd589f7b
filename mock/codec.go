package mock

import "github.com/fwojciec/serpdump"

var _ serpdump.Encoder = (*Encoder)(nil)

// Encoder is a mock implementation of serpdump.Encoder.
type Encoder struct {
	FormatFn func() serpdump.Format
	EncodeFn func(records []serpdump.Record) ([]byte, error)
}

func (e *Encoder) Format() serpdump.Format {
	return e.FormatFn()
}

func (e *Encoder) Encode(records []serpdump.Record) ([]byte, error) {
	return e.EncodeFn(records)
}
