package mock

import "github.com/fwojciec/doxindex"

var _ doxindex.Converter = (*Converter)(nil)

// Converter is a mock implementation of doxindex.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
