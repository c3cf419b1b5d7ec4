// SPDX-License-Identifier: MIT

package provider

import (
	"github.com/katalvlaran/georef/operation"
)

// All returns the providers of this package.
func All() []operation.Provider {
	return []operation.Provider{TransverseMercator{}, PseudoMercator{}, GeographicOffsets{}}
}

// Register adds every provider of this package to f.
func Register(f *operation.MathTransformFactory) error {
	for _, p := range All() {
		if err := f.Register(p); err != nil {
			return err
		}
	}

	return nil
}

// NewFactory returns a factory holding every provider of this package.
func NewFactory(opts ...operation.Option) (*operation.MathTransformFactory, error) {
	f := operation.NewMathTransformFactory(opts...)
	if err := Register(f); err != nil {
		return nil, err
	}

	return f, nil
}
