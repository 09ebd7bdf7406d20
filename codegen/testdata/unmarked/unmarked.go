// Package unmarked nests a sum inside a type without a directive.
package unmarked

import "github.com/wippyai/itf/examples/sumtypes"

//itf:decode
type Scene struct {
	Layers []Layer
}

type Layer struct {
	Name  string
	Shape sumtypes.Shape
}
