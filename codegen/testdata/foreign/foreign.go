// Package foreign decodes fields whose sum type is declared in another
// package.
package foreign

import (
	"github.com/wippyai/itf/decoder"
	"github.com/wippyai/itf/examples/sumtypes"
)

//itf:decode
type Board struct {
	Main   sumtypes.Shape
	Pieces []sumtypes.Shape
	Spare  decoder.Option[sumtypes.Shape]
	Note   Note
}

// Note is decoded by reflection; its sum field is skipped.
type Note struct {
	Text  string
	Shape sumtypes.Shape `itf:"-"`
}
