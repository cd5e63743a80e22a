// Package headless provides a windowless GL context for rendering straight
// to a capture.
package headless

import (
	"github.com/richinsley/ckrl/device"
	"github.com/richinsley/ckrl/graphics"
)

// Surface is a headless graphics.Context together with its GL table.
type Surface interface {
	graphics.Context
	API() device.API
}
