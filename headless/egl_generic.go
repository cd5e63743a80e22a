//go:build !linux

package headless

import (
	"github.com/pkg/errors"
)

func New(width, height int) (Surface, error) {
	return nil, errors.New("egl headless rendering is not supported on this platform")
}
