// Package translator holds the process wide shader translator used to turn
// ESSL 3.00 sources into desktop GLSL.
package translator

import (
	"context"
	"fmt"
	"sync"

	"github.com/richinsley/ckrl/logging"
	gst "github.com/richinsley/goshadertranslator"
)

var (
	once       sync.Once
	translator *gst.ShaderTranslator
	initErr    error
)

// GetTranslator creates the translator on first use.
func GetTranslator() (*gst.ShaderTranslator, error) {
	once.Do(func() {
		translator, initErr = gst.NewShaderTranslator(context.Background())
		if initErr == nil {
			logging.Debugf("shader translator ready")
		}
	})
	if initErr != nil {
		return nil, fmt.Errorf("creating shader translator: %w", initErr)
	}
	return translator, nil
}

// ToGLSL410 translates an ESSL 3.00 source of the given stage ("vertex" or
// "fragment") to GLSL 4.10 core.
func ToGLSL410(source, stage string) (string, error) {
	t, err := GetTranslator()
	if err != nil {
		return "", err
	}
	out, err := t.TranslateShader(source, stage, gst.ShaderSpecWebGL2, gst.OutputFormatGLSL410)
	if err != nil {
		return "", fmt.Errorf("%s shader translation failed: %w", stage, err)
	}
	logging.Debugf("translated %s shader (%d variables)", stage, len(out.Variables))
	return out.Code, nil
}
