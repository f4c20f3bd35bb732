//go:build !nogpu

package gpu

import _ "embed"

// Embedded WGSL shader sources, compiled at pipeline creation.

//go:embed shaders/dither.wgsl
var ditherShaderSource string

//go:embed shaders/halftone.wgsl
var halftoneShaderSource string
