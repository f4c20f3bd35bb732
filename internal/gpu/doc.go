// Package gpu implements the screentone parallel path on wgpu/hal compute
// shaders. It is registered through the public gpu package; import that
// instead:
//
//	import _ "github.com/gogpu/screentone/gpu"
package gpu
