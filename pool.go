package screentone

import "sync"

// RasterPool provides reuse of working rasters via sync.Pool.
//
// The pipeline acquires hand-off and resampling buffers per stage and
// returns them on every exit path, so frame-to-frame rendering settles into
// zero raster allocations. Rasters are zeroed on Get.
//
// Thread safety: RasterPool is safe for concurrent use.
type RasterPool struct {
	// pools holds a sync.Pool per raster size.
	// Key format: (width << 20) | height
	pools sync.Map
}

// NewRasterPool creates a new raster pool.
func NewRasterPool() *RasterPool {
	return &RasterPool{}
}

// Get retrieves a raster with the given dimensions from the pool, creating
// one if none is cached. The pixel data is zeroed and ready for use.
func (p *RasterPool) Get(width, height int) *Raster {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	key := poolKey(width, height)
	if v, ok := p.pools.Load(key); ok {
		r := v.(*sync.Pool).Get().(*Raster)
		clear(r.data)
		return r
	}
	return NewRaster(width, height)
}

// Put returns a raster to the pool for reuse. Nil rasters are ignored.
func (p *RasterPool) Put(r *Raster) {
	if r == nil {
		return
	}
	key := poolKey(r.width, r.height)
	v, ok := p.pools.Load(key)
	if !ok {
		pool := &sync.Pool{New: func() any {
			return NewRaster(r.width, r.height)
		}}
		v, _ = p.pools.LoadOrStore(key, pool)
	}
	v.(*sync.Pool).Put(r)
}

func poolKey(width, height int) uint64 {
	return uint64(width)<<20 | uint64(height)
}

// DefaultPool is the package-level raster pool used by effects that were
// not given a dedicated pool.
var DefaultPool = NewRasterPool()

// GetRaster retrieves a raster from the default pool.
func GetRaster(width, height int) *Raster {
	return DefaultPool.Get(width, height)
}

// PutRaster returns a raster to the default pool.
func PutRaster(r *Raster) {
	DefaultPool.Put(r)
}
