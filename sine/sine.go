// Package sine is a fixed-point sine approximation cheap enough to run at
// audio rate. Phase is a 16-bit wrap-around angle where 65536 units is one
// full turn.
package sine

// MaxScale is the largest |scale| Approx is documented and tested for.
const MaxScale = 1 << 20

// FullScale is the internal amplitude of the interpolated value before the
// final scaling step.
const FullScale = 1 << 15

// base table, full scale = pi * 2^13, one entry per 2048 phase units
var sinTab = [32]int32{
	0, 5021, 9849, 14298, 18198, 21399, 23777, 25241,
	25736, 25241, 23777, 21399, 18198, 14298, 9849, 5021,
	0, -5021, -9849, -14298, -18198, -21399, -23777, -25241,
	-25736, -25241, -23777, -21399, -18198, -14298, -9849, -5021,
}

// 2^17/pi * cos(x) for x = (-16 ... 16) * 2pi/1024
var resCosTab = [33]int32{
	41521, 41545, 41568, 41589, 41608, 41627, 41643, 41658,
	41671, 41683, 41693, 41702, 41709, 41714, 41718, 41721,
	41722, 41721, 41718, 41714, 41709, 41702, 41693, 41683,
	41671, 41658, 41643, 41627, 41608, 41589, 41568, 41545,
	41521,
}

// Approx returns sin(2*pi*phase/65536) * scale rounded to the nearest
// integer. The nearest table bucket supplies sin(a) and cos(a); the residual
// angle d inside the bucket is folded in as sin(a)cos(d) + cos(a)d.
func Approx(phase uint16, scale int32) int32 {
	idx := (uint32(phase) + 1024) >> 11
	resQ := (int32(phase) - int32(idx<<11)) << 2
	resIdx := (resQ + 4096 + 128) >> 8

	sinQ := sinTab[idx&0x1F]
	cosQ := sinTab[(idx+8)&0x1F]
	dcos := resCosTab[resIdx]

	sinVal := (sinQ*dcos + cosQ*resQ + 16384) >> 15
	return int32((int64(sinVal)*int64(scale) + 16384) >> 15)
}
