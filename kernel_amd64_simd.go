//go:build goexperiment.simd && amd64

package jsonescape

import "simd/archsimd"

// archsimd 128-bit ops on AMD64 require AVX, 256-bit AVX2 and 512-bit AVX-512.
var (
	useAVX    = archsimd.X86.AVX()
	useAVX2   = archsimd.X86.AVX2()
	useAVX512 = archsimd.X86.AVX512()
)

var (
	avxKernel    = &kernel{name: "avx", width: 16, scan: scanAVX}
	avx2Kernel   = &kernel{name: "avx2", width: 32, scan: scanAVX2}
	avx512Kernel = &kernel{name: "avx512", width: 64, scan: scanAVX512}
)

func platformKernels() []*kernel {
	var ks []*kernel
	if useAVX512 {
		ks = append(ks, avx512Kernel)
	}
	if useAVX2 {
		ks = append(ks, avx2Kernel)
	}
	if useAVX {
		ks = append(ks, avxKernel)
	}
	return ks
}

// The escape predicate is v <= 0x1f || v == '"' || v == '\\'. Unsigned
// less-or-equal is computed as min(v, 0x1f) == v.
//
// Broadcasts stay inside the functions: building them at package init would
// execute wider instructions than the CPU may support.

func scanAVX(dst, src []byte) uint64 {
	v := archsimd.LoadUint8x16Slice(src)
	v.StoreSlice(dst)

	ctl := v.Min(archsimd.BroadcastUint8x16(0x1f)).Equal(v)
	quote := v.Equal(archsimd.BroadcastUint8x16('"'))
	bslash := v.Equal(archsimd.BroadcastUint8x16('\\'))
	return uint64(ctl.Or(quote).Or(bslash).ToBits())
}

func scanAVX2(dst, src []byte) uint64 {
	v := archsimd.LoadUint8x32Slice(src)
	v.StoreSlice(dst)

	ctl := v.Min(archsimd.BroadcastUint8x32(0x1f)).Equal(v)
	quote := v.Equal(archsimd.BroadcastUint8x32('"'))
	bslash := v.Equal(archsimd.BroadcastUint8x32('\\'))
	return uint64(ctl.Or(quote).Or(bslash).ToBits())
}

// scanAVX512 requires AVX-512BW for ToBits (VPMOVB2M).
func scanAVX512(dst, src []byte) uint64 {
	v := archsimd.LoadUint8x64Slice(src)
	v.StoreSlice(dst)

	ctl := v.Min(archsimd.BroadcastUint8x64(0x1f)).Equal(v)
	quote := v.Equal(archsimd.BroadcastUint8x64('"'))
	bslash := v.Equal(archsimd.BroadcastUint8x64('\\'))
	return ctl.Or(quote).Or(bslash).ToBits()
}
