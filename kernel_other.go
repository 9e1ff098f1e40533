//go:build !(goexperiment.simd && amd64)

package jsonescape

// No vector intrinsics in this build; only the portable kernels are available.
func platformKernels() []*kernel { return nil }
