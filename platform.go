package jsonescape

import (
	"golang.org/x/sys/cpu"
)

// Kernel returns the name of the implementation being used for escape operations.
func Kernel() string {
	return defaultKernel().name
}

// Kernels returns the names of every implementation runnable on this CPU,
// widest vector first.
func Kernels() []string {
	ks := availableKernels()
	names := make([]string, len(ks))
	for i, k := range ks {
		names[i] = k.name
	}
	return names
}

// CPUFeatures returns the vector instruction sets reported by the CPU.
// A listed feature is not necessarily usable by this build; see [Kernels].
func CPUFeatures() []string {
	var fs []string
	add := func(has bool, name string) {
		if has {
			fs = append(fs, name)
		}
	}
	add(cpu.X86.HasSSE2, "sse2")
	add(cpu.X86.HasAVX, "avx")
	add(cpu.X86.HasAVX2, "avx2")
	add(cpu.X86.HasAVX512F, "avx512f")
	add(cpu.X86.HasAVX512BW, "avx512bw")
	add(cpu.ARM64.HasASIMD, "asimd")
	return fs
}
