package jsonescape

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"
)

// kernel is one implementation of the escape loop for a given vector width.
type kernel struct {
	name  string
	width int

	// scan stores src[:width] into dst[:width] and returns the escape bitmask
	// of the window. Both slices must hold at least width bytes.
	// nil for the scalar kernel, which has no windows.
	scan func(dst, src []byte) uint64
}

var (
	genericKernel = &kernel{name: "generic", width: 16, scan: scanGeneric}
	scalarKernel  = &kernel{name: "scalar", width: 1}
)

// kernelNames lists every kernel this package knows, widest first.
var kernelNames = []string{"avx512", "avx2", "avx", "generic", "scalar"}

var (
	ErrUnknownKernel     = errors.New("unknown kernel")
	ErrKernelUnsupported = errors.New("kernel not supported by this CPU")
)

// kernelEnv pins the process wide kernel to a narrower one than detected.
const kernelEnv = "JSONESCAPE_KERNEL"

// availableKernels returns the kernels runnable on this CPU, widest first.
// The last two are always generic and scalar.
func availableKernels() []*kernel {
	return append(platformKernels(), genericKernel, scalarKernel)
}

func lookupKernel(name string) (*kernel, error) {
	for _, k := range availableKernels() {
		if k.name == name {
			return k, nil
		}
	}
	if slices.Contains(kernelNames, name) {
		return nil, fmt.Errorf("[jsonescape] %w: %s", ErrKernelUnsupported, name)
	}
	return nil, fmt.Errorf("[jsonescape] %w: %q", ErrUnknownKernel, name)
}

var (
	defaultOnce sync.Once
	defaultK    *kernel
)

// defaultKernel probes the CPU once and returns the kernel used by the
// package level functions.
func defaultKernel() *kernel {
	defaultOnce.Do(func() {
		defaultK = envKernel()
	})
	return defaultK
}

// envKernel is the kernel pinned by JSONESCAPE_KERNEL, or the widest one.
func envKernel() *kernel {
	return selectKernel(os.Getenv(kernelEnv))
}

func selectKernel(pinned string) *kernel {
	if pinned != "" {
		if k, err := lookupKernel(pinned); err == nil {
			return k
		}
	}
	return availableKernels()[0]
}
