// Package device probes host capabilities and selects the execution
// backend for hardware-dependent synthesis runtimes.
package device

import "errors"

// ErrMissingRuntime reports that not even the CPU-fallback runtime is
// available, leaving no backend at all.
var ErrMissingRuntime = errors.New("no usable synthesis runtime on this host")

// Capability tags one execution backend. The constants are ordered by
// selection priority, highest first.
type Capability int

const (
	// CapabilityMLX is the Apple-Silicon MLX runtime.
	CapabilityMLX Capability = iota
	// CapabilityCUDA is an NVIDIA CUDA accelerator.
	CapabilityCUDA
	// CapabilityMPS is Apple's Metal Performance Shaders accelerator.
	CapabilityMPS
	// CapabilityCPU is the baseline CPU runtime.
	CapabilityCPU
)

// String returns the device name passed to synthesis runners.
func (c Capability) String() string {
	switch c {
	case CapabilityMLX:
		return "mlx"
	case CapabilityCUDA:
		return "cuda"
	case CapabilityMPS:
		return "mps"
	default:
		return "cpu"
	}
}

// HostProbe answers availability questions about optional runtimes.
// Implementations may shell out or inspect the platform; errors from any
// probe are treated as "not available", never as fatal.
type HostProbe interface {
	OS() string
	Arch() string
	HasMLXRuntime() (bool, error)
	HasCUDA() (bool, error)
	HasMPS() (bool, error)
	HasCPURuntime() (bool, error)
}

// Select picks the highest-priority available capability. Every probe
// step is independent and short-circuits on its first success, so a
// failing optional probe only moves selection down the list. Selection
// fails only when the CPU fallback itself is missing.
func Select(p HostProbe) (Capability, error) {
	if p.OS() == "darwin" && p.Arch() == "arm64" {
		if ok, err := p.HasMLXRuntime(); err == nil && ok {
			return CapabilityMLX, nil
		}
	}
	if ok, err := p.HasCUDA(); err == nil && ok {
		return CapabilityCUDA, nil
	}
	if ok, err := p.HasMPS(); err == nil && ok {
		return CapabilityMPS, nil
	}
	if ok, err := p.HasCPURuntime(); err != nil || !ok {
		return CapabilityCPU, ErrMissingRuntime
	}
	return CapabilityCPU, nil
}
