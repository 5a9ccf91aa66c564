package device

import (
	"os/exec"
	"runtime"
)

// SystemProbe probes the real host. MLX availability is approximated by
// the presence of the configured MLX runner binary; CUDA by nvidia-smi;
// MPS by the platform itself (Metal ships with macOS on Apple Silicon).
type SystemProbe struct {
	// MLXRunner is the MLX-enabled runner binary to look up, if any.
	MLXRunner string
	// CPURunner is the baseline runner binary; its absence is fatal.
	CPURunner string
}

func (p SystemProbe) OS() string   { return runtime.GOOS }
func (p SystemProbe) Arch() string { return runtime.GOARCH }

func (p SystemProbe) HasMLXRuntime() (bool, error) {
	if p.MLXRunner == "" {
		return false, nil
	}
	if _, err := exec.LookPath(p.MLXRunner); err != nil {
		return false, err
	}
	return true, nil
}

func (p SystemProbe) HasCUDA() (bool, error) {
	if _, err := exec.LookPath("nvidia-smi"); err != nil {
		return false, err
	}
	return true, nil
}

func (p SystemProbe) HasMPS() (bool, error) {
	return runtime.GOOS == "darwin" && runtime.GOARCH == "arm64", nil
}

func (p SystemProbe) HasCPURuntime() (bool, error) {
	if p.CPURunner == "" {
		return false, nil
	}
	if _, err := exec.LookPath(p.CPURunner); err != nil {
		return false, err
	}
	return true, nil
}
