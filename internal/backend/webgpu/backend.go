// Package webgpu implements the GPU execution backend on WebGPU compute
// shaders, via the zero-CGO wgpu bindings. Float32 elementwise arithmetic and
// 2D matmul run on the GPU; every other primitive falls back to the CPU
// kernels with a one-time warning per operation.
package webgpu

import (
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"k8s.io/klog/v2"

	"github.com/loom-ml/loom/internal/backend/cpu"
	"github.com/loom-ml/loom/internal/tensor"
)

// gpuBinaryShaders maps the elementwise modes with a GPU kernel to their WGSL
// source.
var gpuBinaryShaders = map[tensor.ElemwiseMode]string{
	tensor.ModeAdd:     addShader,
	tensor.ModeSub:     subShader,
	tensor.ModeMul:     mulShader,
	tensor.ModeTrueDiv: divShader,
}

var gpuUnaryShaders = map[tensor.ElemwiseMode]string{
	tensor.ModeNegate: negShader,
	tensor.ModeAbs:    absShader,
}

// Backend implements tensor.Backend on a WebGPU device.
type Backend struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	// Shader and pipeline cache
	shaders   map[string]*wgpu.ShaderModule
	pipelines map[string]*wgpu.ComputePipeline
	mu        sync.RWMutex

	adapterInfo *wgpu.AdapterInfo

	// CPU engine for primitives without a GPU kernel.
	cpu    *cpu.Backend
	warned map[string]bool
	warnMu sync.Mutex
}

// New creates a new WebGPU backend.
// Returns an error if WebGPU is not available or initialization fails.
func New() (backend *Backend, err error) {
	// Recover from panic if the wgpu native library is not found.
	defer func() {
		if r := recover(); r != nil {
			backend = nil
			err = fmt.Errorf("webgpu: native library not available: %v", r)
		}
	}()

	instance := wgpu.CreateInstance(nil)
	adapter, adapterErr := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if adapterErr != nil {
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to request adapter: %w", adapterErr)
	}

	adapterInfo := adapter.GetInfo()

	device, deviceErr := adapter.RequestDevice(nil)
	if deviceErr != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to request device: %w", deviceErr)
	}

	queue := device.GetQueue()
	if queue == nil {
		device.Release()
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to get queue")
	}

	klog.V(2).Infof("webgpu backend initialized on %s", adapterInfo.Name)

	return &Backend{
		instance:    instance,
		adapter:     adapter,
		device:      device,
		queue:       queue,
		shaders:     make(map[string]*wgpu.ShaderModule),
		pipelines:   make(map[string]*wgpu.ComputePipeline),
		adapterInfo: &adapterInfo,
		cpu:         cpu.New(),
		warned:      make(map[string]bool),
	}, nil
}

// Name returns the backend name.
func (b *Backend) Name() string {
	if b.adapterInfo != nil {
		return fmt.Sprintf("WebGPU (%s %s)", b.adapterInfo.Name, b.adapterInfo.VendorName)
	}
	return "WebGPU"
}

// Device returns the compute device.
func (b *Backend) Device() tensor.Device {
	return tensor.WebGPU
}

// Apply executes one primitive operation, on the GPU when a kernel exists for
// the op, dtype and shapes, on the CPU engine otherwise.
func (b *Backend) Apply(op tensor.Op, args ...*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	switch o := op.(type) {
	case tensor.Elemwise:
		if code, ok := gpuBinaryShaders[o.Mode]; ok && binaryEligible(args) {
			out, err := b.runBinary(o.Mode.String(), code, args[0], args[1])
			if err != nil {
				return nil, err
			}
			return []*tensor.RawTensor{out}, nil
		}
		if code, ok := gpuUnaryShaders[o.Mode]; ok && unaryEligible(args) {
			out, err := b.runUnary(o.Mode.String(), code, args[0])
			if err != nil {
				return nil, err
			}
			return []*tensor.RawTensor{out}, nil
		}
	case tensor.MatMul:
		if matmulEligible(o, args) {
			out, err := b.runMatMul(args[0], args[1])
			if err != nil {
				return nil, err
			}
			return []*tensor.RawTensor{out}, nil
		}
	}
	return b.fallback(op, args)
}

// binaryEligible reports whether a binary elemwise op can run on GPU:
// two float32 operands of identical shape.
func binaryEligible(args []*tensor.RawTensor) bool {
	if len(args) != 2 {
		return false
	}
	return args[0].DType() == tensor.Float32 &&
		args[1].DType() == tensor.Float32 &&
		args[0].Shape().Equal(args[1].Shape()) &&
		args[0].NumElements() > 0
}

func unaryEligible(args []*tensor.RawTensor) bool {
	return len(args) == 1 &&
		args[0].DType() == tensor.Float32 &&
		args[0].NumElements() > 0
}

// matmulEligible reports whether the matmul can run on GPU: default
// parameterization, 2D float32 operands, no transposes.
func matmulEligible(op tensor.MatMul, args []*tensor.RawTensor) bool {
	if len(args) != 2 || op.TransposeA || op.TransposeB {
		return false
	}
	if op.ComputeMode != tensor.ComputeModeDefault || op.Format != tensor.FormatDefault {
		return false
	}
	x, y := args[0], args[1]
	return x.DType() == tensor.Float32 && y.DType() == tensor.Float32 &&
		len(x.Shape()) == 2 && len(y.Shape()) == 2 &&
		x.Shape()[1] == y.Shape()[0]
}

// fallback runs the op on the CPU engine and retags results to this device.
// Warns once per op name.
func (b *Backend) fallback(op tensor.Op, args []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	b.warnMu.Lock()
	if !b.warned[op.OpName()] {
		b.warned[op.OpName()] = true
		klog.Warningf("webgpu: no GPU kernel for %s, using cpu fallback", op.OpName())
	}
	b.warnMu.Unlock()

	results, err := b.cpu.Apply(op, args...)
	if err != nil {
		return nil, err
	}
	for i, r := range results {
		results[i] = r.OnDevice(tensor.WebGPU)
	}
	return results, nil
}

// Release releases all WebGPU resources.
// Must be called when the backend is no longer needed.
func (b *Backend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, p := range b.pipelines {
		p.Release()
	}
	b.pipelines = nil

	for _, s := range b.shaders {
		s.Release()
	}
	b.shaders = nil

	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}
