package webgpu

import (
	"encoding/binary"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/pkg/errors"

	"github.com/loom-ml/loom/internal/tensor"
)

// check panics on a wgpu error. The run* entry points recover and turn the
// panic into an error return.
func check(name string, err error) {
	if err != nil {
		panic(name + ": " + err.Error())
	}
}

// compileShader compiles WGSL shader code into a ShaderModule.
// Results are cached in the Backend's shaders map.
func (b *Backend) compileShader(name, code string) *wgpu.ShaderModule {
	b.mu.RLock()
	if shader, exists := b.shaders[name]; exists {
		b.mu.RUnlock()
		return shader
	}
	b.mu.RUnlock()

	shader, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          name,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: code},
	})
	check("CreateShaderModule", err)

	b.mu.Lock()
	b.shaders[name] = shader
	b.mu.Unlock()

	return shader
}

// getOrCreatePipeline returns a cached ComputePipeline or creates a new one.
func (b *Backend) getOrCreatePipeline(name string, shader *wgpu.ShaderModule) *wgpu.ComputePipeline {
	b.mu.RLock()
	if pipeline, exists := b.pipelines[name]; exists {
		b.mu.RUnlock()
		return pipeline
	}
	b.mu.RUnlock()

	pipeline, err := b.device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:   name,
		Compute: wgpu.ProgrammableStageDescriptor{Module: shader, EntryPoint: "main"},
	})
	check("CreateComputePipeline", err)

	b.mu.Lock()
	b.pipelines[name] = pipeline
	b.mu.Unlock()

	return pipeline
}

// uploadBuffer creates a storage buffer initialized with the given data.
func (b *Backend) uploadBuffer(data []byte) *wgpu.Buffer {
	buffer, err := b.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Contents: data,
		Usage:    wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc,
	})
	check("CreateBufferInit", err)
	return buffer
}

// resultBuffer creates an uninitialized storage buffer for kernel output.
func (b *Backend) resultBuffer(size uint64) *wgpu.Buffer {
	buffer, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst,
		Size:  size,
	})
	check("CreateBuffer", err)
	return buffer
}

// uniformBuffer creates a uniform buffer with 16-byte alignment.
func (b *Backend) uniformBuffer(data []byte) *wgpu.Buffer {
	aligned := make([]byte, (len(data)+15)&^15)
	copy(aligned, data)
	buffer, err := b.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Contents: aligned,
		Usage:    wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	check("CreateBufferInit", err)
	return buffer
}

// readBuffer reads data back from a GPU buffer to CPU memory.
// Storage buffers cannot be mapped directly, so it goes through a staging
// buffer.
func (b *Backend) readBuffer(src *wgpu.Buffer, size uint64) []byte {
	staging, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
		Size:  size,
	})
	check("CreateBuffer", err)
	defer staging.Release()

	encoder, err := b.device.CreateCommandEncoder(nil)
	check("CreateCommandEncoder", err)
	encoder.CopyBufferToBuffer(src, 0, staging, 0, size)
	cmdBuffer, err := encoder.Finish(nil)
	check("encoder.Finish", err)
	b.queue.Submit(cmdBuffer)

	var status wgpu.BufferMapAsyncStatus
	err = staging.MapAsync(wgpu.MapModeRead, 0, size, func(s wgpu.BufferMapAsyncStatus) {
		status = s
	})
	check("MapAsync", err)
	b.device.Poll(true, nil)
	if status != wgpu.BufferMapAsyncStatusSuccess {
		panic("MapAsync: buffer mapping failed")
	}

	result := make([]byte, size)
	copy(result, staging.GetMappedRange(0, uint(size)))
	staging.Unmap()
	return result
}

// dispatch runs one compute pass over the pipeline and bind group.
func (b *Backend) dispatch(pipeline *wgpu.ComputePipeline, bindGroup *wgpu.BindGroup, x, y uint32) {
	encoder, err := b.device.CreateCommandEncoder(nil)
	check("CreateCommandEncoder", err)
	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(pipeline)
	pass.SetBindGroup(0, bindGroup, nil)
	pass.DispatchWorkgroups(x, y, 1)
	pass.End()
	cmdBuffer, err := encoder.Finish(nil)
	check("encoder.Finish", err)
	b.queue.Submit(cmdBuffer)
}

// runBinary executes a same-shape binary float32 kernel on GPU.
func (b *Backend) runBinary(name, code string, x, y *tensor.RawTensor) (out *tensor.RawTensor, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = errors.Errorf("webgpu: %s: %v", name, r)
		}
	}()

	n := x.NumElements()
	size := uint64(x.ByteSize())

	shader := b.compileShader(name, code)
	pipeline := b.getOrCreatePipeline(name, shader)

	bufX := b.uploadBuffer(x.Data()[:size])
	defer bufX.Release()
	bufY := b.uploadBuffer(y.Data()[:size])
	defer bufY.Release()
	bufOut := b.resultBuffer(size)
	defer bufOut.Release()

	params := make([]byte, 4)
	binary.LittleEndian.PutUint32(params, uint32(n))
	bufParams := b.uniformBuffer(params)
	defer bufParams.Release()

	layout := pipeline.GetBindGroupLayout(0)
	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: bufX, Size: size},
			{Binding: 1, Buffer: bufY, Size: size},
			{Binding: 2, Buffer: bufOut, Size: size},
			{Binding: 3, Buffer: bufParams, Size: 16},
		},
	})
	check("CreateBindGroup", err)
	defer bindGroup.Release()

	b.dispatch(pipeline, bindGroup, uint32((n+workgroupSize-1)/workgroupSize), 1)

	result, err := tensor.NewRaw(x.Shape(), tensor.Float32, tensor.WebGPU)
	if err != nil {
		return nil, err
	}
	copy(result.Data(), b.readBuffer(bufOut, size))
	return result, nil
}

// runUnary executes a unary float32 kernel on GPU.
func (b *Backend) runUnary(name, code string, x *tensor.RawTensor) (out *tensor.RawTensor, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = errors.Errorf("webgpu: %s: %v", name, r)
		}
	}()

	n := x.NumElements()
	size := uint64(x.ByteSize())

	shader := b.compileShader(name, code)
	pipeline := b.getOrCreatePipeline(name, shader)

	bufX := b.uploadBuffer(x.Data()[:size])
	defer bufX.Release()
	bufOut := b.resultBuffer(size)
	defer bufOut.Release()

	params := make([]byte, 4)
	binary.LittleEndian.PutUint32(params, uint32(n))
	bufParams := b.uniformBuffer(params)
	defer bufParams.Release()

	layout := pipeline.GetBindGroupLayout(0)
	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: bufX, Size: size},
			{Binding: 1, Buffer: bufOut, Size: size},
			{Binding: 2, Buffer: bufParams, Size: 16},
		},
	})
	check("CreateBindGroup", err)
	defer bindGroup.Release()

	b.dispatch(pipeline, bindGroup, uint32((n+workgroupSize-1)/workgroupSize), 1)

	result, err := tensor.NewRaw(x.Shape(), tensor.Float32, tensor.WebGPU)
	if err != nil {
		return nil, err
	}
	copy(result.Data(), b.readBuffer(bufOut, size))
	return result, nil
}

// runMatMul executes the 2D float32 matmul kernel on GPU.
func (b *Backend) runMatMul(x, y *tensor.RawTensor) (out *tensor.RawTensor, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = errors.Errorf("webgpu: matmul: %v", r)
		}
	}()

	m, k := x.Shape()[0], x.Shape()[1]
	n := y.Shape()[1]

	shader := b.compileShader("matmul", matmulShader)
	pipeline := b.getOrCreatePipeline("matmul", shader)

	bufX := b.uploadBuffer(x.Data()[:x.ByteSize()])
	defer bufX.Release()
	bufY := b.uploadBuffer(y.Data()[:y.ByteSize()])
	defer bufY.Release()

	outSize := uint64(m * n * tensor.Float32.Size())
	bufOut := b.resultBuffer(outSize)
	defer bufOut.Release()

	params := make([]byte, 12)
	binary.LittleEndian.PutUint32(params[0:4], uint32(m))
	binary.LittleEndian.PutUint32(params[4:8], uint32(k))
	binary.LittleEndian.PutUint32(params[8:12], uint32(n))
	bufParams := b.uniformBuffer(params)
	defer bufParams.Release()

	layout := pipeline.GetBindGroupLayout(0)
	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: bufX, Size: uint64(x.ByteSize())},
			{Binding: 1, Buffer: bufY, Size: uint64(y.ByteSize())},
			{Binding: 2, Buffer: bufOut, Size: outSize},
			{Binding: 3, Buffer: bufParams, Size: 16},
		},
	})
	check("CreateBindGroup", err)
	defer bindGroup.Release()

	// 16x16 workgroups tile the output matrix.
	b.dispatch(pipeline, bindGroup, uint32((n+15)/16), uint32((m+15)/16))

	result, err := tensor.NewRaw(tensor.Shape{m, n}, tensor.Float32, tensor.WebGPU)
	if err != nil {
		return nil, err
	}
	copy(result.Data(), b.readBuffer(bufOut, outSize))
	return result, nil
}
