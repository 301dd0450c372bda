package render

import (
	"errors"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// DeviceHandle is the device access contract the renderer consumes.
// Any provider from the gogpu ecosystem satisfies it, so hosts hand
// their existing provider through without an adapter.
type DeviceHandle = gpucontext.DeviceProvider

// ErrNilDeviceHandle reports a renderer constructed without a device.
var ErrNilDeviceHandle = errors.New("render: nil device handle")

// halProvider is the optional escape hatch providers implement to hand
// out their raw HAL objects.
type halProvider interface {
	HalDevice() any
	HalQueue() any
}

// halFrom extracts the HAL device and queue from a provider.
func halFrom(provider any) (hal.Device, hal.Queue, error) {
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, nil, errors.New("render: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok {
		return nil, nil, errors.New("render: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok {
		return nil, nil, errors.New("render: provider HalQueue is not hal.Queue")
	}
	return device, queue, nil
}

// NullDeviceHandle is a DeviceHandle with no backing device. It stands
// in where a handle is structurally required but GPU work never runs,
// such as wiring tests.
type NullDeviceHandle struct{}

var _ DeviceHandle = NullDeviceHandle{}

// Device returns nil.
func (NullDeviceHandle) Device() gpucontext.Device { return nil }

// Queue returns nil.
func (NullDeviceHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil.
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat returns the undefined texture format.
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}
