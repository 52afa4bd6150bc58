package renderer

import (
	"math"

	"github.com/pkg/errors"

	vk "github.com/goki/vulkan"
)

// MaxFramesInFlight is the number of frames the CPU may record ahead of the GPU.
const MaxFramesInFlight = 2

// frameSync holds the per-slot semaphores and fences of a swap chain together with the table that maps
// every swap chain image to the fence of the slot that last rendered into it.
type frameSync struct {
	dev SwapChainDevice

	imageAvailable []vk.Semaphore
	renderFinished []vk.Semaphore
	inFlight       []vk.Fence
	imagesInFlight []vk.Fence

	current int
}

func newFrameSync(dev SwapChainDevice, imageCount int) (*frameSync, error) {
	fs := &frameSync{
		dev:            dev,
		imageAvailable: make([]vk.Semaphore, 0, MaxFramesInFlight),
		renderFinished: make([]vk.Semaphore, 0, MaxFramesInFlight),
		inFlight:       make([]vk.Fence, 0, MaxFramesInFlight),
		imagesInFlight: make([]vk.Fence, imageCount),
	}
	for i := 0; i < MaxFramesInFlight; i++ {
		ias, err := dev.CreateSemaphore()
		if err != nil {
			fs.destroy()
			return nil, errors.Wrapf(err, "create image available semaphore [%d]", i)
		}
		fs.imageAvailable = append(fs.imageAvailable, ias)

		rfs, err := dev.CreateSemaphore()
		if err != nil {
			fs.destroy()
			return nil, errors.Wrapf(err, "create render finished semaphore [%d]", i)
		}
		fs.renderFinished = append(fs.renderFinished, rfs)

		// Created signaled so the very first wait on each slot returns immediately
		fen, err := dev.CreateFence(true)
		if err != nil {
			fs.destroy()
			return nil, errors.Wrapf(err, "create in flight fence [%d]", i)
		}
		fs.inFlight = append(fs.inFlight, fen)
	}
	return fs, nil
}

// waitForSlot blocks until the GPU is done with the work last submitted from the current slot.
func (fs *frameSync) waitForSlot() error {
	err := fs.dev.WaitForFences([]vk.Fence{fs.inFlight[fs.current]}, math.MaxUint64)
	if err != nil {
		return errors.Wrapf(err, "wait for in flight fence of frame slot %d", fs.current)
	}
	return nil
}

// claimImage waits for a previous frame still rendering into imageIndex and hands the image to the
// current slot.
func (fs *frameSync) claimImage(imageIndex uint32) error {
	if prev := fs.imagesInFlight[imageIndex]; prev != nil {
		err := fs.dev.WaitForFences([]vk.Fence{prev}, math.MaxUint64)
		if err != nil {
			return errors.Wrapf(err, "wait for fence guarding image %d", imageIndex)
		}
	}
	fs.imagesInFlight[imageIndex] = fs.inFlight[fs.current]
	return nil
}

func (fs *frameSync) advance() {
	fs.current = (fs.current + 1) % MaxFramesInFlight
}

func (fs *frameSync) destroy() {
	for _, s := range fs.imageAvailable {
		fs.dev.DestroySemaphore(s)
	}
	for _, s := range fs.renderFinished {
		fs.dev.DestroySemaphore(s)
	}
	for _, f := range fs.inFlight {
		fs.dev.DestroyFence(f)
	}
	fs.imageAvailable, fs.renderFinished, fs.inFlight, fs.imagesInFlight = nil, nil, nil, nil
}
