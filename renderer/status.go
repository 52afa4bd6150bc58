package renderer

import (
	"github.com/pkg/errors"

	vk "github.com/goki/vulkan"
)

var (
	ErrFrameInProgress      = errors.New("frame already in progress")
	ErrFrameNotInProgress   = errors.New("no frame in progress")
	ErrForeignCommandBuffer = errors.New("command buffer does not belong to the current frame")
	ErrFormatChanged        = errors.New("swap chain image (or depth) format has changed")
	ErrZeroExtent           = errors.New("swap chain extent must be non-zero")
	ErrWindowClosed         = errors.New("window closed while waiting for a drawable extent")
	ErrTooFewImages         = errors.New("swap chain has fewer images than frames in flight")
	ErrUnexpectedResult     = errors.New("unexpected vulkan result")
)

// Status is the outcome of acquiring or presenting a swap chain image.
type Status int

const (
	StatusSuccess Status = iota
	// StatusSuboptimal means the surface can still be presented to but no longer matches exactly.
	StatusSuboptimal
	// StatusOutOfDate means the swap chain must be recreated before it can be used again.
	StatusOutOfDate
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusSuboptimal:
		return "suboptimal"
	case StatusOutOfDate:
		return "out of date"
	default:
		return "unknown"
	}
}

// statusFromResult maps the three result codes a swap chain is expected to report. Everything else is an
// error carrying the raw code.
func statusFromResult(res vk.Result) (Status, error) {
	switch res {
	case vk.Success:
		return StatusSuccess, nil
	case vk.Suboptimal:
		return StatusSuboptimal, nil
	case vk.ErrorOutOfDate:
		return StatusOutOfDate, nil
	default:
		return StatusSuccess, errors.Wrapf(ErrUnexpectedResult, "result code %d", res)
	}
}
