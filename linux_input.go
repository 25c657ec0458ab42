package main

// Linux input plumbing:
// - constants for the event codes a touch panel or mouse produces
// - ioctl helpers to read ABS axis ranges and optionally EVIOCGRAB
// - decoding the input_event stream (16B vs 24B timeval size)

import (
	"bytes"
	"encoding/binary"
	"unsafe"

	"github.com/lunixbochs/struc"
	"golang.org/x/sys/unix"
)

// Event types
const (
	EV_SYN = 0x00
	EV_KEY = 0x01
	EV_REL = 0x02
	EV_ABS = 0x03
)

// Keys
const (
	BTN_LEFT  = 0x110
	BTN_RIGHT = 0x111
	BTN_TOUCH = 0x14A
)

// Relative axes
const (
	REL_X      = 0x00
	REL_Y      = 0x01
	REL_HWHEEL = 0x06
	REL_WHEEL  = 0x08
)

// ABS axes
const (
	ABS_X              = 0x00
	ABS_Y              = 0x01
	ABS_MT_SLOT        = 0x2f
	ABS_MT_POSITION_X  = 0x35
	ABS_MT_POSITION_Y  = 0x36
	ABS_MT_TRACKING_ID = 0x39
)

// SYN codes
const (
	SYN_REPORT  = 0x00
	SYN_DROPPED = 0x03
)

type absInfo struct {
	Value      int32
	Min        int32
	Max        int32
	Fuzz       int32
	Flat       int32
	Resolution int32
}

type absRanges struct {
	xMin, xMax     int32
	yMin, yMax     int32
	mtXMin, mtXMax int32
	mtYMin, mtYMax int32
	slots          int
}

// ioctl request encoding (Linux _IOC macro)
const (
	iocNRBits   = 8
	iocTypeBits = 8
	iocSizeBits = 14
	iocDirBits  = 2

	iocNRShift   = 0
	iocTypeShift = iocNRShift + iocNRBits
	iocSizeShift = iocTypeShift + iocTypeBits
	iocDirShift  = iocSizeShift + iocSizeBits

	iocWrite = 1
	iocRead  = 2
)

func ioc(dir uint32, typ uint32, nr uint32, size uint32) uintptr {
	return uintptr((dir << iocDirShift) | (typ << iocTypeShift) | (nr << iocNRShift) | (size << iocSizeShift))
}

func evioCGAbs(absCode int) uintptr {
	// EVIOCGABS(abs) = _IOR('E', 0x40 + abs, struct input_absinfo)
	return ioc(iocRead, uint32('E'), uint32(0x40+absCode), uint32(unsafe.Sizeof(absInfo{})))
}

func evioCGrab() uintptr {
	// EVIOCGRAB = _IOW('E', 0x90, int)
	return ioc(iocWrite, uint32('E'), uint32(0x90), uint32(unsafe.Sizeof(int32(0))))
}

func getAbsInfo(fd int, absCode int) (absInfo, error) {
	var info absInfo
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), evioCGAbs(absCode), uintptr(unsafe.Pointer(&info)))
	if errno != 0 {
		return absInfo{}, errno
	}
	return info, nil
}

// getRanges reads the axis ranges of fd. Axes the device lacks keep a unit
// range so normalization stays defined.
func getRanges(fd int) absRanges {
	r := absRanges{xMin: 0, xMax: 1, yMin: 0, yMax: 1, mtXMin: 0, mtXMax: 1, mtYMin: 0, mtYMax: 1, slots: 1}
	if x, err := getAbsInfo(fd, ABS_X); err == nil {
		r.xMin, r.xMax = x.Min, x.Max
	}
	if y, err := getAbsInfo(fd, ABS_Y); err == nil {
		r.yMin, r.yMax = y.Min, y.Max
	}
	if x, err := getAbsInfo(fd, ABS_MT_POSITION_X); err == nil && x.Max > x.Min {
		r.mtXMin, r.mtXMax = x.Min, x.Max
	} else {
		r.mtXMin, r.mtXMax = r.xMin, r.xMax
	}
	if y, err := getAbsInfo(fd, ABS_MT_POSITION_Y); err == nil && y.Max > y.Min {
		r.mtYMin, r.mtYMax = y.Min, y.Max
	} else {
		r.mtYMin, r.mtYMax = r.yMin, r.yMax
	}
	if s, err := getAbsInfo(fd, ABS_MT_SLOT); err == nil && s.Max >= 0 {
		r.slots = int(s.Max) + 1
	}
	return r
}

func tryGrab(fd int) {
	var one int32 = 1
	_, _, _ = unix.Syscall(unix.SYS_IOCTL, uintptr(fd), evioCGrab(), uintptr(unsafe.Pointer(&one)))
}

// inputEvent64 is struct input_event with a 64-bit timeval.
type inputEvent64 struct {
	Sec   int64  `struc:"int64"`
	Usec  int64  `struc:"int64"`
	Type  uint16 `struc:"uint16"`
	Code  uint16 `struc:"uint16"`
	Value int32  `struc:"int32"`
}

// inputEvent32 is struct input_event with a 32-bit timeval.
type inputEvent32 struct {
	Sec   int32  `struc:"int32"`
	Usec  int32  `struc:"int32"`
	Type  uint16 `struc:"uint16"`
	Code  uint16 `struc:"uint16"`
	Value int32  `struc:"int32"`
}

var strucLE = &struc.Options{Order: binary.LittleEndian}

// inputParser parses Linux input_event structs from a stream.
// Kernel uses different struct size depending on timeval size (32-bit vs 64-bit).
type inputParser struct {
	buf []byte
	sz  int // 0 unknown, else 16 or 24
}

func (p *inputParser) feed(chunk []byte, cb func(etype uint16, code uint16, value int32)) {
	p.buf = append(p.buf, chunk...)
	if p.sz == 0 {
		if len(p.buf) >= 48 && len(p.buf)%24 == 0 {
			p.sz = 24
		} else if len(p.buf) >= 32 && len(p.buf)%16 == 0 {
			p.sz = 16
		} else if len(p.buf) >= 24 {
			// fallback: assume 24 on 64-bit kernels
			p.sz = 24
		}
	}
	for p.sz != 0 && len(p.buf) >= p.sz {
		raw := p.buf[:p.sz]
		p.buf = p.buf[p.sz:]
		if p.sz == 24 {
			var ev inputEvent64
			if err := struc.UnpackWithOptions(bytes.NewReader(raw), &ev, strucLE); err != nil {
				continue
			}
			cb(ev.Type, ev.Code, ev.Value)
		} else {
			var ev inputEvent32
			if err := struc.UnpackWithOptions(bytes.NewReader(raw), &ev, strucLE); err != nil {
				continue
			}
			cb(ev.Type, ev.Code, ev.Value)
		}
	}
}
