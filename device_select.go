package main

// Input device selection helpers.
//
// Touch panels and mice appear as /dev/input/eventX. We support:
// - printing /proc/bus/input/devices (for debugging)
// - "probing" each event node for short activity to auto-select the panel

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

type inputDeviceInfo struct {
	name     string
	handlers []string
}

// eventNode returns the first eventN handler, or "".
func (d inputDeviceInfo) eventNode() string {
	for _, h := range d.handlers {
		if strings.HasPrefix(h, "event") {
			return h
		}
	}
	return ""
}

// nameScore ranks a device by name. Touch panels beat mice, anything with an
// event node beats nothing.
func (d inputDeviceInfo) nameScore() int {
	ln := strings.ToLower(d.name)
	score := 0
	switch {
	case strings.Contains(ln, "touchpad"), strings.Contains(ln, "trackpad"):
		score += 10
	case strings.Contains(ln, "touch"):
		score += 6
	case strings.Contains(ln, "mouse"):
		score += 3
	}
	return score
}

func parseProcDevices(r io.Reader) []inputDeviceInfo {
	var (
		out  []inputDeviceInfo
		info inputDeviceInfo
	)
	flush := func() {
		if info.name != "" || len(info.handlers) > 0 {
			out = append(out, info)
		}
		info = inputDeviceInfo{}
	}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.TrimSpace(line) == "":
			flush()
		case strings.HasPrefix(line, "N: Name="):
			info.name = strings.Trim(strings.TrimPrefix(line, "N: Name="), " \"")
		case strings.HasPrefix(line, "H: Handlers="):
			info.handlers = strings.Fields(strings.TrimPrefix(line, "H: Handlers="))
		}
	}
	flush()
	return out
}

func listProcInputDevices() []inputDeviceInfo {
	f, err := os.Open("/proc/bus/input/devices")
	if err != nil {
		return nil
	}
	defer f.Close()
	return parseProcDevices(f)
}

// pickByName uses the /proc/bus/input/devices names only.
func pickByName(devs []inputDeviceInfo) string {
	bestScore := -1
	bestPath := ""
	for _, d := range devs {
		ev := d.eventNode()
		if ev == "" {
			continue
		}
		if s := d.nameScore(); s > bestScore {
			bestScore = s
			bestPath = "/dev/input/" + ev
		}
	}
	return bestPath
}

type devProbe struct {
	path     string
	mtSlot   int
	mtPos    int
	absXY    int
	btnTouch int
	rel      int
	btn      int
	any      int
}

func (p devProbe) score() int {
	// Multitouch panels first, then single-touch, then mice. Any activity
	// beats none.
	return p.any + 10*p.mtSlot + 8*p.mtPos + 5*p.absXY + 8*p.btnTouch + 2*p.rel + 4*p.btn
}

func (p *devProbe) count(etype uint16, code uint16) {
	p.any++
	switch etype {
	case EV_ABS:
		switch code {
		case ABS_MT_SLOT, ABS_MT_TRACKING_ID:
			p.mtSlot++
		case ABS_MT_POSITION_X, ABS_MT_POSITION_Y:
			p.mtPos++
		case ABS_X, ABS_Y:
			p.absXY++
		}
	case EV_REL:
		p.rel++
	case EV_KEY:
		switch code {
		case BTN_TOUCH:
			p.btnTouch++
		case BTN_LEFT, BTN_RIGHT:
			p.btn++
		}
	}
}

func probeDevice(path string, dur time.Duration) (devProbe, error) {
	out := devProbe{path: path}
	f, err := os.Open(path)
	if err != nil {
		return out, err
	}
	defer f.Close()
	fd := int(f.Fd())

	if err := unix.SetNonblock(fd, true); err != nil {
		return out, err
	}

	reader := bufio.NewReaderSize(f, 4096)
	parser := &inputParser{}
	deadline := time.Now().Add(dur)

	for time.Now().Before(deadline) {
		pfd := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		_, _ = unix.Poll(pfd, 50)
		if pfd[0].Revents&unix.POLLIN == 0 {
			continue
		}
		buf := make([]byte, 4096)
		n, err := reader.Read(buf)
		if err != nil || n == 0 {
			continue
		}
		parser.feed(buf[:n], func(etype uint16, code uint16, _ int32) {
			out.count(etype, code)
		})
	}
	return out, nil
}

// autoDetectActiveDevice probes every event node for dur and returns the one
// that looks most like a touch panel. When nothing moves during the probe the
// name heuristic decides.
func autoDetectActiveDevice(explicit string, log *slog.Logger, probeDur time.Duration) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	matches, _ := filepath.Glob("/dev/input/event*")
	if len(matches) == 0 {
		return "", errors.New("no /dev/input/event* devices found")
	}
	sort.Strings(matches)

	bestScore := 0
	best := ""
	for _, p := range matches {
		pr, err := probeDevice(p, probeDur)
		if err != nil {
			log.Debug("probe failed", "path", p, "err", err)
			continue
		}
		s := pr.score()
		log.Debug("probe", "path", p, "score", s, "any", pr.any, "mt_slot", pr.mtSlot,
			"mt_pos", pr.mtPos, "abs_xy", pr.absXY, "touch", pr.btnTouch, "rel", pr.rel, "btn", pr.btn)
		if s > bestScore {
			bestScore = s
			best = pr.path
		}
	}
	if best == "" {
		best = pickByName(listProcInputDevices())
	}
	if best == "" {
		best = matches[0]
	}
	log.Debug("selected input device", "path", best, "score", bestScore)
	return best, nil
}
