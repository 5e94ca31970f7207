//go:build linux

package capture

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"syscall"
	"time"
	"unsafe"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"

	"github.com/verte-zerg/cstrafe/internal/model"
)

const (
	evSyn = 0
	evKey = 1

	synReport  = 0
	synDropped = 3

	// sizeof(long): input_event keeps the timestamp as two longs on every
	// ABI, 32-bit time64 userspace included.
	longSize = 4 << (^uint(0) >> 63)

	// struct input_event: sec + usec + type + code + value.
	inputEventSize = 2*longSize + 8

	// _IOW('E', 0xa0, int)
	eviocsclockid = 0x400445a0

	// _IOR('E', 0x18, len) with len = sizeof(KeyBits)
	eviocgkey = 2<<30 | len(KeyBits{})<<16 | 'E'<<8 | 0x18
)

// EvdevSource reads key events from /dev/input/event* devices.
type EvdevSource struct {
	device string

	mu        sync.Mutex
	files     []*os.File
	closeOnce sync.Once
}

// NewEvdevSource reads from device, or from every discovered keyboard when
// device is empty.
func NewEvdevSource(device string) *EvdevSource {
	return &EvdevSource{device: device}
}

// Open opens the devices and switches their timestamps to CLOCK_MONOTONIC.
func (s *EvdevSource) Open() error {
	var paths []string
	if s.device != "" {
		paths = []string{s.device}
	} else {
		devices, err := FindKeyboards()
		if err != nil {
			return fmt.Errorf("cannot find keyboard devices: %w", err)
		}
		for _, d := range devices {
			paths = append(paths, d.Path)
		}
	}
	if len(paths) == 0 {
		return errors.New("no keyboard devices found")
	}

	var openErr error
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, path := range paths {
		f, err := os.OpenFile(path, os.O_RDONLY, 0)
		if err != nil {
			openErr = err
			continue
		}
		if err := useMonotonicClock(f); err != nil {
			_ = f.Close()
			openErr = fmt.Errorf("%s: set clock: %w", path, err)
			continue
		}
		s.files = append(s.files, f)
	}
	if len(s.files) == 0 {
		return fmt.Errorf("cannot read keyboard devices: %w", openErr)
	}
	return nil
}

func useMonotonicClock(f *os.File) error {
	conn, err := f.SyscallConn()
	if err != nil {
		return err
	}
	var ioctlErr error
	if err := conn.Control(func(fd uintptr) {
		ioctlErr = unix.IoctlSetPointerInt(int(fd), eviocsclockid, unix.CLOCK_MONOTONIC)
	}); err != nil {
		return err
	}
	return ioctlErr
}

// Run reads every opened device until ctx is done or all devices fail.
func (s *EvdevSource) Run(ctx context.Context, emit func(RawEvent)) error {
	s.mu.Lock()
	files := append([]*os.File(nil), s.files...)
	s.mu.Unlock()

	finished := make(chan struct{})
	defer close(finished)
	go func() {
		select {
		case <-ctx.Done():
			// Closing unblocks pending reads.
			_ = s.Close()
		case <-finished:
		}
	}()

	var g errgroup.Group
	for _, f := range files {
		g.Go(func() error {
			err := readEvents(f, func() (KeyBits, error) { return keyState(f) }, emit)
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("%s: %w", f.Name(), err)
		})
	}
	return g.Wait()
}

// keyState asks the kernel which keys are down right now.
func keyState(f *os.File) (KeyBits, error) {
	var bits KeyBits
	conn, err := f.SyscallConn()
	if err != nil {
		return bits, err
	}
	var errno syscall.Errno
	if err := conn.Control(func(fd uintptr) {
		_, _, errno = unix.Syscall(unix.SYS_IOCTL, fd, uintptr(eviocgkey), uintptr(unsafe.Pointer(&bits[0])))
	}); err != nil {
		return bits, err
	}
	if errno != 0 {
		return KeyBits{}, errno
	}
	return bits, nil
}

type inputEvent struct {
	typ   uint16
	code  uint16
	value int32
	at    model.Timestamp
}

func parseInputEvent(buf []byte) (inputEvent, bool) {
	if len(buf) < inputEventSize {
		return inputEvent{}, false
	}
	sec, usec := readLong(buf[0:]), readLong(buf[longSize:])
	rest := buf[2*longSize:]
	at := time.Duration(sec)*time.Second + time.Duration(usec)*time.Microsecond
	return inputEvent{
		typ:   binary.NativeEndian.Uint16(rest[0:2]),
		code:  binary.NativeEndian.Uint16(rest[2:4]),
		value: int32(binary.NativeEndian.Uint32(rest[4:8])),
		at:    model.Timestamp(at),
	}, true
}

func readLong(b []byte) int64 {
	if longSize == 8 {
		return int64(binary.NativeEndian.Uint64(b))
	}
	return int64(int32(binary.NativeEndian.Uint32(b)))
}

// readEvents decodes the device stream. After SYN_DROPPED the kernel's
// events are incomplete up to the next SYN_REPORT; those are skipped and a
// resync carrying the current key state is emitted instead. When the state
// cannot be read every key is reported up.
func readEvents(r io.Reader, state func() (KeyBits, error), emit func(RawEvent)) error {
	buf := make([]byte, inputEventSize)
	dropping := false
	for {
		if _, err := io.ReadFull(r, buf); err != nil {
			return err
		}
		ev, _ := parseInputEvent(buf)
		if ev.typ == evSyn {
			switch ev.code {
			case synDropped:
				dropping = true
			case synReport:
				if dropping {
					dropping = false
					held, err := state()
					if err != nil {
						held = KeyBits{}
					}
					emit(RawEvent{Resync: true, Held: held, At: ev.at})
				}
			}
			continue
		}
		if dropping {
			continue
		}
		if raw, ok := ev.key(); ok {
			emit(raw)
		}
	}
}

// key keeps EV_KEY events: value 0 is a release, 1 a press and 2 an
// auto-repeat (reported as a press).
func (e inputEvent) key() (RawEvent, bool) {
	if e.typ != evKey || e.value < 0 || e.value > 2 {
		return RawEvent{}, false
	}
	return RawEvent{Code: e.code, Pressed: e.value != 0, At: e.at}, true
}

func decodeInputEvent(buf []byte) (RawEvent, bool) {
	ev, ok := parseInputEvent(buf)
	if !ok {
		return RawEvent{}, false
	}
	return ev.key()
}

// Close closes every device. Safe to call more than once.
func (s *EvdevSource) Close() error {
	var errs []error
	s.closeOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, f := range s.files {
			if err := f.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	})
	return errors.Join(errs...)
}

func readable(path string) bool {
	return unix.Access(path, unix.R_OK) == nil
}
