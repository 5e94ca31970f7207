package capture

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"
)

const procInputDevices = "/proc/bus/input/devices"

// Keys a device must report to count as a keyboard (KEY_A, KEY_D, KEY_SPACE).
var keyboardProbeCodes = []int{30, 32, 57}

// Device is an input device that looks like a keyboard.
type Device struct {
	Path     string
	Name     string
	Phys     string
	Readable bool
}

// FindKeyboards lists keyboard event devices from /proc/bus/input/devices.
func FindKeyboards() ([]Device, error) {
	f, err := os.Open(procInputDevices)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return parseInputDevices(f)
}

// ListKeyboards is FindKeyboards with read permission filled in.
func ListKeyboards() ([]Device, error) {
	devices, err := FindKeyboards()
	if err != nil {
		return nil, err
	}
	for i := range devices {
		devices[i].Readable = readable(devices[i].Path)
	}
	return devices, nil
}

func parseInputDevices(r io.Reader) ([]Device, error) {
	var devices []Device
	var cur Device
	isKeyboard := false

	flush := func() {
		if isKeyboard && cur.Path != "" {
			devices = append(devices, cur)
		}
		cur = Device{}
		isKeyboard = false
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, "N: Name="):
			cur.Name = strings.Trim(strings.TrimPrefix(line, "N: Name="), `"`)
		case strings.HasPrefix(line, "P: Phys="):
			cur.Phys = strings.TrimPrefix(line, "P: Phys=")
		case strings.HasPrefix(line, "H: Handlers="):
			for _, part := range strings.Fields(strings.TrimPrefix(line, "H: Handlers=")) {
				if strings.HasPrefix(part, "event") {
					cur.Path = "/dev/input/" + part
				}
			}
		case strings.HasPrefix(line, "B: KEY="):
			isKeyboard = hasKeyBits(strings.Fields(strings.TrimPrefix(line, "B: KEY=")), keyboardProbeCodes)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()
	return devices, nil
}

// hasKeyBits checks a KEY capability bitmap. The kernel prints it as 64-bit
// hex words, most significant first.
func hasKeyBits(words []string, codes []int) bool {
	if len(words) == 0 {
		return false
	}
	for _, code := range codes {
		idx := len(words) - 1 - code/64
		if idx < 0 {
			return false
		}
		word, err := strconv.ParseUint(words[idx], 16, 64)
		if err != nil {
			return false
		}
		if word&(1<<uint(code%64)) == 0 {
			return false
		}
	}
	return true
}
