// Package bluetooth reports the Bluetooth radio power state.
//
// The state is read from the kernel's rfkill class directory: the first
// entry whose type is "bluetooth" supplies a state byte, which maps to a
// [DeviceState]. The feed renders "on", "off" or "--".
package bluetooth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultRfkillDir is where the kernel exposes rfkill switches.
const DefaultRfkillDir = "/sys/class/rfkill"

// ErrInvalidStateByte is returned for an rfkill state byte outside the
// known set.
var ErrInvalidStateByte = errors.New("invalid state byte")

// DeviceState is the power state of a Bluetooth radio.
type DeviceState int

const (
	// NoDev means the switch exists but reports no device.
	NoDev DeviceState = iota

	// OffHard means the radio is blocked by a hardware switch.
	OffHard

	// OffSoft means the radio is blocked in software.
	OffSoft

	// On means the radio is powered.
	On
)

// String returns the name of the state.
func (s DeviceState) String() string {
	switch s {
	case NoDev:
		return "NoDev"
	case OffHard:
		return "OffHard"
	case OffSoft:
		return "OffSoft"
	case On:
		return "On"
	default:
		return fmt.Sprintf("DeviceState(%d)", int(s))
	}
}

// FromByte maps an rfkill state byte to a [DeviceState].
//
// Returns an error wrapping [ErrInvalidStateByte] for any other byte.
func FromByte(b uint8) (DeviceState, error) {
	switch b {
	case 0:
		return OffSoft, nil
	case 1:
		return On, nil
	case 2:
		return OffHard, nil
	case 254:
		return NoDev, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrInvalidStateByte, b)
	}
}

// Reading is one sample of the rfkill directory.
//
// Present is false when no Bluetooth switch exists. Raw is the unvalidated
// state byte; validation happens when the reading is applied to [State].
type Reading struct {
	Present bool
	Raw     uint8
}

// Reader samples the rfkill directory.
type Reader struct {
	// Dir is the rfkill class directory. Defaults to [DefaultRfkillDir].
	Dir string
}

// Read returns the state byte of the first Bluetooth rfkill switch.
//
// Entries are scanned in name order. A directory without a Bluetooth
// switch yields a Reading with Present false. Unreadable files and
// non-numeric state files are errors.
func (r Reader) Read(_ context.Context) (Reading, error) {
	dir := r.Dir
	if dir == "" {
		dir = DefaultRfkillDir
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return Reading{}, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	for _, entry := range entries {
		base := filepath.Join(dir, entry.Name())

		kind, err := readTrimmed(filepath.Join(base, "type"))
		if err != nil {
			return Reading{}, err
		}
		if kind != "bluetooth" {
			continue
		}

		raw, err := readTrimmed(filepath.Join(base, "state"))
		if err != nil {
			return Reading{}, err
		}
		b, err := strconv.ParseUint(raw, 10, 8)
		if err != nil {
			return Reading{}, fmt.Errorf("failed to parse %s/state: %w", base, err)
		}
		return Reading{Present: true, Raw: uint8(b)}, nil
	}

	return Reading{}, nil
}

func readTrimmed(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return strings.TrimRight(string(data), " \t\r\n"), nil
}
