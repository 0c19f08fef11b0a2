package audio

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/gordonklaus/portaudio"
)

// Device describes an audio output device.
type Device struct {
	ID         int
	Name       string
	Channels   int
	SampleRate int
}

// OutputDevices lists the devices that can be used for playback.
// portaudio must be initialized.
func OutputDevices() ([]Device, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("list available audio devices: %w", err)
	}

	result := make([]Device, 0, len(devices))

	for i, d := range devices {
		if d.MaxOutputChannels < 1 {
			continue
		}

		result = append(result, Device{
			ID:         i,
			Name:       d.Name,
			Channels:   d.MaxOutputChannels,
			SampleRate: int(d.DefaultSampleRate),
		})
	}

	return result, nil
}

// PrintOutputDevices writes a table of the available output devices.
func PrintOutputDevices(w io.Writer) error {
	devices, err := OutputDevices()
	if err != nil {
		return err
	}

	format := "%2s  %-55s  %3s  %s\n"
	fmt.Fprintf(w, format, "ID", "NAME", "OUT", "SAMPLERATE")

	for _, d := range devices {
		fmt.Fprintf(w, "%2d  %-55s  %3d  %10d\n", d.ID, d.Name, d.Channels, d.SampleRate)
	}

	return nil
}

func outputDevice(deviceNameOrID string) (d *portaudio.DeviceInfo, err error) {
	if deviceNameOrID == "" {
		d, err = portaudio.DefaultOutputDevice()
		if err != nil {
			return nil, fmt.Errorf("get default audio output device: %w", err)
		}
	} else {
		d, err = findDevice(deviceNameOrID)
		if err != nil {
			return nil, fmt.Errorf("get audio output device: %w", err)
		}

		if d.MaxOutputChannels < 1 {
			return nil, fmt.Errorf("audio device %q is not an output device or in use by another program", d.Name)
		}
	}

	slog.Info(fmt.Sprintf("using audio output device %q, sample rate: %d", d.Name, int(d.DefaultSampleRate)))

	return d, nil
}

func findDevice(nameOrID string) (*portaudio.DeviceInfo, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("list available audio devices: %w", err)
	}

	deviceID, err := strconv.ParseInt(nameOrID, 10, 32)
	if err != nil {
		// Device name given
		for _, d := range devices {
			if strings.Contains(d.Name, nameOrID) {
				return d, nil
			}
		}

		return nil, fmt.Errorf("audio device %q not found", nameOrID)
	}

	if deviceID >= int64(len(devices)) || deviceID < 0 {
		return nil, fmt.Errorf("audio device %d not found - please specify the ID of an existing device", deviceID)
	}

	return devices[deviceID], nil
}
