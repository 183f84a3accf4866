package chip

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	host "periph.io/x/host/v3"
)

// Open initialises the host drivers, opens the named SPI port (for example
// "/dev/spidev0.0" or "SPI0.0", empty for the first one registered) and
// returns a Flash on it. The caller closes the returned port.
func Open(port string, freq physic.Frequency, mode spi.Mode, opts ...FlashOption) (*Flash, spi.PortCloser, error) {
	if _, err := host.Init(); err != nil {
		return nil, nil, fmt.Errorf("host init: %w", err)
	}

	p, err := spireg.Open(port)
	if err != nil {
		return nil, nil, fmt.Errorf("open spi port %q: %w", port, err)
	}

	c, err := p.Connect(freq, mode, 8)
	if err != nil {
		p.Close()
		return nil, nil, fmt.Errorf("connect spi port %q at %s: %w", port, freq, err)
	}

	return NewFlash(c, opts...), p, nil
}

// ChipSelectPin looks up a GPIO by name (for example "GPIO8" or "D3") for use
// with WithChipSelect. The pin is driven high (deselected) before returning.
func ChipSelectPin(name string) (gpio.PinOut, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host init: %w", err)
	}

	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("gpio %q not found", name)
	}
	if err := pin.Out(gpio.High); err != nil {
		return nil, fmt.Errorf("gpio %q: %w", name, err)
	}
	return pin, nil
}
