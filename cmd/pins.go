// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Luxcomm Labs

package cmd

import (
	"fmt"
	"sync"

	"go.bug.st/serial"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/luxcomm/heliograph/pkg/photon"
)

var hostInitOnce sync.Once

func initHost() error {
	var err error
	hostInitOnce.Do(func() {
		_, err = host.Init()
	})
	return err
}

// gpioEmitter drives a GPIO output pin as the light emitter.
type gpioEmitter struct {
	pin gpio.PinIO
}

func (e *gpioEmitter) SetLevel(on bool) {
	// Out only fails on misconfigured pins, which openGPIOEmitter rules
	// out at open time.
	_ = e.pin.Out(gpio.Level(on))
}

// gpioSensor reads a GPIO input pin as the light sensor.
type gpioSensor struct {
	pin gpio.PinIO
}

func (s *gpioSensor) Read() bool {
	return s.pin.Read() == gpio.High
}

func openGPIOEmitter(name string) (photon.Emitter, error) {
	if err := initHost(); err != nil {
		return nil, fmt.Errorf("gpio host init: %w", err)
	}
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("unknown gpio pin %q", name)
	}
	if err := pin.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("configure %s as output: %w", name, err)
	}
	return &gpioEmitter{pin: pin}, nil
}

func openGPIOSensor(name string) (photon.Sensor, error) {
	if err := initHost(); err != nil {
		return nil, fmt.Errorf("gpio host init: %w", err)
	}
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("unknown gpio pin %q", name)
	}
	if err := pin.In(gpio.PullDown, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("configure %s as input: %w", name, err)
	}
	return &gpioSensor{pin: pin}, nil
}

// serialLink repurposes a serial adapter's modem lines as the optical
// pair: DTR drives the emitter, CTS senses the detector. The UART data
// lines are unused; the baud rate only matters for opening the port.
type serialLink struct {
	port serial.Port
}

func (l *serialLink) SetLevel(on bool) {
	_ = l.port.SetDTR(on)
}

func (l *serialLink) Read() bool {
	bits, err := l.port.GetModemStatusBits()
	if err != nil {
		return false
	}
	return bits.CTS
}

func openSerialLink(portName string, baud int) (*serialLink, error) {
	port, err := serial.Open(portName, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", portName, err)
	}
	if err := port.SetDTR(false); err != nil {
		port.Close()
		return nil, fmt.Errorf("clear DTR on %s: %w", portName, err)
	}
	return &serialLink{port: port}, nil
}

// openEmitter picks the transmit-side driver from the configuration:
// loopback, serial DTR, or a GPIO pin, in that precedence.
func openEmitter(cfg *Config) (photon.Emitter, error) {
	switch {
	case useLoopback:
		return photon.NewMemoryLink(), nil
	case cfg.Link.SerialPort != "":
		return openSerialLink(cfg.Link.SerialPort, cfg.Link.Baud)
	case cfg.Link.TxPin != "":
		return openGPIOEmitter(cfg.Link.TxPin)
	default:
		return nil, fmt.Errorf("no emitter configured: set --tx-pin, --serial-port or --loopback")
	}
}

// openSensor picks the receive-side driver from the configuration.
func openSensor(cfg *Config) (photon.Sensor, error) {
	switch {
	case useLoopback:
		return photon.NewMemoryLink(), nil
	case cfg.Link.SerialPort != "":
		return openSerialLink(cfg.Link.SerialPort, cfg.Link.Baud)
	case cfg.Link.RxPin != "":
		return openGPIOSensor(cfg.Link.RxPin)
	default:
		return nil, fmt.Errorf("no sensor configured: set --rx-pin, --serial-port or --loopback")
	}
}

// openStatusIndicator opens the optional status blink pin. Returns nil
// with no error when none is configured.
func openStatusIndicator(cfg *Config) (photon.Emitter, error) {
	if cfg.Link.StatusPin == "" {
		return nil, nil
	}
	return openGPIOEmitter(cfg.Link.StatusPin)
}
