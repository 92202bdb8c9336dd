// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// This package provides a driver for the AOSONG AM2320 Temperature/Humidity
// Sensor. This sensor is a basic, inexpensive i2c sensor with reasonably good
// accuracy for both temperature and humidity.
//
// The sensor answers a reduced Modbus read-registers request. Every answer is
// checked for the echoed function code and register count and for its
// CRC16/MODBUS before any value is returned. A mismatch is reported as a
// *ProtocolError and is never retried by this package.
//
// # Datasheet
//
// https://cdn-shop.adafruit.com/product-files/3721/AM2320.pdf
package am2320

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/goburrow/modbus"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
)

const (
	// The address of this device is fixed. Note that the datasheet states
	// the value is 0xb8, which is the 8 bit write address.
	SensorAddress uint16 = 0xb8 >> 1

	// Minimum interval accepted by SenseContinuous. The sensor samples at
	// 0.5Hz.
	MinSenseInterval = 3 * time.Second
)

// Datasheet limits of the sensor. Readings are not checked against them
// unless Opts.CheckRange is set.
const (
	MinTemperature = -40.0
	MaxTemperature = 80.0
	MinHumidity    = 0.0
	MaxHumidity    = 99.9
)

// Opts holds the configuration options for the device.
type Opts struct {
	// Logger receives non fatal conditions, such as the sensor not
	// acknowledging the wake-up when the device is created. Nil means
	// log.Default().
	Logger *log.Logger
	// CheckRange turns readings outside of the datasheet range into a
	// *ProtocolError. By default values are returned as read.
	CheckRange bool
	// SignedTemperature decodes bit 15 of the temperature register as a
	// sign, so that readings below 0°C come out negative. By default the
	// register is read as an unsigned value.
	SignedTemperature bool
}

// DefaultOpts holds the default configuration options for the device.
var DefaultOpts = Opts{}

// Dev represents an am2320 temperature/humidity sensor.
//
// Dev owns its bus: Close releases it if it implements io.Closer. Once closed
// every operation fails with *InvalidStateError.
type Dev struct {
	opts Opts
	p    modbus.Packager

	mu  sync.Mutex
	bus i2c.Bus // nil once closed
	d   *i2c.Dev
	tr  *transporter

	stop chan struct{}
	wg   sync.WaitGroup
}

// NewI2C returns a Dev talking to the sensor at addr on b and wakes it up.
// An addr of 0 selects SensorAddress. The Opts can be nil.
//
// The sensor is asleep between reads and does not acknowledge the wake-up, so
// a failed wake-up is logged and otherwise ignored.
func NewI2C(b i2c.Bus, addr uint16, opts *Opts) (*Dev, error) {
	if b == nil {
		return nil, errors.New("am2320: nil bus")
	}
	if opts == nil {
		opts = &DefaultOpts
	}
	if addr == 0 {
		addr = SensorAddress
	}
	d := &i2c.Dev{Bus: b, Addr: addr}
	dev := &Dev{
		opts: *opts,
		p:    packager{},
		bus:  b,
		d:    d,
		tr:   &transporter{d: d},
	}
	if dev.opts.Logger == nil {
		dev.opts.Logger = log.Default()
	}
	if err := dev.tr.wake(); err != nil {
		dev.opts.Logger.Printf("am2320: wake-up on %s: %v", d, err)
	}
	return dev, nil
}

// Open opens the I²C bus name through the periph registry ("" for the first
// available one) and returns a Dev on it. The returned Dev owns the bus.
func Open(name string, addr uint16, opts *Opts) (*Dev, error) {
	b, err := i2creg.Open(name)
	if err != nil {
		return nil, &TransportError{Op: "open", Err: err}
	}
	dev, err := NewI2C(b, addr, opts)
	if err != nil {
		_ = b.Close()
		return nil, err
	}
	return dev, nil
}

// Close halts continuous sensing and releases the bus. It is a no-op on a
// closed device. The bus is released at most once, even if releasing it
// fails.
func (dev *Dev) Close() error {
	dev.mu.Lock()
	b, stop := dev.bus, dev.stop
	dev.bus = nil
	dev.d = nil
	dev.tr = nil
	dev.stop = nil
	dev.mu.Unlock()
	if stop != nil {
		close(stop)
		dev.wg.Wait()
	}
	if b == nil {
		return nil
	}
	if c, ok := b.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return &TransportError{Op: "close", Err: err}
		}
	}
	return nil
}

// Temperature returns the temperature in °C.
func (dev *Dev) Temperature() (float64, error) {
	r, err := dev.readRegisters(reqTemperature)
	if err != nil {
		return 0, err
	}
	t := dev.decodeTemperature(r)
	if err := dev.checkRange(reqTemperature.op, t, minTemperatureDeci, maxTemperatureDeci); err != nil {
		return 0, err
	}
	return float64(t) / 10, nil
}

// Humidity returns the relative humidity in %.
func (dev *Dev) Humidity() (float64, error) {
	r, err := dev.readRegisters(reqHumidity)
	if err != nil {
		return 0, err
	}
	h := humidityDeci(r)
	if err := dev.checkRange(reqHumidity.op, h, minHumidityDeci, maxHumidityDeci); err != nil {
		return 0, err
	}
	return float64(h) / 10, nil
}

// TemperatureHumidity reads both values in a single exchange.
func (dev *Dev) TemperatureHumidity() (temperature, humidity float64, err error) {
	t, h, err := dev.readBoth()
	if err != nil {
		return 0, 0, err
	}
	return float64(t) / 10, float64(h) / 10, nil
}

// DeviceInfo returns the model, version and ID registers as a hex string.
//
// It is meant for diagnostics only; many sensors leave these registers at
// zero.
func (dev *Dev) DeviceInfo() (string, error) {
	r, err := dev.readRegisters(reqDeviceInfo)
	if err != nil {
		return "", err
	}
	return deviceInfo(r), nil
}

// Sense queries the sensor for the current temperature and humidity. Note that
// the sensor reports a sample rate of 1/2 hz. It's recommended to not poll
// the sensor more frequently than once every 3 seconds.
func (dev *Dev) Sense(env *physic.Env) error {
	env.Temperature = 0
	env.Pressure = 0
	env.Humidity = 0

	t, h, err := dev.readBoth()
	if err != nil {
		return err
	}
	env.Humidity = physic.RelativeHumidity(h) * physic.MilliRH
	env.Temperature = physic.ZeroCelsius + (physic.Celsius/10)*physic.Temperature(t)
	return nil
}

// SenseContinuous returns a channel that can be read to return values from
// the sensor. The minimum value for interval is 3 seconds. Failed reads are
// skipped. To end the read, call Halt().
func (dev *Dev) SenseContinuous(interval time.Duration) (<-chan physic.Env, error) {
	if interval < MinSenseInterval {
		return nil, fmt.Errorf("am2320: invalid duration %s. minimum %s", interval, MinSenseInterval)
	}
	dev.mu.Lock()
	defer dev.mu.Unlock()
	if dev.bus == nil {
		return nil, &InvalidStateError{Op: "sense continuous"}
	}
	if dev.stop != nil {
		return nil, errors.New("am2320: sense continuous already running")
	}

	stop := make(chan struct{})
	dev.stop = stop
	ch := make(chan physic.Env, 16)
	dev.wg.Add(1)
	go func() {
		defer dev.wg.Done()
		defer close(ch)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				e := physic.Env{}
				if err := dev.Sense(&e); err != nil {
					continue
				}
				select {
				case ch <- e:
				case <-stop:
					return
				}
			}
		}
	}()
	return ch, nil
}

// Halt interrupts a running SenseContinuous() operation and closes its
// channel.
func (dev *Dev) Halt() error {
	dev.mu.Lock()
	stop := dev.stop
	dev.stop = nil
	dev.mu.Unlock()
	if stop != nil {
		close(stop)
		dev.wg.Wait()
	}
	return nil
}

func (dev *Dev) String() string {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	if dev.d == nil {
		return "am2320: closed"
	}
	return fmt.Sprintf("am2320: %s", dev.d)
}

// Precision returns the resolution of the device for it's measured parameters.
func (dev *Dev) Precision(env *physic.Env) {
	env.Temperature = physic.Celsius / 10
	env.Pressure = 0
	env.Humidity = physic.MilliRH
}

// readBoth returns temperature and humidity, in tenths.
func (dev *Dev) readBoth() (t, h int, err error) {
	r, err := dev.readRegisters(reqBoth)
	if err != nil {
		return 0, 0, err
	}
	h = humidityDeci(r[0:2])
	t = dev.decodeTemperature(r[2:4])
	if err := dev.checkRange(reqBoth.op, h, minHumidityDeci, maxHumidityDeci); err != nil {
		return 0, 0, err
	}
	if err := dev.checkRange(reqBoth.op, t, minTemperatureDeci, maxTemperatureDeci); err != nil {
		return 0, 0, err
	}
	return t, h, nil
}

// readRegisters wakes the sensor, sends the read command for r and returns
// the verified register bytes.
func (dev *Dev) readRegisters(r request) ([]byte, error) {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	if dev.bus == nil {
		return nil, &InvalidStateError{Op: r.op}
	}

	// The sensor sleeps after 3s of inactivity; it is expected to NACK this.
	_ = dev.tr.wake()

	adu, err := dev.p.Encode(r.pdu())
	if err != nil {
		return nil, err
	}
	resp, err := dev.tr.Send(adu)
	if err != nil {
		return nil, &TransportError{Op: r.op, Err: err}
	}
	if err := dev.p.Verify(adu, resp); err != nil {
		return nil, withOp(err, r.op)
	}
	pdu, err := dev.p.Decode(resp)
	if err != nil {
		return nil, withOp(err, r.op)
	}
	return pdu.Data, nil
}

func (dev *Dev) decodeTemperature(b []byte) int {
	if dev.opts.SignedTemperature {
		return signedTemperatureDeci(b)
	}
	return temperatureDeci(b)
}

func (dev *Dev) checkRange(op string, v, lo, hi int) error {
	if !dev.opts.CheckRange || (v >= lo && v <= hi) {
		return nil
	}
	return &ProtocolError{
		Op:     op,
		Reason: fmt.Sprintf("value %.1f out of range [%.1f, %.1f]", float64(v)/10, float64(lo)/10, float64(hi)/10),
	}
}

func withOp(err error, op string) error {
	var pe *ProtocolError
	if errors.As(err, &pe) && pe.Op == "" {
		pe.Op = op
	}
	return err
}

var _ conn.Resource = &Dev{}
var _ physic.SenseEnv = &Dev{}
