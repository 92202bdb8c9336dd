// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// am2320 reads an AM2320 temperature/humidity sensor.
package main

import (
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"time"

	"github.com/GermanBionicSystems/am2320/am2320"
	"github.com/GermanBionicSystems/am2320/readout"
	"github.com/GermanBionicSystems/am2320/sensordriver"
	"github.com/GermanBionicSystems/am2320/termgauge"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/host/v3"
)

// logRegistrar stands in for a host sensor framework.
type logRegistrar struct{}

func (logRegistrar) Register(cfg sensordriver.SensorConfig, _ sensordriver.Source) error {
	log.Printf("register %s %q (%s v%d, resolution %g, max %g, %gmA)",
		cfg.Type, cfg.Name, cfg.Vendor, cfg.Version, cfg.Resolution, cfg.MaxRange, cfg.Power)
	return nil
}

func (logRegistrar) Unregister(cfg sensordriver.SensorConfig) error {
	log.Printf("unregister %q", cfg.Name)
	return nil
}

func mainImpl() error {
	configPath := flag.String("config", "", "YAML configuration file")
	busName := flag.String("bus", "", "I²C bus to use")
	var addr i2c.Addr
	flag.Var(&addr, "addr", "I²C address of the sensor (default 0x5c)")
	interval := flag.Duration("interval", 0, "time between readings (minimum 3s)")
	count := flag.Int("n", 1, "number of readings, 0 to read forever")
	checkRange := flag.Bool("range", false, "reject readings outside of the datasheet range")
	signed := flag.Bool("signed", false, "decode bit 15 of the temperature as a sign")
	info := flag.Bool("info", false, "print the device information registers")
	gauge := flag.Bool("gauge", false, "draw the readings as bars")
	pngPath := flag.String("png", "", "write the last reading to this PNG file")
	flag.Parse()
	if flag.NArg() != 0 {
		return fmt.Errorf("unexpected argument: %v", flag.Args())
	}

	cfg := &sensordriver.Config{}
	if *configPath != "" {
		var err error
		if cfg, err = sensordriver.Load(*configPath); err != nil {
			return err
		}
	}
	if *busName != "" {
		cfg.Bus = *busName
	}
	if addr != 0 {
		cfg.Address = uint16(addr)
	}
	if *interval != 0 {
		cfg.IntervalMs = int(*interval / time.Millisecond)
	}
	if *checkRange {
		cfg.CheckRange = true
	}
	if *signed {
		cfg.SignedTemperature = true
	}
	sensordriver.Normalize(cfg)
	if err := sensordriver.Validate(cfg); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if _, err := host.Init(); err != nil {
		return err
	}
	dev, err := am2320.Open(cfg.Bus, cfg.Address, &am2320.Opts{CheckRange: cfg.CheckRange, SignedTemperature: cfg.SignedTemperature})
	if err != nil {
		return err
	}
	drv, err := sensordriver.New(dev, logRegistrar{}, cfg.Sensors...)
	if err != nil {
		_ = dev.Close()
		return err
	}
	defer func() {
		if err := drv.Close(); err != nil {
			log.Print(err)
		}
	}()

	if *info {
		s, err := dev.DeviceInfo()
		if err != nil {
			return err
		}
		fmt.Printf("%s: device info %s\n", dev, s)
	}

	if err := drv.Register(); err != nil {
		return err
	}

	var gauges map[sensordriver.SensorType]*termgauge.Dev
	if *gauge {
		gauges = map[sensordriver.SensorType]*termgauge.Dev{}
		for _, src := range drv.Sources() {
			c := src.Config()
			lo := am2320.MinTemperature
			if c.Type == sensordriver.RelativeHumidity {
				lo = am2320.MinHumidity
			}
			g, err := termgauge.New(&termgauge.Opts{Width: 40, Min: lo, Max: c.MaxRange})
			if err != nil {
				return err
			}
			gauges[c.Type] = g
		}
	}

	last := map[sensordriver.SensorType]float64{}
	for i := 0; *count == 0 || i < *count; i++ {
		if i != 0 {
			time.Sleep(cfg.Interval())
		}
		for _, src := range drv.Sources() {
			e, err := src.Read()
			if err != nil {
				log.Printf("%s: %v", src.Config().Name, err)
				continue
			}
			last[e.Type] = e.Value
			unit := "°C"
			if e.Type == sensordriver.RelativeHumidity {
				unit = "%RH"
			}
			if g := gauges[e.Type]; g != nil {
				if err := g.Show(src.Config().Name, e.Value, unit); err != nil {
					return err
				}
				if err := g.Halt(); err != nil {
					return err
				}
				continue
			}
			fmt.Printf("%s %s: %.1f%s\n", e.Timestamp.Format(time.RFC3339), src.Config().Name, e.Value, unit)
		}
	}

	if *pngPath != "" {
		img, err := readout.Render(image.Rect(0, 0, 128, 64), last[sensordriver.AmbientTemperature], last[sensordriver.RelativeHumidity], nil)
		if err != nil {
			return err
		}
		if err := readout.SavePNG(*pngPath, img); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "am2320: %s.\n", err)
		os.Exit(1)
	}
}
