// Copyright 2025 The GlowGrid Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	terminate "github.com/pulcy/go-terminate"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/glowgrid/DimmerWorker/model"
	"github.com/glowgrid/DimmerWorker/pkg/logging"
	"github.com/glowgrid/DimmerWorker/pkg/ui"
	"github.com/glowgrid/DimmerWorker/server"
	"github.com/glowgrid/DimmerWorker/service"
	"github.com/glowgrid/DimmerWorker/service/bridge"
	"github.com/glowgrid/DimmerWorker/service/mqtt"
)

const (
	projectName       = "GlowGrid Dimmer Worker"
	defaultServerPort = 7133
)

var (
	projectVersion = "dev"
	projectBuild   = "dev"
	maskAny        = errors.WithStack
)

func main() {
	var levelFlag string
	var configPath string
	var bridgeType string
	var chipName string
	var activeLow bool
	var serverHost string
	var serverPort int
	var mqttHost string
	var mqttPort int
	var mqttUserName string
	var mqttPassword string
	var topicPrefix string
	var reportInterval time.Duration
	var logFile string
	var showUI bool

	pflag.StringVarP(&levelFlag, "level", "l", "debug", "Set log level")
	pflag.StringVarP(&configPath, "config", "c", "channels.yaml", "Path of the channel configuration file")
	pflag.StringVarP(&bridgeType, "bridge", "b", "rpi", "Type of bridge to use (rpi|cdev|stub)")
	pflag.StringVar(&chipName, "chip", "gpiochip0", "GPIO chip driven by the cdev bridge")
	pflag.BoolVar(&activeLow, "active-low", false, "Invert the output pins of the rpi bridge")
	pflag.StringVar(&serverHost, "host", "0.0.0.0", "Host address the HTTP server will listen on")
	pflag.IntVar(&serverPort, "port", defaultServerPort, "Port the HTTP server will listen on")
	pflag.StringVar(&mqttHost, "mqtt-host", "", "Host of the MQTT broker (empty disables reporting)")
	pflag.IntVar(&mqttPort, "mqtt-port", 1883, "Port of the MQTT broker")
	pflag.StringVar(&mqttUserName, "mqtt-user", "", "Username for the MQTT broker")
	pflag.StringVar(&mqttPassword, "mqtt-password", "", "Password for the MQTT broker")
	pflag.StringVar(&topicPrefix, "topic-prefix", "dimmerworker", "Prefix of all MQTT topics")
	pflag.DurationVar(&reportInterval, "report-interval", time.Second*5, "Interval between MQTT status publications")
	pflag.StringVar(&logFile, "log-file", "", "Also write logs to this file")
	pflag.BoolVar(&showUI, "ui", false, "Show the terminal dashboard")
	pflag.Parse()

	logWriters := []io.Writer{zerolog.ConsoleWriter{Out: os.Stderr}}
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			Exitf("Failed to open log file: %v\n", err)
		}
		defer f.Close()
		logWriters = append(logWriters, f)
	}
	ctx, cancel := context.WithCancel(context.Background())
	var mqttLogWriter logging.MQTTWriter
	if mqttHost != "" {
		mqttLogWriter = logging.NewMQTTWriter(ctx)
		logWriters = append(logWriters, mqttLogWriter)
	}
	logger := zerolog.New(logging.NewMultiWriter(logWriters...)).With().Timestamp().Logger()
	if level, err := zerolog.ParseLevel(levelFlag); err != nil {
		Exitf("Invalid log level '%s': %v\n", levelFlag, err)
	} else {
		logger = logger.Level(level)
	}

	conf, err := model.LoadConfig(configPath)
	if err != nil {
		Exitf("Failed to load configuration: %v\n", err)
	}

	pins := make([]int, len(conf.Channels))
	for i, ch := range conf.Channels {
		pins[i] = ch.Pin
	}
	var br bridge.API
	switch bridgeType {
	case "rpi":
		br, err = bridge.NewRaspberryPiBridge(pins, activeLow)
		if err != nil {
			Exitf("Failed to initialize Raspberry Pi bridge: %v\n", err)
		}
	case "cdev":
		br, err = bridge.NewGpiocdevBridge(chipName, pins)
		if err != nil {
			Exitf("Failed to initialize GPIO character device bridge: %v\n", err)
		}
	case "stub":
		br = bridge.NewStubBridge(len(conf.Channels))
	default:
		Exitf("Unknown bridge type '%s' (rpi|cdev|stub)\n", bridgeType)
	}

	var mqttService mqtt.Service
	if mqttHost != "" {
		mqttService, err = mqtt.NewService(mqtt.Config{
			Host:     mqttHost,
			Port:     mqttPort,
			UserName: mqttUserName,
			Password: mqttPassword,
			ClientID: topicPrefix,
		}, logger)
		if err != nil {
			Exitf("Failed to initialize MQTT service: %v\n", err)
		}
		mqttLogWriter.SetDestination(topicPrefix+"/logs", mqttService)
		mqttLogWriter.Enable(true)
	}

	svc, err := service.NewService(service.Config{
		ProgramVersion: projectVersion,
		Worker:         conf,
		TopicPrefix:    topicPrefix,
		ReportInterval: reportInterval,
	}, service.Dependencies{
		Log:    logger,
		Bridge: br,
		Mqtt:   mqttService,
	})
	if err != nil {
		Exitf("Failed to initialize Service: %v\n", err)
	}

	httpServer, err := server.NewServer(server.Config{
		Host: serverHost,
		Port: serverPort,
	}, svc, logger)
	if err != nil {
		Exitf("Failed to initialize Server: %v\n", err)
	}

	// Prepare to shutdown in a controlled manor
	t := terminate.NewTerminator(func(template string, args ...interface{}) {
		logger.Info().Msgf(template, args...)
	}, cancel)
	go t.ListenSignals()

	fmt.Printf("Starting %s (version %s build %s)\n", projectName, projectVersion, projectBuild)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return svc.Run(ctx) })
	g.Go(func() error { return httpServer.Run(ctx) })
	if showUI {
		g.Go(func() error {
			defer cancel()
			return ui.Run(ctx, svc)
		})
	}
	if err := g.Wait(); err != nil {
		Exitf("Service run failed: %#v", err)
	}
}

// Print the given error message and exit with code 1
func Exitf(message string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, message, args...)
	os.Exit(1)
}
