// Command dmxctl is a bench tool for exercising an RDM responder over
// a USB-RS485 adapter: it opens a dmx.Driver against a real serial
// device the way host/cmd/gopper-host opens an MCU connection, then
// drops into an interactive REPL for sending DISCOVERY/GET/SET
// requests and printing whatever comes back.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"dmxlink/dmx"
	dmxhal "dmxlink/hal"
	"dmxlink/hal/softtimer"
	hostserialhal "dmxlink/host/hal"
	"dmxlink/host/monitor"
	"dmxlink/host/nvs"
)

var (
	device     = flag.String("device", "/dev/ttyUSB0", "USB-RS485 adapter device path")
	nvsPath    = flag.String("nvs", "", "optional SQLite file for NON_VOLATILE parameter caching")
	mqttBroker = flag.String("mqtt", "", "optional MQTT broker URL (e.g. tcp://localhost:1883) for a live transaction/status bridge")
	mqttPrefix = flag.String("mqtt-prefix", "dmxctl", "MQTT topic prefix used when -mqtt is set")
)

func main() {
	flag.Parse()

	fmt.Println("dmxctl - DMX512/RDM bench controller")
	fmt.Println("=====================================")

	uartHal := hostserialhal.NewSerialHal(*device)
	timer := softtimer.New()

	var nvsStore dmxhal.Nvs
	if *nvsPath != "" {
		store, err := nvs.Open(*nvsPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to open nvs at %s: %v\n", *nvsPath, err)
			os.Exit(1)
		}
		defer store.Close()
		nvsStore = store
	}

	fmt.Printf("Opening %s...\n", *device)
	driver, err := dmx.Install(uartHal, timer, nvsStore, dmx.DefaultConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to install driver: %v\n", err)
		os.Exit(1)
	}
	defer driver.Uninstall()

	go pumpInterrupts(uartHal, driver)

	var bridge *monitor.Bridge
	if *mqttBroker != "" {
		bridge, err = monitor.Dial(*mqttBroker, "dmxctl-"+driver.InstanceID.String(), *mqttPrefix)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to dial mqtt broker %s: %v\n", *mqttBroker, err)
			os.Exit(1)
		}
		defer bridge.Close()
		fmt.Printf("Publishing transaction events to %s under %q\n", *mqttBroker, *mqttPrefix)
	}

	fmt.Println("Connected. Type 'help' for available commands, 'quit' to exit.")
	runREPL(driver, bridge)
}

// pumpInterrupts stands in for a real target's ISR: SerialHal has no
// interrupt controller of its own, so it wakes this goroutine whenever
// new RX/TX state is pending and it drives the framer directly.
func pumpInterrupts(uartHal *hostserialhal.SerialHal, driver *dmx.Driver) {
	for range uartHal.Notify() {
		driver.OnInterrupt(time.Now())
	}
}
