// Command dmxresponder runs a software-only RDM responder over a real
// USB-RS485 adapter, its identity and personality set loaded from a
// YAML profile instead of hardcoded firmware constants. It exists for
// the same reason gopper's own host tooling shipped a way to exercise
// MCU-side behavior without flashing a board first: dmxctl needs
// something to talk to on a bench with no fixture wired up yet.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"dmxlink/dmx"
	dmxhal "dmxlink/hal"
	"dmxlink/hal/softtimer"
	"dmxlink/host/config"
	hostserialhal "dmxlink/host/hal"
	"dmxlink/host/monitor"
	"dmxlink/host/nvs"
	"dmxlink/rdm"
	"dmxlink/responder"
)

var profilePath = flag.String("profile", "", "path to a YAML device profile (required)")
var mqttBroker = flag.String("mqtt", "", "optional MQTT broker URL for a parameter-change/frame bridge")
var mqttPrefix = flag.String("mqtt-prefix", "dmxresponder", "MQTT topic prefix used when -mqtt is set")

func main() {
	flag.Parse()
	if *profilePath == "" {
		fmt.Fprintln(os.Stderr, "Error: -profile is required")
		os.Exit(1)
	}

	profile, err := config.Load(*profilePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	uartHal := hostserialhal.NewSerialHal(profile.Serial.Device)
	timer := softtimer.New()

	var nvsStore dmxhal.Nvs
	if profile.Serial.NvsPath != "" {
		store, err := nvs.Open(profile.Serial.NvsPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to open nvs at %s: %v\n", profile.Serial.NvsPath, err)
			os.Exit(1)
		}
		defer store.Close()
		nvsStore = store
	}

	driver, err := dmx.Install(uartHal, timer, nvsStore, dmx.DefaultConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to install driver: %v\n", err)
		os.Exit(1)
	}
	defer driver.Uninstall()

	go pumpInterrupts(uartHal, driver)

	r := responder.New(driver.Store, rdm.GetUID())
	if err := r.RegisterDeviceInfo(profile.ModelID, profile.Category, profile.SoftwareVersion); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := r.RegisterSoftwareVersionLabel(profile.SoftwareLabel); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := r.RegisterDeviceLabel(profile.DeviceLabel); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := r.RegisterDMXAddressing(profile.StartAddress, byte(len(profile.Personalities))); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *mqttBroker != "" {
		bridge, err := monitor.Dial(*mqttBroker, "dmxresponder-"+driver.InstanceID.String(), *mqttPrefix)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to dial mqtt broker %s: %v\n", *mqttBroker, err)
			os.Exit(1)
		}
		defer bridge.Close()
		_ = driver.Store.CallbackSet(responder.RootSubDevice, rdm.PIDDMXStartAddress, bridge)
		_ = driver.Store.CallbackSet(responder.RootSubDevice, rdm.PIDDeviceLabel, bridge)
		fmt.Printf("Publishing parameter changes to %s under %q\n", *mqttBroker, *mqttPrefix)
	}

	fmt.Printf("Serving %q as %s on %s (%d personalities, start address %d)\n",
		profile.DeviceLabel, r.UID, profile.Serial.Device, len(profile.Personalities), profile.StartAddress)

	stop := make(chan struct{})
	if err := responder.Serve(driver, r, stop); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func pumpInterrupts(uartHal *hostserialhal.SerialHal, driver *dmx.Driver) {
	for range uartHal.Notify() {
		driver.OnInterrupt(time.Now())
	}
}
