package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"dmxlink/dmx"
	"dmxlink/host/monitor"
	"dmxlink/rdm"

	"github.com/google/shlex"
)

// pidByName lets the REPL accept "get device_label ..." instead of
// requiring the caller to remember 0x0082.
var pidByName = map[string]uint16{
	"supported_parameters":  rdm.PIDSupportedParameters,
	"device_info":           rdm.PIDDeviceInfo,
	"device_label":          rdm.PIDDeviceLabel,
	"software_version":      rdm.PIDSoftwareVersionLabel,
	"dmx_start_address":     rdm.PIDDMXStartAddress,
	"dmx_personality":       rdm.PIDDMXPersonality,
	"queued_message":        rdm.PIDQueuedMessage,
	"manufacturer_label":    rdm.PIDManufacturerLabel,
	"device_model":          rdm.PIDDeviceModelDescription,
}

func runREPL(driver *dmx.Driver, bridge *monitor.Bridge) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("dmxctl> ")
		if !scanner.Scan() {
			break
		}
		args, err := shlex.Split(scanner.Text())
		if err != nil || len(args) == 0 {
			continue
		}

		switch args[0] {
		case "quit", "exit", "q":
			fmt.Println("Goodbye!")
			return
		case "help", "?":
			printHelp()
		case "discover":
			runDiscover(driver, bridge)
		case "mute":
			runMuteCommand(driver, bridge, args[1:], rdm.PIDDiscMute)
		case "unmute":
			runMuteCommand(driver, bridge, args[1:], rdm.PIDDiscUnMute)
		case "get":
			runGet(driver, bridge, args[1:])
		case "set":
			runSet(driver, bridge, args[1:])
		default:
			fmt.Printf("Unknown command: %s (type 'help' for available commands)\n", args[0])
		}
	}
}

func printHelp() {
	fmt.Println(`
Available commands:
  discover                          send a full-range DISC_UNIQUE_BRANCH
  mute <uid>                        send DISC_MUTE to <uid>
  unmute <uid>                      send DISC_UN_MUTE to <uid>
  get <param> <uid>                 send a GET request
  set <param> <uid> <value>         send a SET request (value is ASCII for label params, hex otherwise)
  quit/exit/q                       exit dmxctl

Known params: supported_parameters, device_info, device_label, software_version,
dmx_start_address, dmx_personality, queued_message, manufacturer_label, device_model`)
}

func runDiscover(driver *dmx.Driver, bridge *monitor.Bridge) {
	pdl := make([]byte, 12)
	rdm.PutUID(pdl[0:6], 0)
	rdm.PutUID(pdl[6:12], rdm.MaxUID)
	packet, err := rdm.FormatHeader(rdm.Header{
		DestUID:   rdm.BroadcastUID,
		SourceUID: rdm.GetUID(),
		CC:        rdm.DiscoveryCommand,
		PID:       rdm.PIDDiscUniqueBranch,
	}, pdl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}
	if err := driver.Send(packet); err != nil {
		fmt.Fprintf(os.Stderr, "Error sending discovery: %v\n", err)
		return
	}
	if err := driver.WaitSent(time.Second); err != nil {
		fmt.Fprintf(os.Stderr, "Error: discovery frame did not transmit: %v\n", err)
		return
	}

	dst := make([]byte, dmx.SlotCount)
	n, startCode, err := driver.Receive(dst, 500*time.Millisecond)
	if err != nil {
		fmt.Println("No discovery response.")
		publishStatus(bridge, "discovery-timeout")
		return
	}
	publishFrame(bridge, startCode, n)
	uid, checksumValid, ok := rdm.ParseDiscoveryResponse(dst[:n])
	if !ok || !checksumValid {
		fmt.Println("Discovery response failed to parse (likely a collision).")
		publishStatus(bridge, "discovery-collision")
		return
	}
	fmt.Printf("Discovered %s\n", uid)
	publishStatus(bridge, "discovered:"+uid.String())
}

func runMuteCommand(driver *dmx.Driver, bridge *monitor.Bridge, args []string, pid uint16) {
	if len(args) != 1 {
		fmt.Println("usage: mute|unmute <uid>")
		return
	}
	dest, err := parseUID(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}
	sendTransaction(driver, bridge, rdm.Header{
		DestUID:   dest,
		SourceUID: rdm.GetUID(),
		CC:        rdm.DiscoveryCommand,
		PID:       pid,
	}, nil)
}

func runGet(driver *dmx.Driver, bridge *monitor.Bridge, args []string) {
	if len(args) != 2 {
		fmt.Println("usage: get <param> <uid>")
		return
	}
	pid, ok := pidByName[args[0]]
	if !ok {
		fmt.Printf("unknown parameter: %s\n", args[0])
		return
	}
	dest, err := parseUID(args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}
	sendTransaction(driver, bridge, rdm.Header{
		DestUID:   dest,
		SourceUID: rdm.GetUID(),
		CC:        rdm.GetCommand,
		PID:       pid,
	}, nil)
}

func runSet(driver *dmx.Driver, bridge *monitor.Bridge, args []string) {
	if len(args) != 3 {
		fmt.Println("usage: set <param> <uid> <value>")
		return
	}
	pid, ok := pidByName[args[0]]
	if !ok {
		fmt.Printf("unknown parameter: %s\n", args[0])
		return
	}
	dest, err := parseUID(args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}
	sendTransaction(driver, bridge, rdm.Header{
		DestUID:   dest,
		SourceUID: rdm.GetUID(),
		CC:        rdm.SetCommand,
		PID:       pid,
	}, encodeValue(args[0], args[2]))
}

// encodeValue treats ASCII-label parameters as plain text and
// everything else as hex, matching how a bench operator would type
// each kind of value at the prompt.
func encodeValue(param, value string) []byte {
	switch param {
	case "device_label", "manufacturer_label", "device_model":
		return []byte(value)
	default:
		b, err := hexDecode(value)
		if err != nil {
			return []byte(value)
		}
		return b
	}
}

func hexDecode(s string) ([]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	if len(s)%2 != 0 {
		s = "0" + s
	}
	out := make([]byte, len(s)/2)
	for i := range out {
		v, err := strconv.ParseUint(s[i*2:i*2+2], 16, 8)
		if err != nil {
			return nil, err
		}
		out[i] = byte(v)
	}
	return out, nil
}

func parseUID(s string) (rdm.UID, error) {
	s = strings.TrimPrefix(s, "0x")
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid uid %q: %w", s, err)
	}
	return rdm.UID(v), nil
}

func sendTransaction(driver *dmx.Driver, bridge *monitor.Bridge, h rdm.Header, pdl []byte) {
	packet, err := rdm.FormatHeader(h, pdl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding request: %v\n", err)
		return
	}
	if err := driver.Send(packet); err != nil {
		fmt.Fprintf(os.Stderr, "Error sending: %v\n", err)
		return
	}
	if err := driver.WaitSent(time.Second); err != nil {
		fmt.Fprintf(os.Stderr, "Error: request did not transmit: %v\n", err)
		return
	}

	dst := make([]byte, dmx.SlotCount)
	n, startCode, err := driver.Receive(dst, 500*time.Millisecond)
	if err != nil {
		fmt.Println("No response.")
		publishStatus(bridge, "response-timeout")
		return
	}
	publishFrame(bridge, startCode, n)
	resp, respPDL, checksumValid, ok := rdm.ParseHeader(dst[:n])
	if !ok || !checksumValid {
		fmt.Println("Response failed to parse.")
		publishStatus(bridge, "response-parse-error")
		return
	}
	if rdm.ResponseType(resp.PortID) == rdm.ResponseTypeNackReason && len(respPDL) == 2 {
		reason := rdm.NackReason(uint16(respPDL[0])<<8 | uint16(respPDL[1]))
		fmt.Printf("NACK: %#04x\n", uint16(reason))
		publishStatus(bridge, fmt.Sprintf("nack:%#04x", uint16(reason)))
		return
	}
	fmt.Printf("ACK from %s: % x\n", resp.SourceUID, respPDL)
	publishStatus(bridge, "ack:"+resp.SourceUID.String())
}

// publishFrame and publishStatus let every command site report to an
// optional bridge without a nil check at each call site.
func publishFrame(bridge *monitor.Bridge, startCode byte, slotCount int) {
	if bridge != nil {
		bridge.PublishFrame(startCode, slotCount)
	}
}

func publishStatus(bridge *monitor.Bridge, status string) {
	if bridge != nil {
		bridge.PublishEvent(status)
	}
}
