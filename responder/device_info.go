package responder

import (
	"dmxlink/paramstore"
	"dmxlink/rdm"
)

// deviceInfoFormat matches product_info.c's registered response
// format exactly: two literal bytes (RDM protocol version 1.0) then
// the fields spec.md's scenario 1 lists in order.
const deviceInfoFormat = "x01x00wwdwbbwwb$"

// RegisterDeviceInfo stores the manufacturer-supplied identity fields
// (model ID, product category, software version ID) and installs the
// GET DEVICE_INFO handler that synthesizes the remaining fields at
// call time, mirroring rdm_register_device_info /
// rdm_rhd_get_device_info's split between stored and computed data.
func (r *Responder) RegisterDeviceInfo(modelID, category uint16, softwareVersion uint32) error {
	value, err := rdm.EncodePDL("wwd", modelID, category, softwareVersion)
	if err != nil {
		return err
	}
	def := paramstore.Definition{
		PID:          rdm.PIDDeviceInfo,
		PDL:          len(value),
		Format:       "wwd",
		GetSupported: true,
		Storage:      paramstore.Volatile,
	}
	if err := r.Store.AddParameter(RootSubDevice, def, value); err != nil {
		return err
	}
	r.RegisterHandler(rdm.PIDDeviceInfo, handleDeviceInfo)
	return nil
}

func handleDeviceInfo(r *Responder, subDevice uint16, h rdm.Header, _ []byte) ([]byte, rdm.NackReason, bool) {
	if h.CC != rdm.GetCommand {
		return nil, rdm.NackUnsupportedCommandClass, true
	}

	productInfo, err := r.Store.ParameterGet(subDevice, rdm.PIDDeviceInfo)
	if err != nil {
		return nil, rdm.NackHardwareFault, true
	}
	fields, err := rdm.DecodePDL("wwd", productInfo)
	if err != nil {
		return nil, rdm.NackHardwareFault, true
	}
	modelID := fields[0].(uint16)
	category := fields[1].(uint16)
	swVersion := fields[2].(uint32)

	personalityCurrent, personalityCount := r.personality(subDevice)
	footprint := uint16(0)
	if personalityCurrent > 0 {
		footprint = uint16(SlotCount - 1)
	}
	startAddress := r.startAddress(subDevice)

	pdl, err := rdm.EncodePDL(deviceInfoFormat,
		modelID, category, swVersion, footprint,
		personalityCurrent, personalityCount, startAddress,
		uint16(0), // sub_device_count: this driver has only the root device
		byte(0),   // sensor_count: not modeled
	)
	if err != nil {
		return nil, rdm.NackHardwareFault, true
	}
	return pdl, 0, false
}

// SlotCount mirrors dmx.SlotCount so the parameter handlers need not
// reach for the dmx package; only serve.go imports dmx.
const SlotCount = 513

func (r *Responder) personality(subDevice uint16) (current, count byte) {
	value, err := r.Store.ParameterGet(subDevice, rdm.PIDDMXPersonality)
	if err != nil || len(value) < 2 {
		return 0, 0
	}
	return value[0], value[1]
}

func (r *Responder) startAddress(subDevice uint16) uint16 {
	value, err := r.Store.ParameterGet(subDevice, rdm.PIDDMXStartAddress)
	if err != nil || len(value) < 2 {
		return 0
	}
	return uint16(value[0])<<8 | uint16(value[1])
}

// RegisterDeviceLabel installs DEVICE_LABEL: a user-settable ASCII
// name persisted through Nvs, mirroring rdm_register_device_label.
// initial is used only the first time the label is registered; on
// later boots the stored value (if any) wins via Store.AddParameter's
// NonVolatile load.
func (r *Responder) RegisterDeviceLabel(initial string) error {
	def := paramstore.Definition{
		PID:          rdm.PIDDeviceLabel,
		PDL:          -1,
		Format:       "a",
		GetSupported: true,
		SetSupported: true,
		Storage:      paramstore.NonVolatile,
	}
	return r.Store.AddParameter(RootSubDevice, def, []byte(initial))
}

// RegisterSoftwareVersionLabel installs SOFTWARE_VERSION_LABEL as a
// read-only, static ASCII string, mirroring
// rdm_register_software_version_label's build-time-fixed label.
func (r *Responder) RegisterSoftwareVersionLabel(label string) error {
	def := paramstore.Definition{
		PID:          rdm.PIDSoftwareVersionLabel,
		PDL:          len(label),
		Format:       "a$",
		GetSupported: true,
		Storage:      paramstore.Static,
	}
	return r.Store.AddParameter(RootSubDevice, def, []byte(label))
}
