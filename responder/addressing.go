package responder

import (
	"dmxlink/paramstore"
	"dmxlink/rdm"
)

// RegisterDMXAddressing installs the two PIDs every DMX-addressable
// device must answer per spec.md's built-in PID list: DMX_START_ADDRESS
// (persisted so a rigger's patch survives a power cycle) and
// DMX_PERSONALITY (which personality of personalityCount is active).
// personalityCount is fixed for the device's lifetime; only the
// current personality and start address are runtime-mutable.
func (r *Responder) RegisterDMXAddressing(startAddress uint16, personalityCount byte) error {
	addr := []byte{byte(startAddress >> 8), byte(startAddress)}
	if err := r.Store.AddParameter(RootSubDevice, paramstore.Definition{
		PID:          rdm.PIDDMXStartAddress,
		PDL:          2,
		Format:       "w",
		GetSupported: true,
		SetSupported: true,
		Storage:      paramstore.NonVolatile,
	}, addr); err != nil {
		return err
	}

	personality := []byte{1, personalityCount}
	if err := r.Store.AddParameter(RootSubDevice, paramstore.Definition{
		PID:          rdm.PIDDMXPersonality,
		PDL:          2,
		Format:       "bb",
		GetSupported: true,
		SetSupported: true,
		Storage:      paramstore.NonVolatile,
	}, personality); err != nil {
		return err
	}

	r.RegisterHandler(rdm.PIDDMXStartAddress, handleDMXStartAddress)
	r.RegisterHandler(rdm.PIDDMXPersonality, handleDMXPersonality)
	return nil
}

func handleDMXStartAddress(r *Responder, subDevice uint16, h rdm.Header, pdlIn []byte) ([]byte, rdm.NackReason, bool) {
	switch h.CC {
	case rdm.GetCommand:
		value, err := r.Store.ParameterGet(subDevice, rdm.PIDDMXStartAddress)
		if err != nil {
			return nil, rdm.NackHardwareFault, true
		}
		return value, 0, false
	case rdm.SetCommand:
		if len(pdlIn) != 2 {
			return nil, rdm.NackFormatError, true
		}
		addr := uint16(pdlIn[0])<<8 | uint16(pdlIn[1])
		if addr == 0 || addr > SlotCount-1 {
			return nil, rdm.NackDataOutOfRange, true
		}
		if err := r.Store.ParameterSet(subDevice, rdm.PIDDMXStartAddress, pdlIn); err != nil {
			return nil, rdm.NackHardwareFault, true
		}
		return nil, 0, false
	default:
		return nil, rdm.NackUnsupportedCommandClass, true
	}
}

func handleDMXPersonality(r *Responder, subDevice uint16, h rdm.Header, pdlIn []byte) ([]byte, rdm.NackReason, bool) {
	switch h.CC {
	case rdm.GetCommand:
		current, count := r.personality(subDevice)
		return []byte{current, count}, 0, false
	case rdm.SetCommand:
		if len(pdlIn) != 1 {
			return nil, rdm.NackFormatError, true
		}
		_, count := r.personality(subDevice)
		if pdlIn[0] == 0 || pdlIn[0] > count {
			return nil, rdm.NackDataOutOfRange, true
		}
		if err := r.Store.ParameterSet(subDevice, rdm.PIDDMXPersonality, []byte{pdlIn[0], count}); err != nil {
			return nil, rdm.NackHardwareFault, true
		}
		return nil, 0, false
	default:
		return nil, rdm.NackUnsupportedCommandClass, true
	}
}
