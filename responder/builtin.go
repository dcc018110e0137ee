package responder

import "dmxlink/rdm"

// handleSupportedParameters answers GET SUPPORTED_PARAMETERS with the
// list of PIDs this responder knows about beyond the ones every RDM
// device must answer regardless of registration (DISC_*,
// SUPPORTED_PARAMETERS itself, and the required PIDs listed in
// spec.md §4.5), matching how real responders omit PIDs that need no
// discovery.
func handleSupportedParameters(r *Responder, subDevice uint16, h rdm.Header, _ []byte) ([]byte, rdm.NackReason, bool) {
	if h.CC != rdm.GetCommand {
		return nil, rdm.NackUnsupportedCommandClass, true
	}
	pids := r.Store.PIDs(subDevice)
	out := make([]byte, 0, len(pids)*2)
	for _, pid := range pids {
		if omitFromSupportedParameters[pid] {
			continue
		}
		out = append(out, byte(pid>>8), byte(pid))
	}
	return out, 0, false
}

var omitFromSupportedParameters = map[uint16]bool{
	rdm.PIDDiscUniqueBranch:     true,
	rdm.PIDDiscMute:             true,
	rdm.PIDDiscUnMute:           true,
	rdm.PIDSupportedParameters:  true,
	rdm.PIDParameterDescription: true,
	rdm.PIDDeviceInfo:           true,
	rdm.PIDSoftwareVersionLabel: true,
	rdm.PIDDMXStartAddress:      true,
	rdm.PIDIdentifyDevice:       true,
}

// handleStatusMessages answers GET STATUS_MESSAGES. This responder
// tracks no sensor/threshold conditions of its own, so it always
// reports none, exactly like rdm_rhd_status_messages's stub in the
// original driver.
func handleStatusMessages(r *Responder, _ uint16, h rdm.Header, _ []byte) ([]byte, rdm.NackReason, bool) {
	if h.CC != rdm.GetCommand {
		return nil, rdm.NackUnsupportedCommandClass, true
	}
	return nil, 0, false
}

// handleQueuedMessage answers GET QUEUED_MESSAGE: pop the oldest
// pending PID's current value, or fall back to an empty
// STATUS_MESSAGES response when the queue is empty. This resolves the
// "TODO: get the PD and emplace it into pd" left in
// rdm/responder/queue_status.c — this driver's parameter store already
// has a copying accessor (ParameterGet) so the queued value is looked
// up directly instead of left as a follow-up.
func handleQueuedMessage(r *Responder, subDevice uint16, h rdm.Header, pdlIn []byte) ([]byte, rdm.NackReason, bool) {
	if h.CC != rdm.GetCommand {
		return nil, rdm.NackUnsupportedCommandClass, true
	}
	if len(pdlIn) < 1 {
		return nil, rdm.NackFormatError, true
	}
	statusType := pdlIn[0]
	switch statusType {
	case statusGetLastMessage, statusAdvisory, statusWarning, statusError:
	default:
		return nil, rdm.NackDataOutOfRange, true
	}

	pid, ok := r.Store.QueuePop()
	if !ok {
		return handleStatusMessages(r, subDevice, rdm.Header{CC: rdm.GetCommand}, nil)
	}

	value, err := r.Store.ParameterGet(subDevice, pid)
	if err != nil {
		// The PID was queued but has since been deregistered; report
		// via STATUS_MESSAGES rather than fail the request outright.
		return handleStatusMessages(r, subDevice, rdm.Header{CC: rdm.GetCommand}, nil)
	}
	pdl, err := rdm.EncodePDL("w", pid)
	if err != nil {
		return nil, rdm.NackHardwareFault, true
	}
	return append(pdl, value...), 0, false
}

const (
	statusGetLastMessage byte = 0x01
	statusAdvisory       byte = 0x02
	statusWarning        byte = 0x03
	statusError          byte = 0x04
)

// handleIdentifyDevice answers GET/SET IDENTIFY_DEVICE, the one PID
// every RDM device must support so a rigger can pick a single fixture
// out of a truss run. The identify flag itself has no on-wire side
// effect at this layer; a fixture wires IdentifyFunc to flash a lamp
// or beep.
func handleIdentifyDevice(r *Responder, subDevice uint16, h rdm.Header, pdlIn []byte) ([]byte, rdm.NackReason, bool) {
	switch h.CC {
	case rdm.GetCommand:
		v := byte(0)
		if r.identifying {
			v = 1
		}
		return []byte{v}, 0, false
	case rdm.SetCommand:
		if len(pdlIn) != 1 || pdlIn[0] > 1 {
			return nil, rdm.NackFormatError, true
		}
		r.identifying = pdlIn[0] == 1
		if r.IdentifyFunc != nil {
			r.IdentifyFunc(r.identifying)
		}
		return nil, 0, false
	default:
		return nil, rdm.NackUnsupportedCommandClass, true
	}
}

// handleParameterDescription answers GET PARAMETER_DESCRIPTION, which
// spec.md scopes to manufacturer-specific PIDs only. This responder
// registers none, so any request NACKs UNKNOWN_PID exactly as a real
// responder would for a PID with nothing to describe.
func handleParameterDescription(_ *Responder, _ uint16, h rdm.Header, _ []byte) ([]byte, rdm.NackReason, bool) {
	if h.CC != rdm.GetCommand {
		return nil, rdm.NackUnsupportedCommandClass, true
	}
	return nil, rdm.NackUnknownPID, true
}
