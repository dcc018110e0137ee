// Package responder implements the RDM dispatch loop described in
// spec.md §4.5: given a parsed standard RDM request, look up the
// addressed parameter, run its GET/SET handler, and compose the
// ACK or NACK reply; ACK_TIMER replies are not produced. Dispatch sits
// directly on paramstore and rdm and has no notion of a UART; only
// Serve (serve.go) touches a dmx.Driver, matching the layering the
// original driver keeps between rdm/responder/*.c and the framer.
package responder

import (
	"dmxlink/paramstore"
	"dmxlink/rdm"
)

// RootSubDevice is the always-present sub-device 0x0000.
const RootSubDevice uint16 = 0x0000

// HandlerFunc answers one GET or SET request already routed to a
// specific PID. It returns the ACK payload (nil for none) or a
// non-zero NackReason. Handlers must not block.
type HandlerFunc func(r *Responder, subDevice uint16, h rdm.Header, pdlIn []byte) (ack []byte, nack rdm.NackReason, isNack bool)

// mandatory lists PIDs every responder answers even without a
// registered parameter entry, per spec.md §4.5 step 1.
var mandatory = map[uint16]bool{
	rdm.PIDSupportedParameters: true,
	rdm.PIDDiscUniqueBranch:    true,
	rdm.PIDDiscMute:            true,
	rdm.PIDDiscUnMute:          true,
}

// Responder binds a parameter Store to this device's UID and a table
// of per-PID handlers.
type Responder struct {
	Store *paramstore.Store
	UID   rdm.UID

	// IdentifyFunc, if set, is invoked whenever SET IDENTIFY_DEVICE
	// changes state, so a target can flash a status LED or beep.
	IdentifyFunc func(on bool)

	handlers map[uint16]HandlerFunc

	muted       bool
	identifying bool
	tn          uint8
}

// New returns a Responder over store, registering the handlers every
// device needs regardless of what the caller adds afterward
// (SUPPORTED_PARAMETERS, the discovery mute pair, QUEUED_MESSAGE,
// STATUS_MESSAGES, IDENTIFY_DEVICE and PARAMETER_DESCRIPTION).
func New(store *paramstore.Store, uid rdm.UID) *Responder {
	r := &Responder{
		Store:    store,
		UID:      uid,
		handlers: make(map[uint16]HandlerFunc),
	}
	r.RegisterHandler(rdm.PIDSupportedParameters, handleSupportedParameters)
	r.RegisterHandler(rdm.PIDDiscMute, r.handleDiscMuteRequest)
	r.RegisterHandler(rdm.PIDDiscUnMute, r.handleDiscUnMuteRequest)
	r.RegisterHandler(rdm.PIDQueuedMessage, handleQueuedMessage)
	r.RegisterHandler(rdm.PIDStatusMessages, handleStatusMessages)
	r.RegisterHandler(rdm.PIDIdentifyDevice, handleIdentifyDevice)
	r.RegisterHandler(rdm.PIDParameterDescription, handleParameterDescription)
	return r
}

// RegisterHandler installs the handler invoked for pid, overwriting
// any previous registration.
func (r *Responder) RegisterHandler(pid uint16, fn HandlerFunc) {
	r.handlers[pid] = fn
}

// Muted reports whether DISC_MUTE is in effect. While muted the
// responder does not answer DISC_UNIQUE_BRANCH; every other request is
// answered as usual, matching the mute semantics discovery relies on.
func (r *Responder) Muted() bool { return r.muted }

// Dispatch runs the responder algorithm from spec.md §4.5 against a
// parsed standard RDM header and its PDL. It returns the outgoing
// packet bytes and true if a response should be transmitted; requests
// addressed to the broadcast UID produce no response, matching real
// RDM's silent-broadcast rule.
func (r *Responder) Dispatch(h rdm.Header, pdlIn []byte) (out []byte, respond bool) {
	if h.CC == rdm.DiscoveryCommand && h.PID == rdm.PIDDiscUniqueBranch {
		return r.HandleDiscUniqueBranch(pdlIn)
	}

	if h.DestUID != r.UID && h.DestUID != rdm.BroadcastUID {
		return nil, false
	}
	broadcast := h.DestUID == rdm.BroadcastUID

	handler, hasHandler := r.handlers[h.PID]
	_, isMandatory := mandatory[h.PID]
	if !hasHandler && !isMandatory && !r.Store.ParameterExists(RootSubDevice, h.PID) {
		if broadcast {
			return nil, false
		}
		return r.nack(h, rdm.NackUnknownPID), true
	}

	var ack []byte
	var nackReason rdm.NackReason
	var isNack bool
	if hasHandler {
		ack, nackReason, isNack = handler(r, RootSubDevice, h, pdlIn)
	} else {
		ack, nackReason, isNack = r.dispatchParameter(RootSubDevice, h, pdlIn)
	}

	if broadcast {
		// Broadcasts (including DISC_MUTE/UN_MUTE sent to
		// BroadcastUID) never get an answer, ACK or NACK.
		return nil, false
	}
	if isNack {
		return r.nack(h, nackReason), true
	}
	return r.ack(h, ack), true
}

func (r *Responder) dispatchParameter(subDevice uint16, h rdm.Header, pdlIn []byte) (ack []byte, nack rdm.NackReason, isNack bool) {
	def, ok := r.Store.Definition(subDevice, h.PID)
	if !ok {
		return nil, rdm.NackUnknownPID, true
	}

	switch h.CC {
	case rdm.GetCommand:
		if !def.GetSupported {
			return nil, rdm.NackUnsupportedCommandClass, true
		}
		value, err := r.Store.ParameterGet(subDevice, h.PID)
		if err != nil {
			return nil, rdm.NackHardwareFault, true
		}
		return value, 0, false

	case rdm.SetCommand:
		if !def.SetSupported {
			return nil, rdm.NackUnsupportedCommandClass, true
		}
		if def.PDL >= 0 && len(pdlIn) > def.PDL {
			return nil, rdm.NackFormatError, true
		}
		if err := r.Store.ParameterSet(subDevice, h.PID, pdlIn); err != nil {
			return nil, rdm.NackHardwareFault, true
		}
		return nil, 0, false

	default:
		return nil, rdm.NackUnsupportedCommandClass, true
	}
}

func (r *Responder) ack(req rdm.Header, pdl []byte) []byte {
	resp := r.responseHeader(req, rdm.ResponseTypeAck, pdl)
	out, _ := rdm.FormatHeader(resp, pdl)
	return out
}

func (r *Responder) nack(req rdm.Header, reason rdm.NackReason) []byte {
	pdl := []byte{byte(reason >> 8), byte(reason)}
	resp := r.responseHeader(req, rdm.ResponseTypeNackReason, pdl)
	out, _ := rdm.FormatHeader(resp, pdl)
	return out
}

func (r *Responder) responseHeader(req rdm.Header, rt rdm.ResponseType, pdl []byte) rdm.Header {
	cc := rdm.GetCommandResponse
	switch req.CC {
	case rdm.SetCommand:
		cc = rdm.SetCommandResponse
	case rdm.DiscoveryCommand:
		cc = rdm.DiscoveryCommandResponse
	}
	return rdm.Header{
		DestUID:      req.SourceUID,
		SourceUID:    r.UID,
		TN:           req.TN,
		PortID:       uint8(rt),
		MessageCount: uint8(r.Store.QueueLen()),
		SubDevice:    req.SubDevice,
		CC:           cc,
		PID:          req.PID,
	}
}
