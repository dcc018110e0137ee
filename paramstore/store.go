package paramstore

import "errors"

// ErrNoCapacity is returned by AddParameter once the table has reached
// the capacity given to New.
var ErrNoCapacity = errors.New("paramstore: no capacity")

// ErrUnknownPID is returned by any accessor addressing a (sub_device,
// pid) pair that has not been registered with AddParameter.
var ErrUnknownPID = errors.New("paramstore: unknown pid")

// ErrStaticReadOnly is returned by ParameterSet against a Static
// parameter, whose value is owned by the registering caller.
var ErrStaticReadOnly = errors.New("paramstore: parameter is static, read-only")

// AddParameter registers def for subDevice with an initial value.
// Re-registering an existing key replaces only its definition; the
// stored value and callback are kept and initial is ignored. For
// NonVolatile parameters it first attempts to load a persisted value
// from the Nvs given to New, falling back to initial if none is
// stored, matching spec.md §4.4's add_parameter contract. It fails
// once the table holds cap entries and the key is not already
// present.
func (s *Store) AddParameter(subDevice uint16, def Definition, initial []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key{SubDevice: subDevice, PID: def.PID}
	if e, exists := s.entries[k]; exists {
		e.Def = def
		return nil
	}
	if len(s.entries) >= s.cap {
		return ErrNoCapacity
	}

	value := initial
	if def.Storage == NonVolatile && s.nvs != nil {
		if stored, ok := s.nvs.Load(nvsKey(subDevice, def.PID)); ok {
			value = stored
		}
	}
	if def.Storage != Static {
		cp := make([]byte, len(value))
		copy(cp, value)
		value = cp
	}
	s.entries[k] = &Entry{Def: def, Value: value}
	return nil
}

// ParameterExists reports whether (subDevice, pid) has been
// registered.
func (s *Store) ParameterExists(subDevice, pid uint16) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[key{subDevice, pid}]
	return ok
}

// Definition returns the registered definition for (subDevice, pid).
func (s *Store) Definition(subDevice, pid uint16) (Definition, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key{subDevice, pid}]
	if !ok {
		return Definition{}, false
	}
	return e.Def, true
}

// ParameterGet returns a copy of the current value at (subDevice,
// pid).
func (s *Store) ParameterGet(subDevice, pid uint16) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key{subDevice, pid}]
	if !ok {
		return nil, ErrUnknownPID
	}
	out := make([]byte, len(e.Value))
	copy(out, e.Value)
	return out, nil
}

// ParameterSet overwrites the value at (subDevice, pid), clamping to
// the entry's existing capacity when the definition specifies a fixed
// PDL, write-throughs NonVolatile entries to Nvs, pushes pid onto the
// change-notification queue, and fires the registered callback.
// Static entries reject Set outright since their storage is owned by
// the registering caller.
func (s *Store) ParameterSet(subDevice, pid uint16, value []byte) error {
	s.mu.Lock()
	k := key{subDevice, pid}
	e, ok := s.entries[k]
	if !ok {
		s.mu.Unlock()
		return ErrUnknownPID
	}
	if e.Def.Storage == Static {
		s.mu.Unlock()
		return ErrStaticReadOnly
	}

	if e.Def.PDL >= 0 && len(value) > e.Def.PDL {
		value = value[:e.Def.PDL]
	}
	e.Value = append(e.Value[:0], value...)
	stored := make([]byte, len(e.Value))
	copy(stored, e.Value)

	if e.Def.Storage == NonVolatile && s.nvs != nil {
		_ = s.nvs.Save(nvsKey(subDevice, pid), stored)
	}
	s.queuePush(pid)
	cb := e.Callback
	s.mu.Unlock()

	if cb != nil {
		cb.OnParameterChanged(subDevice, pid, stored)
	}
	return nil
}

// ParameterCopy copies the value at (subDevice, pid) into dst and
// returns the number of bytes copied, truncating if dst is shorter
// than the stored value. This mirrors rdm_parameter_copy's
// bounded-copy semantics from the original driver, avoiding an
// allocation on the hot GET path.
func (s *Store) ParameterCopy(subDevice, pid uint16, dst []byte) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key{subDevice, pid}]
	if !ok {
		return 0, ErrUnknownPID
	}
	n := copy(dst, e.Value)
	return n, nil
}

// CallbackSet installs a change-notification callback for (subDevice,
// pid).
func (s *Store) CallbackSet(subDevice, pid uint16, cb Callback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key{subDevice, pid}]
	if !ok {
		return ErrUnknownPID
	}
	e.Callback = cb
	return nil
}

// DefinitionSet updates the definition (format, PDL, supported
// commands) for an already-registered (subDevice, pid) without
// touching its value.
func (s *Store) DefinitionSet(subDevice uint16, def Definition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key{subDevice, def.PID}
	e, ok := s.entries[k]
	if !ok {
		return ErrUnknownPID
	}
	e.Def = def
	return nil
}

// PIDs returns the set of PIDs registered under subDevice in
// unspecified order, used by SUPPORTED_PARAMETERS.
func (s *Store) PIDs(subDevice uint16) []uint16 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]uint16, 0, len(s.entries))
	for k := range s.entries {
		if k.SubDevice == subDevice {
			out = append(out, k.PID)
		}
	}
	return out
}

// QueuePush appends pid to the pending QUEUED_MESSAGE queue, per
// spec.md's status/queued-message model grounded on
// rdm/responder/queue_status.c's rdm_queue_push.
func (s *Store) QueuePush(pid uint16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queuePush(pid)
}

// QueuePop removes and returns the oldest queued PID. ok is false when
// the queue is empty. It shifts the remaining entries down in place,
// same as queuePush, so the backing array is never reallocated.
func (s *Store) QueuePop() (pid uint16, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return 0, false
	}
	pid = s.queue[0]
	copy(s.queue, s.queue[1:])
	s.queue = s.queue[:len(s.queue)-1]
	return pid, true
}

// QueueLen reports how many messages are pending, used to answer
// QUEUED_MESSAGE's "no more messages" case.
func (s *Store) QueueLen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.queue)
}
