package dmx

// Event is the notification a Driver posts from interrupt context to a
// task blocked in Receive, mirroring the xTaskNotifyFromISR payload in
// intr_handlers.h's dmx_intr_handler. Only one Event is ever pending at
// a time: a later notification overwrites an earlier, unread one,
// exactly like FreeRTOS's eSetValueWithOverwrite.
type Event struct {
	Status    Status
	StartCode byte
	Size      int
}
