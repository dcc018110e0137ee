//go:build linux

package hal

import (
	"errors"
	"time"
	"unsafe"

	dmxhal "dmxlink/hal"

	"golang.org/x/sys/unix"
)

var errUnsupportedBaud = errors.New("serialhal: unsupported baud rate")

// controlFd is a second, raw file descriptor opened on the same tty
// path SerialHal's tarm/serial port uses. tarm/serial's Config has no
// way to request PARMRK break marking or TIOCSRS485 half-duplex mode,
// so those go through this fd directly via golang.org/x/sys/unix, the
// same package host/serial's native backend links against for the MCU
// side's build.
type controlFd struct {
	fd int
}

func openControlFd(device string) (*controlFd, error) {
	fd, err := unix.Open(device, unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, err
	}
	return &controlFd{fd: fd}, nil
}

// setBreakSensingRawMode puts the line into raw mode with IGNBRK and
// BRKINT cleared and PARMRK set, so a received break condition
// surfaces in a read() as the byte sequence 0xFF 0x00 0x00 instead of
// being ignored or turned into a signal and a queue flush.
func (c *controlFd) setBreakSensingRawMode(cfg dmxhal.UartConfig) error {
	t, err := unix.IoctlGetTermios(c.fd, unix.TCGETS)
	if err != nil {
		return err
	}

	t.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.ISTRIP | unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	t.Iflag |= unix.PARMRK
	t.Oflag &^= unix.OPOST
	t.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	t.Cflag &^= unix.CSIZE | unix.PARENB
	t.Cflag |= unix.CS8 | unix.CSTOPB | unix.CLOCAL | unix.CREAD
	t.Cc[unix.VMIN] = 0
	t.Cc[unix.VTIME] = 1

	if err := setBaud(t, cfg.BaudRate); err != nil {
		return err
	}
	return unix.IoctlSetTermios(c.fd, unix.TCSETS, t)
}

func (c *controlFd) setBaud(baud uint32) {
	t, err := unix.IoctlGetTermios(c.fd, unix.TCGETS)
	if err != nil {
		return
	}
	if setBaud(t, baud) == nil {
		_ = unix.IoctlSetTermios(c.fd, unix.TCSETS, t)
	}
}

func setBaud(t *unix.Termios, baud uint32) error {
	rate, ok := standardRates[baud]
	if !ok {
		// DMX512's 250000 baud has no POSIX Bxxx constant on most
		// systems; termios2/BOTHER (custom divisor) is required. The
		// generic unix.Termios here only covers the standard table, so
		// non-standard rates fail closed rather than silently running
		// at the wrong speed.
		return errUnsupportedBaud
	}
	t.Ispeed, t.Ospeed = rate, rate
	t.Cflag = (t.Cflag &^ unix.CBAUD) | rate
	return nil
}

var standardRates = map[uint32]uint32{
	9600:   unix.B9600,
	19200:  unix.B19200,
	38400:  unix.B38400,
	57600:  unix.B57600,
	115200: unix.B115200,
	230400: unix.B230400,
}

func (c *controlFd) enableRS485() error {
	conf := rs485Config{
		flags: rs485Enabled | rs485RTSOnSend,
	}
	return ioctlRS485(c.fd, unix.TIOCSRS485, &conf)
}

func (c *controlFd) setDirection(dir dmxhal.Direction) {
	// With rs485RTSOnSend latched at Configure time, the driver
	// asserts RTS by writing; there is no separate direction ioctl to
	// flip per dmxhal.Direction. TIOCM_RTS is toggled directly for
	// drivers/adapters that need an explicit assertion outside of a
	// write, matching how some FTDI RS-485 adapters behave.
	bits := unix.TIOCM_RTS
	if dir == dmxhal.DirectionTX {
		_ = unix.IoctlSetPointerInt(c.fd, unix.TIOCMBIS, bits)
	} else {
		_ = unix.IoctlSetPointerInt(c.fd, unix.TIOCMBIC, bits)
	}
}

func (c *controlFd) assertBreak() {
	_ = unix.IoctlSetInt(c.fd, unix.TIOCSBRK, 0)
}

func (c *controlFd) clearBreak() {
	_ = unix.IoctlSetInt(c.fd, unix.TIOCCBRK, 0)
}

func (c *controlFd) read(buf []byte) (int, error) {
	for {
		n, err := unix.Read(c.fd, buf)
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			time.Sleep(time.Millisecond)
			continue
		}
		return n, err
	}
}

func (c *controlFd) close() error {
	return unix.Close(c.fd)
}

// rs485Config mirrors struct serial_rs485 from <linux/serial.h>; the
// x/sys/unix package doesn't define it since it's a driver-specific
// ioctl rather than a POSIX one.
type rs485Config struct {
	flags              uint32
	delayRTSBeforeSend uint32
	delayRTSAfterSend  uint32
	padding            [5]uint32
}

const (
	rs485Enabled   uint32 = 1 << 0
	rs485RTSOnSend uint32 = 1 << 1
)

func ioctlRS485(fd int, req uint, conf *rs485Config) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uintptr(req), uintptr(unsafe.Pointer(conf)))
	if errno != 0 {
		return errno
	}
	return nil
}
