package ledserial

import (
	"errors"
	"fmt"
	"hash"
	"hash/crc32"
	"io"
)

// ErrChecksum is returned when a packet's trailing checksum does not match.
var ErrChecksum = errors.New("packet checksum mismatch")

// WriteIncomingPacket writes a packet for the controller to w.
func WriteIncomingPacket(w io.Writer, p IncomingPacket) error {
	pw := newPacketWriter(w)
	pw.u8(uint8(p.Type()))

	switch p := p.(type) {
	case InitializePacket:
		pw.u16(p.NumLEDs)
	case ClearPacket:
	case SetPacket:
		pw.raw(p.Pix)
	default:
		return fmt.Errorf("unknown packet type: %T", p)
	}

	return pw.finish()
}

// ReadIncomingPacket reads a packet sent to the controller from r.
func ReadIncomingPacket(r io.Reader, context ReadContext) (IncomingPacket, error) {
	pr := newPacketReader(r)

	ptype := IncomingPacketType(pr.u8())
	if pr.err != nil {
		return nil, fmt.Errorf("failed to read incoming packet type: %w", pr.err)
	}

	var packet IncomingPacket
	switch ptype {
	case TypeInitializePacket:
		packet = InitializePacket{NumLEDs: pr.u16()}
	case TypeClearPacket:
		packet = ClearPacket{}
	case TypeSetPacket:
		packet = SetPacket{Pix: pr.raw(3 * int(context.NumLEDs))}
	default:
		return nil, fmt.Errorf("unknown packet type: %s", ptype)
	}

	if err := pr.finish(); err != nil {
		return nil, fmt.Errorf("failed to read %s packet: %w", ptype, err)
	}
	return packet, nil
}

// WriteOutgoingPacket writes a packet from the controller to w.
func WriteOutgoingPacket(w io.Writer, p OutgoingPacket) error {
	pw := newPacketWriter(w)
	pw.u8(uint8(p.Type()))

	switch p := p.(type) {
	case ErrorPacket:
		pw.str(p.Message)
	case PanicPacket:
	case LogPacket:
		pw.str(p.Message)
	case AckPacket:
		pw.u8(uint8(p.IncomingPacketType))
	default:
		return fmt.Errorf("unknown packet type: %T", p)
	}

	return pw.finish()
}

// ReadOutgoingPacket reads a packet sent by the controller from r.
func ReadOutgoingPacket(r io.Reader) (OutgoingPacket, error) {
	pr := newPacketReader(r)

	ptype := OutgoingPacketType(pr.u8())
	if pr.err != nil {
		return nil, fmt.Errorf("failed to read outgoing packet type: %w", pr.err)
	}

	var packet OutgoingPacket
	switch ptype {
	case TypeErrorPacket:
		packet = ErrorPacket{Message: pr.str()}
	case TypePanicPacket:
		packet = PanicPacket{}
	case TypeLogPacket:
		packet = LogPacket{Message: pr.str()}
	case TypeAckPacket:
		packet = AckPacket{IncomingPacketType: IncomingPacketType(pr.u8())}
	default:
		return nil, fmt.Errorf("unknown packet type: %s", ptype)
	}

	if err := pr.finish(); err != nil {
		return nil, fmt.Errorf("failed to read %s packet: %w", ptype, err)
	}
	return packet, nil
}

// packetWriter accumulates a packet and its checksum, then writes it in one
// call so that a serial port never sees half a packet from us.
type packetWriter struct {
	w    io.Writer
	buf  []byte
	hash hash.Hash32
}

func newPacketWriter(w io.Writer) *packetWriter {
	return &packetWriter{w: w, hash: crc32.NewIEEE()}
}

func (pw *packetWriter) u8(b uint8) { pw.buf = append(pw.buf, b) }

func (pw *packetWriter) u16(v uint16) { pw.buf = Endianness.AppendUint16(pw.buf, v) }

func (pw *packetWriter) raw(b []byte) { pw.buf = append(pw.buf, b...) }

func (pw *packetWriter) str(s string) {
	pw.u16(uint16(len(s)))
	pw.buf = append(pw.buf, s...)
}

func (pw *packetWriter) finish() error {
	pw.hash.Write(pw.buf)
	pw.buf = Endianness.AppendUint32(pw.buf, pw.hash.Sum32())
	if _, err := pw.w.Write(pw.buf); err != nil {
		return fmt.Errorf("failed to write packet: %w", err)
	}
	return nil
}

// packetReader reads fields while hashing them. The first error sticks and
// every later read returns zero values.
type packetReader struct {
	r    io.Reader
	hash hash.Hash32
	err  error
}

func newPacketReader(r io.Reader) *packetReader {
	hash := crc32.NewIEEE()
	return &packetReader{r: io.TeeReader(r, hash), hash: hash}
}

func (pr *packetReader) read(n int) []byte {
	if pr.err != nil {
		return make([]byte, n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(pr.r, buf); err != nil {
		pr.err = err
	}
	return buf
}

func (pr *packetReader) u8() uint8 { return pr.read(1)[0] }

func (pr *packetReader) u16() uint16 { return Endianness.Uint16(pr.read(2)) }

func (pr *packetReader) raw(n int) []byte { return pr.read(n) }

func (pr *packetReader) str() string { return string(pr.read(int(pr.u16()))) }

func (pr *packetReader) finish() error {
	if pr.err != nil {
		return pr.err
	}

	want := pr.hash.Sum32()

	var sum [4]byte
	if _, err := io.ReadFull(pr.r, sum[:]); err != nil {
		return fmt.Errorf("failed to read checksum: %w", err)
	}
	if Endianness.Uint32(sum[:]) != want {
		return ErrChecksum
	}
	return nil
}
