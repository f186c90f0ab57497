// Package rcon implements the classic RCON remote-console protocol: a
// length-prefixed binary request/response protocol over TCP with a
// shared-secret authentication handshake.
package rcon

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Packet types per the protocol. Auth responses and exec commands share the
// value 2; direction disambiguates them.
const (
	typeResponseValue = 0
	typeExecCommand   = 2
	typeAuthResponse  = 2
	typeAuth          = 3
)

// maxPayload is the largest command payload the server accepts in a single
// packet. Requests over this limit are rejected before hitting the wire.
const maxPayload = 1446

// Header overhead inside the size field: request id (4) + type (4) +
// payload terminator (1) + packet terminator (1).
const packetOverhead = 10

var (
	// ErrPayloadTooLarge means the command exceeds the per-packet limit.
	ErrPayloadTooLarge = errors.New("rcon: command exceeds maximum packet size")
	// ErrMalformedPacket means the server sent a frame we cannot parse.
	ErrMalformedPacket = errors.New("rcon: malformed packet")
)

// packet is one wire frame in either direction.
type packet struct {
	ID      int32
	Type    int32
	Payload string
}

// marshal encodes the packet as a length-prefixed little-endian frame:
// int32 size, int32 id, int32 type, null-terminated payload, null.
func (p packet) marshal() ([]byte, error) {
	if len(p.Payload) > maxPayload {
		return nil, ErrPayloadTooLarge
	}
	size := int32(len(p.Payload) + packetOverhead)
	buf := bytes.NewBuffer(make([]byte, 0, size+4))
	for _, v := range []int32{size, p.ID, p.Type} {
		if err := binary.Write(buf, binary.LittleEndian, v); err != nil {
			return nil, err
		}
	}
	buf.WriteString(p.Payload)
	buf.Write([]byte{0, 0})
	return buf.Bytes(), nil
}

// readPacket reads one frame from r.
func readPacket(r io.Reader) (packet, error) {
	var size int32
	if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
		return packet{}, err
	}
	if size < packetOverhead || size > maxPayload+packetOverhead {
		return packet{}, fmt.Errorf("%w: size %d out of range", ErrMalformedPacket, size)
	}

	body := make([]byte, size)
	if _, err := io.ReadFull(r, body); err != nil {
		return packet{}, err
	}

	p := packet{
		ID:   int32(binary.LittleEndian.Uint32(body[0:4])),
		Type: int32(binary.LittleEndian.Uint32(body[4:8])),
	}
	payload := body[8:]
	// Strip the payload and packet terminators.
	payload = bytes.TrimRight(payload, "\x00")
	p.Payload = string(payload)
	return p, nil
}
