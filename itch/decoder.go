package itch

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	// ErrUnknownTag means a record head carried a tag with no known
	// size. The remaining bytes cannot be re-framed.
	ErrUnknownTag = errors.New("unknown message type")

	// ErrTruncatedRecord means the view ended inside a record.
	ErrTruncatedRecord = errors.New("truncated record")
)

// Decoder walks a contiguous ITCH 5.0 byte view and yields decoded
// messages in feed order. It never writes to or retains the view beyond
// the current record, so the caller may unmap it once Next has returned
// io.EOF or an error.
type Decoder struct {
	data []byte
	off  int
}

func NewDecoder(data []byte) *Decoder {
	return &Decoder{data: data}
}

// Offset reports how many bytes have been consumed so far.
func (d *Decoder) Offset() int {
	return d.off
}

// Next returns the next VWAP-relevant message, stepping over records of
// known non-relevant types. It returns io.EOF once the view is
// exhausted. ErrUnknownTag and ErrTruncatedRecord are fatal; the
// decoder cannot make further progress after either.
func (d *Decoder) Next() (Message, error) {
	for d.off < len(d.data) {
		tag := d.data[d.off]
		size := bodySizes[tag]
		if size == 0 {
			return Message{}, fmt.Errorf("offset %d: tag %q: %w", d.off, tag, ErrUnknownTag)
		}
		if d.off+1+size > len(d.data) {
			return Message{}, fmt.Errorf("offset %d: tag %q needs %d bytes, %d left: %w",
				d.off, tag, 1+size, len(d.data)-d.off, ErrTruncatedRecord)
		}
		rec := d.data[d.off : d.off+1+size]
		d.off += 1 + size

		switch tag {
		case TypeStockDirectory:
			return decodeStockDirectory(rec), nil
		case TypeAddOrder, TypeAddOrderAttributed:
			return decodeAddOrder(rec), nil
		case TypeOrderExecuted:
			return decodeOrderExecuted(rec), nil
		case TypeOrderExecutedPrice:
			return decodeOrderExecutedPrice(rec), nil
		case TypeOrderReplace:
			return decodeOrderReplace(rec), nil
		case TypeNonCrossTrade:
			return decodeNonCrossTrade(rec), nil
		case TypeCrossTrade:
			return decodeCrossTrade(rec), nil
		case TypeBrokenTrade:
			return decodeBrokenTrade(rec), nil
		}
		// Known size, nothing to extract; keep walking.
	}
	return Message{}, io.EOF
}

// header extracts the fields every decoded record starts with: the tag,
// the stock id at bytes 3-4 and the 6-byte timestamp at bytes 5-10.
// Bytes 1-2 carry the tracking number and are not used.
func header(rec []byte) Message {
	return Message{
		Type:      rec[0],
		StockID:   binary.BigEndian.Uint16(rec[3:5]),
		Timestamp: timestamp(rec[5:11]),
	}
}

// timestamp decodes the nonstandard 6-byte big-endian nanosecond clock,
// right-aligned into a uint64. Byte-by-byte: the mapped region gives no
// alignment guarantees.
func timestamp(b []byte) uint64 {
	return uint64(b[0])<<40 | uint64(b[1])<<32 | uint64(b[2])<<24 |
		uint64(b[3])<<16 | uint64(b[4])<<8 | uint64(b[5])
}

// symbol copies an 8-byte ASCII stock field, stripping trailing spaces
// and NULs.
func symbol(b []byte) string {
	return strings.TrimRight(string(b[:8]), " \x00")
}

func decodeStockDirectory(rec []byte) Message {
	m := header(rec)
	m.Symbol = symbol(rec[11:19])
	return m
}

// decodeAddOrder handles both A and F; the F attribution trailer is not
// extracted.
func decodeAddOrder(rec []byte) Message {
	m := header(rec)
	m.OrderID = binary.BigEndian.Uint64(rec[11:19])
	m.Shares = uint64(binary.BigEndian.Uint32(rec[20:24]))
	m.Price = binary.BigEndian.Uint32(rec[32:36])
	return m
}

func decodeOrderExecuted(rec []byte) Message {
	m := header(rec)
	m.OrderID = binary.BigEndian.Uint64(rec[11:19])
	m.Shares = uint64(binary.BigEndian.Uint32(rec[19:23]))
	m.MatchNumber = binary.BigEndian.Uint64(rec[23:31])
	return m
}

func decodeOrderExecutedPrice(rec []byte) Message {
	m := header(rec)
	m.OrderID = binary.BigEndian.Uint64(rec[11:19])
	m.Shares = uint64(binary.BigEndian.Uint32(rec[19:23]))
	m.MatchNumber = binary.BigEndian.Uint64(rec[23:31])
	m.Printable = rec[31]
	m.Price = binary.BigEndian.Uint32(rec[32:36])
	return m
}

func decodeOrderReplace(rec []byte) Message {
	m := header(rec)
	m.OrderID = binary.BigEndian.Uint64(rec[11:19])
	m.NewOrderID = binary.BigEndian.Uint64(rec[19:27])
	m.Shares = uint64(binary.BigEndian.Uint32(rec[27:31]))
	m.Price = binary.BigEndian.Uint32(rec[31:35])
	return m
}

func decodeNonCrossTrade(rec []byte) Message {
	m := header(rec)
	m.OrderID = binary.BigEndian.Uint64(rec[11:19])
	m.Shares = uint64(binary.BigEndian.Uint32(rec[20:24]))
	m.Price = binary.BigEndian.Uint32(rec[32:36])
	m.MatchNumber = binary.BigEndian.Uint64(rec[36:44])
	return m
}

func decodeCrossTrade(rec []byte) Message {
	m := header(rec)
	m.Shares = binary.BigEndian.Uint64(rec[11:19])
	m.Price = binary.BigEndian.Uint32(rec[27:31])
	m.MatchNumber = binary.BigEndian.Uint64(rec[31:39])
	return m
}

func decodeBrokenTrade(rec []byte) Message {
	m := header(rec)
	m.MatchNumber = binary.BigEndian.Uint64(rec[11:19])
	return m
}
