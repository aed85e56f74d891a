package itch

import (
	"encoding/binary"
	"errors"
	"io"
	"testing"
)

func newRecord(tag byte, stockID uint16, ts uint64) []byte {
	size := bodySizes[tag]
	if size == 0 {
		size = 10
	}
	rec := make([]byte, 1+size)
	rec[0] = tag
	binary.BigEndian.PutUint16(rec[3:5], stockID)
	putTimestamp(rec[5:11], ts)
	return rec
}

func putTimestamp(b []byte, ts uint64) {
	for i := 0; i < 6; i++ {
		b[i] = byte(ts >> ((5 - i) * 8))
	}
}

func decodeOne(t *testing.T, rec []byte) Message {
	t.Helper()
	m, err := NewDecoder(rec).Next()
	if err != nil {
		t.Fatalf("Failed to decode record: %v", err)
	}
	return m
}

func TestDecodeStockDirectory(t *testing.T) {
	rec := newRecord(TypeStockDirectory, 42, 34_200_000_000_000)
	copy(rec[11:19], "AAPL    ")

	m := decodeOne(t, rec)

	if m.Type != TypeStockDirectory {
		t.Errorf("Expected type R, got %q", m.Type)
	}
	if m.StockID != 42 {
		t.Errorf("Expected stock id 42, got %d", m.StockID)
	}
	if m.Timestamp != 34_200_000_000_000 {
		t.Errorf("Expected timestamp 34200000000000, got %d", m.Timestamp)
	}
	if m.Symbol != "AAPL" {
		t.Errorf("Expected symbol AAPL, got %q", m.Symbol)
	}
}

func TestDecodeSymbolStripsNULs(t *testing.T) {
	rec := newRecord(TypeStockDirectory, 1, 0)
	copy(rec[11:19], "QQQ\x00\x00\x00\x00\x00")

	m := decodeOne(t, rec)
	if m.Symbol != "QQQ" {
		t.Errorf("Expected symbol QQQ, got %q", m.Symbol)
	}
}

func TestDecodeAddOrder(t *testing.T) {
	rec := newRecord(TypeAddOrder, 7, 1_000)
	binary.BigEndian.PutUint64(rec[11:19], 900001)
	binary.BigEndian.PutUint32(rec[20:24], 500)
	binary.BigEndian.PutUint32(rec[32:36], 1_500_000)

	m := decodeOne(t, rec)

	if m.OrderID != 900001 {
		t.Errorf("Expected order id 900001, got %d", m.OrderID)
	}
	if m.Shares != 500 {
		t.Errorf("Expected shares 500, got %d", m.Shares)
	}
	if m.Price != 1_500_000 {
		t.Errorf("Expected price 1500000, got %d", m.Price)
	}
}

func TestDecodeAddOrderAttributed(t *testing.T) {
	rec := newRecord(TypeAddOrderAttributed, 7, 1_000)
	binary.BigEndian.PutUint64(rec[11:19], 900002)
	binary.BigEndian.PutUint32(rec[20:24], 200)
	binary.BigEndian.PutUint32(rec[32:36], 2_000_000)

	m := decodeOne(t, rec)

	if m.Type != TypeAddOrderAttributed {
		t.Errorf("Expected type F, got %q", m.Type)
	}
	if m.OrderID != 900002 || m.Shares != 200 || m.Price != 2_000_000 {
		t.Errorf("Unexpected fields: %+v", m)
	}
}

func TestDecodeOrderExecuted(t *testing.T) {
	rec := newRecord(TypeOrderExecuted, 7, 2_000)
	binary.BigEndian.PutUint64(rec[11:19], 900001)
	binary.BigEndian.PutUint32(rec[19:23], 100)
	binary.BigEndian.PutUint64(rec[23:31], 55)

	m := decodeOne(t, rec)

	if m.OrderID != 900001 {
		t.Errorf("Expected order id 900001, got %d", m.OrderID)
	}
	if m.Shares != 100 {
		t.Errorf("Expected executed shares 100, got %d", m.Shares)
	}
	if m.MatchNumber != 55 {
		t.Errorf("Expected match number 55, got %d", m.MatchNumber)
	}
}

func TestDecodeOrderExecutedWithPrice(t *testing.T) {
	rec := newRecord(TypeOrderExecutedPrice, 7, 2_000)
	binary.BigEndian.PutUint64(rec[11:19], 900001)
	binary.BigEndian.PutUint32(rec[19:23], 100)
	binary.BigEndian.PutUint64(rec[23:31], 56)
	rec[31] = 'N'
	binary.BigEndian.PutUint32(rec[32:36], 1_234_500)

	m := decodeOne(t, rec)

	if m.Printable != 'N' {
		t.Errorf("Expected printable N, got %q", m.Printable)
	}
	if m.Price != 1_234_500 {
		t.Errorf("Expected execution price 1234500, got %d", m.Price)
	}
	if m.MatchNumber != 56 {
		t.Errorf("Expected match number 56, got %d", m.MatchNumber)
	}
}

func TestDecodeOrderReplace(t *testing.T) {
	rec := newRecord(TypeOrderReplace, 7, 3_000)
	binary.BigEndian.PutUint64(rec[11:19], 900001)
	binary.BigEndian.PutUint64(rec[19:27], 900009)
	binary.BigEndian.PutUint32(rec[27:31], 300)
	binary.BigEndian.PutUint32(rec[31:35], 3_000_000)

	m := decodeOne(t, rec)

	if m.OrderID != 900001 {
		t.Errorf("Expected original order id 900001, got %d", m.OrderID)
	}
	if m.NewOrderID != 900009 {
		t.Errorf("Expected new order id 900009, got %d", m.NewOrderID)
	}
	if m.Shares != 300 || m.Price != 3_000_000 {
		t.Errorf("Unexpected fields: %+v", m)
	}
}

func TestDecodeNonCrossTrade(t *testing.T) {
	rec := newRecord(TypeNonCrossTrade, 9, 4_000)
	binary.BigEndian.PutUint64(rec[11:19], 700001)
	binary.BigEndian.PutUint32(rec[20:24], 400)
	binary.BigEndian.PutUint32(rec[32:36], 999_900)
	binary.BigEndian.PutUint64(rec[36:44], 77)

	m := decodeOne(t, rec)

	if m.Shares != 400 || m.Price != 999_900 || m.MatchNumber != 77 {
		t.Errorf("Unexpected fields: %+v", m)
	}
}

func TestDecodeCrossTrade(t *testing.T) {
	rec := newRecord(TypeCrossTrade, 9, 5_000)
	binary.BigEndian.PutUint64(rec[11:19], 5_000_000_000)
	binary.BigEndian.PutUint32(rec[27:31], 100_000)
	binary.BigEndian.PutUint64(rec[31:39], 88)

	m := decodeOne(t, rec)

	if m.Shares != 5_000_000_000 {
		t.Errorf("Expected shares 5000000000, got %d", m.Shares)
	}
	if m.Price != 100_000 || m.MatchNumber != 88 {
		t.Errorf("Unexpected fields: %+v", m)
	}
}

func TestDecodeBrokenTrade(t *testing.T) {
	rec := newRecord(TypeBrokenTrade, 9, 6_000)
	binary.BigEndian.PutUint64(rec[11:19], 77)

	m := decodeOne(t, rec)

	if m.Type != TypeBrokenTrade {
		t.Errorf("Expected type B, got %q", m.Type)
	}
	if m.MatchNumber != 77 {
		t.Errorf("Expected match number 77, got %d", m.MatchNumber)
	}
}

func TestTimestampHourBoundary(t *testing.T) {
	// Exactly 09:00:00 belongs to hour 9.
	rec := newRecord(TypeAddOrder, 1, 9*nsPerHour)
	m := decodeOne(t, rec)
	if m.Hour() != 9 {
		t.Errorf("Expected hour 9, got %d", m.Hour())
	}

	rec = newRecord(TypeAddOrder, 1, 9*nsPerHour-1)
	m = decodeOne(t, rec)
	if m.Hour() != 8 {
		t.Errorf("Expected hour 8, got %d", m.Hour())
	}
}

func TestSkipsIgnoredTypes(t *testing.T) {
	var feed []byte
	feed = append(feed, newRecord('S', 0, 0)...)
	feed = append(feed, newRecord('H', 1, 0)...)
	feed = append(feed, newRecord('D', 1, 0)...)
	add := newRecord(TypeAddOrder, 3, 1_000)
	binary.BigEndian.PutUint64(add[11:19], 123)
	feed = append(feed, add...)

	dec := NewDecoder(feed)
	m, err := dec.Next()
	if err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if m.Type != TypeAddOrder || m.OrderID != 123 {
		t.Errorf("Expected the A record, got %+v", m)
	}
	if dec.Offset() != len(feed) {
		t.Errorf("Expected offset %d, got %d", len(feed), dec.Offset())
	}
	if _, err := dec.Next(); err != io.EOF {
		t.Errorf("Expected EOF, got %v", err)
	}
}

func TestUnknownTag(t *testing.T) {
	dec := NewDecoder([]byte{'Z', 0, 0, 0})
	_, err := dec.Next()
	if !errors.Is(err, ErrUnknownTag) {
		t.Errorf("Expected ErrUnknownTag, got %v", err)
	}
}

func TestTruncatedRecord(t *testing.T) {
	rec := newRecord(TypeAddOrder, 1, 0)
	dec := NewDecoder(rec[:len(rec)-5])
	_, err := dec.Next()
	if !errors.Is(err, ErrTruncatedRecord) {
		t.Errorf("Expected ErrTruncatedRecord, got %v", err)
	}
}

func TestEmptyInput(t *testing.T) {
	if _, err := NewDecoder(nil).Next(); err != io.EOF {
		t.Errorf("Expected EOF on empty input, got %v", err)
	}
}

func TestDecoderDeterministic(t *testing.T) {
	var feed []byte
	r := newRecord(TypeStockDirectory, 1, 0)
	copy(r[11:19], "AAA     ")
	feed = append(feed, r...)
	a := newRecord(TypeAddOrder, 1, 1_000)
	binary.BigEndian.PutUint64(a[11:19], 10)
	feed = append(feed, a...)

	first := drain(t, feed)
	second := drain(t, feed)

	if len(first) != len(second) {
		t.Fatalf("Expected equal sequence lengths, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("Sequence diverged at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func drain(t *testing.T, feed []byte) []Message {
	t.Helper()
	dec := NewDecoder(feed)
	var out []Message
	for {
		m, err := dec.Next()
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("Failed to decode: %v", err)
		}
		out = append(out, m)
	}
}
