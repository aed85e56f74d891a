package itch

// Message type tags from the NASDAQ TotalView-ITCH 5.0 specification.
// Only the tags that can move a VWAP are decoded; the rest are known
// sizes so the decoder can step over them.
const (
	TypeStockDirectory     = 'R'
	TypeAddOrder           = 'A'
	TypeAddOrderAttributed = 'F'
	TypeOrderExecuted      = 'E'
	TypeOrderExecutedPrice = 'C'
	TypeOrderReplace       = 'U'
	TypeNonCrossTrade      = 'P'
	TypeCrossTrade         = 'Q'
	TypeBrokenTrade        = 'B'
)

const nsPerHour = 3_600_000_000_000

// bodySizes maps a type tag to the record body size in bytes (the byte
// count after the 1-byte tag). A zero entry means the tag is unknown and
// the stream cannot be re-framed past it.
var bodySizes = [256]int{
	TypeStockDirectory:     38,
	TypeAddOrder:           35,
	TypeAddOrderAttributed: 39,
	TypeOrderExecuted:      30,
	TypeOrderExecutedPrice: 35,
	TypeOrderReplace:       34,
	TypeNonCrossTrade:      43,
	TypeCrossTrade:         39,
	TypeBrokenTrade:        18,

	// Known but skipped: session events, halts, LULD, NOII and friends.
	'S': 11, // System Event
	'H': 24, // Stock Trading Action
	'Y': 19, // Reg SHO Restriction
	'L': 25, // Market Participant Position
	'V': 34, // MWCB Decline Level
	'W': 11, // MWCB Status
	'K': 27, // Quoting Period Update
	'J': 34, // LULD Auction Collar
	'h': 20, // Operational Halt
	'X': 22, // Order Cancel
	'D': 18, // Order Delete
	'I': 49, // Net Order Imbalance Indicator
	'N': 19, // Retail Price Improvement Indicator
	'O': 47, // Direct Listing Price Discovery
}

// Message is a decoded ITCH record. A single flat value carries every
// field any of the nine decoded types can produce; Type says which
// fields are meaningful. Messages are passed by value through the
// pipeline, so nothing here may alias the mapped input.
type Message struct {
	Type      byte
	StockID   uint16
	Timestamp uint64 // nanoseconds since midnight Eastern

	OrderID     uint64 // A, F, E, C, P; original order for U
	NewOrderID  uint64 // U
	MatchNumber uint64 // E, C, P, Q, B
	Shares      uint64 // A, F, E, C, U, P (32-bit on the wire), Q (64-bit)
	Price       uint32 // A, F, U, P; execution price for C; cross price for Q
	Printable   byte   // C
	Symbol      string // R
}

// Hour returns the hour-of-day bucket the message timestamp falls in.
func (m Message) Hour() uint8 {
	return uint8(m.Timestamp / nsPerHour)
}
