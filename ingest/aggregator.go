package ingest

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/tidwall/btree"
	"go.uber.org/zap"

	"github.com/viktsys/itchvwap/itch"
	"github.com/viktsys/itchvwap/models"
)

// hoursPerDay bounds the watermark; hour 24 means the whole day has
// been emitted.
const hoursPerDay = 24

// matchEntry remembers an applied trade so a later broken-trade message
// can reverse it against the bucket it originally landed in.
type matchEntry struct {
	stockID uint16
	price   uint32
	shares  uint64
	hour    uint8
}

// Aggregator consumes decoded messages in feed order and maintains the
// live VWAP state: the ordered symbol table, per-order resting prices,
// per-(stock, hour) volume and dollar-volume buckets, and the match
// index used for trade breaks. Rows are written to the CSV sink at each
// hour rollover and collected for optional persistence.
//
// The aggregator is single-consumer state; it is not safe for
// concurrent use.
type Aggregator struct {
	symbols      *btree.Map[uint16, string]
	orderPrice   map[uint64]uint32
	volume       map[uint16]*[hoursPerDay]uint64
	dollarVolume map[uint16]*[hoursPerDay]uint64
	matches      map[uint64]matchEntry

	// currentHour is the next unemitted hour. It only moves forward,
	// and only after every row for the hours below it has been written.
	currentHour uint8

	w      *csv.Writer
	rows   []models.HourlyVWAP
	logger *zap.Logger
}

func NewAggregator(out io.Writer, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		symbols:      btree.NewMap[uint16, string](32),
		orderPrice:   make(map[uint64]uint32),
		volume:       make(map[uint16]*[hoursPerDay]uint64),
		dollarVolume: make(map[uint16]*[hoursPerDay]uint64),
		matches:      make(map[uint64]matchEntry),
		w:            csv.NewWriter(out),
		logger:       logger,
	}
}

// Apply processes one message. The hour watermark is advanced first:
// every hour older than the message's hour is emitted before the
// message touches any bucket, which leaves a one-hour grace window for
// broken-trade corrections that arrive slightly out of order.
func (a *Aggregator) Apply(m itch.Message) {
	msgHour := m.Hour()
	for a.currentHour < msgHour && a.currentHour < hoursPerDay {
		a.emitHour(a.currentHour)
		a.currentHour++
		WatermarkHour.Set(float64(a.currentHour))
	}

	switch m.Type {
	case itch.TypeStockDirectory:
		a.symbols.Set(m.StockID, m.Symbol)
		a.volume[m.StockID] = new([hoursPerDay]uint64)
		a.dollarVolume[m.StockID] = new([hoursPerDay]uint64)

	case itch.TypeAddOrder, itch.TypeAddOrderAttributed:
		// Order ids may be reused after deletes; last write wins.
		a.orderPrice[m.OrderID] = m.Price

	case itch.TypeOrderReplace:
		delete(a.orderPrice, m.OrderID)
		a.orderPrice[m.NewOrderID] = m.Price

	case itch.TypeOrderExecuted:
		price, ok := a.orderPrice[m.OrderID]
		if !ok {
			// Upstream loss; a zero price keeps the volume honest.
			MissingOrderRefs.Inc()
		}
		a.applyTrade(m.StockID, price, m.Shares, m.MatchNumber, msgHour)

	case itch.TypeOrderExecutedPrice:
		if m.Printable == 'N' {
			NonPrintableSkipped.Inc()
			return
		}
		a.applyTrade(m.StockID, m.Price, m.Shares, m.MatchNumber, msgHour)

	case itch.TypeNonCrossTrade, itch.TypeCrossTrade:
		a.applyTrade(m.StockID, m.Price, m.Shares, m.MatchNumber, msgHour)

	case itch.TypeBrokenTrade:
		a.applyBreak(m.MatchNumber)
	}
}

func (a *Aggregator) applyTrade(stockID uint16, price uint32, shares, match uint64, hour uint8) {
	vol, dol := a.buckets(stockID)
	vol[hour] += shares
	dol[hour] += uint64(price) * shares
	a.matches[match] = matchEntry{stockID: stockID, price: price, shares: shares, hour: hour}
	TradesApplied.Inc()
}

// applyBreak reverses a previously applied trade against the hour it
// was recorded in, not the current hour. The entry stays in the index.
//
// A break that arrives after its hour has already been emitted still
// decrements the buckets, but the emitted row is not retracted; the
// one-hour grace window is the only retroactive correction supported.
func (a *Aggregator) applyBreak(match uint64) {
	entry, ok := a.matches[match]
	if !ok {
		return
	}
	vol, dol := a.buckets(entry.stockID)
	vol[entry.hour] -= entry.shares
	dol[entry.hour] -= uint64(entry.price) * entry.shares
	TradesBroken.Inc()
}

// buckets returns the hour arrays for a stock, allocating them if the
// feed traded a stock it never put in the directory.
func (a *Aggregator) buckets(stockID uint16) (*[hoursPerDay]uint64, *[hoursPerDay]uint64) {
	vol := a.volume[stockID]
	if vol == nil {
		vol = new([hoursPerDay]uint64)
		a.volume[stockID] = vol
	}
	dol := a.dollarVolume[stockID]
	if dol == nil {
		dol = new([hoursPerDay]uint64)
		a.dollarVolume[stockID] = dol
	}
	return vol, dol
}

// emitHour writes the VWAP rows for one hour, ascending by stock id.
// Securities with no traded volume in the hour produce no row.
func (a *Aggregator) emitHour(hour uint8) {
	a.symbols.Scan(func(stockID uint16, sym string) bool {
		v := a.volume[stockID][hour]
		if v == 0 {
			return true
		}
		d := a.dollarVolume[stockID][hour]
		vwap := float64(d) / 10000.0 / float64(v)

		a.w.Write([]string{
			sym,
			strconv.FormatUint(uint64(stockID), 10),
			strconv.Itoa(int(hour)),
			strconv.FormatFloat(vwap, 'f', 4, 64),
		})
		a.rows = append(a.rows, models.HourlyVWAP{
			StockID: stockID,
			Symbol:  sym,
			Hour:    hour,
			Volume:  v,
			VWAP:    vwap,
		})
		RowsEmitted.Inc()
		return true
	})
	a.logger.Info("hour completed", zap.Uint8("hour", hour))
}

// Finish emits every remaining hour through 23 and flushes the sink.
func (a *Aggregator) Finish() error {
	for a.currentHour < hoursPerDay {
		a.emitHour(a.currentHour)
		a.currentHour++
		WatermarkHour.Set(float64(a.currentHour))
	}
	return a.flush()
}

// flush drains the CSV writer without advancing the watermark. Used on
// abort so rows emitted before a fatal decode error are retained.
func (a *Aggregator) flush() error {
	a.w.Flush()
	return a.w.Error()
}

// Rows returns every VWAP row emitted so far, in emission order.
func (a *Aggregator) Rows() []models.HourlyVWAP {
	return a.rows
}

// Securities returns the registered symbol table in ascending stock id
// order.
func (a *Aggregator) Securities() []models.Security {
	secs := make([]models.Security, 0, a.symbols.Len())
	a.symbols.Scan(func(stockID uint16, sym string) bool {
		secs = append(secs, models.Security{StockID: stockID, Symbol: sym})
		return true
	})
	return secs
}
