package ingest

import (
	"errors"
	"io"

	"go.uber.org/zap"

	"github.com/viktsys/itchvwap/itch"
	"github.com/viktsys/itchvwap/models"
)

const (
	megabyte          = 1 << 20
	progressThreshold = 100 * megabyte
)

// Summary reports what one pipeline run did.
type Summary struct {
	BytesParsed int
	Messages    int64
	Rows        []models.HourlyVWAP
	Securities  []models.Security
}

// Run executes the two-stage pipeline over a mapped feed view: a
// producer goroutine decodes messages into a bounded channel and the
// calling goroutine aggregates them, writing VWAP rows to out.
//
// Feed order is preserved end to end: the decoder pushes in byte order
// and the channel is drained FIFO, so executions always see the add or
// replace that defined their order, and breaks always see the trade
// they reverse. Closing the channel is the producer-done signal.
//
// A decode failure stops the producer; messages already queued are
// still applied, rows already emitted are retained, and the error is
// returned. The remaining hours are not flushed on a failed run.
func Run(data []byte, out io.Writer, queueSize int, logger *zap.Logger) (*Summary, error) {
	if queueSize <= 0 {
		queueSize = 256
	}
	msgCh := make(chan itch.Message, queueSize)
	errCh := make(chan error, 1)

	go produce(data, msgCh, errCh, logger)

	agg := NewAggregator(out, logger)
	var messages int64
	for m := range msgCh {
		agg.Apply(m)
		messages++
	}

	summary := &Summary{Messages: messages}

	select {
	case err := <-errCh:
		agg.flush()
		summary.Rows = agg.Rows()
		summary.Securities = agg.Securities()
		return summary, err
	default:
	}

	if err := agg.Finish(); err != nil {
		return summary, err
	}
	summary.BytesParsed = len(data)
	summary.Rows = agg.Rows()
	summary.Securities = agg.Securities()
	return summary, nil
}

// produce walks the decoder and pushes every message into the channel,
// blocking when the consumer falls behind. It closes the channel when
// the feed is exhausted or a decode error makes further framing
// impossible.
func produce(data []byte, msgCh chan<- itch.Message, errCh chan<- error, logger *zap.Logger) {
	defer close(msgCh)

	dec := itch.NewDecoder(data)
	nextReport := progressThreshold
	for {
		m, err := dec.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			errCh <- err
			return
		}

		msgCh <- m
		MessagesTotal.WithLabelValues(string(m.Type)).Inc()

		if dec.Offset() >= nextReport {
			logger.Info("feed progress", zap.Int("mb_parsed", dec.Offset()/megabyte))
			nextReport += progressThreshold
		}
	}
	BytesParsed.Add(float64(dec.Offset()))
	logger.Info("finished reading feed",
		zap.Int("bytes", dec.Offset()),
		zap.Int("mb", dec.Offset()/megabyte))
}
