package market

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vmihailenco/msgpack/v5"
)

// DateLayout is the calendar date format used on the wire and in caches.
const DateLayout = "2006-01-02"

// PricePoint is a single daily observation.
type PricePoint struct {
	Date  time.Time       // UTC midnight of the calendar day
	Price decimal.Decimal // quote-currency price, never negative
}

// Series is an ascending, date-unique price history. It is immutable once built.
type Series struct {
	points []PricePoint
}

// NewSeries normalises points to UTC calendar dates, orders them ascending and keeps
// the last observation supplied for any given date.
func NewSeries(points []PricePoint) Series {
	if len(points) == 0 {
		return Series{}
	}
	sorted := make([]PricePoint, len(points))
	for i, p := range points {
		sorted[i] = PricePoint{Date: TruncateDate(p.Date), Price: p.Price}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	out := sorted[:0]
	for _, p := range sorted {
		if n := len(out); n > 0 && out[n-1].Date.Equal(p.Date) {
			out[n-1] = p
			continue
		}
		out = append(out, p)
	}
	return Series{points: out}
}

// TruncateDate collapses a timestamp to midnight UTC of its calendar day.
func TruncateDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Len returns the number of points.
func (s Series) Len() int { return len(s.points) }

// Empty reports whether the series carries no data. Callers treat an empty series as
// "data unavailable", not as an asset without history.
func (s Series) Empty() bool { return len(s.points) == 0 }

// At returns the i-th point; negative indexes count from the end.
func (s Series) At(i int) PricePoint {
	if i < 0 {
		i += len(s.points)
	}
	return s.points[i]
}

// Points returns a copy of the underlying points.
func (s Series) Points() []PricePoint {
	out := make([]PricePoint, len(s.points))
	copy(out, s.points)
	return out
}

// EncodeMsgpack writes the series as a flat array of date/price string pairs.
func (s Series) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeArrayLen(len(s.points)); err != nil {
		return err
	}
	for _, p := range s.points {
		if err := enc.EncodeString(p.Date.Format(DateLayout)); err != nil {
			return err
		}
		if err := enc.EncodeString(p.Price.String()); err != nil {
			return err
		}
	}
	return nil
}

// DecodeMsgpack is the inverse of EncodeMsgpack.
func (s *Series) DecodeMsgpack(dec *msgpack.Decoder) error {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return err
	}
	if n <= 0 {
		s.points = nil
		return nil
	}
	points := make([]PricePoint, 0, n)
	for i := 0; i < n; i++ {
		rawDate, err := dec.DecodeString()
		if err != nil {
			return err
		}
		rawPrice, err := dec.DecodeString()
		if err != nil {
			return err
		}
		date, err := time.Parse(DateLayout, rawDate)
		if err != nil {
			return fmt.Errorf("market: decode series date %q: %w", rawDate, err)
		}
		price, err := decimal.NewFromString(rawPrice)
		if err != nil {
			return fmt.Errorf("market: decode series price %q: %w", rawPrice, err)
		}
		points = append(points, PricePoint{Date: date, Price: price})
	}
	s.points = points
	return nil
}
