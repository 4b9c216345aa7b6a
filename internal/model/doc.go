// Package model defines the event types produced by the market-data codec
// and consumed by a MarketSink.
//
// Conventions:
//   - Price: integer cents, 0-100 inclusive.
//   - Size, Count: unsigned 32-bit.
//   - Delta: signed 32-bit.
//   - Timestamp: nanoseconds since Unix epoch; 0 when the source did not
//     provide one.
package model
