// Package domain holds the data types shared by the evidence tracker core.
//
// This package contains type definitions and pure helpers only. Every other
// internal package imports domain; domain imports nothing internal.
//
// Key constraints:
//   - Dates are ISO "YYYY-MM-DD" strings and months are "YYYY-MM" prefixes.
//     Ordering of both is plain lexicographic string ordering.
//   - The lock flag is a per-day property stored redundantly on every Entry
//     of that day. Only the store's write paths change it.
//   - All JSON tags use snake_case to match the on-disk tag configuration
//     and the command surface consumed by the UI.
package domain
