// Package report renders plans and execution results into the run report:
// a totals table, a per-match-type breakdown, and a per-group detail listing.
//
// The same content renders two ways: boxed tables for the terminal and
// Markdown tables for the report file written after each run.
package report
