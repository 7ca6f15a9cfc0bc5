// Package domain models the Norwegian mountain peak list and the transforms
// that turn a spreadsheet row into an enriched peak record.
//
// # Data Source
//
// The peak list is copied from the Norwegian Wikipedia article "Liste over
// fjelltopper i Norge med primærfaktor 30 meter pluss" into a spreadsheet and
// exported as a semicolon-delimited file. Column headers stay in Norwegian:
//
//	Navn                          peak name
//	Moh                           meters above sea level (meter over havet)
//	Kartblad M711                 map sheet in the M711 1:50 000 series
//	Koordinater grad, min, sek    position as degrees/minutes/seconds text
//	Koordinater UTM 32V           position as "<easting> <northing>" in zone 32V
//	Index                         spreadsheet row number, discarded
//
// # Coordinates
//
// UTM text is two whitespace-separated numbers in meters, e.g.
// "462384 6838471". Every row is assumed to lie in one zone (32V by default,
// which covers most of southern Norway). Rows outside that zone convert without
// error but land in the wrong place; the zone is a run-level setting, not a
// per-row one.
//
// Decimal coordinates are written as strings with exactly five decimals
// (roughly one meter of precision at these latitudes). Unparsable UTM text
// produces "NaN" in both fields.
//
// # ID Generation
//
// Peak UIDs are the hex SHA-256 of the whitespace-trimmed UTM text. Two rows
// with the same UTM text share a UID, which makes the UID usable as a dedup key
// across runs and list revisions. See [DeriveUID].
package domain
