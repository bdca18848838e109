// Package domain models the German Unfallatlas traffic-accident data and the
// schema-reconciliation rules that harmonize nine yearly releases into one
// canonical shape.
//
// # Data Source
//
// Accident records are published yearly by the German statistical offices at
// https://www.opengeodata.nrw.de/produkte/transport_verkehr/unfallatlas/ as
// zip archives named Unfallorte{year}_EPSG25832_CSV.zip, each containing one
// semicolon-delimited CSV (sometimes with a .txt extension). Nine releases
// are supported: 2016 through 2024.
//
// # Schema Drift
//
// Column names change release to release. The canonical schema and the raw
// variants folded into it:
//
//	IstSonstig                               → IstSonstige   ("other vehicle" flag)
//	STRZUSTAND / IstStrasse /
//	IstStrassenzustand                       → USTRZUSTAND   (road surface condition)
//	LICHT                                    → ULICHTVERH    (light condition)
//	OBJECTID / OBJECTID_1                    → OID_          (per-year object id)
//
// Renaming is a pure lookup applied once per column. A raw variant is never
// renamed onto a canonical column that already exists in the same table.
//
// Columns with no cross-year meaning are dropped when present: FID, PLST,
// and the street identifier in either of its spellings (UIDENTSTLA,
// UIDENTSTLAE).
//
// # Identifier Columns
//
// ULAND (state), UREGBEZ (district), UKREIS (county) and UGEMEINDE
// (municipality) are fixed-width numeric strings with significant leading
// zeros. They are forced to text during parsing; treating them as integers
// destroys the administrative code.
//
// # Community Key
//
// The community key joins accident records to municipality metadata. It is
// the concatenation ULAND+UREGBEZ+UKREIS+UGEMEINDE, except for the two
// city-states, Berlin ("11") and Hamburg ("02"), where the source data does
// not sub-partition meaningfully and the key is forced to "{state}000000".
//
// # UID
//
// The raw object id is only unique within one release. UID = "{year}_{oid}"
// is unique across the whole corpus.
//
// # Locale
//
// The source uses the German CSV convention: semicolon field separator,
// comma decimal separator. Coordinate columns (XGCSWGS84, YGCSWGS84,
// LINREFX, LINREFY) are converted to proper float columns accepting either
// comma or dot decimals.
package domain
