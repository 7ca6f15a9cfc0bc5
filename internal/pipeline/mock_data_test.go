package pipeline_test

import "github.com/couchcryptid/fjell-etl/internal/domain"

// testRows returns a handful of Jotunheimen peaks as decoded from the export.
func testRows() []domain.SourceRow {
	return []domain.SourceRow{
		{
			Name:  "Galdhøpiggen",
			MASL:  "2469",
			Map:   "1518 II",
			DMS:   "61°38′06″N 8°18′45″E",
			UTM:   "462384 6838471",
			Index: "1",
		},
		{
			Name:  "Glittertind",
			MASL:  "2452",
			Map:   "1618 IV",
			DMS:   "61°39′06″N 8°33′27″E",
			UTM:   "474875 6839967",
			Index: "2",
		},
		{
			Name:  "Store Skagastølstind",
			MASL:  "2405",
			Map:   "1517 I",
			DMS:   "61°27′37″N 7°52′13″E",
			UTM:   "439563 6817946",
			Index: "3",
		},
	}
}
