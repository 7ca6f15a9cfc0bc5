package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// SourceRow is one decoded row of the source spreadsheet export.
// Tags are the column aliases assigned by the loader; see SourceColumns.
type SourceRow struct {
	Name  string `csv:"navn"`
	MASL  string `csv:"moh"`
	Map   string `csv:"kartblad"`
	DMS   string `csv:"dms"`
	UTM   string `csv:"utm"`
	Index string `csv:"index"`

	// Extra holds named columns outside SourceColumns, in header order.
	Extra []Field `csv:"-"`
}

// Field is one named column value carried through unchanged.
type Field struct {
	Key   string
	Value string
}

// SourceColumns maps the Norwegian header names of the export to the aliases
// used in SourceRow tags. The DMS header contains commas, which struct tags
// cannot carry.
var SourceColumns = map[string]string{
	"Navn":                       "navn",
	"Moh":                        "moh",
	"Kartblad M711":              "kartblad",
	"Koordinater grad, min, sek": "dms",
	"Koordinater UTM 32V":        "utm",
	"Index":                      "index",
}

// SourceHeader is the column order of the export.
var SourceHeader = []string{
	"Navn",
	"Moh",
	"Kartblad M711",
	"Koordinater grad, min, sek",
	"Koordinater UTM 32V",
	"Index",
}

// Fields returns the row's values in SourceHeader order, followed by the
// extra column values.
func (r SourceRow) Fields() []string {
	out := []string{r.Name, r.MASL, r.Map, r.DMS, r.UTM, r.Index}
	for _, f := range r.Extra {
		out = append(out, f.Value)
	}
	return out
}

// OutputKeys lists the top-level keys of an output record in write order.
var OutputKeys = []string{
	"name", "MASL", "map", "coordinates", "uid", "norgesKart", "gaiaGPS",
	"group", "county", "commune", "nationalPark",
}

// IsOutputKey reports whether key is one of OutputKeys.
func IsOutputKey(key string) bool {
	for _, k := range OutputKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Coordinates holds the position text from the export plus the derived decimal form.
type Coordinates struct {
	DMS       string  `json:"DMS"`
	UTM       string  `json:"UTM"`
	Longitude *string `json:"longitude"`
	Latitude  *string `json:"latitude"`
}

// Peak is the enriched output record.
type Peak struct {
	Name        string      `json:"name"`
	MASL        string      `json:"MASL"`
	Map         string      `json:"map"`
	Coordinates Coordinates `json:"coordinates"`
	UID         string      `json:"uid"`
	NorgesKart  string      `json:"norgesKart"`
	GaiaGPS     string      `json:"gaiaGPS"`

	// Reserved for a future administrative-boundary lookup and list grouping.
	// Always serialized as null.
	Group        *string `json:"group"`
	County       *string `json:"county"`
	Commune      *string `json:"commune"`
	NationalPark *string `json:"nationalPark"`

	// Extra is written as string members ahead of the fields above.
	Extra []Field `json:"-"`
}

// peakFields has Peak's layout without its MarshalJSON method.
type peakFields Peak

// MarshalJSON writes the extra columns first, then the fixed fields in
// OutputKeys order. HTML characters are not escaped.
func (p Peak) MarshalJSON() ([]byte, error) {
	fixed, err := marshalUnescaped(peakFields(p))
	if err != nil {
		return nil, err
	}
	if len(p.Extra) == 0 {
		return fixed, nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for _, f := range p.Extra {
		key, err := marshalUnescaped(f.Key)
		if err != nil {
			return nil, err
		}
		value, err := marshalUnescaped(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
		buf.WriteByte(',')
	}
	buf.Write(fixed[1:])
	return buf.Bytes(), nil
}

func marshalUnescaped(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("marshal %T: %w", v, err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
