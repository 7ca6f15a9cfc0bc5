package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"
)

const (
	// norgesKartBaseURL opens the Kartverket map viewer with the search panel.
	// The embedded marker position is a fixed default, not the peak's location;
	// the viewer recenters on the sok= search term.
	norgesKartBaseURL = "https://www.norgeskart.no/#!?project=norgeskart&layers=1002&zoom=13&lat=6851883.63&lon=146002.11&markerLat=6851883.634396978&markerLon=146002.11011350987&p=searchOptionsPanel"

	// gaiaGPSBaseURL is the Gaia GPS map at zoom 16; longitude and latitude
	// are appended as path segments.
	gaiaGPSBaseURL = "https://www.gaiaGPS.com/map/?loc=16.0"
)

var (
	// ErrMissingUTM is returned when a peak has no UTM text to derive its UID from.
	ErrMissingUTM = errors.New("missing UTM coordinates")

	// ErrInvalidUTM is returned when UTM text does not parse into two numbers
	// or the position lies outside the UTM grid.
	ErrInvalidUTM = errors.New("invalid UTM coordinates")
)

// Translate maps a source row onto the canonical peak shape. Decimal
// coordinates start out null and Index is discarded. Extra columns carry over
// unless their name is an output key, which the fixed fields own.
func Translate(row SourceRow) Peak {
	p := Peak{
		Name: row.Name,
		MASL: row.MASL,
		Map:  row.Map,
		Coordinates: Coordinates{
			DMS: row.DMS,
			UTM: row.UTM,
		},
	}
	for _, f := range row.Extra {
		if IsOutputKey(f.Key) {
			continue
		}
		p.Extra = append(p.Extra, f)
	}
	return p
}

// ComputeUID returns the hex SHA-256 digest of the trimmed UTM text.
func ComputeUID(utm string) (string, error) {
	utm = strings.TrimSpace(utm)
	if utm == "" {
		return "", ErrMissingUTM
	}
	sum := sha256.Sum256([]byte(utm))
	return hex.EncodeToString(sum[:]), nil
}

// DeriveUID sets the peak's UID from its UTM text.
func DeriveUID(p Peak) (Peak, error) {
	uid, err := ComputeUID(p.Coordinates.UTM)
	if err != nil {
		return p, fmt.Errorf("derive uid for %q: %w", p.Name, err)
	}
	p.UID = uid
	return p, nil
}

// ConvertCoordinates fills in decimal latitude and longitude from the UTM text.
// Unparsable or out-of-range text still populates both fields (as "NaN") and
// returns the updated peak together with an error wrapping ErrInvalidUTM,
// leaving the caller to decide whether that is fatal.
func ConvertCoordinates(p Peak, zone Zone) (Peak, error) {
	easting, northing := ParseUTM(p.Coordinates.UTM)
	rangeErr := CheckUTMRange(easting, northing)

	lat, lon := math.NaN(), math.NaN()
	if rangeErr == nil {
		lat, lon = ToLatLon(easting, northing, zone)
	}

	latStr := FormatDegrees(lat)
	lonStr := FormatDegrees(lon)
	p.Coordinates.Latitude = &latStr
	p.Coordinates.Longitude = &lonStr

	if rangeErr != nil {
		return p, fmt.Errorf("convert %q in zone %s: %w", p.Coordinates.UTM, zone, rangeErr)
	}
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return p, fmt.Errorf("convert %q in zone %s: %w", p.Coordinates.UTM, zone, ErrInvalidUTM)
	}
	return p, nil
}

// AddNorgesKart sets a norgeskart.no search link for the peak's DMS position.
func AddNorgesKart(p Peak) Peak {
	p.NorgesKart = norgesKartBaseURL + "&sok=" + encodeURIComponent(p.Coordinates.DMS)
	return p
}

// AddGaiaGPS sets a Gaia GPS link centered on the peak's decimal position.
func AddGaiaGPS(p Peak) Peak {
	p.GaiaGPS = fmt.Sprintf("%s/%s/%s", gaiaGPSBaseURL,
		stringOrNull(p.Coordinates.Longitude), stringOrNull(p.Coordinates.Latitude))
	return p
}

// AttachGroup reserves the group field.
func AttachGroup(p Peak) Peak {
	p.Group = nil
	return p
}

// AttachLocationPlaceholders reserves the administrative region fields until a
// boundary lookup exists.
func AttachLocationPlaceholders(p Peak) Peak {
	p.County = nil
	p.Commune = nil
	p.NationalPark = nil
	return p
}

func stringOrNull(s *string) string {
	if s == nil {
		return "null"
	}
	return *s
}

// uriComponentReplacer undoes url.QueryEscape where it differs from the
// encodeURIComponent rules used by browsers: spaces become %20 and the
// characters !'()* stay literal.
var uriComponentReplacer = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

func encodeURIComponent(s string) string {
	return uriComponentReplacer.Replace(url.QueryEscape(s))
}
