package geo

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrMissingSW = errors.New("missing sw")
	ErrMissingNE = errors.New("missing ne")
	ErrInvalidSW = errors.New("invalid sw")
	ErrInvalidNE = errors.New("invalid ne")
)

var latLngPattern = regexp.MustCompile(`^-?\d+(?:\.\d+)?,-?\d+(?:\.\d+)?$`)

// RegisterValidations adds the "latlng" tag to v.
// A value passes when it is "<lat>,<lng>" with optionally signed decimals.
func RegisterValidations(v *validator.Validate) error {
	return v.RegisterValidation("latlng", func(fl validator.FieldLevel) bool {
		return latLngPattern.MatchString(fl.Field().String())
	})
}

// Point is a latitude/longitude pair in degrees
type Point struct {
	Lat float64
	Lng float64
}

// Bounds is a map viewport given by its south-west and north-east corners
type Bounds struct {
	SW Point
	NE Point
}

// CrossesAntimeridian reports whether the viewport wraps the ±180° line,
// which a map reports as a south-west longitude east of the north-east one
func (b Bounds) CrossesAntimeridian() bool {
	return b.SW.Lng > b.NE.Lng
}

// Contains applies the latitude and (possibly wrapped) longitude filter
func (b Bounds) Contains(lat, lng float64) bool {
	if lat < b.SW.Lat || lat > b.NE.Lat {
		return false
	}
	if b.CrossesAntimeridian() {
		return lng >= b.SW.Lng || lng <= b.NE.Lng
	}
	return b.SW.Lng <= lng && lng <= b.NE.Lng
}

type boundsParams struct {
	SW string `validate:"required,latlng"`
	NE string `validate:"required,latlng"`
}

// BoundsParser validates and parses the sw/ne request parameters
type BoundsParser struct {
	validate *validator.Validate
}

// NewBoundsParser creates a parser with its own validator instance
func NewBoundsParser() *BoundsParser {
	v := validator.New()
	// only fails on a duplicate or empty tag, both programming errors
	if err := RegisterValidations(v); err != nil {
		panic(err)
	}
	return &BoundsParser{validate: v}
}

var defaultBoundsParser = NewBoundsParser()

// ParseBounds parses sw and ne with a shared BoundsParser
func ParseBounds(sw, ne string) (Bounds, error) {
	return defaultBoundsParser.Parse(sw, ne)
}

// Parse checks that both corners are present, then that both are well formed,
// and returns the viewport
func (p *BoundsParser) Parse(sw, ne string) (Bounds, error) {
	if err := p.validate.Struct(boundsParams{SW: sw, NE: ne}); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return Bounds{}, err
		}
		return Bounds{}, firstBoundsError(verrs)
	}

	swPoint, err := parsePoint(sw)
	if err != nil {
		return Bounds{}, fmt.Errorf("%w: %v", ErrInvalidSW, err)
	}
	nePoint, err := parsePoint(ne)
	if err != nil {
		return Bounds{}, fmt.Errorf("%w: %v", ErrInvalidNE, err)
	}

	return Bounds{SW: swPoint, NE: nePoint}, nil
}

// firstBoundsError maps validator failures to the sentinel errors, reporting
// missing parameters before malformed ones
func firstBoundsError(verrs validator.ValidationErrors) error {
	var missing, invalid []error
	for _, fe := range verrs {
		isSW := fe.Field() == "SW"
		if fe.Tag() == "required" {
			missing = append(missing, pick(isSW, ErrMissingSW, ErrMissingNE))
			continue
		}
		invalid = append(invalid, pick(isSW, ErrInvalidSW, ErrInvalidNE))
	}
	if len(missing) > 0 {
		return missing[0]
	}
	if len(invalid) > 0 {
		return invalid[0]
	}
	return verrs
}

func pick(cond bool, a, b error) error {
	if cond {
		return a
	}
	return b
}

func parsePoint(s string) (Point, error) {
	latStr, lngStr, _ := strings.Cut(s, ",")
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return Point{}, err
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return Point{}, err
	}
	return Point{Lat: lat, Lng: lng}, nil
}
