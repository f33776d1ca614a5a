package pointer

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/teslashibe/go-gazepointer/pkg/surface"
)

// ErrInvalidSettings is returned when settings fail validation.
var ErrInvalidSettings = errors.New("invalid settings")

// Settings holds the pointer parameters that can be changed while running.
type Settings struct {
	// Dwell
	DwellTime   float64 `json:"dwell_time" validate:"gte=0,lte=20"`     // Seconds
	DwellRadius float64 `json:"dwell_radius" validate:"gte=0,lte=512"`  // Pixels

	// Smoothing is the weight of the previous position (0 = raw gaze)
	Smoothing float64 `json:"smoothing" validate:"gte=0,lte=1"`

	MouseEnabled bool `json:"mouse_enabled"`

	// Marker layout
	TagSize       int `json:"tag_size" validate:"gte=10,lte=512"`
	TagBrightness int `json:"tag_brightness" validate:"gte=0,lte=255"`
	LeftOffset    int `json:"left_offset"`
	RightOffset   int `json:"right_offset"`
}

// DefaultSettings returns the settings the pointer starts with.
func DefaultSettings() Settings {
	return Settings{
		DwellTime:     0.75,
		DwellRadius:   75,
		Smoothing:     0.3,
		TagSize:       surface.DefaultTagSize,
		TagBrightness: 255,
		LeftOffset:    surface.DefaultLeftOffset,
		RightOffset:   surface.DefaultRightOffset,
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the settings against their ranges. Tag offsets may move
// a marker pair at most half the window width; a width of 0 skips that
// check.
func (s Settings) Validate(windowWidth int) error {
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s must be %s %s", fe.Field(), bound(fe.Tag()), fe.Param()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidSettings, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}

	if half := windowWidth / 2; windowWidth > 0 {
		if s.LeftOffset < -half || s.LeftOffset > half {
			return fmt.Errorf("%w: left_offset must be within ±%d", ErrInvalidSettings, half)
		}
		if s.RightOffset < -half || s.RightOffset > half {
			return fmt.Errorf("%w: right_offset must be within ±%d", ErrInvalidSettings, half)
		}
	}
	return nil
}

func bound(tag string) string {
	switch tag {
	case "gte":
		return ">="
	case "lte":
		return "<="
	default:
		return tag
	}
}

// layoutChanged reports whether switching from s to o moves the markers.
func (s Settings) layoutChanged(o Settings) bool {
	return s.TagSize != o.TagSize || s.LeftOffset != o.LeftOffset || s.RightOffset != o.RightOffset
}
