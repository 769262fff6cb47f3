package config

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	MinMinutesBefore = -4320
	MaxMinutesBefore = 30
	MinMinutesAfter  = -4350
	MaxMinutesAfter  = 4320

	DefaultMinutesBefore = 0
	DefaultMinutesAfter  = 60
)

var validate = validator.New()

var (
	minutesBeforeTag = fmt.Sprintf("min=%d,max=%d", MinMinutesBefore, MaxMinutesBefore)
	minutesAfterTag  = fmt.Sprintf("min=%d,max=%d", MinMinutesAfter, MaxMinutesAfter)
)

// ValidateWindow checks the lookback/lookahead window. It returns nil when the window is valid.
func ValidateWindow(minutesBefore any, minutesAfter any) FormErrors {
	errors := FormErrors{}

	before, beforeErr := CoerceMinutes(minutesBefore)
	if beforeErr != nil {
		errors[FieldMinutesBefore] = ErrorInvalidMinutesBefore
	} else if err := validate.Var(before, minutesBeforeTag); err != nil {
		errors[FieldMinutesBefore] = ErrorInvalidMinutesBefore
	}

	after, afterErr := CoerceMinutes(minutesAfter)
	if afterErr != nil {
		errors[FieldMinutesAfter] = ErrorInvalidMinutesAfter
	} else if err := validate.Var(after, minutesAfterTag); err != nil {
		errors[FieldMinutesAfter] = ErrorInvalidMinutesAfter
	}

	if beforeErr == nil && afterErr == nil && before+after <= 0 {
		errors[FieldBase] = ErrorInvalidIntervalSum
	}

	if len(errors) == 0 {
		return nil
	}

	return errors
}

// CoerceMinutes turns form input into a whole number of minutes
func CoerceMinutes(value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case float64:
		if math.Trunc(v) != v || math.IsInf(v, 0) {
			return 0, fmt.Errorf("%v is not a whole number", v)
		}
		return int(v), nil
	case json.Number:
		n, err := v.Int64()
		return int(n), err
	case string:
		return strconv.Atoi(strings.TrimSpace(v))
	default:
		return 0, fmt.Errorf("unsupported minutes value %v (%T)", value, value)
	}
}
