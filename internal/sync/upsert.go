package sync

import "time"

// setString points *dst at v unless it already holds v, and reports a change.
func setString(dst **string, v string) bool {
	if *dst != nil && **dst == v {
		return false
	}
	*dst = &v
	return true
}

// setNullable copies v into *dst. A nil v clears the field.
func setNullable(dst **string, v *string) bool {
	switch {
	case v == nil && *dst == nil:
		return false
	case v == nil:
		*dst = nil
		return true
	default:
		return setString(dst, *v)
	}
}

// setOptional stores v, or nil when v is empty.
func setOptional(dst **string, v string) bool {
	if v == "" {
		return setNullable(dst, nil)
	}
	return setString(dst, v)
}

func setID(dst **int64, v int64) bool {
	if *dst != nil && **dst == v {
		return false
	}
	*dst = &v
	return true
}

func setTime(dst **time.Time, v *time.Time) bool {
	switch {
	case v == nil:
		return false
	case *dst != nil && (*dst).Equal(*v):
		return false
	default:
		t := *v
		*dst = &t
		return true
	}
}
