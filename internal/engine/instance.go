package engine

import "strings"

// InstanceIDStrategy derives the identifier of one occurrence of a
// recurring event from the series id and the occurrence date.
type InstanceIDStrategy interface {
	InstanceID(eventID, instanceDate string) string
}

// InstanceIDFunc adapts a function to InstanceIDStrategy.
type InstanceIDFunc func(eventID, instanceDate string) string

func (f InstanceIDFunc) InstanceID(eventID, instanceDate string) string {
	return f(eventID, instanceDate)
}

// StripNonDigitT appends "_" and the instance date with every character
// other than digits and 'T' removed, so "abc123" on "2025-06-04T10:00:00"
// becomes "abc123_20250604T100000".
//
// Google names instances "<id>_<yyyymmddThhmmssZ>" in UTC; this strategy
// does not convert zones or append the Z suffix and may not match real
// instance ids. TODO: switch the default once the format is confirmed
// against events.instances.
var StripNonDigitT InstanceIDStrategy = InstanceIDFunc(stripNonDigitT)

func stripNonDigitT(eventID, instanceDate string) string {
	var sb strings.Builder
	sb.Grow(len(eventID) + 1 + len(instanceDate))
	sb.WriteString(eventID)
	sb.WriteByte('_')
	for _, r := range instanceDate {
		if (r >= '0' && r <= '9') || r == 'T' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
