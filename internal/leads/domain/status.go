// Package domain provides core business rules for the leads bounded context.
package domain

import (
	"errors"
	"fmt"
)

// Status is a lead pipeline status. Only catalog members are valid.
type Status string

const (
	StatusNew           Status = "NEW"
	StatusDNR1          Status = "DNR1"
	StatusDNR2          Status = "DNR2"
	StatusDNR3          Status = "DNR3"
	StatusDNR4          Status = "DNR4"
	StatusCutCall       Status = "Cut Call"
	StatusCallBack      Status = "Call Back"
	StatusNotInterested Status = "Not Interested"
	StatusDenied        Status = "Denied"
	StatusConverted     Status = "Converted"
)

// Pipeline tags.
const (
	PipelineLead     = "LEAD"
	PipelineEnrolled = "ENROLLED"
)

// ErrUnknownStatus is returned for strings outside the status catalog. It is an
// input error, not a business-rule rejection.
var ErrUnknownStatus = errors.New("unknown lead status")

// catalog is the fixed, ordered status enumeration.
var catalog = [...]Status{
	StatusNew,
	StatusDNR1,
	StatusDNR2,
	StatusDNR3,
	StatusDNR4,
	StatusCutCall,
	StatusCallBack,
	StatusNotInterested,
	StatusDenied,
	StatusConverted,
}

var catalogIndex = func() map[Status]int {
	idx := make(map[Status]int, len(catalog))
	for i, s := range catalog {
		idx[s] = i
	}
	return idx
}()

// Statuses returns the ordered status catalog. The slice is a copy.
func Statuses() []Status {
	out := make([]Status, len(catalog))
	copy(out, catalog[:])
	return out
}

// StatusStrings returns the catalog as plain strings, in order.
func StatusStrings() []string {
	out := make([]string, len(catalog))
	for i, s := range catalog {
		out[i] = string(s)
	}
	return out
}

// IsKnownStatus reports catalog membership. Matching is exact.
func IsKnownStatus(value string) bool {
	_, ok := catalogIndex[Status(value)]
	return ok
}

// ParseStatus converts a string into a catalog Status.
func ParseStatus(value string) (Status, error) {
	if !IsKnownStatus(value) {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, value)
	}
	return Status(value), nil
}

// Valid reports whether s is a catalog member.
func (s Status) Valid() bool {
	return IsKnownStatus(string(s))
}

func (s Status) String() string {
	return string(s)
}
