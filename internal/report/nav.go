package report

import (
	"fmt"
	"strconv"
	"strings"
)

// Navigation state travels inside Telegram callback data, which is capped at
// 64 bytes, so the wire form is a compact colon-separated string with an
// explicit version field: "att:1:<page>:<filter>:<sort>". Every button carries
// the complete triple; nothing depends on server-side session state.
const (
	navPrefix  = "att"
	navVersion = "1"

	// NavCallbackPrefix is what the transport matches callback data against.
	NavCallbackPrefix = navPrefix + ":"
)

// NavState is the complete navigation target encoded in one report control.
type NavState struct {
	Page   int
	Filter FilterMode
	Sort   SortMode
}

// Encode serializes the state to its wire form.
func (s NavState) Encode() string {
	return strings.Join([]string{
		navPrefix,
		navVersion,
		strconv.Itoa(s.Page),
		string(s.Filter),
		string(s.Sort),
	}, ":")
}

// NavDecodeError reports callback data that could not be decoded. The caller
// surfaces it to the requester and changes nothing.
type NavDecodeError struct {
	Data   string
	Reason string
}

func (e *NavDecodeError) Error() string {
	return fmt.Sprintf("malformed navigation data %q: %s", e.Data, e.Reason)
}

// DecodeNav parses callback data back into a NavState. The page may be out of
// range (the builder clamps it); unknown filter or sort tokens, a wrong
// prefix, version, or shape are decode errors.
func DecodeNav(data string) (NavState, error) {
	parts := strings.Split(data, ":")
	if len(parts) != 5 {
		return NavState{}, &NavDecodeError{Data: data, Reason: "expected 5 fields"}
	}
	if parts[0] != navPrefix {
		return NavState{}, &NavDecodeError{Data: data, Reason: "unknown prefix"}
	}
	if parts[1] != navVersion {
		return NavState{}, &NavDecodeError{Data: data, Reason: "unsupported version"}
	}

	page, err := strconv.Atoi(parts[2])
	if err != nil {
		return NavState{}, &NavDecodeError{Data: data, Reason: "page is not an integer"}
	}

	filter := FilterMode(parts[3])
	if !ValidFilter(filter) {
		return NavState{}, &NavDecodeError{Data: data, Reason: "unknown filter"}
	}

	sortMode := SortMode(parts[4])
	if !ValidSort(sortMode) {
		return NavState{}, &NavDecodeError{Data: data, Reason: "unknown sort"}
	}

	return NavState{Page: page, Filter: filter, Sort: sortMode}, nil
}
