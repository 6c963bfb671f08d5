package navigator

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/fortuna/courtside/internal/balldontlie"
	"github.com/fortuna/courtside/internal/nba"
	"github.com/fortuna/courtside/internal/pager"
)

// Describe turns a load error into the message shown in place of a view.
func Describe(err error) string {
	if err == nil {
		return ""
	}

	var exhausted *pager.PaginationExhaustionError
	var inputErr *nba.AggregationInputError
	var remote *balldontlie.RemoteError

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "The stats service did not answer in time."
	case errors.Is(err, context.Canceled):
		return "Loading was cancelled."
	case errors.As(err, &exhausted):
		return fmt.Sprintf("The %s list never finished paging (%s).", exhausted.Resource, exhausted.Reason)
	case errors.As(err, &inputErr):
		return "The data returned is inconsistent: " + inputErr.Error() + "."
	case errors.As(err, &remote):
		return describeRemote(remote)
	}
	return "Something went wrong: " + err.Error()
}

func describeRemote(e *balldontlie.RemoteError) string {
	switch e.Status {
	case 0:
		return "Could not reach the stats service."
	case http.StatusUnauthorized, http.StatusForbidden:
		return "The stats service rejected the API key."
	case http.StatusNotFound:
		return fmt.Sprintf("Nothing found for %s.", e.Resource)
	case http.StatusTooManyRequests:
		return "Too many requests to the stats service, try again shortly."
	}

	msg := fmt.Sprintf("The stats service answered %d for %s", e.Status, e.Resource)
	if e.Detail != "" {
		msg += ": " + e.Detail
	} else if e.Status == http.StatusOK && e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg + "."
}
