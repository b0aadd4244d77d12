// Package calendar defines the calendar directory and event store ports
// used by the event engine, and implements them on top of the Google
// Calendar API.
//
// Remote failures are mapped onto the calerr taxonomy: a 404 or 410 from
// the API becomes NotFound, every other failure UpstreamUnavailable.
//
// Example usage:
//
//	client, err := calendar.NewClientForAccount(ctx, "default", tokenProvider)
//	if err != nil {
//	    return err
//	}
//	calendars, err := client.ListCalendars(ctx)
package calendar
