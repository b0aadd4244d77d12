package google

import calendar "google.golang.org/api/calendar/v3"

// CalendarScopes are the OAuth scopes requested for calendar access.
// Full calendar scope is needed for the create and delete tools.
var CalendarScopes = []string{
	calendar.CalendarScope,
}
