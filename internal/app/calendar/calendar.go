/*
Package calendar exports events as iCalendar documents so participants can add
a meetup to their own calendar.
*/
package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"trailmeet/internal/app/event"
	"trailmeet/internal/app/eventtype"
)

const (
	// DefaultDuration is the assumed length of a meetup; events carry only a start time.
	DefaultDuration = 2 * time.Hour

	ProductID = "-//TrailMeet//Events//EN"
	uidDomain = "trailmeet.app"
)

// Export renders e as a single-event VCALENDAR. stamp becomes DTSTAMP.
func Export(e event.Event, stamp time.Time) string {
	cal := ical.NewCalendar()
	cal.SetProductId(ProductID)
	cal.SetMethod(ical.MethodPublish)

	desc := eventtype.Resolve(e.EventType)

	ve := cal.AddEvent(e.ID + "@" + uidDomain)
	ve.SetDtStampTime(stamp.UTC())
	ve.SetCreatedTime(e.CreatedAt.UTC())
	ve.SetStartAt(e.EventDate.UTC())
	ve.SetEndAt(e.EventDate.Add(DefaultDuration).UTC())
	ve.SetSummary(e.Title)
	ve.SetDescription(description(e, desc))
	ve.SetLocation(e.Location.Address)
	ve.SetURL(e.Location.DirectionsURL())
	ve.SetProperty(ical.ComponentPropertyGeo, geo(e.Location))
	ve.SetProperty(ical.ComponentPropertyCategories, desc.Label)
	ve.SetStatus(status(e.Status))

	return cal.Serialize()
}

// Filename returns a download name for e's calendar file.
func Filename(e event.Event) string {
	var b strings.Builder
	for _, r := range strings.ToLower(e.Title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case b.Len() > 0 && !strings.HasSuffix(b.String(), "-"):
			b.WriteByte('-')
		}
	}
	name := strings.Trim(b.String(), "-")
	if name == "" {
		name = "event"
	}
	return name + ".ics"
}

func description(e event.Event, desc eventtype.Descriptor) string {
	lines := []string{desc.Icon + " " + desc.Label, "", e.Description}
	if e.Capacity != nil {
		lines = append(lines, "", fmt.Sprintf("Capacity: %d (%d joined)", *e.Capacity, len(e.Participants)))
	}
	lines = append(lines, "", "Directions: "+e.Location.DirectionsURL())
	return strings.Join(lines, "\n")
}

func geo(l event.Location) string {
	return strconv.FormatFloat(l.Lat, 'f', -1, 64) + ";" + strconv.FormatFloat(l.Lng, 'f', -1, 64)
}

func status(s event.Status) ical.ObjectStatus {
	if s == event.StatusCancelled {
		return ical.ObjectStatusCancelled
	}
	return ical.ObjectStatusConfirmed
}
