package notifyservice

import (
	"bytes"
	"fmt"
	"time"

	"github.com/emersion/go-ical"

	"github.com/calhub/CalHub-ReassignService/internal/domain"
)

// iCalendar METHOD значения для вложений
const (
	methodRequest = "REQUEST"
	methodCancel  = "CANCEL"
)

// buildICS строит iCalendar представление события для вложения в письмо
// method: REQUEST для планирования, CANCEL для отмены у прежнего организатора
func buildICS(evt *domain.CalendarEventPayload, method string) (string, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//calhub-reassign//EN")
	cal.Props.SetText(ical.PropMethod, method)

	ve := ical.NewComponent(ical.CompEvent)
	ve.Props.SetText(ical.PropUID, evt.UID)
	ve.Props.SetText(ical.PropSummary, evt.Title)
	ve.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
	ve.Props.SetDateTime(ical.PropDateTimeStart, evt.StartTime.UTC())
	ve.Props.SetDateTime(ical.PropDateTimeEnd, evt.EndTime.UTC())

	if evt.Description != nil && *evt.Description != "" {
		ve.Props.SetText(ical.PropDescription, *evt.Description)
	}
	if evt.Location != nil && *evt.Location != "" {
		ve.Props.SetText(ical.PropLocation, *evt.Location)
	}
	if method == methodCancel {
		ve.Props.SetText(ical.PropStatus, "CANCELLED")
	}

	organizer := ical.NewProp(ical.PropOrganizer)
	organizer.Params.Set(ical.ParamCommonName, evt.Organizer.Name)
	organizer.Value = "mailto:" + evt.Organizer.Email
	ve.Props.Set(organizer)

	for _, a := range evt.Attendees {
		attendee := ical.NewProp(ical.PropAttendee)
		attendee.Params.Set(ical.ParamCommonName, a.Name)
		attendee.Value = "mailto:" + a.Email
		ve.Props.Add(attendee)
	}

	cal.Children = append(cal.Children, ve)

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return "", fmt.Errorf("%w: failed to encode icalendar: %v", ErrInternal, err)
	}

	return buf.String(), nil
}
