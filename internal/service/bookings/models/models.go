package models

import (
	"time"

	"github.com/calhub/CalHub-ReassignService/internal/domain"
	"github.com/calhub/CalHub-ReassignService/pkg/ptr"
)

// BookingResponse модель бронирования для выдачи наружу
type BookingResponse struct {
	ID          int64                  `json:"id"`
	UID         string                 `json:"uid"`
	Title       string                 `json:"title"`
	Description string                 `json:"description,omitempty"`
	StartTime   time.Time              `json:"startTime"`
	EndTime     time.Time              `json:"endTime"`
	UserID      *int64                 `json:"userId,omitempty"`
	EventTypeID *int64                 `json:"eventTypeId,omitempty"`
	Location    *string                `json:"location,omitempty"`
	Status      string                 `json:"status"`
	Version     int64                  `json:"version"`
	Responses   map[string]interface{} `json:"responses,omitempty"`
	Attendees   []AttendeeResponse     `json:"attendees"`
	References  []ReferenceResponse    `json:"references"`
	CreatedAt   time.Time              `json:"createdAt"`
	UpdatedAt   time.Time              `json:"updatedAt"`
}

// AttendeeResponse участник бронирования
type AttendeeResponse struct {
	Email       string  `json:"email"`
	Name        string  `json:"name"`
	TimeZone    string  `json:"timeZone"`
	Locale      string  `json:"locale,omitempty"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
}

// ReferenceResponse ссылка бронирования на внешний календарный артефакт
type ReferenceResponse struct {
	Type               string  `json:"type"`
	UID                string  `json:"uid"`
	MeetingID          *string `json:"meetingId,omitempty"`
	MeetingURL         *string `json:"meetingUrl,omitempty"`
	ExternalCalendarID *string `json:"externalCalendarId,omitempty"`
	CredentialID       *int64  `json:"credentialId,omitempty"`
}

// FromDomain конвертирует доменное бронирование в модель выдачи
func FromDomain(booking *domain.Booking) *BookingResponse {
	attendees := make([]AttendeeResponse, 0, len(booking.Attendees))
	for _, a := range booking.Attendees {
		attendees = append(attendees, AttendeeResponse{
			Email:       a.Email,
			Name:        a.Name,
			TimeZone:    a.TimeZone,
			Locale:      a.Locale,
			PhoneNumber: a.PhoneNumber,
		})
	}

	references := make([]ReferenceResponse, 0, len(booking.References))
	for _, ref := range booking.References {
		references = append(references, ReferenceResponse{
			Type:               ref.Type,
			UID:                ref.UID,
			MeetingID:          ref.MeetingID,
			MeetingURL:         ref.MeetingURL,
			ExternalCalendarID: ref.ExternalCalendarID,
			CredentialID:       ref.CredentialID,
		})
	}

	return &BookingResponse{
		ID:          booking.ID,
		UID:         booking.UID,
		Title:       booking.Title,
		Description: ptr.Deref(booking.Description),
		StartTime:   booking.StartTime,
		EndTime:     booking.EndTime,
		UserID:      booking.UserID,
		EventTypeID: booking.EventTypeID,
		Location:    booking.Location,
		Status:      string(booking.Status),
		Version:     booking.Version,
		Responses:   booking.Responses,
		Attendees:   attendees,
		References:  references,
		CreatedAt:   booking.CreatedAt,
		UpdatedAt:   booking.UpdatedAt,
	}
}
