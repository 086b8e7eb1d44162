package reassign_booking

import (
	"time"

	reassignUC "github.com/calhub/CalHub-ReassignService/internal/usecase/reassign_booking"
)

// ReassignRequest HTTP request model
type ReassignRequest struct {
	NewOrganizerID int64  `json:"newOrganizerId"`
	OrganizationID *int64 `json:"organizationId,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP request в модель usecase
func (r *ReassignRequest) ToUseCaseRequest(bookingID int64) *reassignUC.Request {
	return &reassignUC.Request{
		BookingID:      bookingID,
		NewOrganizerID: r.NewOrganizerID,
		OrganizationID: r.OrganizationID,
	}
}

// ReassignResponse HTTP response model
type ReassignResponse struct {
	ID               int64     `json:"id"`
	UID              string    `json:"uid"`
	Title            string    `json:"title"`
	StartTime        time.Time `json:"startTime"`
	EndTime          time.Time `json:"endTime"`
	OrganizerID      int64     `json:"organizerId"`
	Location         *string   `json:"location,omitempty"`
	Status           string    `json:"status"`
	OrganizerChanged bool      `json:"organizerChanged"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// FromUseCaseResponse конвертирует ответ usecase в HTTP response
func FromUseCaseResponse(resp *reassignUC.Response) *ReassignResponse {
	return &ReassignResponse{
		ID:               resp.ID,
		UID:              resp.UID,
		Title:            resp.Title,
		StartTime:        resp.StartTime,
		EndTime:          resp.EndTime,
		OrganizerID:      resp.OrganizerID,
		Location:         resp.Location,
		Status:           resp.Status,
		OrganizerChanged: resp.OrganizerChanged,
		UpdatedAt:        resp.UpdatedAt,
	}
}
