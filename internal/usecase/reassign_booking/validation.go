package reassign_booking

import "fmt"

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.BookingID <= 0 {
		return fmt.Errorf("%w: bookingID must be positive", ErrInvalidInput)
	}

	if req.NewOrganizerID <= 0 {
		return fmt.Errorf("%w: newOrganizerID must be positive", ErrInvalidInput)
	}

	if req.OrganizationID != nil && *req.OrganizationID <= 0 {
		return fmt.Errorf("%w: organizationID must be positive", ErrInvalidInput)
	}

	return nil
}
