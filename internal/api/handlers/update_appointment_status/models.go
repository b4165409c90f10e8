package update_appointment_status

// UpdateStatusRequest тело запроса PATCH /appointments/{id}/status
type UpdateStatusRequest struct {
	Status string `json:"status"`
}
