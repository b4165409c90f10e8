package list_appointments

import (
	"net/url"

	"github.com/m04kA/SMC-DetailingBooking/internal/service/appointments/models"
)

// ToServiceRequest собирает фильтры из query параметров
func ToServiceRequest(q url.Values) *models.ListRequest {
	return &models.ListRequest{
		Status:  q.Get("status"),
		Date:    q.Get("date"),
		Service: q.Get("service"),
		Query:   q.Get("q"),
	}
}
