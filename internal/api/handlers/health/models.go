package health

// StatusResponse ответ health-check
type StatusResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

const (
	statusOK       = "ok"
	statusDegraded = "unavailable"
)
