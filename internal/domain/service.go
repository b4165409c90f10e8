package domain

import (
	"fmt"
	"strings"
)

// ServiceCategory вид услуги детейлинга
type ServiceCategory string

const (
	ServiceFullDetailing  ServiceCategory = "full_detailing"
	ServicePPFProtection  ServiceCategory = "ppf_protection"
	ServiceCeramicCoating ServiceCategory = "ceramic_coating"
	ServiceCustomization  ServiceCategory = "customization"
	ServicePerformance    ServiceCategory = "performance"
	ServiceOther          ServiceCategory = "other"
)

// ServiceCategories все услуги в порядке показа клиенту
var ServiceCategories = []ServiceCategory{
	ServiceFullDetailing,
	ServicePPFProtection,
	ServiceCeramicCoating,
	ServiceCustomization,
	ServicePerformance,
	ServiceOther,
}

var serviceLabels = map[ServiceCategory]string{
	ServiceFullDetailing:  "Detalhamento Completo",
	ServicePPFProtection:  "Proteção PPF (Película)",
	ServiceCeramicCoating: "Ceramic Coating",
	ServiceCustomization:  "Personalização",
	ServicePerformance:    "Performance",
	ServiceOther:          "Outro",
}

// Label название услуги для клиента
func (c ServiceCategory) Label() string {
	return serviceLabels[c]
}

// ParseServiceCategory принимает код услуги или ее название
func ParseServiceCategory(s string) (ServiceCategory, error) {
	value := strings.TrimSpace(s)
	for _, c := range ServiceCategories {
		if strings.EqualFold(value, string(c)) || strings.EqualFold(value, serviceLabels[c]) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownService, s)
}
