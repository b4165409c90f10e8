package create_appointment

import (
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/m04kA/SMC-DetailingBooking/internal/domain"
	"github.com/m04kA/SMC-DetailingBooking/pkg/types"
)

// emailPattern local@domain.tld без пробелов
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// validateRequest проверяет поля формы. Слоты при этом не трогаются.
// Проверки идут по значению без пробелов по краям, сохраняется значение как есть.
func validateRequest(req *Request) (*validated, error) {
	v := &validated{
		name:    req.Name,
		phone:   req.Phone,
		email:   req.Email,
		vehicle: req.Vehicle,
	}

	for _, f := range []struct{ field, value string }{
		{"name", req.Name},
		{"phone", req.Phone},
		{"email", req.Email},
		{"vehicle", req.Vehicle},
	} {
		if hasControlChars(f.value, false) {
			return nil, invalid(f.field, f.field+" contains invalid characters")
		}
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("name", "name is required")
	}
	if utf8.RuneCountInString(name) < domain.MinNameLength {
		return nil, invalid("name", "name must be at least 3 characters")
	}
	if utf8.RuneCountInString(req.Name) > domain.MaxFieldLength {
		return nil, invalid("name", "name is too long")
	}

	phone := strings.TrimSpace(req.Phone)
	if phone == "" {
		return nil, invalid("phone", "phone is required")
	}
	if !isValidPhone(phone) {
		return nil, invalid("phone", "phone must have 10 or 11 digits")
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		return nil, invalid("email", "email is required")
	}
	if len(req.Email) > domain.MaxFieldLength || !emailPattern.MatchString(email) {
		return nil, invalid("email", "email is invalid")
	}

	if strings.TrimSpace(req.Vehicle) == "" {
		return nil, invalid("vehicle", "vehicle is required")
	}
	if utf8.RuneCountInString(req.Vehicle) > domain.MaxFieldLength {
		return nil, invalid("vehicle", "vehicle is too long")
	}

	if strings.TrimSpace(req.Service) == "" {
		return nil, invalid("service", "service is required")
	}
	service, err := domain.ParseServiceCategory(req.Service)
	if err != nil {
		return nil, invalid("service", "unknown service")
	}
	v.service = service

	if strings.TrimSpace(req.Date) == "" {
		return nil, invalid("date", "date is required")
	}
	date, err := time.Parse(domain.DateFormat, strings.TrimSpace(req.Date))
	if err != nil {
		return nil, invalid("date", "date must be in YYYY-MM-DD format")
	}
	v.date = domain.DateOnly(date)

	if strings.TrimSpace(req.Time) == "" {
		return nil, invalid("time", "time is required")
	}
	slotTime, err := types.NewTimeStringFromString(strings.TrimSpace(req.Time))
	if err != nil {
		return nil, invalid("time", "time must be in HH:MM format")
	}
	v.time = slotTime

	if req.Note != nil {
		note := *req.Note
		if hasControlChars(note, true) {
			return nil, invalid("note", "note contains invalid characters")
		}
		if utf8.RuneCountInString(note) > domain.MaxNoteLength {
			return nil, invalid("note", "note must be at most 500 characters")
		}
		if strings.TrimSpace(note) != "" {
			v.note = &note
		}
	}

	return v, nil
}

// validateSchedule проверяет дату и время по календарю.
// Прошедшая дата, дата за горизонтом и время вне сетки - ошибки ввода,
// выходной или уже закрытый сегодняшний слот - слот недоступен.
func validateSchedule(schedule *domain.Schedule, v *validated, now time.Time) error {
	if v.date.Before(schedule.Today(now)) {
		return invalid("date", "date is in the past")
	}
	if !schedule.IsWithinHorizon(v.date, now) {
		return invalid("date", "date is too far in the future")
	}
	if !schedule.IsSlotTime(v.time) {
		return invalid("time", "time is not a bookable slot")
	}
	if !schedule.IsSlotOpen(v.date, v.time, now) {
		return ErrSlotNotAvailable
	}
	return nil
}

// isValidPhone 10-11 цифр после удаления форматирования, код страны 55 допускается
func isValidPhone(phone string) bool {
	digits := make([]rune, 0, len(phone))
	for _, r := range phone {
		switch {
		case r >= '0' && r <= '9':
			digits = append(digits, r)
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '+' || r == '.':
		default:
			return false
		}
	}

	n := len(digits)
	if (n == domain.MaxPhoneDigits+2 || n == domain.MinPhoneDigits+2) && string(digits[:2]) == domain.PhoneCountryDDI {
		n -= 2
	}
	return n >= domain.MinPhoneDigits && n <= domain.MaxPhoneDigits
}

// hasControlChars ищет управляющие символы (включая NUL, который PostgreSQL не хранит в text).
// В многострочных полях допустимы перевод строки и табуляция.
func hasControlChars(s string, multiline bool) bool {
	for _, r := range s {
		if multiline && (r == '\n' || r == '\r' || r == '\t') {
			continue
		}
		if unicode.IsControl(r) || r == utf8.RuneError {
			return true
		}
	}
	return false
}
