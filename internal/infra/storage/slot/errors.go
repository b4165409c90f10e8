package slot

import "errors"

var (
	// ErrSlotFull возвращается, когда в слоте не осталось мест
	ErrSlotFull = errors.New("slot.repository: slot is full")

	// ErrCounterUnderflow возвращается при попытке освободить место в пустом слоте
	ErrCounterUnderflow = errors.New("slot.repository: slot counter is already zero")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("slot.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("slot.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("slot.repository: failed to scan row")
)
