package migrations

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"github.com/m04kA/SMC-DetailingBooking/pkg/dbmetrics"
)

//go:embed sql/*.sql
var files embed.FS

// ErrApply возвращается, если миграцию не удалось применить
var ErrApply = errors.New("migrations: failed to apply migration")

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
}

// Up применяет встроенные SQL миграции по порядку имен.
// Все скрипты идемпотентны (IF NOT EXISTS), повторный запуск безопасен.
func Up(ctx context.Context, db dbmetrics.DBExecutor, logger Logger) error {
	names, err := fs.Glob(files, "sql/*.sql")
	if err != nil {
		return fmt.Errorf("%w: list files: %v", ErrApply, err)
	}
	sort.Strings(names)

	for _, name := range names {
		body, err := files.ReadFile(name)
		if err != nil {
			return fmt.Errorf("%w: read %s: %v", ErrApply, name, err)
		}
		if _, err := db.ExecContext(ctx, string(body)); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrApply, name, err)
		}
		logger.Info("Migration applied: %s", name)
	}

	return nil
}
