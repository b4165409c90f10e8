package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/spf13/cobra"

	"github.com/m04kA/SMC-DetailingBooking/internal/domain"
	"github.com/m04kA/SMC-DetailingBooking/internal/integrations/notifier"
	createAppointmentUC "github.com/m04kA/SMC-DetailingBooking/internal/usecase/create_appointment"
	"github.com/m04kA/SMC-DetailingBooking/pkg/logger"
	"github.com/m04kA/SMC-DetailingBooking/pkg/ptr"
)

var seedNotes = []string{
	"Carro com arranhões na porta traseira",
	"Prefere contato por WhatsApp",
	"Primeira visita",
	"Buscar o carro às 18h",
}

type seedOptions struct {
	count int
	days  int
	seed  int64
}

func newSeedCmd(configPath *string) *cobra.Command {
	var opts seedOptions

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Заполнить хранилище демонстрационными записями",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfigAndLogger(*configPath)
			if err != nil {
				return err
			}
			defer log.Close()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			schedule, err := newSchedule(cfg.Schedule)
			if err != nil {
				return fmt.Errorf("build schedule: %w", err)
			}

			store, err := openStorage(ctx, cfg, nil, log)
			if err != nil {
				return err
			}
			defer store.close()

			// события при наполнении не публикуются
			uc := createAppointmentUC.NewUseCase(
				store.appointments,
				store.slots,
				store.txManager,
				notifier.NoopPublisher{},
				nil,
				schedule,
				cfg.Storage.StoreTimeoutDuration(),
				logger.NewNop(),
			)

			created, skipped, err := seedAppointments(ctx, uc, schedule, time.Now(), opts)
			if err != nil {
				log.Error("Seed failed after %d appointments: %v", created, err)
				return err
			}

			log.Info("Seed complete: created=%d, skipped=%d", created, skipped)
			fmt.Fprintf(cmd.OutOrStdout(), "created %d appointments, skipped %d full slots\n", created, skipped)
			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.count, "count", "n", 20, "сколько записей создать")
	cmd.Flags().IntVar(&opts.days, "days", 10, "на сколько рабочих дней вперед распределять записи")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "seed генератора (0 - случайный)")

	return cmd
}

type appointmentCreator interface {
	Execute(ctx context.Context, req *createAppointmentUC.Request) (*createAppointmentUC.Response, error)
}

// seedAppointments создает записи через обычный сценарий бронирования,
// поэтому вместимость слотов соблюдается. Заполненные слоты пропускаются.
func seedAppointments(
	ctx context.Context,
	uc appointmentCreator,
	schedule *domain.Schedule,
	now time.Time,
	opts seedOptions,
) (created, skipped int, err error) {
	gofakeit.Seed(opts.seed)

	dates := bookableDates(schedule, now, opts.days)
	if len(dates) == 0 {
		return 0, 0, errors.New("no bookable dates in range")
	}

	for i := 0; i < opts.count; i++ {
		date := dates[gofakeit.Number(0, len(dates)-1)]
		slot := schedule.Times[gofakeit.Number(0, len(schedule.Times)-1)]
		service := domain.ServiceCategories[gofakeit.Number(0, len(domain.ServiceCategories)-1)]

		_, err := uc.Execute(ctx, &createAppointmentUC.Request{
			Name:    gofakeit.Name(),
			Phone:   fakePhone(),
			Email:   gofakeit.Email(),
			Vehicle: gofakeit.CarMaker() + " " + gofakeit.CarModel(),
			Service: string(service),
			Date:    date.Format(domain.DateFormat),
			Time:    slot.String(),
			Note:    fakeNote(),
		})
		switch {
		case err == nil:
			created++
		case errors.Is(err, createAppointmentUC.ErrSlotNotAvailable):
			skipped++
		default:
			return created, skipped, err
		}
	}

	return created, skipped, nil
}

// bookableDates ближайшие days дат, на которые открыта запись (начиная с завтра)
func bookableDates(schedule *domain.Schedule, now time.Time, days int) []time.Time {
	dates := make([]time.Time, 0, days)
	day := schedule.Today(now)

	for attempts := 0; len(dates) < days && attempts < days*3+7; attempts++ {
		day = day.AddDate(0, 0, 1)
		if schedule.IsBookableDate(day, now) {
			dates = append(dates, day)
		}
	}
	return dates
}

// fakePhone мобильный номер в бразильском формате (DD) 9XXXX-XXXX
func fakePhone() string {
	return fmt.Sprintf("(%02d) 9%04d-%04d",
		gofakeit.Number(11, 99),
		gofakeit.Number(0, 9999),
		gofakeit.Number(0, 9999),
	)
}

// fakeNote комментарий примерно у каждой третьей записи
func fakeNote() *string {
	if gofakeit.Number(0, 2) != 0 {
		return nil
	}
	return ptr.Ptr(seedNotes[gofakeit.Number(0, len(seedNotes)-1)])
}
