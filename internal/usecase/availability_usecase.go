package usecase

import (
	"context"
	"sort"

	"massage-booking/internal/converter"
	"massage-booking/internal/delivery/dto"
	"massage-booking/internal/domain/entity"
	"massage-booking/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// OccupancyStore is the advisory cache in front of storage.
// A fill is guarded by the version read before storage was queried; writes bump it.
type OccupancyStore interface {
	Get(ctx context.Context, date entity.Date) ([]entity.TimeSlotCode, bool, error)
	Version(ctx context.Context, date entity.Date) (int64, error)
	Store(ctx context.Context, date entity.Date, version int64, slots []entity.TimeSlotCode) (bool, error)
	MarkOccupied(ctx context.Context, slot entity.Slot) error
	Invalidate(ctx context.Context, date entity.Date) error
}

type AvailabilityUsecase interface {
	GetCatalog(ctx context.Context) *dto.CatalogResponse
	// GetOccupiedSlots returns occupied slots in catalog order. On a storage failure it returns
	// an empty set together with the error; callers may proceed, the write path decides.
	GetOccupiedSlots(ctx context.Context, date entity.Date) ([]entity.TimeSlotCode, error)
	GetAvailability(ctx context.Context, rawDate string) (*dto.AvailabilityResponse, error)
}

type availabilityUsecase struct {
	db          *gorm.DB
	log         *logrus.Logger
	bookingRepo repository.BookingRepository
	cache       OccupancyStore
}

func NewAvailabilityUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	bookingRepo repository.BookingRepository,
	cache OccupancyStore,
) AvailabilityUsecase {
	return &availabilityUsecase{
		db:          db,
		log:         log,
		bookingRepo: bookingRepo,
		cache:       cache,
	}
}

func (u *availabilityUsecase) GetCatalog(ctx context.Context) *dto.CatalogResponse {
	return converter.CatalogToResponse(entity.Packages(), entity.TimeSlots())
}

func (u *availabilityUsecase) GetOccupiedSlots(ctx context.Context, date entity.Date) ([]entity.TimeSlotCode, error) {
	var version int64
	fill := false
	if u.cache != nil {
		slots, hit, err := u.cache.Get(ctx, date)
		switch {
		case err != nil:
			u.log.Warnf("Failed to read occupancy cache for %s: %+v", date, err)
		case hit:
			return sortSlotCodes(slots), nil
		default:
			// the version must be taken before storage is queried
			if version, err = u.cache.Version(ctx, date); err != nil {
				u.log.Warnf("Failed to read occupancy cache version for %s: %+v", date, err)
			} else {
				fill = true
			}
		}
	}

	slots, err := u.bookingRepo.FindOccupiedSlots(ctx, u.db, date)
	if err != nil {
		u.log.Warnf("Failed to find occupied slots for %s: %+v", date, err)
		return []entity.TimeSlotCode{}, persistenceError(err)
	}

	if fill {
		stored, err := u.cache.Store(ctx, date, version, slots)
		if err != nil {
			u.log.Warnf("Failed to populate occupancy cache for %s: %+v", date, err)
		} else if !stored {
			u.log.Debugf("Occupancy for %s changed during read, cache fill skipped", date)
		}
	}

	return sortSlotCodes(slots), nil
}

func (u *availabilityUsecase) GetAvailability(ctx context.Context, rawDate string) (*dto.AvailabilityResponse, error) {
	date, err := entity.ParseDate(rawDate)
	if err != nil {
		return nil, newValidationError(RuleDateFormat, "date", "date must use the YYYY-MM-DD format")
	}

	occupied, err := u.GetOccupiedSlots(ctx, date)
	degraded := err != nil

	taken := make(map[entity.TimeSlotCode]struct{}, len(occupied))
	for _, s := range occupied {
		taken[s] = struct{}{}
	}

	available := make([]string, 0, len(entity.TimeSlots()))
	for _, ts := range entity.TimeSlots() {
		if _, ok := taken[ts.Code]; !ok {
			available = append(available, string(ts.Code))
		}
	}

	return &dto.AvailabilityResponse{
		Date:      date.String(),
		Occupied:  converter.SlotCodesToStrings(occupied),
		Available: available,
		Degraded:  degraded,
	}, nil
}

// sortSlotCodes orders codes by catalog position; unknown codes go last
func sortSlotCodes(slots []entity.TimeSlotCode) []entity.TimeSlotCode {
	out := make([]entity.TimeSlotCode, len(slots))
	copy(out, slots)
	sort.SliceStable(out, func(i, j int) bool {
		return slotRank(out[i]) < slotRank(out[j])
	})
	return out
}

func slotRank(code entity.TimeSlotCode) int {
	if idx := entity.SlotIndex(code); idx >= 0 {
		return idx
	}
	return len(entity.TimeSlots())
}
