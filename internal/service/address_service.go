package service

import (
	"context"
	"fmt"
	"math"

	"address-api/internal/geo"
	"address-api/internal/models"

	"github.com/rs/zerolog"
)

// ValidationError reports an input value the service refuses to store or search with.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// AddressRepository interface for dependency injection
type AddressRepository interface {
	FetchAll(ctx context.Context) ([]models.Address, error)
	FetchByID(ctx context.Context, id int64) (*models.Address, error)
	InsertOne(ctx context.Context, addr models.NewAddress) (int64, error)
	InsertMany(ctx context.Context, addrs []models.NewAddress) error
	UpdateByID(ctx context.Context, id int64, patch models.AddressPatch) error
	SoftDeleteByID(ctx context.Context, id int64) error
	HardDeleteAll(ctx context.Context) error
}

// BulkSource provides the rows used by LoadData.
type BulkSource interface {
	Read(ctx context.Context) ([]models.NewAddress, error)
}

// AddressService contains the business logic for address management and radius search
type AddressService struct {
	repo   AddressRepository
	source BulkSource
}

// NewAddressService creates a new address service
func NewAddressService(repo AddressRepository, source BulkSource) *AddressService {
	return &AddressService{repo: repo, source: source}
}

// List returns every address that has not been soft deleted.
func (s *AddressService) List(ctx context.Context) ([]models.Address, error) {
	addresses, err := s.repo.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list addresses: %w", err)
	}
	return addresses, nil
}

// Retrieve returns the visible addresses within distanceKm of origin,
// annotated with their distance.
func (s *AddressService) Retrieve(ctx context.Context, origin geo.Point, distanceKm float64) ([]models.AddressWithDistance, error) {
	if err := validateCoordinates(origin.Lat, origin.Lng); err != nil {
		return nil, err
	}
	if math.IsNaN(distanceKm) {
		return nil, &ValidationError{Field: "distance", Message: "must be a number"}
	}

	addresses, err := s.repo.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to fetch addresses for radius search: %w", err)
	}

	result := geo.FilterByRadius(addresses, origin, distanceKm)
	zerolog.Ctx(ctx).Debug().
		Int("scanned", len(addresses)).
		Int("matched", len(result)).
		Float64("distance_km", distanceKm).
		Msg("radius search completed")

	return result, nil
}

// Create stores a new address and returns it as persisted.
func (s *AddressService) Create(ctx context.Context, addr models.NewAddress) (*models.Address, error) {
	if err := validateCoordinates(addr.Latitude, addr.Longitude); err != nil {
		return nil, err
	}

	id, err := s.repo.InsertOne(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("service: failed to create address: %w", err)
	}

	created, err := s.repo.FetchByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: failed to fetch created address %d: %w", id, err)
	}
	return created, nil
}

// Update applies patch to the address and returns its current state. An
// unknown id yields an error wrapping repository.ErrNotFound.
func (s *AddressService) Update(ctx context.Context, id int64, patch models.AddressPatch) (*models.Address, error) {
	if patch.Latitude != nil {
		if err := validateLatitude(*patch.Latitude); err != nil {
			return nil, err
		}
	}
	if patch.Longitude != nil {
		if err := validateLongitude(*patch.Longitude); err != nil {
			return nil, err
		}
	}

	if err := s.repo.UpdateByID(ctx, id, patch); err != nil {
		return nil, fmt.Errorf("service: failed to update address %d: %w", id, err)
	}

	updated, err := s.repo.FetchByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: failed to fetch updated address %d: %w", id, err)
	}
	return updated, nil
}

// Delete soft deletes the address. Unknown ids are not an error.
func (s *AddressService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.SoftDeleteByID(ctx, id); err != nil {
		return fmt.Errorf("service: failed to delete address %d: %w", id, err)
	}
	return nil
}

// DeleteAll permanently removes every address, including soft deleted ones.
func (s *AddressService) DeleteAll(ctx context.Context) error {
	if err := s.repo.HardDeleteAll(ctx); err != nil {
		return fmt.Errorf("service: failed to delete all addresses: %w", err)
	}

	zerolog.Ctx(ctx).Warn().Msg("all addresses permanently deleted")
	return nil
}

// LoadData inserts every row of the bulk source as a visible address and
// returns how many rows were loaded.
func (s *AddressService) LoadData(ctx context.Context) (int, error) {
	addrs, err := s.source.Read(ctx)
	if err != nil {
		return 0, fmt.Errorf("service: failed to read bulk data: %w", err)
	}

	for i := range addrs {
		addrs[i].IsDeleted = false
	}

	if err := s.repo.InsertMany(ctx, addrs); err != nil {
		return 0, fmt.Errorf("service: failed to load addresses: %w", err)
	}

	zerolog.Ctx(ctx).Info().Int("count", len(addrs)).Msg("bulk address data loaded")
	return len(addrs), nil
}

func validateCoordinates(lat, lng float64) error {
	if err := validateLatitude(lat); err != nil {
		return err
	}
	return validateLongitude(lng)
}

func validateLatitude(lat float64) error {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return &ValidationError{Field: "latitude", Message: fmt.Sprintf("%v is outside [-90, 90]", lat)}
	}
	return nil
}

func validateLongitude(lng float64) error {
	if math.IsNaN(lng) || lng < -180 || lng > 180 {
		return &ValidationError{Field: "longitude", Message: fmt.Sprintf("%v is outside [-180, 180]", lng)}
	}
	return nil
}
