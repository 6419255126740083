package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/arnavshah/housekeeping-api-go/pkg/assignment"
	"github.com/arnavshah/housekeeping-api-go/pkg/database"
	"github.com/arnavshah/housekeeping-api-go/pkg/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when a lookup matches no record
var ErrNotFound = errors.New("record not found")

// StatusDirty marks rooms that still need cleaning today
const StatusDirty = "dirty"

// Store loads assignment inputs and persists the results
type Store struct {
	DB *gorm.DB
}

// New creates a store on top of an open database
func New(db *gorm.DB) *Store {
	return &Store{DB: db}
}

func roomFromRow(r database.HotelRoom) models.Room {
	return models.Room{
		ID:                  r.ID,
		RoomNumber:          r.RoomNumber,
		Hotel:               r.Hotel,
		FloorNumber:         r.FloorNumber,
		Wing:                r.Wing,
		ElevatorProximity:   r.ElevatorProximity,
		RoomSizeSqm:         r.RoomSizeSqm,
		RoomCapacity:        r.RoomCapacity,
		IsCheckoutRoom:      r.IsCheckoutRoom,
		TowelChangeRequired: r.TowelChangeRequired,
		LinenChangeRequired: r.LinenChangeRequired,
		Status:              r.Status,
		RoomCategory:        r.RoomCategory,
	}
}

func rowFromRoom(hotel string, r models.Room) database.HotelRoom {
	return database.HotelRoom{
		ID:                  r.ID,
		Hotel:               hotel,
		RoomNumber:          r.RoomNumber,
		FloorNumber:         r.FloorNumber,
		Wing:                r.Wing,
		ElevatorProximity:   r.ElevatorProximity,
		RoomSizeSqm:         r.RoomSizeSqm,
		RoomCapacity:        r.RoomCapacity,
		IsCheckoutRoom:      r.IsCheckoutRoom,
		TowelChangeRequired: r.TowelChangeRequired,
		LinenChangeRequired: r.LinenChangeRequired,
		Status:              r.Status,
		RoomCategory:        r.RoomCategory,
	}
}

// ListRoomsForAssignment returns the dirty rooms of a hotel
func (s *Store) ListRoomsForAssignment(ctx context.Context, hotel string) ([]models.Room, error) {
	var rows []database.HotelRoom
	err := s.DB.WithContext(ctx).
		Where("hotel = ? AND status = ?", hotel, StatusDirty).
		Order("room_number").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	rooms := make([]models.Room, len(rows))
	for i, r := range rows {
		rooms[i] = roomFromRow(r)
	}
	return rooms, nil
}

// Columns refreshed by an upsert. The (hotel, id) key is never rewritten so
// one hotel cannot take over the rows of another.
var (
	roomColumns = []string{
		"room_number", "floor_number", "wing", "elevator_proximity", "room_size_sqm", "room_capacity",
		"is_checkout_room", "towel_change_required", "linen_change_required", "status", "room_category", "updated_at",
	}
	staffColumns = []string{"full_name", "nickname", "active"}
)

func hotelConflict(columns []string) clause.OnConflict {
	return clause.OnConflict{
		Columns:   []clause.Column{{Name: "hotel"}, {Name: "id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}
}

// UpsertRooms inserts rooms or refreshes the ones that already exist
func (s *Store) UpsertRooms(ctx context.Context, hotel string, rooms []models.Room) error {
	if len(rooms) == 0 {
		return nil
	}
	rows := make([]database.HotelRoom, len(rooms))
	for i, r := range rooms {
		rows[i] = rowFromRoom(hotel, r)
	}
	err := s.DB.WithContext(ctx).
		Clauses(hotelConflict(roomColumns)).
		Create(&rows).Error
	if err != nil {
		return fmt.Errorf("upsert rooms: %w", err)
	}
	return nil
}

// ListStaff returns the active housekeepers of a hotel
func (s *Store) ListStaff(ctx context.Context, hotel string) ([]models.Staff, error) {
	var rows []database.HousekeepingStaff
	err := s.DB.WithContext(ctx).
		Where("hotel = ? AND active = ?", hotel, true).
		Order("full_name").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}
	staff := make([]models.Staff, len(rows))
	for i, r := range rows {
		staff[i] = models.Staff{ID: r.ID, FullName: r.FullName, Nickname: r.Nickname}
	}
	return staff, nil
}

// UpsertStaff inserts housekeepers or refreshes the ones that already exist
func (s *Store) UpsertStaff(ctx context.Context, hotel string, staff []models.Staff) error {
	if len(staff) == 0 {
		return nil
	}
	rows := make([]database.HousekeepingStaff, len(staff))
	for i, st := range staff {
		rows[i] = database.HousekeepingStaff{ID: st.ID, Hotel: hotel, FullName: st.FullName, Nickname: st.Nickname, Active: true}
	}
	err := s.DB.WithContext(ctx).
		Clauses(hotelConflict(staffColumns)).
		Create(&rows).Error
	if err != nil {
		return fmt.Errorf("upsert staff: %w", err)
	}
	return nil
}

// ListLayouts returns the saved floorplan of a hotel
func (s *Store) ListLayouts(ctx context.Context, hotel string) ([]models.WingLayout, error) {
	var rows []database.FloorLayout
	if err := s.DB.WithContext(ctx).Where("hotel = ?", hotel).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list layouts: %w", err)
	}
	layouts := make([]models.WingLayout, len(rows))
	for i, r := range rows {
		layouts[i] = models.WingLayout{FloorNumber: r.FloorNumber, Wing: r.Wing, X: r.X, Y: r.Y}
	}
	return layouts, nil
}

// ReplaceLayouts swaps the whole floorplan of a hotel in one transaction
func (s *Store) ReplaceLayouts(ctx context.Context, hotel string, layouts []models.WingLayout) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("hotel = ?", hotel).Delete(&database.FloorLayout{}).Error; err != nil {
			return fmt.Errorf("clear layouts: %w", err)
		}
		if len(layouts) == 0 {
			return nil
		}
		rows := make([]database.FloorLayout, len(layouts))
		for i, l := range layouts {
			rows[i] = database.FloorLayout{Hotel: hotel, FloorNumber: l.FloorNumber, Wing: l.Wing, X: l.X, Y: l.Y}
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("insert layouts: %w", err)
		}
		return nil
	})
}

// ListPairPatterns returns the historical co-cleaning counts of a hotel
func (s *Store) ListPairPatterns(ctx context.Context, hotel string) ([]models.PairPattern, error) {
	var rows []database.RoomPairPattern
	err := s.DB.WithContext(ctx).
		Where("hotel = ? AND pair_count > 0", hotel).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list pair patterns: %w", err)
	}
	patterns := make([]models.PairPattern, len(rows))
	for i, r := range rows {
		patterns[i] = models.PairPattern{RoomNumberA: r.RoomNumberA, RoomNumberB: r.RoomNumberB, PairCount: r.PairCount}
	}
	return patterns, nil
}

// ListAssignments returns the saved plan of a hotel for one day
func (s *Store) ListAssignments(ctx context.Context, hotel, date string) ([]models.AssignmentRecord, error) {
	var rows []database.RoomAssignment
	err := s.DB.WithContext(ctx).
		Where("hotel = ? AND date = ?", hotel, date).
		Order("staff_id, room_number").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	records := make([]models.AssignmentRecord, len(rows))
	for i, r := range rows {
		records[i] = models.AssignmentRecord{
			ID:               r.ID,
			Hotel:            r.Hotel,
			Date:             r.Date,
			StaffID:          r.StaffID,
			RoomID:           r.RoomID,
			RoomNumber:       r.RoomNumber,
			EstimatedMinutes: r.EstimatedMinutes,
			Notes:            r.Notes,
		}
	}
	return records, nil
}

// SaveAssignments replaces the plan of a hotel for one day and keeps the
// pair counts in step: pairs from the replaced plan are taken back out
// before the pairs of the new plan are added.
func (s *Store) SaveAssignments(ctx context.Context, hotel, date string, previews []models.AssignmentPreview, notes string) ([]models.AssignmentRecord, error) {
	records := RecordsFromPreviews(hotel, date, notes, previews)

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var previous []database.RoomAssignment
		if err := tx.Where("hotel = ? AND date = ?", hotel, date).Find(&previous).Error; err != nil {
			return fmt.Errorf("load previous plan: %w", err)
		}
		if err := tx.Where("hotel = ? AND date = ?", hotel, date).Delete(&database.RoomAssignment{}).Error; err != nil {
			return fmt.Errorf("clear previous plan: %w", err)
		}

		if len(records) > 0 {
			rows := make([]database.RoomAssignment, len(records))
			for i, r := range records {
				rows[i] = database.RoomAssignment{
					ID:               r.ID,
					Hotel:            hotel,
					Date:             date,
					StaffID:          r.StaffID,
					RoomID:           r.RoomID,
					RoomNumber:       r.RoomNumber,
					EstimatedMinutes: r.EstimatedMinutes,
					Notes:            r.Notes,
				}
			}
			if err := tx.Create(&rows).Error; err != nil {
				return fmt.Errorf("insert plan: %w", err)
			}
		}

		oldGroups := make(map[string][]string)
		for _, r := range previous {
			oldGroups[r.StaffID] = append(oldGroups[r.StaffID], r.RoomNumber)
		}
		newGroups := make(map[string][]string)
		for _, r := range records {
			newGroups[r.StaffID] = append(newGroups[r.StaffID], r.RoomNumber)
		}

		for _, d := range PairDeltas(oldGroups, newGroups) {
			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "hotel"}, {Name: "room_number_a"}, {Name: "room_number_b"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"pair_count": gorm.Expr("pair_count + ?", d.PairCount),
				}),
			}).Create(&database.RoomPairPattern{
				Hotel:       hotel,
				RoomNumberA: d.RoomNumberA,
				RoomNumberB: d.RoomNumberB,
				PairCount:   max(d.PairCount, 0),
			}).Error
			if err != nil {
				return fmt.Errorf("update pair %s|%s: %w", d.RoomNumberA, d.RoomNumberB, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// RecordsFromPreviews flattens previews into one record per room
func RecordsFromPreviews(hotel, date, notes string, previews []models.AssignmentPreview) []models.AssignmentRecord {
	var records []models.AssignmentRecord
	for _, p := range previews {
		for _, r := range p.Rooms {
			records = append(records, models.AssignmentRecord{
				ID:               uuid.NewString(),
				Hotel:            hotel,
				Date:             date,
				StaffID:          p.StaffID,
				RoomID:           r.ID,
				RoomNumber:       r.RoomNumber,
				EstimatedMinutes: assignment.CalculateRoomTime(r),
				Notes:            notes,
			})
		}
	}
	return records
}

// staffPairs counts every unordered pair of rooms cleaned by the same person
func staffPairs(groups map[string][]string) map[string]int {
	pairs := make(map[string]int)
	for _, numbers := range groups {
		for i := 0; i < len(numbers); i++ {
			for j := i + 1; j < len(numbers); j++ {
				if numbers[i] == numbers[j] {
					continue
				}
				pairs[assignment.PairKey(numbers[i], numbers[j])]++
			}
		}
	}
	return pairs
}

// PairDeltas returns the pair count changes between two plans, sorted by pair.
// Pairs whose count does not change are omitted.
func PairDeltas(oldGroups, newGroups map[string][]string) []models.PairPattern {
	deltas := staffPairs(newGroups)
	for key, n := range staffPairs(oldGroups) {
		deltas[key] -= n
	}

	keys := make([]string, 0, len(deltas))
	for key, n := range deltas {
		if n != 0 {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	out := make([]models.PairPattern, len(keys))
	for i, key := range keys {
		a, b := splitPairKey(key)
		out[i] = models.PairPattern{RoomNumberA: a, RoomNumberB: b, PairCount: deltas[key]}
	}
	return out
}

func splitPairKey(key string) (string, string) {
	a, b, _ := strings.Cut(key, "|")
	return a, b
}
