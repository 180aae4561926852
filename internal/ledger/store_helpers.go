package ledger

import (
	"database/sql"
	"errors"
	"time"
)

const generationColumns = "id, person_name, person_image_path, garment_name, garment_image_path, result_image_path, variant, generation_time_seconds, rating, cost, status, error_message, created_at, updated_at"

const variantColumns = "name, display_name, is_paid, cost_per_generation, is_enabled, avg_time_seconds, max_time_seconds, is_blacklisted, blacklist_reason, created_at, updated_at"

func scanGeneration(scanner interface{ Scan(dest ...any) error }) (*Generation, error) {
	var (
		id             int64
		personName     sql.NullString
		personPath     string
		garmentName    sql.NullString
		garmentPath    string
		resultPath     sql.NullString
		variant        string
		generationTime sql.NullFloat64
		rating         sql.NullInt64
		cost           sql.NullFloat64
		statusStr      string
		errorMessage   sql.NullString
		createdRaw     sql.NullString
		updatedRaw     sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&personName,
		&personPath,
		&garmentName,
		&garmentPath,
		&resultPath,
		&variant,
		&generationTime,
		&rating,
		&cost,
		&statusStr,
		&errorMessage,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	gen := &Generation{
		ID:                    id,
		PersonName:            personName.String,
		PersonImagePath:       personPath,
		GarmentName:           garmentName.String,
		GarmentImagePath:      garmentPath,
		ResultImagePath:       resultPath.String,
		Variant:               variant,
		GenerationTimeSeconds: generationTime.Float64,
		Rating:                int(rating.Int64),
		Cost:                  cost.Float64,
		Status:                Status(statusStr),
		ErrorMessage:          errorMessage.String,
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		gen.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		gen.UpdatedAt = updated
	}
	return gen, nil
}

func scanVariant(scanner interface{ Scan(dest ...any) error }) (*Variant, error) {
	var (
		name            string
		displayName     sql.NullString
		isPaid          sql.NullInt64
		cost            sql.NullFloat64
		isEnabled       sql.NullInt64
		avgTime         sql.NullFloat64
		maxTime         sql.NullFloat64
		isBlacklisted   sql.NullInt64
		blacklistReason sql.NullString
		createdRaw      sql.NullString
		updatedRaw      sql.NullString
	)

	if err := scanner.Scan(
		&name,
		&displayName,
		&isPaid,
		&cost,
		&isEnabled,
		&avgTime,
		&maxTime,
		&isBlacklisted,
		&blacklistReason,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	variant := &Variant{
		Name:              name,
		DisplayName:       displayName.String,
		IsPaid:            isPaid.Int64 != 0,
		CostPerGeneration: cost.Float64,
		IsEnabled:         isEnabled.Int64 != 0,
		AvgTimeSeconds:    avgTime.Float64,
		MaxTimeSeconds:    maxTime.Float64,
		IsBlacklisted:     isBlacklisted.Int64 != 0,
		BlacklistReason:   blacklistReason.String,
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		variant.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		variant.UpdatedAt = updated
	}
	return variant, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
