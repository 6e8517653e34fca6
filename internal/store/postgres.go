package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // postgres driver

	"github.com/amr-mohamed13/SmartLivingAdvisor/internal/property"
)

// TableName is the property table populated by the data pipeline.
const TableName = "real_estate_data"

// PostgresRepository loads the property corpus from Postgres. Nullable
// columns map to absent fields, keeping absence distinguishable from
// zero all the way into the engine.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a repository over an open database handle.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

const loadAllQuery = `
SELECT no, property_type, property_condition, location,
       floor_area_m2, num_rooms, num_bathrooms,
       air_conditioning, heating, has_gym, has_parking, has_pool,
       amenities, crime_rate, transport_score,
       price, income, price_to_income_ratio, price_per_m2
FROM ` + TableName + `
ORDER BY no`

// LoadAll reads the full corpus. Every row is validated before it is
// returned; a structurally invalid row aborts the load with
// property.ErrMalformedRecord so a build never runs on coerced data.
func (r *PostgresRepository) LoadAll(ctx context.Context) ([]property.Record, error) {
	rows, err := r.db.QueryContext(ctx, loadAllQuery)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", TableName, err)
	}
	defer rows.Close()

	var records []property.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		if err := rec.Validate(); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", TableName, err)
	}
	return records, nil
}

func scanRecord(rows *sql.Rows) (property.Record, error) {
	var (
		rec       property.Record
		propType  sql.NullString
		condition sql.NullString
		location  sql.NullString
		floorArea sql.NullFloat64
		numRooms  sql.NullInt64
		numBaths  sql.NullInt64
		ac        sql.NullString
		heating   sql.NullString
		hasGym    sql.NullBool
		hasPark   sql.NullBool
		hasPool   sql.NullBool
		amenities sql.NullString
		crime     sql.NullFloat64
		transport sql.NullFloat64
		price     sql.NullFloat64
		income    sql.NullFloat64
		ptiRatio  sql.NullFloat64
		pricePM2  sql.NullFloat64
	)
	if err := rows.Scan(
		&rec.ID, &propType, &condition, &location,
		&floorArea, &numRooms, &numBaths,
		&ac, &heating, &hasGym, &hasPark, &hasPool,
		&amenities, &crime, &transport,
		&price, &income, &ptiRatio, &pricePM2,
	); err != nil {
		return property.Record{}, fmt.Errorf("scan %s row: %w", TableName, err)
	}

	rec.PropertyType = propType.String
	rec.Condition = property.ParseCondition(condition.String)
	rec.Location = location.String
	rec.AirConditioning = property.ParseBool(ac.String)
	rec.Heating = property.ParseBool(heating.String)
	rec.HasGym = hasGym.Bool
	rec.HasParking = hasPark.Bool
	rec.HasPool = hasPool.Bool
	rec.Amenities = amenities.String

	rec.FloorAreaM2 = nullFloat(floorArea)
	rec.CrimeRate = nullFloat(crime)
	rec.TransportScore = nullFloat(transport)
	rec.Price = nullFloat(price)
	rec.Income = nullFloat(income)
	rec.PriceToIncomeRatio = nullFloat(ptiRatio)
	rec.PricePerM2 = nullFloat(pricePM2)
	rec.NumRooms = nullInt(numRooms)
	rec.NumBathrooms = nullInt(numBaths)

	return rec, nil
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}
