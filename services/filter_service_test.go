package services

import (
	"testing"

	"planner-bff/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterSettersAndSnapshot(t *testing.T) {
	f := NewFilterService()

	require.NoError(t, f.SetUserID(models.Int64(4)))
	require.NoError(t, f.SetCampusID(models.Int64(10)))
	require.NoError(t, f.SetPeriod("2024-1"))
	require.NoError(t, f.SetSearchText("  algebra  "))

	snapshot := f.Snapshot()
	assert.Equal(t, int64(4), *snapshot.UserID)
	assert.Equal(t, int64(10), *snapshot.CampusID)
	assert.Equal(t, "2024-1", snapshot.Period)
	assert.Equal(t, "algebra", snapshot.SearchText)

	// Snapshot is a copy
	*snapshot.UserID = 99
	assert.Equal(t, int64(4), *f.Snapshot().UserID)
}

func TestPermanentFilterMutationIsViolation(t *testing.T) {
	f := NewFilterService()
	f.ApplyPermanent(models.PermanentFilters{CampusID: models.Int64(10), UserID: models.Int64(7)})

	assert.ErrorIs(t, f.SetCampusID(models.Int64(11)), ErrPermanentFilterViolation)
	assert.ErrorIs(t, f.SetCampusID(nil), ErrPermanentFilterViolation)
	assert.ErrorIs(t, f.SetUserID(models.Int64(8)), ErrPermanentFilterViolation)

	// Setting the locked value again is not a mutation
	assert.NoError(t, f.SetCampusID(models.Int64(10)))
	assert.NoError(t, f.SetPeriod("2024-2"))

	assert.Equal(t, int64(10), *f.Snapshot().CampusID)
	assert.Equal(t, int64(7), *f.Snapshot().UserID)
}

func TestPermanentPeriod(t *testing.T) {
	f := NewFilterService()
	f.ApplyPermanent(models.PermanentFilters{Period: models.String("2024-1")})

	assert.Equal(t, "2024-1", f.Snapshot().Period)
	assert.ErrorIs(t, f.SetPeriod(""), ErrPermanentFilterViolation)
	assert.ErrorIs(t, f.CheckQuery(models.CourseFilters{Period: "2023-2"}), ErrPermanentFilterViolation)
}

func TestActiveFilters(t *testing.T) {
	f := NewFilterService()
	assert.False(t, f.HasActiveFilters())
	assert.False(t, f.HasActiveNonPermanentFilters())

	f.ApplyPermanent(models.PermanentFilters{CampusID: models.Int64(10)})
	assert.True(t, f.HasActiveFilters())
	assert.False(t, f.HasActiveNonPermanentFilters())

	require.NoError(t, f.SetSearchText("math"))
	assert.True(t, f.HasActiveNonPermanentFilters())
}

func TestClearFiltersRestoresPermanent(t *testing.T) {
	f := NewFilterService()
	f.ApplyPermanent(models.PermanentFilters{CampusID: models.Int64(10)})
	require.NoError(t, f.SetPeriod("2024-1"))
	require.NoError(t, f.SetUserID(models.Int64(3)))

	f.ClearFilters()

	snapshot := f.Snapshot()
	assert.Equal(t, int64(10), *snapshot.CampusID)
	assert.Nil(t, snapshot.UserID)
	assert.Empty(t, snapshot.Period)
	assert.False(t, f.HasActiveNonPermanentFilters())
}

func TestResetDropsPermanent(t *testing.T) {
	f := NewFilterService()
	f.ApplyPermanent(models.PermanentFilters{CampusID: models.Int64(10)})

	f.Reset()

	assert.False(t, f.HasActiveFilters())
	assert.Empty(t, f.Permanent().Fields())
	assert.NoError(t, f.SetCampusID(models.Int64(11)))
}

func TestSetField(t *testing.T) {
	tests := []struct {
		name      string
		permanent models.PermanentFilters
		field     models.FilterField
		value     *string
		wantErr   error
	}{
		{"user id", models.PermanentFilters{}, models.FilterUserID, models.String("5"), nil},
		{"clear campus", models.PermanentFilters{}, models.FilterCampusID, nil, nil},
		{"search", models.PermanentFilters{}, models.FilterSearchText, models.String("x"), nil},
		{"non numeric id", models.PermanentFilters{}, models.FilterCampusID, models.String("abc"), ErrInvalidFilterValue},
		{"negative id", models.PermanentFilters{}, models.FilterUserID, models.String("-1"), ErrInvalidFilterValue},
		{"unknown field", models.PermanentFilters{}, models.FilterField("teacher"), models.String("1"), ErrInvalidFilterValue},
		{"locked campus", models.PermanentFilters{CampusID: models.Int64(10)}, models.FilterCampusID, models.String("11"), ErrPermanentFilterViolation},
		{"locked user cleared", models.PermanentFilters{UserID: models.Int64(7)}, models.FilterUserID, nil, ErrPermanentFilterViolation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFilterService()
			f.ApplyPermanent(tt.permanent)

			err := f.SetField(tt.field, tt.value)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCheckQuery(t *testing.T) {
	f := NewFilterService()
	f.ApplyPermanent(models.PermanentFilters{CampusID: models.Int64(10), UserID: models.Int64(7)})

	assert.NoError(t, f.CheckQuery(models.CourseFilters{}))
	assert.NoError(t, f.CheckQuery(models.CourseFilters{CampusID: models.Int64(10), Period: "2024-1"}))
	assert.ErrorIs(t, f.CheckQuery(models.CourseFilters{CampusID: models.Int64(11)}), ErrPermanentFilterViolation)
	assert.ErrorIs(t, f.CheckQuery(models.CourseFilters{UserID: models.Int64(8)}), ErrPermanentFilterViolation)
}
