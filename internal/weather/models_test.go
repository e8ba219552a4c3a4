package weather

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRoundTrip(t *testing.T) {
	rec := Record{
		Location:      "北京",
		Temperature:   21.5,
		FeelsLike:     20.1,
		Humidity:      55,
		WindSpeed:     12.3,
		WindDirection: 180,
		Pressure:      1013.25,
		Visibility:    10,
		UVIndex:       4.2,
		Condition:     "clear sky",
		ConditionCode: "01d",
		Timestamp:     time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC),
		Units:         UnitsMetric,
		Source:        SourceLive,
	}

	raw, err := json.Marshal(rec)
	require.NoError(t, err)

	var back Record
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, rec, back)
}

func TestForecastRecordRoundTrip(t *testing.T) {
	rec := ForecastRecord{
		Location: "上海",
		Days: []ForecastDay{
			{
				Date:                time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC),
				HighTemp:            30,
				LowTemp:             22,
				Condition:           "rain",
				PrecipitationChance: 70,
				WindSpeed:           15,
				Humidity:            80,
			},
		},
		Units:       UnitsMetric,
		GeneratedAt: time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC),
		Source:      SourceCache,
	}

	raw, err := json.Marshal(rec)
	require.NoError(t, err)

	var back ForecastRecord
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, rec, back)
}
