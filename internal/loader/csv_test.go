package loader

import (
	"context"
	"strings"
	"testing"

	"address-api/internal/models"

	"github.com/Flaque/filet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSV(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    []models.NewAddress
		errContains string
	}{
		{
			name:  "standard header",
			input: "name,latitude,longitude\nA,1,1\nB,2.5,-2.5\n",
			expected: []models.NewAddress{
				{Name: "A", Latitude: 1, Longitude: 1},
				{Name: "B", Latitude: 2.5, Longitude: -2.5},
			},
		},
		{
			name:  "reordered and extra columns",
			input: "Longitude,id,Name,Latitude\n139.767125,9,Tokyo Station,35.681236\n",
			expected: []models.NewAddress{
				{Name: "Tokyo Station", Latitude: 35.681236, Longitude: 139.767125},
			},
		},
		{
			name:     "header only",
			input:    "name,latitude,longitude\n",
			expected: nil,
		},
		{
			name:        "empty input",
			input:       "",
			errContains: "failed to read header",
		},
		{
			name:        "missing column",
			input:       "name,latitude\nA,1\n",
			errContains: `missing required column "longitude"`,
		},
		{
			name:        "invalid latitude",
			input:       "name,latitude,longitude\nA,1,1\nB,north,2\n",
			errContains: "line 3: invalid latitude: north",
		},
		{
			name:        "invalid longitude",
			input:       "name,latitude,longitude\nA,1,east\n",
			errContains: "line 2: invalid longitude: east",
		},
		{
			name:        "short row",
			input:       "name,latitude,longitude\nA,1\n",
			errContains: `missing value for "longitude"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseCSV(context.Background(), strings.NewReader(tt.input))

			if tt.errContains != "" {
				require.ErrorContains(t, err, tt.errContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseCSV_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ParseCSV(ctx, strings.NewReader("name,latitude,longitude\nA,1,1\n"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestCSVSource_Read(t *testing.T) {
	defer filet.CleanUp(t)
	file := filet.TmpFile(t, "", "name,latitude,longitude\nA,1,1\nB,2,2\n")

	addrs, err := NewCSVSource(file.Name()).Read(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []models.NewAddress{
		{Name: "A", Latitude: 1, Longitude: 1},
		{Name: "B", Latitude: 2, Longitude: 2},
	}, addrs)
}

func TestCSVSource_MissingFile(t *testing.T) {
	_, err := NewCSVSource("/nonexistent/customer_location.csv").Read(context.Background())
	require.ErrorContains(t, err, "failed to open file")
}
