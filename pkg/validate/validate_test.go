package validate_test

import (
	"testing"
	"time"

	"github.com/Astemirdum/local-library/pkg/validate"
	"github.com/stretchr/testify/require"
)

func TestParseISO8601(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    time.Time
		wantErr bool
	}{
		{name: "date", in: "1971-12-16", want: time.Date(1971, 12, 16, 0, 0, 0, 0, time.UTC)},
		{name: "minutes", in: "2024-03-01T10:30", want: time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)},
		{name: "rfc3339", in: "2024-03-01T10:30:00Z", want: time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)},
		{name: "garbage", in: "16/12/1971", wantErr: true},
		{name: "empty", in: "", wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := validate.ParseISO8601(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestCustomValidator_Var(t *testing.T) {
	v := validate.NewCustomValidator()

	require.NoError(t, v.Var("2020-01-01", "iso8601"))
	require.Error(t, v.Var("yesterday", "iso8601"))
	require.NoError(t, v.Var("Jim", "alphanum,max=100"))
	require.Error(t, v.Var("Jim Bob", "alphanum"))
	require.Error(t, v.Var("ab", "min=3"))
}
